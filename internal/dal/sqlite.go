package dal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// SQLiteDAL implements ReportDAL using SQLite. Game results and the chart
// series are stored as JSON blobs; the listing columns are kept relational
// so listing does not deserialize every report.
type SQLiteDAL struct {
	db *sql.DB
}

// NewSQLiteDAL opens (and initializes) a SQLite-backed report store.
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	dal := &SQLiteDAL{db: db}
	if err := dal.initSchema(); err != nil {
		return nil, err
	}
	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL,
		uploaded_at INTEGER NOT NULL,
		game_count INTEGER NOT NULL DEFAULT 0,
		games TEXT NOT NULL,
		series TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_reports_uploaded_at ON reports(uploaded_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init reports schema: %w", err)
	}
	return nil
}

func (s *SQLiteDAL) SaveReport(rec *models.ReportRecord) (*models.ReportRecord, error) {
	if rec.ID == "" {
		rec.ID = genID("report")
	}
	if rec.UploadedAt == 0 {
		rec.UploadedAt = time.Now().UnixMilli()
	}

	gamesJSON, err := json.Marshal(rec.Games)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game results: %w", err)
	}

	var seriesJSON sql.NullString
	if rec.Series != nil {
		b, err := json.Marshal(rec.Series)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal series: %w", err)
		}
		seriesJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO reports (id, report_id, uploaded_at, game_count, games, series) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ReportID, rec.UploadedAt, len(rec.Games), string(gamesJSON), seriesJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDAL) GetReport(id string) (*models.ReportRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, report_id, uploaded_at, games, series FROM reports WHERE id = ?`, id)

	var rec models.ReportRecord
	var gamesJSON string
	var seriesJSON sql.NullString
	err := row.Scan(&rec.ID, &rec.ReportID, &rec.UploadedAt, &gamesJSON, &seriesJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(gamesJSON), &rec.Games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game results: %w", err)
	}
	if seriesJSON.Valid {
		rec.Series = &models.TimeSeries{}
		if err := json.Unmarshal([]byte(seriesJSON.String), rec.Series); err != nil {
			return nil, fmt.Errorf("failed to unmarshal series: %w", err)
		}
	}
	return &rec, nil
}

func (s *SQLiteDAL) ListReports() ([]models.ReportListing, error) {
	rows, err := s.db.Query(
		`SELECT id, report_id, uploaded_at, game_count FROM reports ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []models.ReportListing{}
	for rows.Next() {
		var l models.ReportListing
		if err := rows.Scan(&l.ID, &l.ReportID, &l.UploadedAt, &l.GameCount); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *SQLiteDAL) DeleteReport(id string) error {
	res, err := s.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDAL) Reset() error {
	_, err := s.db.Exec(`DELETE FROM reports`)
	return err
}

// Close closes the underlying database handle.
func (s *SQLiteDAL) Close() error {
	return s.db.Close()
}
