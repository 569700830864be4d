package dal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// PostgresDAL implements ReportDAL using PostgreSQL.
type PostgresDAL struct {
	db *sql.DB
}

// NewPostgresDAL connects to Postgres and initializes the schema.
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	dal := &PostgresDAL{db: db}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL,
		uploaded_at BIGINT NOT NULL,
		game_count INTEGER NOT NULL DEFAULT 0,
		games JSONB NOT NULL,
		series JSONB
	);
	CREATE INDEX IF NOT EXISTS idx_reports_uploaded_at ON reports(uploaded_at);
	`
	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init reports schema: %w", err)
	}
	return nil
}

func (p *PostgresDAL) SaveReport(rec *models.ReportRecord) (*models.ReportRecord, error) {
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

	_, err = p.db.Exec(
		`INSERT INTO reports (id, report_id, uploaded_at, game_count, games, series) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ReportID, rec.UploadedAt, len(rec.Games), string(gamesJSON), seriesJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}
	return rec, nil
}

func (p *PostgresDAL) GetReport(id string) (*models.ReportRecord, error) {
	row := p.db.QueryRow(
		`SELECT id, report_id, uploaded_at, games, series FROM reports WHERE id = $1`, id)

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

func (p *PostgresDAL) ListReports() ([]models.ReportListing, error) {
	rows, err := p.db.Query(
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

func (p *PostgresDAL) DeleteReport(id string) error {
	res, err := p.db.Exec(`DELETE FROM reports WHERE id = $1`, id)
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

func (p *PostgresDAL) Reset() error {
	_, err := p.db.Exec(`DELETE FROM reports`)
	return err
}

// Close closes the underlying database handle.
func (p *PostgresDAL) Close() error {
	return p.db.Close()
}
