package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/aggregate"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// Client stores per-match telemetry in ClickHouse for cross-report
// analytics. It is optional: development runs without one.
type Client struct {
	conn driver.Conn
}

// NewClient connects to ClickHouse and ensures the telemetry table exists.
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c := &Client{conn: conn}
	if err := c.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) initSchema() error {
	ddl := `
		CREATE TABLE IF NOT EXISTS match_telemetry (
			report_id String,
			game String,
			played_at DateTime,
			device_type String,
			game_type String,
			map String,
			operator String,
			kills Int32,
			assists Int32,
			headshots Int32,
			deaths Int32,
			score Int32,
			damage_dealt Int32
		)
		ENGINE = MergeTree()
		ORDER BY (report_id, played_at)
	`
	if err := c.conn.Exec(context.Background(), ddl); err != nil {
		return fmt.Errorf("failed to create match_telemetry table: %w", err)
	}
	return nil
}

// InsertMatches batch-inserts the match records of one report/game pair.
// Matches with unparseable timestamps are skipped, matching the chart
// aggregation policy.
func (c *Client) InsertMatches(ctx context.Context, reportID, game string, matches []models.MatchRecord) error {
	if len(matches) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO match_telemetry")
	if err != nil {
		return fmt.Errorf("failed to prepare telemetry batch: %w", err)
	}

	skipped := 0
	for _, m := range matches {
		playedAt, err := aggregate.ParseTimestamp(m.Timestamp)
		if err != nil {
			skipped++
			continue
		}
		err = batch.Append(
			reportID, game, playedAt,
			m.DeviceType, m.GameType, m.Map, m.Operator,
			int32(m.Kills), int32(m.Assists), int32(m.Headshots),
			int32(m.Deaths), int32(m.Score), int32(m.DamageDealt),
		)
		if err != nil {
			return fmt.Errorf("failed to append telemetry row: %w", err)
		}
	}
	if skipped > 0 {
		logger.Warn("Skipped telemetry rows with unparseable timestamps",
			"report_id", reportID, "game", game, "skipped", skipped)
	}

	return batch.Send()
}

// DailyKills answers the day-bucketed kills query server-side for a stored
// report.
func (c *Client) DailyKills(ctx context.Context, reportID string) (map[string]int, error) {
	query := `
		SELECT toString(toDate(played_at)) AS day, toInt64(sum(kills)) AS kills
		FROM match_telemetry
		WHERE report_id = $1
		GROUP BY day
		ORDER BY day
	`

	rows, err := c.conn.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kills := make(map[string]int)
	for rows.Next() {
		var day string
		var n int64
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		kills[day] = int(n)
	}
	return kills, nil
}

// Close closes the ClickHouse connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
