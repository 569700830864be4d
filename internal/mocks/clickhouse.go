package mocks

import (
	"context"
	"sync"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/aggregate"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// MockClickHouseClient provides an in-memory stand-in for the telemetry
// store during local development.
type MockClickHouseClient struct {
	mu      sync.RWMutex
	matches map[string][]models.MatchRecord
}

// NewMockClickHouseClient creates a mock telemetry client
func NewMockClickHouseClient() *MockClickHouseClient {
	logger.Info("Using MOCK ClickHouse client for local development")

	return &MockClickHouseClient{
		matches: make(map[string][]models.MatchRecord),
	}
}

// InsertMatches records the matches in memory keyed by stored report id.
func (m *MockClickHouseClient) InsertMatches(_ context.Context, reportID, _ string, matches []models.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[reportID] = append(m.matches[reportID], matches...)
	return nil
}

// DailyKills computes the day-bucketed kills in memory, the same way the
// real client answers it server-side.
func (m *MockClickHouseClient) DailyKills(_ context.Context, reportID string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series, _ := aggregate.BucketByDay(m.matches[reportID], aggregate.Kills)
	kills := make(map[string]int, len(series.Labels))
	for i, day := range series.Labels {
		kills[day] = series.Values[i]
	}
	return kills, nil
}

// Close is a no-op for mock client
func (m *MockClickHouseClient) Close() error {
	return nil
}
