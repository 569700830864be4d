package mocks

import (
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/dal"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
)

// MockPostgresDAL provides a mock Postgres implementation using SQLite for local development
type MockPostgresDAL struct {
	dal.ReportDAL
}

// NewMockPostgresDAL creates a mock Postgres DAL using SQLite
func NewMockPostgresDAL(sqliteFile string) (*MockPostgresDAL, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development")

	sqliteDAL, err := dal.NewSQLiteDAL(sqliteFile)
	if err != nil {
		return nil, err
	}

	return &MockPostgresDAL{
		ReportDAL: sqliteDAL,
	}, nil
}
