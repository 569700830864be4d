package dal

import (
	"errors"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = errors.New("report not found")

// ReportDAL defines the data access layer for processed reports.
type ReportDAL interface {
	SaveReport(rec *models.ReportRecord) (*models.ReportRecord, error)
	GetReport(id string) (*models.ReportRecord, error)
	ListReports() ([]models.ReportListing, error)
	DeleteReport(id string) error
	Reset() error
}
