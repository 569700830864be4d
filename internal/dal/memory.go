package dal

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// MemoryDAL implements ReportDAL using in-memory storage.
type MemoryDAL struct {
	mu      sync.RWMutex
	reports []models.ReportRecord
}

// NewMemoryDAL creates a new in-memory data access layer.
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{
		reports: []models.ReportRecord{},
	}
}

func (m *MemoryDAL) SaveReport(rec *models.ReportRecord) (*models.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = genID("report")
	}
	if rec.UploadedAt == 0 {
		rec.UploadedAt = time.Now().UnixMilli()
	}

	m.reports = append(m.reports, *rec)
	return rec, nil
}

func (m *MemoryDAL) GetReport(id string) (*models.ReportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.reports {
		if m.reports[i].ID == id {
			// Copy so callers cannot mutate stored state.
			rec := m.reports[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryDAL) ListReports() ([]models.ReportListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	listings := make([]models.ReportListing, 0, len(m.reports))
	for _, rec := range m.reports {
		listings = append(listings, models.ReportListing{
			ID:         rec.ID,
			ReportID:   rec.ReportID,
			UploadedAt: rec.UploadedAt,
			GameCount:  len(rec.Games),
		})
	}
	return listings, nil
}

func (m *MemoryDAL) DeleteReport(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryDAL) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = []models.ReportRecord{}
	return nil
}

func genID(prefix string) string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}
