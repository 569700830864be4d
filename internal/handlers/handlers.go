package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/chart"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/dal"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pipeline"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pubsub"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/sheets"
)

// maxUploadBytes caps report uploads; SAR exports run a few MB at most.
const maxUploadBytes = 64 << 20

// noDataMessage is shown when the designated game/category is absent.
const noDataMessage = "No data available for Cold War Multiplayer Match Data."

// Telemetry is the analytics store consumed by the upload handler.
type Telemetry interface {
	InsertMatches(ctx context.Context, reportID, game string, matches []models.MatchRecord) error
}

// APIHandlers contains all API handler methods
type APIHandlers struct {
	dal       dal.ReportDAL
	pubsub    *pubsub.PubSub
	runner    *pipeline.Runner
	sink      chart.Sink
	sheets    sheets.Store
	telemetry Telemetry
}

// NewAPIHandlers creates a new API handlers instance. sheets and telemetry
// may be nil when those collaborators are not configured.
func NewAPIHandlers(d dal.ReportDAL, ps *pubsub.PubSub, runner *pipeline.Runner, sink chart.Sink, st sheets.Store, tel Telemetry) *APIHandlers {
	return &APIHandlers{
		dal:       d,
		pubsub:    ps,
		runner:    runner,
		sink:      sink,
		sheets:    st,
		telemetry: tel,
	}
}

// UploadReport accepts a SAR export and runs the full pipeline on it.
// Only .html files are accepted; anything else is rejected before the
// pipeline starts.
func (h *APIHandlers) UploadReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("report")
	if err != nil {
		http.Error(w, "Please select a file.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".html") {
		logger.Warn("Rejected upload with wrong extension", "filename", header.Filename)
		http.Error(w, "Only .html files are allowed.", http.StatusBadRequest)
		return
	}

	markup, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded report", "error", err)
		h.publishError(err)
		http.Error(w, "Error reading the file.", http.StatusInternalServerError)
		return
	}

	logger.Info("Processing uploaded report", "filename", header.Filename, "bytes", len(markup))
	result, err := h.runner.Run(string(markup))
	if err != nil {
		logger.Error("Pipeline run failed", "error", err)
		h.publishError(err)
		http.Error(w, "Failed to process report.", http.StatusInternalServerError)
		return
	}

	rec, err := h.dal.SaveReport(&models.ReportRecord{
		ReportID: result.ReportID,
		Games:    result.Games,
		Series:   result.Series,
	})
	if err != nil {
		logger.Error("Failed to save report", "error", err)
		http.Error(w, "Failed to save report.", http.StatusInternalServerError)
		return
	}

	// Telemetry is best-effort; analytics must never fail an upload.
	if h.telemetry != nil {
		for _, g := range rec.Games {
			if g.Summary == nil {
				continue
			}
			if err := h.telemetry.InsertMatches(r.Context(), rec.ID, g.Title, g.Summary.DetailedMatches); err != nil {
				logger.Error("Failed to store match telemetry", "error", err, "game", g.Title)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// ListReports returns the stored report listings.
func (h *APIHandlers) ListReports(w http.ResponseWriter, r *http.Request) {
	listings, err := h.dal.ListReports()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

// GetReport returns one stored report by id.
func (h *APIHandlers) GetReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reportFromQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// ChartData returns the day-bucketed kills series for a stored report, or
// the no-data notice when the designated game/category was absent.
func (h *APIHandlers) ChartData(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reportFromQuery(w, r)
	if !ok {
		return
	}

	if rec.Series == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": noDataMessage})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec.Series)
}

// ViewChart renders the Chart.js page for a stored report.
func (h *APIHandlers) ViewChart(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.reportFromQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if rec.Series == nil {
		fmt.Fprintf(w, "<h1>%s</h1>", noDataMessage)
		return
	}

	if err := h.sink.Render(w, rec.ReportID, *rec.Series); err != nil {
		logger.Error("Failed to render chart page", "error", err, "id", rec.ID)
	}
}

// ExportSheet flattens the visualized game's matches into rows and hands
// them to the spreadsheet collaborator.
func (h *APIHandlers) ExportSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.sheets == nil {
		http.Error(w, "Spreadsheet export is not configured.", http.StatusServiceUnavailable)
		return
	}

	rec, ok := h.reportFromQuery(w, r)
	if !ok {
		return
	}

	summary := designatedSummary(rec)
	if summary == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": noDataMessage})
		return
	}

	name := "Activision-Privacy-Data-Visualizer-" + rec.ReportID
	sheetID, err := h.sheets.CreateRecord(r.Context(), sheetRows(summary), name)
	if err != nil {
		logger.Error("Spreadsheet export failed", "error", err, "id", rec.ID)
		http.Error(w, "Failed to create spreadsheet or write data.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"spreadsheetId": sheetID})
}

// EventsSSE provides Server-Sent Events for pipeline progress updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

// reportFromQuery loads the report named by the id query parameter and
// writes the error response itself when it cannot.
func (h *APIHandlers) reportFromQuery(w http.ResponseWriter, r *http.Request) (*models.ReportRecord, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return nil, false
	}

	rec, err := h.dal.GetReport(id)
	if errors.Is(err, dal.ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}

// designatedSummary finds the transformed summary of the visualized game.
func designatedSummary(rec *models.ReportRecord) *models.GameSummary {
	for _, g := range rec.Games {
		if strings.Contains(strings.ToLower(g.Title), pipeline.ChartGameSubstring) && g.Summary != nil {
			return g.Summary
		}
	}
	return nil
}

// sheetRows flattens matches into spreadsheet cells, header row first.
func sheetRows(summary *models.GameSummary) [][]string {
	rows := [][]string{{
		"Timestamp", "Device Type", "Game Type", "Map", "Operator",
		"Kills", "Assists", "Headshots", "Deaths", "Score",
		"Highest Multikill", "Highest Streak", "Damage Dealt",
	}}
	for _, m := range summary.DetailedMatches {
		rows = append(rows, []string{
			m.Timestamp, m.DeviceType, m.GameType, m.Map, m.Operator,
			strconv.Itoa(m.Kills), strconv.Itoa(m.Assists), strconv.Itoa(m.Headshots),
			strconv.Itoa(m.Deaths), strconv.Itoa(m.Score),
			strconv.Itoa(m.HighestMultikill), strconv.Itoa(m.HighestStreak),
			strconv.Itoa(m.DamageDealt),
		})
	}
	return rows
}

func (h *APIHandlers) publishError(err error) {
	if h.pubsub == nil {
		return
	}
	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventReportError,
		Payload: map[string]interface{}{"error": err.Error()},
	})
}
