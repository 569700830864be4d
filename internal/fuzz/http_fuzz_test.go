package fuzz

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/chart"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/dal"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/handlers"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pipeline"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pubsub"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/transform"
)

func newFuzzHandlers() *handlers.APIHandlers {
	store := dal.NewMemoryDAL()
	ps := pubsub.New()
	runner := pipeline.NewRunner(transform.NewRegistry(), ps)
	return handlers.NewAPIHandlers(store, ps, runner, chart.NewChartJS(), nil, nil)
}

// FuzzHTTPUploadReport fuzzes the report upload endpoint
func FuzzHTTPUploadReport(f *testing.F) {
	// Seed corpus
	f.Add("report.html", `<p>Report ID: 1</p><h1>Call of Duty: Cold War</h1>`)
	f.Add("report.txt", `not html at all`)
	f.Add("", ``)
	f.Add("weird.HTML", `<h1><h2><table>`)

	f.Fuzz(func(t *testing.T, filename, content string) {
		api := newFuzzHandlers()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("report", filename)
		if err != nil {
			t.Skip()
		}
		part.Write([]byte(content))
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/reports/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()

		// Should not panic - that's the main goal of fuzzing
		api.UploadReport(w, req)
	})
}

// FuzzHTTPGetReport fuzzes the report lookup endpoint with arbitrary ids
func FuzzHTTPGetReport(f *testing.F) {
	// Seed corpus
	f.Add("report-abc123")
	f.Add("")
	f.Add("' OR 1=1 --")

	f.Fuzz(func(t *testing.T, id string) {
		api := newFuzzHandlers()

		req := httptest.NewRequest(http.MethodGet, "/api/reports/get", nil)
		q := req.URL.Query()
		q.Set("id", id)
		req.URL.RawQuery = q.Encode()
		w := httptest.NewRecorder()

		api.GetReport(w, req)
	})
}
