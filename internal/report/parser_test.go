package report

import (
	"testing"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

const sampleExport = `<!DOCTYPE html>
<html>
<body>
<p>Report ID: 1234567</p>
<h1>Activision SAR Report</h1>
<h1>Information We Collect</h1>
<h1>Call of Duty: Cold War</h1>
<h2>Multiplayer Match Data (reverse chronological)</h2>
<table>
  <tr><th>UTC Timestamp</th><th>Device Type</th></tr>
  <tr><td>2020-11-14 10:00:00</td><td>PS4</td></tr>
  <tr><td>2020-11-13 09:00:00</td><td>PS4</td></tr>
</table>
<h2>Zombies Match Data</h2>
<table>
  <tr><th>UTC Timestamp</th></tr>
  <tr><td>2020-11-12 20:00:00</td></tr>
</table>
<h1>Call of Duty: Modern Warfare</h1>
<h2>Multiplayer Match Data</h2>
<table>
  <tr><th>UTC Timestamp</th></tr>
</table>
<h1>Your Rights</h1>
</body>
</html>`

func TestParseSampleExport(t *testing.T) {
	parsed, err := Parse(sampleExport)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.ReportID != "1234567" {
		t.Errorf("expected report id 1234567, got %q", parsed.ReportID)
	}

	// Boilerplate h1 sections must not become games
	if len(parsed.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(parsed.Games))
	}

	cw := parsed.Games[0]
	if cw.Title != "Call of Duty: Cold War" {
		t.Errorf("expected first game Cold War, got %q", cw.Title)
	}
	if len(cw.Stats) != 2 {
		t.Fatalf("expected 2 stat categories, got %d", len(cw.Stats))
	}
	if cw.Stats[0].Category != "Multiplayer Match Data (reverse chronological)" {
		t.Errorf("unexpected category: %q", cw.Stats[0].Category)
	}

	// Header row comes through as row 0
	mp := cw.Stats[0].Data
	if len(mp) != 3 {
		t.Fatalf("expected 3 rows (header + 2 matches), got %d", len(mp))
	}
	if mp[0][0] != "UTC Timestamp" {
		t.Errorf("expected header row first, got %q", mp[0][0])
	}
	if mp[1][0] != "2020-11-14 10:00:00" || mp[1][1] != "PS4" {
		t.Errorf("unexpected first match row: %v", mp[1])
	}

	if parsed.Games[1].Title != "Call of Duty: Modern Warfare" {
		t.Errorf("expected second game Modern Warfare, got %q", parsed.Games[1].Title)
	}
}

func TestParseMissingReportID(t *testing.T) {
	parsed, err := Parse(`<p>Hello</p><h1>Some Game</h1>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.ReportID != models.UnknownReportID {
		t.Errorf("expected %q, got %q", models.UnknownReportID, parsed.ReportID)
	}
}

func TestParseReportIDOnlyFromFirstParagraph(t *testing.T) {
	markup := `<p>Preamble text</p><p>Report ID: 999</p>`
	parsed, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.ReportID != models.UnknownReportID {
		t.Errorf("report id from a later paragraph should be ignored, got %q", parsed.ReportID)
	}
}

func TestParseNonNumericReportID(t *testing.T) {
	parsed, err := Parse(`<p>Report ID: abc123</p>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.ReportID != models.UnknownReportID {
		t.Errorf("non-numeric report id should fall back, got %q", parsed.ReportID)
	}
}

func TestParseDropsOrphanTables(t *testing.T) {
	// Table before any game heading
	parsed, err := Parse(`<table><tr><td>orphan</td></tr></table><h1>Game</h1>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed.Games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(parsed.Games))
	}
	if len(parsed.Games[0].Stats) != 0 {
		t.Errorf("orphan table should be dropped, got %d categories", len(parsed.Games[0].Stats))
	}

	// Table after a game but before any category heading
	parsed, err = Parse(`<h1>Game</h1><table><tr><td>orphan</td></tr></table>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed.Games[0].Stats) != 0 {
		t.Errorf("table with no category should be dropped, got %d categories", len(parsed.Games[0].Stats))
	}
}

func TestParseDropsOrphanCategory(t *testing.T) {
	parsed, err := Parse(`<h2>Category with no game</h2><h1>Game</h1>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed.Games) != 1 || len(parsed.Games[0].Stats) != 0 {
		t.Errorf("category before any game should be dropped")
	}
}

func TestParseMultipleTablesPerCategory(t *testing.T) {
	markup := `<h1>Game</h1><h2>Stats</h2>
<table><tr><td>a</td></tr></table>
<table><tr><td>b</td></tr></table>`
	parsed, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	data := parsed.Games[0].Stats[0].Data
	if len(data) != 2 {
		t.Fatalf("expected rows of both tables appended, got %d", len(data))
	}
	if data[0][0] != "a" || data[1][0] != "b" {
		t.Errorf("rows out of order: %v", data)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	parsed, err := Parse("")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.ReportID != models.UnknownReportID {
		t.Errorf("expected unknown report id, got %q", parsed.ReportID)
	}
	if len(parsed.Games) != 0 {
		t.Errorf("expected no games, got %d", len(parsed.Games))
	}
}

func TestParseNestedCellMarkup(t *testing.T) {
	markup := `<h1>Game</h1><h2>Stats</h2>
<table><tr><td><span>  nested </span>text</td></tr></table>`
	parsed, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := parsed.Games[0].Stats[0].Data[0][0]
	if got != "nested text" {
		t.Errorf("expected trimmed concatenated cell text, got %q", got)
	}
}
