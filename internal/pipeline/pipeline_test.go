package pipeline

import (
	"testing"
	"time"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pubsub"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/transform"
)

const coldWarExport = `<p>Report ID: 555</p>
<h1>Call of Duty: Cold War</h1>
<h2>Multiplayer Match Data (reverse chronological)</h2>
<table>
  <tr><th>UTC Timestamp</th><th>Device Type</th><th>Game Type</th><th>Map</th><th>Operator</th><th>Kills</th></tr>
  <tr><td>2020-11-14 10:00:00</td><td>PS4</td><td>TDM</td><td>Nuketown</td><td>Woods</td><td>12</td></tr>
  <tr><td>2020-11-13 09:00:00</td><td>PS4</td><td>Domination</td><td>Miami</td><td>Woods</td><td>8</td></tr>
</table>
<h1>Some Other Game</h1>
<h2>Stats</h2>
<table><tr><th>h</th></tr><tr><td>x</td></tr></table>`

func TestRunEndToEnd(t *testing.T) {
	runner := NewRunner(transform.NewRegistry(), nil)

	result, err := runner.Run(coldWarExport)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.ReportID != "555" {
		t.Errorf("expected report id 555, got %q", result.ReportID)
	}
	if len(result.Games) != 2 {
		t.Fatalf("expected 2 game results, got %d", len(result.Games))
	}

	cw := result.Games[0]
	if cw.Summary == nil {
		t.Fatal("Cold War should be transformed")
	}
	if cw.Raw != nil {
		t.Error("transformed game should not carry raw data")
	}
	if cw.Summary.TotalKills != 20 {
		t.Errorf("expected 20 total kills, got %d", cw.Summary.TotalKills)
	}

	other := result.Games[1]
	if other.Summary != nil {
		t.Error("unregistered game should not be transformed")
	}
	if other.Raw == nil {
		t.Fatal("unregistered game should pass through raw")
	}
	if other.Raw.Title != "Some Other Game" {
		t.Errorf("unexpected raw title: %q", other.Raw.Title)
	}

	if result.Series == nil {
		t.Fatal("expected chart series for Cold War multiplayer data")
	}
	wantLabels := []string{"2020-11-14", "2020-11-13"}
	for i, l := range wantLabels {
		if result.Series.Labels[i] != l {
			t.Errorf("label %d: expected %s, got %s", i, l, result.Series.Labels[i])
		}
	}
	if result.Series.Values[0] != 12 || result.Series.Values[1] != 8 {
		t.Errorf("unexpected series values: %v", result.Series.Values)
	}
}

func TestRunNoDesignatedGame(t *testing.T) {
	runner := NewRunner(transform.NewRegistry(), nil)

	result, err := runner.Run(`<h1>Some Other Game</h1><h2>Stats</h2><table><tr><th>h</th></tr></table>`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Series != nil {
		t.Error("expected nil series without the designated game")
	}
}

func TestRunDesignatedGameWrongCategory(t *testing.T) {
	runner := NewRunner(transform.NewRegistry(), nil)

	result, err := runner.Run(`<h1>Call of Duty: Cold War</h1><h2>Zombies Match Data</h2><table><tr><th>h</th></tr></table>`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Series != nil {
		t.Error("expected nil series without the designated category")
	}
}

func TestRunTransformerPanicIsolated(t *testing.T) {
	registry := transform.NewRegistry()
	registry.Register("Broken Game", func(g models.Game) models.GameSummary {
		panic("boom")
	})
	runner := NewRunner(registry, nil)

	markup := `<h1>Broken Game</h1><h2>Stats</h2><table><tr><th>h</th></tr><tr><td>x</td></tr></table>
<h1>Call of Duty: Cold War</h1><h2>Multiplayer Match Data (reverse chronological)</h2>
<table><tr><th>h</th></tr><tr><td>2020-11-13 09:00:00</td></tr></table>`

	result, err := runner.Run(markup)
	if err != nil {
		t.Fatalf("a panicking transformer must not abort the run: %v", err)
	}

	broken := result.Games[0]
	if broken.Summary != nil {
		t.Error("panicked game should have no summary")
	}
	if broken.Raw == nil {
		t.Error("panicked game should fall back to raw data")
	}
	if broken.Err == "" {
		t.Error("panicked game should record the failure")
	}

	// The other game still transforms normally
	if result.Games[1].Summary == nil {
		t.Error("remaining games should still be transformed")
	}
}

func TestRunPublishesProgress(t *testing.T) {
	ps := pubsub.New()
	ch := ps.Subscribe()
	defer ps.Unsubscribe(ch)

	runner := NewRunner(transform.NewRegistry(), ps)
	if _, err := runner.Run(coldWarExport); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	types := map[string]int{}
	deadline := time.After(time.Second)
	// received, parsed, 2x game, done
	for i := 0; i < 5; i++ {
		select {
		case ev := <-ch:
			types[ev.Type]++
		case <-deadline:
			t.Fatalf("timeout waiting for events, got %v", types)
		}
	}

	if types[pubsub.EventReportReceived] != 1 {
		t.Errorf("expected 1 received event, got %d", types[pubsub.EventReportReceived])
	}
	if types[pubsub.EventReportParsed] != 1 {
		t.Errorf("expected 1 parsed event, got %d", types[pubsub.EventReportParsed])
	}
	if types[pubsub.EventReportGame] != 2 {
		t.Errorf("expected 2 game events, got %d", types[pubsub.EventReportGame])
	}
	if types[pubsub.EventReportDone] != 1 {
		t.Errorf("expected 1 done event, got %d", types[pubsub.EventReportDone])
	}
}
