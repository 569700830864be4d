package pipeline

import (
	"fmt"
	"strings"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/aggregate"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/pubsub"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/report"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/transform"
)

const (
	// ChartGameSubstring selects the visualized game by case-insensitive
	// title match.
	ChartGameSubstring = "cold war"
	// ChartCategory is the stat category the visualization is built from.
	ChartCategory = "Multiplayer Match Data (reverse chronological)"
)

// Runner executes the parse -> transform -> aggregate pipeline for one
// uploaded report. Runs are independent; a Runner holds no per-run state.
type Runner struct {
	registry *transform.Registry
	events   *pubsub.PubSub
}

// RunResult is everything one upload produces.
type RunResult struct {
	ReportID string
	Games    []models.GameResult
	// Series is nil when the designated game or category is absent.
	Series *models.TimeSeries
}

// NewRunner creates a pipeline runner. events may be nil (no progress
// published), which tests use.
func NewRunner(registry *transform.Registry, events *pubsub.PubSub) *Runner {
	return &Runner{registry: registry, events: events}
}

// Run processes one report document end to end. Per-game transformer
// failures are isolated: the failing game falls back to its raw data and
// the remaining games still run.
func (r *Runner) Run(markup string) (*RunResult, error) {
	r.publish(pubsub.EventReportReceived, nil)

	parsed, err := report.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	r.publish(pubsub.EventReportParsed, map[string]interface{}{
		"reportId": parsed.ReportID,
		"games":    len(parsed.Games),
	})

	result := &RunResult{
		ReportID: parsed.ReportID,
		Games:    make([]models.GameResult, 0, len(parsed.Games)),
	}

	for i := range parsed.Games {
		game := parsed.Games[i]
		result.Games = append(result.Games, r.transformGame(game))
		r.publish(pubsub.EventReportGame, map[string]interface{}{
			"title": game.Title,
			"index": i,
		})
	}

	if series, ok := r.chartSeries(parsed); ok {
		result.Series = &series
	}

	r.publish(pubsub.EventReportDone, map[string]interface{}{
		"reportId": parsed.ReportID,
	})

	return result, nil
}

// transformGame dispatches one game through the registry, recovering from
// a panicking transformer so one malformed game cannot abort the run.
func (r *Runner) transformGame(game models.Game) (res models.GameResult) {
	res = models.GameResult{Title: game.Title}

	fn, ok := r.registry.Resolve(game.Title)
	if !ok {
		res.Raw = &game
		return res
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Transformer panicked, keeping raw game data",
				"title", game.Title, "panic", rec)
			res.Summary = nil
			res.Raw = &game
			res.Err = fmt.Sprintf("transform failed: %v", rec)
		}
	}()

	summary := fn(game)
	res.Summary = &summary
	return res
}

// chartSeries builds the day-bucketed kills series for the designated game
// and category, straight from the parsed rows so it works whether or not a
// transformer is registered for that game.
func (r *Runner) chartSeries(parsed *models.ParsedReport) (models.TimeSeries, bool) {
	for _, game := range parsed.Games {
		if !strings.Contains(strings.ToLower(game.Title), ChartGameSubstring) {
			continue
		}
		for _, cat := range game.Stats {
			if cat.Category != ChartCategory {
				continue
			}
			summary := transform.ColdWar(models.Game{
				Title: game.Title,
				Stats: []models.StatCategory{cat},
			})
			series, skipped := aggregate.BucketByDay(summary.DetailedMatches, aggregate.Kills)
			if skipped > 0 {
				logger.Warn("Skipped matches with unparseable timestamps",
					"title", game.Title, "skipped", skipped)
			}
			return series, true
		}
		logger.Info("Designated game found but category missing", "title", game.Title)
	}
	return models.TimeSeries{}, false
}

func (r *Runner) publish(eventType string, payload map[string]interface{}) {
	if r.events == nil {
		return
	}
	r.events.Publish(pubsub.Event{Type: eventType, Payload: payload})
}
