package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// timestampLayouts are the formats SAR exports have been seen to use.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Metric picks the value to sum for one match.
type Metric func(models.MatchRecord) int

// Kills is the metric charted by the reference visualization.
func Kills(m models.MatchRecord) int { return m.Kills }

// ParseTimestamp parses a match timestamp against the known layouts.
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", ts)
}

// BucketByDay groups matches by UTC calendar date and sums metric per day.
// Labels keep first-seen order, which is match iteration order, not
// chronological order. Matches whose timestamp cannot be parsed are
// skipped; the second return reports how many were.
func BucketByDay(matches []models.MatchRecord, metric Metric) (models.TimeSeries, int) {
	series := models.TimeSeries{
		Labels: []string{},
		Values: []int{},
	}
	index := make(map[string]int)
	skipped := 0

	for _, m := range matches {
		t, err := ParseTimestamp(m.Timestamp)
		if err != nil {
			skipped++
			continue
		}
		day := t.UTC().Format("2006-01-02")

		i, ok := index[day]
		if !ok {
			i = len(series.Labels)
			index[day] = i
			series.Labels = append(series.Labels, day)
			series.Values = append(series.Values, 0)
		}
		series.Values[i] += metric(m)
	}

	return series, skipped
}
