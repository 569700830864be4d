package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// MatchRowColumns is the fixed width of a Cold War match row.
const MatchRowColumns = 30

// ColumnCountError reports a match row that does not have the expected
// 30-column shape. The row is still processed (short rows are padded with
// empty cells, extra cells ignored) so no field is silently misaligned and
// every non-header row yields exactly one match record.
type ColumnCountError struct {
	Got int
}

func (e *ColumnCountError) Error() string {
	return fmt.Sprintf("match row has %d cells, want %d", e.Got, MatchRowColumns)
}

// matchRow names the 30 positional columns of a Cold War match row.
type matchRow struct {
	timestamp          string
	deviceType         string
	gameType           string
	mapName            string
	operator           string
	kills              string
	assists            string
	headshots          string
	hits               string
	shots              string
	multikills         string
	damageDealt        string
	deaths             string
	highestMultikill   string
	highestStreak      string
	rankStart          string
	rankEnd            string
	score              string
	suicides           string
	lifetimeDeaths     string
	lifetimeHits       string
	lifetimeKills      string
	lifetimeLosses     string
	lifetimeMisses     string
	lifetimeScore      string
	lifetimeTies       string
	lifetimeTimePlayed string
	lifetimeWins       string
	xpStart            string
	xpEnd              string
}

// parseMatchRow maps a raw row onto the named column layout. It returns a
// *ColumnCountError when the row is not exactly 30 cells wide; the returned
// matchRow is still valid, with missing trailing cells empty.
func parseMatchRow(row models.Row) (matchRow, error) {
	var err error
	if len(row) != MatchRowColumns {
		err = &ColumnCountError{Got: len(row)}
	}

	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	return matchRow{
		timestamp:          cell(0),
		deviceType:         cell(1),
		gameType:           cell(2),
		mapName:            cell(3),
		operator:           cell(4),
		kills:              cell(5),
		assists:            cell(6),
		headshots:          cell(7),
		hits:               cell(8),
		shots:              cell(9),
		multikills:         cell(10),
		damageDealt:        cell(11),
		deaths:             cell(12),
		highestMultikill:   cell(13),
		highestStreak:      cell(14),
		rankStart:          cell(15),
		rankEnd:            cell(16),
		score:              cell(17),
		suicides:           cell(18),
		lifetimeDeaths:     cell(19),
		lifetimeHits:       cell(20),
		lifetimeKills:      cell(21),
		lifetimeLosses:     cell(22),
		lifetimeMisses:     cell(23),
		lifetimeScore:      cell(24),
		lifetimeTies:       cell(25),
		lifetimeTimePlayed: cell(26),
		lifetimeWins:       cell(27),
		xpStart:            cell(28),
		xpEnd:              cell(29),
	}, err
}

// ColdWar aggregates Cold War match rows into totals, a lifetime snapshot
// and the detailed match list. Row 0 of every category is the header and is
// skipped; totals accumulate in category and row order.
func ColdWar(game models.Game) models.GameSummary {
	summary := models.GameSummary{
		DetailedMatches: []models.MatchRecord{},
	}

	for _, category := range game.Stats {
		for i, row := range category.Data {
			if i == 0 {
				continue
			}

			mr, err := parseMatchRow(row)
			if err != nil {
				logger.Warn("Unexpected match row shape",
					"game", game.Title, "category", category.Category, "row", i, "error", err)
			}

			summary.TotalKills += intField(mr.kills)
			summary.TotalDeaths += intField(mr.deaths)
			summary.TotalAssists += intField(mr.assists)
			summary.TotalHeadshots += intField(mr.headshots)
			summary.TotalMultikills += intField(mr.multikills)
			summary.TotalDamage += intField(mr.damageDealt)

			// Lifetime fields keep the previous value unless this row
			// reports a parseable non-zero value. The final snapshot is the
			// most recent non-zero value in processing order, which is not
			// necessarily the chronologically latest match.
			overwriteNonZero(&summary.LifetimeStats.Deaths, mr.lifetimeDeaths)
			overwriteNonZero(&summary.LifetimeStats.Hits, mr.lifetimeHits)
			overwriteNonZero(&summary.LifetimeStats.Kills, mr.lifetimeKills)
			overwriteNonZero(&summary.LifetimeStats.Losses, mr.lifetimeLosses)
			overwriteNonZero(&summary.LifetimeStats.Score, mr.lifetimeScore)
			overwriteNonZero(&summary.LifetimeStats.TimePlayed, mr.lifetimeTimePlayed)
			overwriteNonZero(&summary.LifetimeStats.Wins, mr.lifetimeWins)

			summary.DetailedMatches = append(summary.DetailedMatches, models.MatchRecord{
				Timestamp:        mr.timestamp,
				DeviceType:       mr.deviceType,
				GameType:         mr.gameType,
				Map:              mr.mapName,
				Operator:         mr.operator,
				Kills:            intField(mr.kills),
				Assists:          intField(mr.assists),
				Headshots:        intField(mr.headshots),
				Deaths:           intField(mr.deaths),
				Score:            intField(mr.score),
				HighestMultikill: intField(mr.highestMultikill),
				HighestStreak:    intField(mr.highestStreak),
				DamageDealt:      intField(mr.damageDealt),
			})
		}
	}

	return summary
}

// intField parses the leading integer of a cell, so values with trailing
// units still count. Unparseable or empty cells are 0.
func intField(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// overwriteNonZero replaces *dst only when raw parses to a non-zero value.
func overwriteNonZero(dst *int, raw string) {
	if v := intField(raw); v != 0 {
		*dst = v
	}
}
