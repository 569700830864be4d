package report

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// ignoredTitles are the boilerplate h1 sections of every SAR export.
// Anything else at heading level 1 starts a game section.
var ignoredTitles = map[string]bool{
	"Activision SAR Report":                true,
	"How We Use Your Personal Information": true,
	"Information We Collect":               true,
	"Who We Send Your Data To":             true,
	"Who Your Data Comes From":             true,
	"How Long We Keep Your Data":           true,
	"Your Rights":                          true,
}

var reportIDPattern = regexp.MustCompile(`Report ID:\s*(\d+)`)

// Parse turns a SAR export document into a typed ParsedReport.
//
// It scans h1, h2 and table nodes in document order. An h1 whose trimmed
// text is not boilerplate starts a new game; an h2 starts a stat category
// on the current game; a table appends its rows (header row included) to
// the last category of the current game. Tables and categories with no
// home are dropped, never an error.
func Parse(markup string) (*models.ParsedReport, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report markup: %w", err)
	}

	parsed := &models.ParsedReport{
		ReportID: models.UnknownReportID,
		Games:    []models.Game{},
	}

	var currentGame *models.Game
	sawReportID := false

	walk(doc, func(n *html.Node) {
		switch n.Data {
		case "p":
			// The report id lives in the first paragraph of the export.
			if sawReportID {
				return
			}
			sawReportID = true
			if m := reportIDPattern.FindStringSubmatch(nodeText(n)); m != nil {
				parsed.ReportID = m[1]
			}
		case "h1":
			title := strings.TrimSpace(nodeText(n))
			if ignoredTitles[title] {
				return
			}
			parsed.Games = append(parsed.Games, models.Game{
				Title: title,
				Stats: []models.StatCategory{},
			})
			currentGame = &parsed.Games[len(parsed.Games)-1]
		case "h2":
			if currentGame == nil {
				logger.Debug("Dropping stat category heading with no current game", "category", strings.TrimSpace(nodeText(n)))
				return
			}
			currentGame.Stats = append(currentGame.Stats, models.StatCategory{
				Category: strings.TrimSpace(nodeText(n)),
				Data:     []models.Row{},
			})
		case "table":
			if currentGame == nil || len(currentGame.Stats) == 0 {
				logger.Debug("Dropping table with no current stat category")
				return
			}
			last := &currentGame.Stats[len(currentGame.Stats)-1]
			last.Data = append(last.Data, tableRows(n)...)
		}
	})

	return parsed, nil
}

// walk visits element nodes depth-first, which matches document order for
// the flat heading/table structure of SAR exports. Children of h1/h2/table
// and p are not descended into; their text is consumed by the visitor.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "h1", "h2", "table":
			visit(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// tableRows extracts every tr of a table as a Row of trimmed cell text,
// accepting both th and td cells so the header row comes through as row 0.
func tableRows(table *html.Node) []models.Row {
	var rows []models.Row
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			row := models.Row{}
			var cells func(n *html.Node)
			cells = func(n *html.Node) {
				if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
					row = append(row, strings.TrimSpace(nodeText(n)))
					return
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					cells(c)
				}
			}
			cells(n)
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
	return rows
}

// nodeText concatenates all descendant text of a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}
