package chart

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// Sink renders a labeled time series into a visual artifact. The pipeline
// invokes it at most once per run.
type Sink interface {
	Render(w io.Writer, reportID string, series models.TimeSeries) error
}

// ChartJS renders the series as a standalone Chart.js line-chart page,
// the same dark, stepped kills-per-day chart the report viewer opens.
type ChartJS struct {
	tmpl *template.Template
}

// NewChartJS creates the Chart.js page renderer.
func NewChartJS() *ChartJS {
	return &ChartJS{
		tmpl: template.Must(template.New("chart").Parse(chartPage)),
	}
}

// Render writes the chart page for one report.
func (c *ChartJS) Render(w io.Writer, reportID string, series models.TimeSeries) error {
	labels, err := json.Marshal(series.Labels)
	if err != nil {
		return fmt.Errorf("failed to marshal chart labels: %w", err)
	}
	values, err := json.Marshal(series.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal chart values: %w", err)
	}

	data := struct {
		ReportID string
		Labels   template.JS
		Values   template.JS
	}{
		ReportID: reportID,
		Labels:   template.JS(labels),
		Values:   template.JS(values),
	}

	return c.tmpl.Execute(w, data)
}

const chartPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Report ID: {{.ReportID}}</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <style>
    body {
      font-family: 'Arial', sans-serif;
      background-color: #121212;
      color: #e0e0e0;
      padding: 20px;
    }
    .container {
      max-width: 800px;
      margin: 0 auto;
    }
    .chart-container {
      width: 100%;
      max-width: 600px;
      height: 400px;
      margin: 20px 0;
    }
  </style>
</head>
<body>
  <div class="container">
    <h1>Report ID: {{.ReportID}}</h1>
    <div class="chart-container">
      <canvas id="killsChart"></canvas>
    </div>
  </div>
  <script>
    const ctx = document.getElementById('killsChart').getContext('2d');
    new Chart(ctx, {
      type: 'line',
      data: {
        labels: {{.Labels}},
        datasets: [
          {
            label: 'Kills Per Day',
            data: {{.Values}},
            borderColor: 'rgba(75, 192, 192, 1)',
            backgroundColor: 'rgba(75, 192, 192, 0.2)',
            tension: 0,
            stepped: true,
            fill: true,
            pointRadius: 5,
            pointHoverRadius: 7,
          },
        ],
      },
      options: {
        responsive: true,
        scales: {
          x: { title: { display: true, text: 'Date' } },
          y: { title: { display: true, text: 'Kills' }, beginAtZero: true },
        },
        plugins: {
          legend: { display: true, labels: { color: '#e0e0e0' } },
        },
      },
    });
  </script>
</body>
</html>
`
