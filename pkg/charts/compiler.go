// Package charts compiles chart specs and result rows into renderable
// artifacts. Everything here is pure: no I/O, deterministic output for the
// same inputs.
package charts

import (
	"sort"

	"github.com/storelens/storelens-engine/pkg/models"
)

// palette is the fixed fill/border color cycle, twelve visually distinct
// colors assigned by index mod length.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#ff9da7",
	"#9c755f", "#bab0ac", "#86bcb6", "#d37295",
}

// Compile maps a chart spec and result rows to a renderable artifact.
// It returns nil when spec is nil, rows is empty, or the spec's keys are
// not present on the first row. Rows are assumed column-homogeneous, so
// only the first row is checked.
func Compile(spec *models.ChartSpec, rows []map[string]any) *models.ChartArtifact {
	if spec == nil || len(rows) == 0 {
		return nil
	}

	if _, ok := rows[0][spec.DataKey]; !ok {
		return nil
	}
	if _, ok := rows[0][spec.LabelKey]; !ok {
		return nil
	}

	if spec.Type == models.ChartTypeTable {
		return &models.ChartArtifact{
			Type:  models.ChartTypeTable,
			Table: BuildTable(rows),
		}
	}

	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = ToLabel(row[spec.LabelKey])
		data[i] = ToNumber(row[spec.DataKey])
	}

	if spec.Type.IsAxisChart() {
		xLabel := spec.XLabel
		if xLabel == "" {
			xLabel = spec.LabelKey
		}
		yLabel := spec.YLabel
		if yLabel == "" {
			yLabel = spec.DataKey
		}
		return &models.ChartArtifact{
			Type:  spec.Type,
			Chart: buildAxisChart(spec.Type, spec.Title, labels, data, spec.DataKey, xLabel, yLabel),
		}
	}

	return &models.ChartArtifact{
		Type:  spec.Type,
		Chart: buildSegmentChart(spec.Type, spec.Title, labels, data, spec.DataKey),
	}
}

// BuildTable shapes rows into a table artifact: headers are the first
// row's keys in sorted order, and each row becomes an ordered array of
// that row's raw values in header order.
func BuildTable(rows []map[string]any) *models.TableResult {
	if len(rows) == 0 {
		return &models.TableResult{Headers: []string{}, Rows: [][]any{}}
	}

	headers := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	tableRows := make([][]any, len(rows))
	for i, row := range rows {
		ordered := make([]any, len(headers))
		for j, header := range headers {
			ordered[j] = row[header]
		}
		tableRows[i] = ordered
	}

	return &models.TableResult{Headers: headers, Rows: tableRows}
}

// buildAxisChart builds a bar or line configuration with titled scales.
func buildAxisChart(chartType models.ChartType, title string, labels []string, data []float64, seriesLabel, xLabel, yLabel string) *models.ChartConfig {
	return &models.ChartConfig{
		Type: chartType,
		Data: models.ChartData{
			Labels: labels,
			Datasets: []models.ChartDataset{{
				Label:           seriesLabel,
				Data:            data,
				BackgroundColor: cycleColors(len(data)),
				BorderColor:     []string{palette[0]},
				BorderWidth:     1,
			}},
		},
		Options: &models.ChartOptions{
			Responsive: true,
			Plugins: &models.ChartPlugins{
				Legend: &models.LegendOptions{Display: false},
				Title:  titleOptions(title),
			},
			Scales: map[string]models.ChartScale{
				"x": {Title: models.ScaleTitle{Display: true, Text: xLabel}},
				"y": {Title: models.ScaleTitle{Display: true, Text: yLabel}},
			},
		},
	}
}

// buildSegmentChart builds a pie or doughnut configuration: one dataset,
// side legend, no axis scales.
func buildSegmentChart(chartType models.ChartType, title string, labels []string, data []float64, seriesLabel string) *models.ChartConfig {
	colors := cycleColors(len(data))
	return &models.ChartConfig{
		Type: chartType,
		Data: models.ChartData{
			Labels: labels,
			Datasets: []models.ChartDataset{{
				Label:           seriesLabel,
				Data:            data,
				BackgroundColor: colors,
				BorderColor:     colors,
				BorderWidth:     1,
			}},
		},
		Options: &models.ChartOptions{
			Responsive: true,
			Plugins: &models.ChartPlugins{
				Legend: &models.LegendOptions{Display: true, Position: "right"},
				Title:  titleOptions(title),
			},
		},
	}
}

func titleOptions(title string) *models.TitleOptions {
	if title == "" {
		return nil
	}
	return &models.TitleOptions{Display: true, Text: title}
}

func cycleColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}
