package models

// ChartType is the closed set of visualizations the model may request.
type ChartType string

const (
	ChartTypeBar      ChartType = "bar"
	ChartTypeLine     ChartType = "line"
	ChartTypePie      ChartType = "pie"
	ChartTypeDoughnut ChartType = "doughnut"
	ChartTypeTable    ChartType = "table"
)

// Valid reports whether t is a recognized chart type.
func (t ChartType) Valid() bool {
	switch t {
	case ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeDoughnut, ChartTypeTable:
		return true
	}
	return false
}

// IsAxisChart reports whether t renders with x/y scales.
func (t ChartType) IsAxisChart() bool {
	return t == ChartTypeBar || t == ChartTypeLine
}

// ChartSpec is the model-authored description of how to visualize a result
// set. It is re-validated against the actual result columns before use.
type ChartSpec struct {
	Type     ChartType `json:"type"`
	Title    string    `json:"title"`
	DataKey  string    `json:"dataKey"`
	LabelKey string    `json:"labelKey"`
	XLabel   string    `json:"xLabel,omitempty"`
	YLabel   string    `json:"yLabel,omitempty"`
}

// ChartConfig is a renderable chart configuration. The shape mirrors a
// Chart.js configuration object so the UI can pass it straight through.
type ChartConfig struct {
	Type    ChartType     `json:"type"`
	Data    ChartData     `json:"data"`
	Options *ChartOptions `json:"options,omitempty"`
}

// ChartData holds labels and datasets for a chart.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartDataset is a single series of numeric values with styling.
type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     []string  `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
}

// ChartOptions carries the subset of rendering options the engine emits.
type ChartOptions struct {
	Responsive bool                  `json:"responsive"`
	Plugins    *ChartPlugins         `json:"plugins,omitempty"`
	Scales     map[string]ChartScale `json:"scales,omitempty"`
}

// ChartPlugins holds legend and title options.
type ChartPlugins struct {
	Legend *LegendOptions `json:"legend,omitempty"`
	Title  *TitleOptions  `json:"title,omitempty"`
}

// LegendOptions controls legend visibility and placement.
type LegendOptions struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

// TitleOptions controls the chart title.
type TitleOptions struct {
	Display bool   `json:"display"`
	Text    string `json:"text,omitempty"`
}

// ChartScale describes one axis.
type ChartScale struct {
	Title ScaleTitle `json:"title"`
}

// ScaleTitle is an axis label.
type ScaleTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// TableResult is the tabular artifact: headers in first-row key order and
// each row as an ordered array of raw values in header order.
type TableResult struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// ChartArtifact is either a chart configuration or a table result,
// discriminated by Type. It is derived per request and never persisted.
type ChartArtifact struct {
	Type  ChartType    `json:"type"`
	Chart *ChartConfig `json:"chart,omitempty"`
	Table *TableResult `json:"table,omitempty"`
}
