package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelens/storelens-engine/pkg/models"
)

func revenueByMonthRows() []map[string]any {
	return []map[string]any{
		{"month": "2026-01", "total_revenue": 12450.5},
		{"month": "2026-02", "total_revenue": float64(15320)},
	}
}

func TestCompile_BarChart(t *testing.T) {
	spec := &models.ChartSpec{
		Type:     models.ChartTypeBar,
		Title:    "Monthly Revenue",
		DataKey:  "total_revenue",
		LabelKey: "month",
	}

	artifact := Compile(spec, revenueByMonthRows())
	require.NotNil(t, artifact)
	require.NotNil(t, artifact.Chart)

	assert.Equal(t, models.ChartTypeBar, artifact.Type)
	assert.Equal(t, []string{"2026-01", "2026-02"}, artifact.Chart.Data.Labels)

	require.Len(t, artifact.Chart.Data.Datasets, 1)
	dataset := artifact.Chart.Data.Datasets[0]
	assert.Equal(t, []float64{12450.5, 15320}, dataset.Data)
	assert.Equal(t, "total_revenue", dataset.Label)
	assert.Len(t, dataset.BackgroundColor, 2)

	require.NotNil(t, artifact.Chart.Options)
	require.NotNil(t, artifact.Chart.Options.Plugins)
	require.NotNil(t, artifact.Chart.Options.Plugins.Title)
	assert.Equal(t, "Monthly Revenue", artifact.Chart.Options.Plugins.Title.Text)

	// Axis labels default to the spec keys when not given.
	require.Contains(t, artifact.Chart.Options.Scales, "x")
	require.Contains(t, artifact.Chart.Options.Scales, "y")
	assert.Equal(t, "month", artifact.Chart.Options.Scales["x"].Title.Text)
	assert.Equal(t, "total_revenue", artifact.Chart.Options.Scales["y"].Title.Text)
}

func TestCompile_CoercesStringValues(t *testing.T) {
	// Numeric columns often arrive as strings (e.g. formatted totals).
	rows := []map[string]any{
		{"month": "2026-01", "total_revenue": "12450.50"},
		{"month": "2026-02", "total_revenue": "15320.00"},
	}
	spec := &models.ChartSpec{
		Type:     models.ChartTypeBar,
		Title:    "Monthly Revenue",
		DataKey:  "total_revenue",
		LabelKey: "month",
	}

	artifact := Compile(spec, rows)
	require.NotNil(t, artifact)
	assert.Equal(t, []float64{12450.5, 15320}, artifact.Chart.Data.Datasets[0].Data)
}

func TestCompile_ExplicitAxisLabels(t *testing.T) {
	spec := &models.ChartSpec{
		Type:     models.ChartTypeLine,
		DataKey:  "total_revenue",
		LabelKey: "month",
		XLabel:   "Month",
		YLabel:   "Revenue (USD)",
	}

	artifact := Compile(spec, revenueByMonthRows())
	require.NotNil(t, artifact)
	assert.Equal(t, "Month", artifact.Chart.Options.Scales["x"].Title.Text)
	assert.Equal(t, "Revenue (USD)", artifact.Chart.Options.Scales["y"].Title.Text)

	// No title in the spec means no title block at all.
	assert.Nil(t, artifact.Chart.Options.Plugins.Title)
}

func TestCompile_PieChart(t *testing.T) {
	spec := &models.ChartSpec{
		Type:     models.ChartTypePie,
		Title:    "Orders by Status",
		DataKey:  "order_count",
		LabelKey: "status",
	}
	rows := []map[string]any{
		{"status": "completed", "order_count": int64(40)},
		{"status": "pending", "order_count": int64(7)},
		{"status": "refunded", "order_count": int64(3)},
	}

	artifact := Compile(spec, rows)
	require.NotNil(t, artifact)
	require.NotNil(t, artifact.Chart)

	assert.Equal(t, models.ChartTypePie, artifact.Type)
	assert.Equal(t, []float64{40, 7, 3}, artifact.Chart.Data.Datasets[0].Data)

	require.NotNil(t, artifact.Chart.Options.Plugins.Legend)
	assert.True(t, artifact.Chart.Options.Plugins.Legend.Display)
	assert.Equal(t, "right", artifact.Chart.Options.Plugins.Legend.Position)
	assert.Nil(t, artifact.Chart.Options.Scales)
}

func TestCompile_TableSpec(t *testing.T) {
	spec := &models.ChartSpec{
		Type:     models.ChartTypeTable,
		DataKey:  "total_revenue",
		LabelKey: "month",
	}

	artifact := Compile(spec, revenueByMonthRows())
	require.NotNil(t, artifact)
	assert.Equal(t, models.ChartTypeTable, artifact.Type)
	assert.Nil(t, artifact.Chart)
	require.NotNil(t, artifact.Table)
	assert.Equal(t, []string{"month", "total_revenue"}, artifact.Table.Headers)
}

func TestCompile_NilCases(t *testing.T) {
	rows := revenueByMonthRows()
	spec := &models.ChartSpec{
		Type:     models.ChartTypeBar,
		DataKey:  "total_revenue",
		LabelKey: "month",
	}

	assert.Nil(t, Compile(nil, rows), "nil spec")
	assert.Nil(t, Compile(spec, nil), "nil rows")
	assert.Nil(t, Compile(spec, []map[string]any{}), "empty rows")

	missingData := &models.ChartSpec{Type: models.ChartTypeBar, DataKey: "revenue", LabelKey: "month"}
	assert.Nil(t, Compile(missingData, rows), "data key absent from rows")

	missingLabel := &models.ChartSpec{Type: models.ChartTypeBar, DataKey: "total_revenue", LabelKey: "label"}
	assert.Nil(t, Compile(missingLabel, rows), "label key absent from rows")
}

func TestCompile_PaletteCycles(t *testing.T) {
	rows := make([]map[string]any, len(palette)+2)
	for i := range rows {
		rows[i] = map[string]any{"label": i, "value": float64(i)}
	}
	spec := &models.ChartSpec{Type: models.ChartTypeBar, DataKey: "value", LabelKey: "label"}

	artifact := Compile(spec, rows)
	require.NotNil(t, artifact)

	colors := artifact.Chart.Data.Datasets[0].BackgroundColor
	require.Len(t, colors, len(palette)+2)
	assert.Equal(t, colors[0], colors[len(palette)])
	assert.Equal(t, colors[1], colors[len(palette)+1])
}

func TestBuildTable(t *testing.T) {
	rows := []map[string]any{
		{"b_count": int64(2), "a_name": "widget", "c_price": 9.99},
		{"b_count": int64(5), "a_name": "gadget", "c_price": 19.99},
	}

	table := BuildTable(rows)
	require.NotNil(t, table)

	// Headers are sorted so ordering never depends on map iteration.
	assert.Equal(t, []string{"a_name", "b_count", "c_price"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{"widget", int64(2), 9.99}, table.Rows[0])
	assert.Equal(t, []any{"gadget", int64(5), 19.99}, table.Rows[1])
}

func TestBuildTable_Empty(t *testing.T) {
	table := BuildTable(nil)
	require.NotNil(t, table)
	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}
