package charts

import (
	"github.com/storelens/storelens-engine/pkg/models"
)

// ConvertMetadata supplies the key and axis information a conversion may
// need when it cannot be recovered from the existing artifact. Table
// artifacts carry no key names, and pie/doughnut configurations carry no
// scales, so the caller keeps this alongside the artifact.
type ConvertMetadata struct {
	DataKey  string
	LabelKey string
	Title    string
	XLabel   string
	YLabel   string
}

// Convert re-derives an artifact for a different chart type from the same
// rows and metadata, without re-querying.
func Convert(existing *models.ChartArtifact, rows []map[string]any, target models.ChartType, meta ConvertMetadata) *models.ChartArtifact {
	if existing == nil || !target.Valid() {
		return nil
	}

	// Identity on same type.
	if existing.Type == target {
		return existing
	}

	// Anything to table: rebuilt directly from rows, ignoring the shape of
	// the existing artifact.
	if target == models.ChartTypeTable {
		return &models.ChartArtifact{
			Type:  models.ChartTypeTable,
			Table: BuildTable(rows),
		}
	}

	// Table to chart: the table artifact does not retain key names, so the
	// chart is rebuilt from rows using the supplied metadata.
	if existing.Type == models.ChartTypeTable {
		return Compile(&models.ChartSpec{
			Type:     target,
			Title:    meta.Title,
			DataKey:  meta.DataKey,
			LabelKey: meta.LabelKey,
			XLabel:   meta.XLabel,
			YLabel:   meta.YLabel,
		}, rows)
	}

	// Chart to chart: reuse the already-extracted labels and data.
	if existing.Chart == nil || len(existing.Chart.Data.Datasets) == 0 {
		return nil
	}
	labels := existing.Chart.Data.Labels
	dataset := existing.Chart.Data.Datasets[0]

	title := meta.Title
	if title == "" {
		title = existingTitle(existing.Chart)
	}

	if target.IsAxisChart() {
		xLabel, yLabel := existingAxisLabels(existing.Chart)
		// Pie and doughnut configurations carry no scales, so axis labels
		// fall back to metadata.
		if xLabel == "" {
			xLabel = firstNonEmpty(meta.XLabel, meta.LabelKey)
		}
		if yLabel == "" {
			yLabel = firstNonEmpty(meta.YLabel, meta.DataKey)
		}
		return &models.ChartArtifact{
			Type:  target,
			Chart: buildAxisChart(target, title, labels, dataset.Data, dataset.Label, xLabel, yLabel),
		}
	}

	return &models.ChartArtifact{
		Type:  target,
		Chart: buildSegmentChart(target, title, labels, dataset.Data, dataset.Label),
	}
}

func existingTitle(cfg *models.ChartConfig) string {
	if cfg.Options != nil && cfg.Options.Plugins != nil && cfg.Options.Plugins.Title != nil {
		return cfg.Options.Plugins.Title.Text
	}
	return ""
}

func existingAxisLabels(cfg *models.ChartConfig) (string, string) {
	if cfg.Options == nil || cfg.Options.Scales == nil {
		return "", ""
	}
	return cfg.Options.Scales["x"].Title.Text, cfg.Options.Scales["y"].Title.Text
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
