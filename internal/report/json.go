package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/survey-charts-go/internal/chart"
)

// JSONReportAdapter records the resolved configuration of every drawn chart
// and writes them as a single JSON document.
type JSONReportAdapter struct {
	*slots[jsonChart]
}

type jsonChart struct {
	Anchor string     `json:"bindto"`
	Title  string     `json:"title"`
	Kind   chart.Kind `json:"type"`
	Data   []jsonRow  `json:"data"`
	Colors []string   `json:"colors"`
	Legend jsonLegend `json:"legend"`
	Axis   jsonAxis   `json:"axis"`
}

type jsonRow struct {
	X     string  `json:"x"`
	Total float64 `json:"total"`
}

type jsonLegend struct {
	Position chart.LegendPosition `json:"position"`
	Show     bool                 `json:"show"`
}

type jsonAxis struct {
	YLabel string         `json:"y_label"`
	XType  chart.AxisType `json:"x_type"`
}

type jsonDocument struct {
	Anchors []string    `json:"anchors"`
	Charts  []jsonChart `json:"charts"`
}

// NewJSONReportAdapter creates an empty JSON surface with anchors.
func NewJSONReportAdapter(anchors []string) *JSONReportAdapter {
	return &JSONReportAdapter{slots: newSlots[jsonChart](anchors)}
}

// Draw records fig at its anchor.
func (jra *JSONReportAdapter) Draw(ctx context.Context, fig chart.Figure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := jra.check(fig.Anchor); err != nil {
		return err
	}

	rows := make([]jsonRow, len(fig.Categories))
	for i := range fig.Categories {
		rows[i] = jsonRow{X: fig.Categories[i], Total: fig.Values[i]}
	}

	return jra.put(fig.Anchor, jsonChart{
		Anchor: fig.Anchor,
		Title:  fig.Title,
		Kind:   fig.Kind,
		Data:   rows,
		Colors: fig.Colors,
		Legend: jsonLegend{Position: fig.Legend.Position, Show: fig.Legend.Show},
		Axis:   jsonAxis{YLabel: fig.YAxisLabel, XType: fig.XAxisType},
	})
}

// Bytes returns the indented JSON document.
func (jra *JSONReportAdapter) Bytes() ([]byte, error) {
	doc := jsonDocument{Anchors: jra.Anchors(), Charts: []jsonChart{}}
	for _, s := range jra.ordered() {
		doc.Charts = append(doc.Charts, s.value)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charts to JSON: %w", err)
	}
	return data, nil
}

// Write saves the JSON document to outputFilePath.
func (jra *JSONReportAdapter) Write(outputFilePath string) error {
	data, err := jra.Bytes()
	if err != nil {
		return err
	}
	return writeFile(outputFilePath, data)
}
