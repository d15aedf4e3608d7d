package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/survey-charts-go/internal/chart"
	"github.com/user/survey-charts-go/internal/models"
)

func getTestBlocks() []models.DataBlock {
	return []models.DataBlock{
		{Name: "benefits", Rows: chart.BenefitsRows()},
		{Name: "leave", Rows: []models.Row{
			{X: "Very easy", Total: 281},
			{X: "Somewhat easy", Total: 220},
			{X: "Somewhat difficult", Total: 199},
		}},
		{Name: "productivity", Rows: []models.Row{{X: "Yes", Total: 204}, {X: "No", Total: 30}}},
		{Name: "disorders", Rows: []models.Row{{X: "Yes", Total: 575}, {X: "No", Total: 531}}},
		{Name: "response", Rows: []models.Row{{X: "Yes", Total: 307}, {X: "No", Total: 839}}},
	}
}

func renderDefaults(t *testing.T, adapter ReportAdapter, ds []chart.ChartDescriptor) {
	t.Helper()
	rendered, err := chart.NewRenderer(adapter, getTestBlocks()).RenderAll(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, rendered, len(ds))
}

func TestNewAdapter(t *testing.T) {
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			adapter, err := NewAdapter(strings.ToUpper(format), chart.DefaultAnchors, Options{})
			require.NoError(t, err)
			assert.Equal(t, chart.DefaultAnchors, adapter.Anchors())
			assert.Empty(t, adapter.Drawn())
			assert.True(t, adapter.HasAnchor(chart.AnchorLeave))
			assert.False(t, adapter.HasAnchor("nowhere"))
		})
	}

	_, err := NewAdapter("pdf", chart.DefaultAnchors, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid report format 'pdf'")

	_, err = NewAdapter(FormatHTML, nil, Options{})
	require.Error(t, err)
}

func TestAdapters_RejectUnknownAnchor(t *testing.T) {
	fig := chart.Figure{
		Anchor:     "nowhere",
		Title:      "Lost",
		Kind:       chart.KindBar,
		Categories: []string{"a"},
		Values:     []float64{1},
		Colors:     []string{"#000000"},
		Palette:    chart.Defaults()[1].Palette(),
		XAxisType:  chart.AxisCategory,
	}

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			adapter, err := NewAdapter(format, chart.DefaultAnchors, Options{})
			require.NoError(t, err)

			err = adapter.Draw(context.Background(), fig)
			require.ErrorIs(t, err, chart.ErrMissingAnchor)
			assert.Empty(t, adapter.Drawn())
		})
	}
}

func TestAdapters_MissingAnchorCheckedBeforeDrawing(t *testing.T) {
	// An empty palette cannot be drawn, so only an early anchor check
	// reports the missing anchor.
	fig := chart.Figure{
		Anchor:     "nowhere",
		Title:      "Lost",
		Kind:       chart.KindBar,
		Categories: []string{"a"},
		Values:     []float64{1},
		XAxisType:  chart.AxisCategory,
	}

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			adapter, err := NewAdapter(format, chart.DefaultAnchors, Options{})
			require.NoError(t, err)
			require.ErrorIs(t, adapter.Draw(context.Background(), fig), chart.ErrMissingAnchor)
		})
	}
}

func TestImageReportAdapters_BarValues(t *testing.T) {
	tests := []struct {
		name string
		rows []models.Row
	}{
		{"single row", []models.Row{{X: "Yes", Total: 204}}},
		{"equal values", []models.Row{{X: "Yes", Total: 10}, {X: "No", Total: 10}}},
		{"all zero", []models.Row{{X: "Yes", Total: 0}, {X: "No", Total: 0}}},
	}

	for _, format := range []string{FormatSVG, FormatPNG} {
		for _, tc := range tests {
			t.Run(format+"/"+tc.name, func(t *testing.T) {
				adapter, err := NewAdapter(format, chart.DefaultAnchors, Options{})
				require.NoError(t, err)

				d := chart.Defaults()[1]
				d.Data = chart.Literal(tc.rows...)

				_, err = chart.NewRenderer(adapter, nil).Render(context.Background(), d)
				require.NoError(t, err)
				assert.Equal(t, []string{chart.AnchorLeave}, adapter.Drawn())
			})
		}
	}
}

func TestJSONReportAdapter(t *testing.T) {
	adapter := NewJSONReportAdapter(chart.DefaultAnchors)
	renderDefaults(t, adapter, chart.Defaults())
	assert.Equal(t, chart.DefaultAnchors, adapter.Drawn())

	outputFile := filepath.Join(t.TempDir(), "nested", "report.json")
	require.NoError(t, adapter.Write(outputFile))

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var doc jsonDocument
	require.NoError(t, json.Unmarshal(content, &doc))
	require.Len(t, doc.Charts, 5)

	benefits := doc.Charts[0]
	assert.Equal(t, chart.AnchorBenefits, benefits.Anchor)
	assert.Equal(t, chart.KindPie, benefits.Kind)
	assert.True(t, benefits.Legend.Show)

	var total float64
	for _, r := range benefits.Data {
		total += r.Total
	}
	assert.InDelta(t, 1146, total, 1e-9)

	assert.Equal(t, chart.KindBar, doc.Charts[1].Kind)
	assert.Equal(t, []string{"rgb(105, 0, 100)"}, doc.Charts[1].Colors)
	assert.Equal(t, "Count", doc.Charts[1].Axis.YLabel)
}

func TestJSONReportAdapter_OrderIndependent(t *testing.T) {
	ds := chart.Defaults()
	reversed := chart.Defaults()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	a := NewJSONReportAdapter(chart.DefaultAnchors)
	renderDefaults(t, a, ds)
	b := NewJSONReportAdapter(chart.DefaultAnchors)
	renderDefaults(t, b, reversed)

	bytesA, err := a.Bytes()
	require.NoError(t, err)
	bytesB, err := b.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(bytesA), string(bytesB))
}

func TestJSONReportAdapter_RedrawReplaces(t *testing.T) {
	adapter := NewJSONReportAdapter(chart.DefaultAnchors)
	r := chart.NewRenderer(adapter, getTestBlocks())

	d := chart.Defaults()[1]
	_, err := r.Render(context.Background(), d)
	require.NoError(t, err)

	d.Title = "Leave, again"
	_, err = r.Render(context.Background(), d)
	require.NoError(t, err)

	data, err := adapter.Bytes()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), `"bindto": "leave"`))
	assert.Contains(t, string(data), "Leave, again")
}

func TestHTMLReportAdapter(t *testing.T) {
	adapter := NewHTMLReportAdapter(chart.DefaultAnchors, Options{PageTitle: "Survey"})
	renderDefaults(t, adapter, chart.Defaults())

	outputFile := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, adapter.Write(outputFile))

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	html := string(content)

	for _, anchor := range chart.DefaultAnchors {
		assert.Contains(t, html, `id="`+anchor+`"`)
	}
	assert.Contains(t, html, "Company Insurance Covers Mental Health Benefits")
	assert.Contains(t, html, "Currently Have a Disorder")
	assert.Contains(t, html, "<title>Survey</title>")
}

func TestHTMLReportAdapter_OnlyDrawnAnchors(t *testing.T) {
	adapter := NewHTMLReportAdapter(chart.DefaultAnchors, Options{})
	renderDefaults(t, adapter, chart.Defaults()[:1])

	data, err := adapter.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), `id="benefits"`)
	assert.NotContains(t, string(data), `id="leave"`)
}

func TestPNGReportAdapter(t *testing.T) {
	adapter := NewPNGReportAdapter(chart.DefaultAnchors, Options{Width: 640, Height: 320})
	renderDefaults(t, adapter, chart.Defaults())

	pngMagic := []byte("\x89PNG\r\n\x1a\n")
	for _, anchor := range chart.DefaultAnchors {
		img, ok := adapter.Image(anchor)
		require.True(t, ok, anchor)
		assert.Equal(t, pngMagic, img[:len(pngMagic)], anchor)
	}

	outputDir := filepath.Join(t.TempDir(), "charts")
	require.NoError(t, adapter.Write(outputDir))

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.FileExists(t, filepath.Join(outputDir, "benefits.png"))
	assert.FileExists(t, filepath.Join(outputDir, "productivity.png"))
}

func TestSVGReportAdapter(t *testing.T) {
	adapter := NewSVGReportAdapter(chart.DefaultAnchors, Options{})
	renderDefaults(t, adapter, chart.Defaults())

	for _, anchor := range chart.DefaultAnchors {
		img, ok := adapter.Image(anchor)
		require.True(t, ok, anchor)
		assert.Contains(t, string(img), "<svg", anchor)
	}

	outputDir := t.TempDir()
	require.NoError(t, adapter.Write(outputDir))
	assert.FileExists(t, filepath.Join(outputDir, "response.svg"))
	assert.Equal(t, "disorders.svg", adapter.FileName(chart.AnchorDisorders))
}

func TestImageReportAdapter_WriteSkipsUndrawn(t *testing.T) {
	adapter := NewSVGReportAdapter(chart.DefaultAnchors, Options{})
	renderDefaults(t, adapter, chart.Defaults()[1:2])

	outputDir := t.TempDir()
	require.NoError(t, adapter.Write(outputDir))

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "leave.svg", entries[0].Name())
}
