package report

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/iancoleman/strcase"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/survey-charts-go/internal/chart"
)

// imageReportAdapter draws each chart into an encoded image held in memory
// and writes one file per anchor.
type imageReportAdapter struct {
	*slots[[]byte]
	opts Options
	ext  string
	draw func(fig chart.Figure, opts Options) ([]byte, error)
}

// PNGReportAdapter writes each chart as a PNG image. Bar charts are drawn
// with gonum/plot, pie charts with go-chart.
type PNGReportAdapter struct {
	imageReportAdapter
}

// SVGReportAdapter writes each chart as an SVG image drawn with go-chart.
type SVGReportAdapter struct {
	imageReportAdapter
}

// NewPNGReportAdapter creates an empty PNG surface with anchors.
func NewPNGReportAdapter(anchors []string, opts Options) *PNGReportAdapter {
	return &PNGReportAdapter{imageReportAdapter{
		slots: newSlots[[]byte](anchors),
		opts:  opts.withDefaults(),
		ext:   FormatPNG,
		draw:  drawPNG,
	}}
}

// NewSVGReportAdapter creates an empty SVG surface with anchors.
func NewSVGReportAdapter(anchors []string, opts Options) *SVGReportAdapter {
	return &SVGReportAdapter{imageReportAdapter{
		slots: newSlots[[]byte](anchors),
		opts:  opts.withDefaults(),
		ext:   FormatSVG,
		draw:  drawSVG,
	}}
}

// Draw encodes fig and stores it at its anchor.
func (ira *imageReportAdapter) Draw(ctx context.Context, fig chart.Figure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ira.check(fig.Anchor); err != nil {
		return err
	}
	img, err := ira.draw(fig, ira.opts)
	if err != nil {
		return err
	}
	return ira.put(fig.Anchor, img)
}

// Image returns the encoded image drawn at anchor.
func (ira *imageReportAdapter) Image(anchor string) ([]byte, bool) {
	ira.mu.RLock()
	defer ira.mu.RUnlock()
	img, ok := ira.content[anchor]
	return img, ok
}

// FileName is the name of the file written for anchor.
func (ira *imageReportAdapter) FileName(anchor string) string {
	return strcase.ToKebab(anchor) + "." + ira.ext
}

// Write saves one image per drawn anchor into the directory outputDir.
func (ira *imageReportAdapter) Write(outputDir string) error {
	for _, s := range ira.ordered() {
		path := filepath.Join(outputDir, ira.FileName(s.anchor))
		if err := writeFile(path, s.value); err != nil {
			return fmt.Errorf("failed to write chart %q to %s: %w", s.anchor, path, err)
		}
	}
	return nil
}

func drawPNG(fig chart.Figure, opts Options) ([]byte, error) {
	switch fig.Kind {
	case chart.KindBar:
		return plotBar(fig, opts)
	case chart.KindPie:
		return goChartPie(fig, opts, gochart.PNG)
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", fig.Kind)
	}
}

func drawSVG(fig chart.Figure, opts Options) ([]byte, error) {
	switch fig.Kind {
	case chart.KindBar:
		return goChartBar(fig, opts, gochart.SVG)
	case chart.KindPie:
		return goChartPie(fig, opts, gochart.SVG)
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", fig.Kind)
	}
}

// pixels converts a pixel size at 96 DPI to plot units.
func pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / 96
}

func plotBar(fig chart.Figure, opts Options) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.Y.Label.Text = fig.YAxisLabel
	p.Y.Min = 0

	width := pixels(opts.Width) / vg.Length(2*len(fig.Values)+1)
	bars, err := plotter.NewBarChart(plotter.Values(fig.Values), width)
	if err != nil {
		return nil, fmt.Errorf("failed to create bar chart for %s: %w", fig.Title, err)
	}
	if bars.Color, err = fig.SeriesColor(0); err != nil {
		return nil, err
	}
	bars.LineStyle.Width = vg.Length(0)

	p.Add(plotter.NewGrid())
	p.Add(bars)
	p.NominalX(fig.Categories...)

	if fig.Legend.Show {
		p.Legend.Add("total", bars)
		switch fig.Legend.Position {
		case chart.LegendRight:
			p.Legend.Top = true
		case chart.LegendInset:
			p.Legend.Top = true
			p.Legend.Left = true
		}
	}

	writer, err := p.WriterTo(pixels(opts.Width), pixels(opts.Height), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func drawingColor(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func goChartPie(fig chart.Figure, opts Options, provider gochart.RendererProvider) ([]byte, error) {
	values := make([]gochart.Value, len(fig.Values))
	for i, v := range fig.Values {
		rgba, err := fig.SeriesColor(i)
		if err != nil {
			return nil, err
		}
		c := drawingColor(rgba)
		values[i] = gochart.Value{
			Value: v,
			Label: fig.Categories[i],
			Style: gochart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		}
	}

	pie := gochart.PieChart{
		Title:  fig.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("failed to render pie chart for %s: %w", fig.Title, err)
	}
	return buf.Bytes(), nil
}

func goChartBar(fig chart.Figure, opts Options, provider gochart.RendererProvider) ([]byte, error) {
	rgba, err := fig.SeriesColor(0)
	if err != nil {
		return nil, err
	}
	c := drawingColor(rgba)

	// The y axis starts at zero and spans at least one count.
	top := 1.0
	bars := make([]gochart.Value, len(fig.Values))
	for i, v := range fig.Values {
		top = max(top, v)
		bars[i] = gochart.Value{
			Value: v,
			Label: fig.Categories[i],
			Style: gochart.Style{FillColor: c, StrokeColor: c},
		}
	}

	barWidth := opts.Width / (2*len(bars) + 1)
	graph := gochart.BarChart{
		Title:  fig.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth: barWidth,
		Bars:     bars,
		XAxis:    gochart.Style{FontSize: 10},
		YAxis: gochart.YAxis{
			Name:  fig.YAxisLabel,
			Style: gochart.Style{FontSize: 10},
			Range: &gochart.ContinuousRange{Min: 0, Max: top},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("failed to render bar chart for %s: %w", fig.Title, err)
	}
	return buf.Bytes(), nil
}
