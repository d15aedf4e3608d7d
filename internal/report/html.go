package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/user/survey-charts-go/internal/chart"
)

// HTMLReportAdapter is an interactive HTML page. Each chart is bound to the
// element whose id is its anchor.
type HTMLReportAdapter struct {
	*slots[components.Charter]
	opts Options
}

// NewHTMLReportAdapter creates an empty page with anchors.
func NewHTMLReportAdapter(anchors []string, opts Options) *HTMLReportAdapter {
	return &HTMLReportAdapter{
		slots: newSlots[components.Charter](anchors),
		opts:  opts.withDefaults(),
	}
}

// Draw builds the chart for fig and binds it to fig.Anchor.
func (hra *HTMLReportAdapter) Draw(ctx context.Context, fig chart.Figure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := hra.check(fig.Anchor); err != nil {
		return err
	}

	var c components.Charter
	switch fig.Kind {
	case chart.KindPie:
		c = hra.pie(fig)
	case chart.KindBar:
		c = hra.bar(fig)
	default:
		return fmt.Errorf("unsupported chart kind %q", fig.Kind)
	}
	return hra.put(fig.Anchor, c)
}

func (hra *HTMLReportAdapter) globalOpts(fig chart.Figure) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: hra.opts.PageTitle,
			ChartID:   fig.Anchor,
			Width:     fmt.Sprintf("%dpx", hra.opts.Width),
			Height:    fmt.Sprintf("%dpx", hra.opts.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithLegendOpts(echartsLegend(fig.Legend)),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithColorsOpts(opts.Colors(fig.Colors)),
	}
}

func (hra *HTMLReportAdapter) pie(fig chart.Figure) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(hra.globalOpts(fig)...)

	items := make([]opts.PieData, len(fig.Categories))
	for i, name := range fig.Categories {
		items[i] = opts.PieData{Name: name, Value: fig.Values[i]}
	}

	pie.AddSeries(fig.Title, items,
		charts.WithLabelOpts(opts.Label{Show: true, Formatter: "{d}%"}),
	)
	return pie
}

func (hra *HTMLReportAdapter) bar(fig chart.Figure) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(hra.globalOpts(fig),
		charts.WithXAxisOpts(opts.XAxis{Type: string(fig.XAxisType)}),
		charts.WithYAxisOpts(opts.YAxis{Name: fig.YAxisLabel}),
	)...)

	items := make([]opts.BarData, len(fig.Values))
	for i, v := range fig.Values {
		items[i] = opts.BarData{Value: v}
	}

	bar.SetXAxis(fig.Categories).AddSeries("total", items)
	return bar
}

func echartsLegend(l chart.Legend) opts.Legend {
	legend := opts.Legend{Show: l.Show}
	switch l.Position {
	case chart.LegendRight:
		legend.Orient = "vertical"
		legend.Right = "0"
		legend.Top = "middle"
	case chart.LegendBottom:
		legend.Bottom = "0"
	case chart.LegendInset:
		legend.Orient = "vertical"
		legend.Left = "60"
		legend.Top = "40"
	}
	return legend
}

// Bytes renders the page with every drawn chart in document order.
func (hra *HTMLReportAdapter) Bytes() ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = hra.opts.PageTitle
	page.SetLayout(components.PageFlexLayout)

	for _, s := range hra.ordered() {
		page.AddCharts(s.value)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render HTML page: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves the page to outputFilePath.
func (hra *HTMLReportAdapter) Write(outputFilePath string) error {
	data, err := hra.Bytes()
	if err != nil {
		return err
	}
	return writeFile(outputFilePath, data)
}
