// Package chart turns chart descriptors into charts drawn on a display surface.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/user/survey-charts-go/internal/models"
)

// maxConcurrentRenders bounds the goroutines used by RenderAll.
const maxConcurrentRenders = 4

// Surface is a document with named anchors that charts are drawn into.
// Implementations must be safe for concurrent use.
type Surface interface {
	// HasAnchor reports whether anchor exists on the surface.
	HasAnchor(anchor string) bool
	// Draw inserts fig at fig.Anchor, replacing any previous content there.
	Draw(ctx context.Context, fig Figure) error
}

// Figure is a descriptor resolved against its data, ready to be drawn.
type Figure struct {
	Anchor     string
	Title      string
	Kind       Kind
	Categories []string
	Values     []float64
	// Colors holds the CSS colors as written in the descriptor.
	Colors     []string
	Palette    []color.RGBA
	Legend     Legend
	YAxisLabel string
	XAxisType  AxisType
}

// SeriesColor returns the palette entry for series i. Palette colors are
// never reused across series.
func (f Figure) SeriesColor(i int) (color.RGBA, error) {
	if i < 0 || i >= len(f.Palette) {
		return color.RGBA{}, fmt.Errorf("%w: no color for series %d of %d", ErrPaletteTooShort, i, len(f.Palette))
	}
	return f.Palette[i], nil
}

// RenderedChart is the handle returned for a chart drawn into an anchor.
type RenderedChart struct {
	Anchor     string    `json:"anchor"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title"`
	Categories []string  `json:"categories"`
	Values     []float64 `json:"values"`
	Total      float64   `json:"total"`
}

// Renderer draws descriptors onto a surface using the loaded data blocks.
type Renderer struct {
	surface Surface
	blocks  []models.DataBlock
}

// NewRenderer creates a Renderer. blocks are read but never modified.
func NewRenderer(surface Surface, blocks []models.DataBlock) *Renderer {
	return &Renderer{surface: surface, blocks: blocks}
}

// Prepare resolves d into a Figure without touching the surface.
func (r *Renderer) Prepare(d ChartDescriptor) (Figure, error) {
	if err := d.Validate(); err != nil {
		return Figure{}, renderErr(d.BindTo, err)
	}
	if !r.surface.HasAnchor(d.BindTo) {
		return Figure{}, renderErr(d.BindTo, ErrMissingAnchor)
	}

	rows, err := d.Data.Resolve(r.blocks)
	if err != nil {
		return Figure{}, renderErr(d.BindTo, err)
	}
	if len(rows) == 0 {
		return Figure{}, renderErr(d.BindTo, fmt.Errorf("%w: %s", ErrEmptyDataset, d.Data))
	}

	series := d.SeriesCount(rows)
	if len(d.Colors) < series {
		return Figure{}, renderErr(d.BindTo,
			fmt.Errorf("%w: %d colors for %d series", ErrPaletteTooShort, len(d.Colors), series))
	}

	return Figure{
		Anchor:     d.BindTo,
		Title:      d.Title,
		Kind:       d.Kind,
		Categories: models.Categories(rows),
		Values:     models.Values(rows),
		Colors:     append([]string(nil), d.Colors...),
		Palette:    d.Palette(),
		Legend:     d.Legend,
		YAxisLabel: d.YAxisLabel,
		XAxisType:  d.XAxisType,
	}, nil
}

// Render draws d into its bind target. Every check runs before the surface
// is touched, so a failed render leaves the surface unchanged.
func (r *Renderer) Render(ctx context.Context, d ChartDescriptor) (RenderedChart, error) {
	if err := ctx.Err(); err != nil {
		return RenderedChart{}, renderErr(d.BindTo, err)
	}

	fig, err := r.Prepare(d)
	if err != nil {
		return RenderedChart{}, err
	}

	if err := r.surface.Draw(ctx, fig); err != nil {
		return RenderedChart{}, renderErr(d.BindTo, err)
	}

	slog.Debug("rendered chart",
		slog.String("anchor", fig.Anchor),
		slog.String("kind", string(fig.Kind)),
		slog.Int("categories", len(fig.Categories)),
	)

	return RenderedChart{
		Anchor:     fig.Anchor,
		Kind:       fig.Kind,
		Title:      fig.Title,
		Categories: fig.Categories,
		Values:     fig.Values,
		Total:      sum(fig.Values),
	}, nil
}

// RenderAll renders every descriptor concurrently. A failure affects only its
// own chart: the successful charts are returned in descriptor order together
// with all failures aggregated.
func (r *Renderer) RenderAll(ctx context.Context, ds []ChartDescriptor) ([]RenderedChart, error) {
	if err := ValidateSet(ds); err != nil {
		return nil, err
	}

	results := make([]RenderedChart, len(ds))
	errs := make([]error, len(ds))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRenders)
	for i, d := range ds {
		g.Go(func() error {
			results[i], errs[i] = r.Render(gCtx, d)
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	rendered := make([]RenderedChart, 0, len(ds))
	for i := range ds {
		if errs[i] != nil {
			slog.Warn("chart not rendered", slog.String("anchor", ds[i].BindTo), slog.Any("err", errs[i]))
			merr = multierror.Append(merr, errs[i])
			continue
		}
		rendered = append(rendered, results[i])
	}

	return rendered, merr.ErrorOrNil()
}

func sum(vs []float64) float64 {
	var total float64
	for _, v := range vs {
		total += v
	}
	return total
}
