package chart

import (
	"context"
	"errors"
	"maps"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/survey-charts-go/internal/models"
)

var errDrawFailed = errors.New("draw failed")

// memSurface records figures by anchor.
type memSurface struct {
	mu      sync.Mutex
	anchors map[string]bool
	drawn   map[string]Figure
	failOn  string
}

func newMemSurface(anchors ...string) *memSurface {
	s := &memSurface{anchors: map[string]bool{}, drawn: map[string]Figure{}}
	for _, a := range anchors {
		s.anchors[a] = true
	}
	return s
}

func (s *memSurface) HasAnchor(anchor string) bool {
	return s.anchors[anchor]
}

func (s *memSurface) Draw(_ context.Context, fig Figure) error {
	if fig.Anchor == s.failOn {
		return errDrawFailed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn[fig.Anchor] = fig
	return nil
}

func (s *memSurface) snapshot() map[string]Figure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.drawn)
}

func testBlocks() []models.DataBlock {
	return []models.DataBlock{
		{Name: "benefits", Rows: BenefitsRows()},
		{Name: "leave", Rows: []models.Row{
			{X: "Very easy", Total: 281},
			{X: "Somewhat easy", Total: 220},
			{X: "Neither easy nor difficult", Total: 178},
			{X: "Somewhat difficult", Total: 199},
			{X: "Very difficult", Total: 118},
			{X: "I don't know", Total: 150},
		}},
		{Name: "productivity", Rows: []models.Row{
			{X: "Yes", Total: 204},
			{X: "No", Total: 30},
			{X: "Unsure", Total: 73},
			{X: "Not applicable to me", Total: 839},
		}},
		{Name: "disorders", Rows: []models.Row{
			{X: "Yes", Total: 575},
			{X: "No", Total: 531},
			{X: "Maybe", Total: 327},
		}},
		{Name: "response", Rows: []models.Row{
			{X: "Yes", Total: 307},
			{X: "No", Total: 839},
		}},
	}
}

func TestRender_BenefitsTotal(t *testing.T) {
	surface := newMemSurface(DefaultAnchors...)
	r := NewRenderer(surface, testBlocks())

	got, err := r.Render(context.Background(), Defaults()[0])
	require.NoError(t, err)

	assert.Equal(t, AnchorBenefits, got.Anchor)
	assert.Equal(t, KindPie, got.Kind)
	assert.InDelta(t, 1146, got.Total, 1e-9)
	assert.Equal(t, []string{"Yes", "No", "I don't know", "Not Eligible / N/A"}, got.Categories)

	fig, ok := surface.snapshot()[AnchorBenefits]
	require.True(t, ok)
	assert.Len(t, fig.Palette, 4)
	assert.Equal(t, uint8(63), fig.Palette[0].R)
}

func TestRender_BarUsesBlock(t *testing.T) {
	surface := newMemSurface(DefaultAnchors...)
	r := NewRenderer(surface, testBlocks())

	got, err := r.Render(context.Background(), Defaults()[3])
	require.NoError(t, err)

	assert.Equal(t, AnchorDisorders, got.Anchor)
	assert.Equal(t, KindBar, got.Kind)
	assert.Equal(t, []string{"Yes", "No", "Maybe"}, got.Categories)
	assert.InDelta(t, 1433, got.Total, 1e-9)
}

func TestRender_Errors(t *testing.T) {
	blocks := testBlocks()
	blocks = append(blocks, models.DataBlock{Name: "empty"})

	tests := []struct {
		name    string
		modify  func(d *ChartDescriptor)
		wantErr error
	}{
		{
			name:    "empty literal rows",
			modify:  func(d *ChartDescriptor) { d.Data = Literal() },
			wantErr: ErrEmptyDataset,
		},
		{
			name:    "empty block",
			modify:  func(d *ChartDescriptor) { d.Data = BlockRef(len(blocks) - 1) },
			wantErr: ErrEmptyDataset,
		},
		{
			name:    "missing anchor",
			modify:  func(d *ChartDescriptor) { d.BindTo = "nowhere" },
			wantErr: ErrMissingAnchor,
		},
		{
			name:    "block out of range",
			modify:  func(d *ChartDescriptor) { d.Data = BlockRef(42) },
			wantErr: ErrBlockOutOfRange,
		},
		{
			name:    "palette too short for pie",
			modify:  func(d *ChartDescriptor) { d.Colors = d.Colors[:2] },
			wantErr: ErrPaletteTooShort,
		},
		{
			name:    "invalid kind",
			modify:  func(d *ChartDescriptor) { d.Kind = "donut" },
			wantErr: ErrInvalidDescriptor,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			surface := newMemSurface(DefaultAnchors...)
			r := NewRenderer(surface, blocks)

			d := Defaults()[0]
			tc.modify(&d)

			_, err := r.Render(context.Background(), d)
			require.ErrorIs(t, err, tc.wantErr)

			var rerr *RenderError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, d.BindTo, rerr.Anchor)

			assert.Empty(t, surface.snapshot(), "failed render must not touch the surface")
		})
	}
}

func TestFigure_SeriesColor(t *testing.T) {
	fig := Figure{Palette: Defaults()[1].Palette()}

	c, err := fig.SeriesColor(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(105), c.R)

	_, err = fig.SeriesColor(1)
	require.ErrorIs(t, err, ErrPaletteTooShort)

	_, err = Figure{}.SeriesColor(0)
	require.ErrorIs(t, err, ErrPaletteTooShort)
}

func TestRender_SurfaceErrorPropagated(t *testing.T) {
	surface := newMemSurface(DefaultAnchors...)
	surface.failOn = AnchorLeave
	r := NewRenderer(surface, testBlocks())

	_, err := r.Render(context.Background(), Defaults()[1])
	require.ErrorIs(t, err, errDrawFailed)
}

func TestRender_CanceledContext(t *testing.T) {
	surface := newMemSurface(DefaultAnchors...)
	r := NewRenderer(surface, testBlocks())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, Defaults()[0])
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, surface.snapshot())
}

func TestRender_DoesNotAliasInputs(t *testing.T) {
	blocks := testBlocks()
	surface := newMemSurface(DefaultAnchors...)
	r := NewRenderer(surface, blocks)

	d := Defaults()[1]
	_, err := r.Render(context.Background(), d)
	require.NoError(t, err)

	fig := surface.snapshot()[AnchorLeave]
	fig.Values[0] = -1
	fig.Colors[0] = "#000"

	assert.InDelta(t, 281, blocks[1].Rows[0].Total, 1e-9)
	assert.Equal(t, "rgb(105, 0, 100)", d.Colors[0])
}

func TestRenderAll_OrderIndependent(t *testing.T) {
	ds := Defaults()
	reversed := Defaults()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	a := newMemSurface(DefaultAnchors...)
	b := newMemSurface(DefaultAnchors...)

	renderedA, err := NewRenderer(a, testBlocks()).RenderAll(context.Background(), ds)
	require.NoError(t, err)
	renderedB, err := NewRenderer(b, testBlocks()).RenderAll(context.Background(), reversed)
	require.NoError(t, err)

	assert.Len(t, renderedA, 5)
	assert.Len(t, renderedB, 5)
	assert.Equal(t, a.snapshot(), b.snapshot())

	for i, rc := range renderedA {
		assert.Equal(t, ds[i].BindTo, rc.Anchor, "results keep descriptor order")
	}
}

func TestRenderAll_FailureIsIsolated(t *testing.T) {
	surface := newMemSurface(AnchorBenefits, AnchorLeave, AnchorProductivity, AnchorDisorders)
	r := NewRenderer(surface, testBlocks())

	rendered, err := r.RenderAll(context.Background(), Defaults())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMissingAnchor)
	assert.Contains(t, err.Error(), AnchorResponse)

	assert.Len(t, rendered, 4)
	assert.Len(t, surface.snapshot(), 4)
	assert.NotContains(t, surface.snapshot(), AnchorResponse)
}

func TestRenderAll_DuplicateAnchor(t *testing.T) {
	ds := Defaults()
	ds[2].BindTo = ds[1].BindTo

	surface := newMemSurface(DefaultAnchors...)
	_, err := NewRenderer(surface, testBlocks()).RenderAll(context.Background(), ds)
	require.ErrorIs(t, err, ErrDuplicateAnchor)
	assert.Empty(t, surface.snapshot())
}
