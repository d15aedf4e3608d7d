package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/user/survey-charts-go/internal/models"
)

// Kind is the type of chart drawn for a descriptor.
type Kind string

const (
	KindPie Kind = "pie"
	KindBar Kind = "bar"
)

// LegendPosition places the legend relative to the plot area.
type LegendPosition string

const (
	LegendRight  LegendPosition = "right"
	LegendBottom LegendPosition = "bottom"
	LegendInset  LegendPosition = "inset"
)

// AxisType is the scale used for the x axis. Only categorical axes are drawn.
type AxisType string

const AxisCategory AxisType = "category"

// Legend controls legend placement and visibility.
type Legend struct {
	Position LegendPosition `json:"position" yaml:"position"`
	Show     bool           `json:"show" yaml:"show"`
}

// DataSource is either literal rows or a reference into the loaded blocks.
// Exactly one of Rows and Block is set.
type DataSource struct {
	Rows  []models.Row `json:"rows,omitempty" yaml:"rows,omitempty"`
	Block *int         `json:"block,omitempty" yaml:"block,omitempty"`
}

// Literal builds a DataSource from inline rows.
func Literal(rows ...models.Row) DataSource {
	if rows == nil {
		rows = []models.Row{}
	}
	return DataSource{Rows: rows}
}

// BlockRef builds a DataSource pointing at the loaded block at index i.
func BlockRef(i int) DataSource {
	return DataSource{Block: &i}
}

// Resolve returns the rows this source refers to. The result never aliases
// the descriptor or the blocks.
func (s DataSource) Resolve(blocks []models.DataBlock) ([]models.Row, error) {
	if s.Block == nil {
		return models.CloneRows(s.Rows), nil
	}
	i := *s.Block
	if i < 0 || i >= len(blocks) {
		return nil, fmt.Errorf("%w: block %d of %d", ErrBlockOutOfRange, i, len(blocks))
	}
	return models.CloneRows(blocks[i].Rows), nil
}

func (s DataSource) String() string {
	if s.Block != nil {
		return fmt.Sprintf("block[%d]", *s.Block)
	}
	return fmt.Sprintf("literal(%d rows)", len(s.Rows))
}

// ChartDescriptor describes one chart and where it is bound on the surface.
type ChartDescriptor struct {
	Title      string     `json:"title" yaml:"title"`
	Kind       Kind       `json:"kind" yaml:"kind"`
	Data       DataSource `json:"data" yaml:"data"`
	Colors     []string   `json:"colors" yaml:"colors"`
	Legend     Legend     `json:"legend" yaml:"legend"`
	YAxisLabel string     `json:"y_axis_label" yaml:"y_axis_label"`
	XAxisType  AxisType   `json:"x_axis_type" yaml:"x_axis_type"`
	BindTo     string     `json:"bind_to" yaml:"bind_to"`
}

// Validate checks the descriptor in isolation, without looking at data or
// the surface.
func (d ChartDescriptor) Validate() error {
	var problems []error

	if d.Title == "" {
		problems = append(problems, errors.New("title is empty"))
	}
	if d.BindTo == "" {
		problems = append(problems, errors.New("bind target is empty"))
	}
	switch d.Kind {
	case KindPie, KindBar:
	default:
		problems = append(problems, fmt.Errorf("unknown kind %q", d.Kind))
	}
	switch d.Legend.Position {
	case LegendRight, LegendBottom, LegendInset:
	default:
		problems = append(problems, fmt.Errorf("unknown legend position %q", d.Legend.Position))
	}
	if d.XAxisType != AxisCategory {
		problems = append(problems, fmt.Errorf("unknown x axis type %q", d.XAxisType))
	}
	if (d.Data.Block == nil) == (d.Data.Rows == nil) {
		problems = append(problems, errors.New("data must set exactly one of rows or block"))
	}
	if len(d.Colors) == 0 {
		problems = append(problems, errors.New("color palette is empty"))
	}
	for _, c := range d.Colors {
		if _, err := ParseColor(c); err != nil {
			problems = append(problems, err)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, errors.Join(problems...))
	}
	return nil
}

// SeriesCount is the number of colored series drawn for rows: one per
// category for a pie, a single total series for a bar chart.
func (d ChartDescriptor) SeriesCount(rows []models.Row) int {
	if d.Kind == KindPie {
		return len(rows)
	}
	return 1
}

// Palette returns the parsed colors. Validate must have succeeded.
func (d ChartDescriptor) Palette() []color.RGBA {
	out := make([]color.RGBA, 0, len(d.Colors))
	for _, c := range d.Colors {
		rgba, err := ParseColor(c)
		if err != nil {
			continue
		}
		out = append(out, rgba)
	}
	return out
}

// ValidateSet checks that no two descriptors share a bind target.
func ValidateSet(ds []ChartDescriptor) error {
	seen := make(map[string]int, len(ds))
	for i, d := range ds {
		if prev, ok := seen[d.BindTo]; ok {
			return fmt.Errorf("%w: %q used by descriptors %d and %d", ErrDuplicateAnchor, d.BindTo, prev, i)
		}
		seen[d.BindTo] = i
	}
	return nil
}

// Anchors returns the bind targets of ds in order.
func Anchors(ds []ChartDescriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		if !slices.Contains(out, d.BindTo) {
			out = append(out, d.BindTo)
		}
	}
	return out
}

type descriptorFile struct {
	Charts []ChartDescriptor `yaml:"charts"`
}

// DecodeDescriptors reads a YAML (or JSON) document of the form
// `charts: [...]`. Unknown fields are rejected.
func DecodeDescriptors(r io.Reader) ([]ChartDescriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f descriptorFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	if len(f.Charts) == 0 {
		return nil, fmt.Errorf("%w: no charts defined", ErrInvalidDescriptor)
	}
	for i, d := range f.Charts {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("chart %d: %w", i, err)
		}
	}
	if err := ValidateSet(f.Charts); err != nil {
		return nil, err
	}
	return f.Charts, nil
}

// EncodeDescriptors writes ds in the format read by DecodeDescriptors.
func EncodeDescriptors(w io.Writer, ds []ChartDescriptor) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(descriptorFile{Charts: ds}); err != nil {
		return fmt.Errorf("failed to encode descriptors: %w", err)
	}
	return enc.Close()
}
