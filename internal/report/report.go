// Package report provides the display surfaces charts are drawn into and
// writes them out as report artifacts.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/user/survey-charts-go/internal/chart"
)

// Supported report formats.
const (
	FormatHTML = "html"
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// Formats lists every format accepted by NewAdapter.
var Formats = []string{FormatHTML, FormatPNG, FormatSVG, FormatJSON}

const (
	defaultWidth     = 800
	defaultHeight    = 400
	defaultPageTitle = "Mental Health in the Workplace"
)

// ReportAdapter is a display surface that can be written out as a report.
type ReportAdapter interface {
	chart.Surface
	// Anchors returns every anchor on the surface in document order.
	Anchors() []string
	// Drawn returns the anchors that currently hold a chart, in document order.
	Drawn() []string
	// Write saves the report to outputPath. Single-document formats write a
	// file; image formats write one file per drawn anchor into a directory.
	Write(outputPath string) error
}

// Options configures chart dimensions and page metadata.
type Options struct {
	Width     int
	Height    int
	PageTitle string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.PageTitle == "" {
		o.PageTitle = defaultPageTitle
	}
	return o
}

// NewAdapter creates the surface for format with the given anchors.
func NewAdapter(format string, anchors []string, opts Options) (ReportAdapter, error) {
	if len(anchors) == 0 {
		return nil, fmt.Errorf("surface needs at least one anchor")
	}
	opts = opts.withDefaults()

	switch strings.ToLower(format) {
	case FormatHTML:
		return NewHTMLReportAdapter(anchors, opts), nil
	case FormatPNG:
		return NewPNGReportAdapter(anchors, opts), nil
	case FormatSVG:
		return NewSVGReportAdapter(anchors, opts), nil
	case FormatJSON:
		return NewJSONReportAdapter(anchors), nil
	default:
		return nil, fmt.Errorf("invalid report format '%s'. Must be one of %s", format, strings.Join(Formats, ", "))
	}
}

// slots holds the content drawn into each anchor of a surface.
type slots[T any] struct {
	mu      sync.RWMutex
	anchors []string
	content map[string]T
}

func newSlots[T any](anchors []string) *slots[T] {
	ordered := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if !slices.Contains(ordered, a) {
			ordered = append(ordered, a)
		}
	}
	return &slots[T]{
		anchors: ordered,
		content: make(map[string]T, len(ordered)),
	}
}

func (s *slots[T]) Anchors() []string {
	return slices.Clone(s.anchors)
}

func (s *slots[T]) HasAnchor(anchor string) bool {
	return slices.Contains(s.anchors, anchor)
}

func (s *slots[T]) Drawn() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, a := range s.anchors {
		if _, ok := s.content[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// check fails with chart.ErrMissingAnchor unless anchor is on the surface.
func (s *slots[T]) check(anchor string) error {
	if !s.HasAnchor(anchor) {
		return fmt.Errorf("%w: %q", chart.ErrMissingAnchor, anchor)
	}
	return nil
}

func (s *slots[T]) put(anchor string, v T) error {
	if err := s.check(anchor); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[anchor] = v
	return nil
}

type slot[T any] struct {
	anchor string
	value  T
}

// ordered returns the drawn content in document order.
func (s *slots[T]) ordered() []slot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]slot[T], 0, len(s.content))
	for _, a := range s.anchors {
		if v, ok := s.content[a]; ok {
			out = append(out, slot[T]{anchor: a, value: v})
		}
	}
	return out
}

func writeFile(outputFilePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outputFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for report file %s: %w", outputFilePath, err)
	}
	return os.WriteFile(outputFilePath, data, 0644)
}
