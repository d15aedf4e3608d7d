package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/survey-charts-go/internal/chart"
	"github.com/user/survey-charts-go/internal/config"
	"github.com/user/survey-charts-go/internal/loader"
	"github.com/user/survey-charts-go/internal/report"
)

type renderFlags struct {
	outputPath      string
	descriptorsPath string
	anchors         []string
	noCache         bool
	width           int
	height          int
}

func newRenderCmd(a *app) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render DATA_PATH [html|png|svg|json]",
		Short: "Renders the survey charts from a data file.",
		Long: `Loads the chart data blocks from DATA_PATH (json, yaml or xlsx) and renders
every chart into the requested format. html and json write a single file;
png and svg write one image per chart into a directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataPath := args[0]
			format := report.FormatHTML
			if len(args) == 2 {
				format = strings.ToLower(args[1])
			}
			if !slices.Contains(report.Formats, format) {
				return fmt.Errorf("invalid report format '%s'. Must be one of %s", format, strings.Join(report.Formats, ", "))
			}

			cfg := *a.cfg
			if cmd.Flags().Changed("no-cache") {
				cfg.NoCache = f.noCache
			}
			if f.width > 0 {
				cfg.Width = f.width
			}
			if f.height > 0 {
				cfg.Height = f.height
			}

			descriptors := chart.Defaults()
			anchors := chart.DefaultAnchors
			if f.descriptorsPath != "" {
				ds, err := readDescriptors(f.descriptorsPath)
				if err != nil {
					return err
				}
				descriptors = ds
				anchors = chart.Anchors(ds)
			}
			if len(f.anchors) > 0 {
				anchors = f.anchors
			}

			outputPath, err := filepath.Abs(defaultOutputPath(f.outputPath, cfg.OutputDir, format))
			if err != nil {
				return fmt.Errorf("invalid output path '%s': %w", f.outputPath, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loading chart data from: %s\n", dataPath)
			dl, err := newLoader(&cfg, dataPath)
			if err != nil {
				return err
			}
			if err := dl.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load data from %s: %w", dataPath, err)
			}

			adapter, err := report.NewAdapter(format, anchors, report.Options{
				Width:     cfg.Width,
				Height:    cfg.Height,
				PageTitle: cfg.PageTitle,
			})
			if err != nil {
				return err
			}

			renderer := chart.NewRenderer(adapter, dl.Blocks)
			rendered, renderErr := renderer.RenderAll(cmd.Context(), descriptors)

			if len(rendered) > 0 {
				fmt.Fprintf(out, "Writing %s report to: %s\n", format, outputPath)
				if err := adapter.Write(outputPath); err != nil {
					return fmt.Errorf("failed to write %s report to %s: %w", format, outputPath, err)
				}
			}
			fmt.Fprintf(out, "Rendered %d of %d charts.\n", len(rendered), len(descriptors))

			if renderErr != nil {
				return fmt.Errorf("some charts were not rendered: %w", renderErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.outputPath, "output-path", "o", "", "Output file (html, json) or directory (png, svg)")
	cmd.Flags().StringVarP(&f.descriptorsPath, "descriptors", "d", "", "YAML file of chart descriptors to render instead of the built-in charts")
	cmd.Flags().StringSliceVar(&f.anchors, "anchors", nil, "Anchors present on the output surface")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Do not read or write the data cache")
	cmd.Flags().IntVar(&f.width, "width", 0, "Chart width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 0, "Chart height in pixels")

	return cmd
}

func defaultOutputPath(flagValue, outputDir, format string) string {
	if flagValue != "" {
		return flagValue
	}
	switch format {
	case report.FormatPNG, report.FormatSVG:
		return filepath.Join(outputDir, "survey-charts")
	default:
		return filepath.Join(outputDir, "survey-charts."+format)
	}
}

func readDescriptors(path string) ([]chart.ChartDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptors file: %w", err)
	}
	defer f.Close()

	ds, err := chart.DecodeDescriptors(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptors from %s: %w", path, err)
	}
	return ds, nil
}

func newLoader(cfg *config.Config, dataPath string) (*loader.DataLoader, error) {
	cacheDir, err := cfg.ResolveCacheDir()
	if err != nil {
		return nil, err
	}
	dl, err := loader.NewDataLoader(dataPath, cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loader for %s: %w", dataPath, err)
	}
	return dl, nil
}
