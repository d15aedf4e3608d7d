package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/user/survey-charts-go/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = cellStyle.Bold(true)
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect DATA_PATH",
		Short: "Shows the data blocks in a data file.",
		Long:  `Loads the chart data blocks from DATA_PATH and prints every category and count, block by block.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dl, err := newLoader(a.cfg, args[0])
			if err != nil {
				return err
			}
			if err := dl.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load data from %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeBlocksJSON(out, dl.Blocks)
			}

			if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
			fmt.Fprintln(out, blocksTable(dl.Blocks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the blocks as JSON")

	return cmd
}

func writeBlocksJSON(w io.Writer, blocks []models.DataBlock) error {
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal blocks to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func blocksTable(blocks []models.DataBlock) *table.Table {
	p := message.NewPrinter(language.English)

	var rows [][]string
	var totals []int
	for i, b := range blocks {
		for _, r := range b.Rows {
			rows = append(rows, []string{strconv.Itoa(i), b.Name, r.X, formatCount(p, r.Total)})
		}
		rows = append(rows, []string{strconv.Itoa(i), b.Name, "total", formatCount(p, b.Sum())})
		totals = append(totals, len(rows)-1)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "BLOCK", "CATEGORY", "COUNT").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			for _, t := range totals {
				if row == t {
					return totalStyle
				}
			}
			return cellStyle
		})
}

func formatCount(p *message.Printer, v float64) string {
	if v == float64(int64(v)) {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.2f", v)
}
