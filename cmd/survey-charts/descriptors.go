package main

import (
	"github.com/spf13/cobra"

	"github.com/user/survey-charts-go/internal/chart"
)

func newDescriptorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descriptors",
		Short: "Prints the built-in chart descriptors as YAML.",
		Long: `Prints the five built-in chart descriptors in the format accepted by
'render --descriptors', as a starting point for custom charts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return chart.EncodeDescriptors(cmd.OutOrStdout(), chart.Defaults())
		},
	}
}
