package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/user/survey-charts-go/internal/config"
	"github.com/user/survey-charts-go/internal/log"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "survey-charts",
		Short: "Survey Charts renders the workplace mental health survey charts.",
		Long: `A tool that renders the charts of the workplace mental health survey:
insurance coverage of mental health benefits, ease of taking leave, impact on
productivity, current disorders and observed negative responses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().String("log_level", "", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "", "Set the log format (text, logfmt, json)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		cfg, err := config.Load(cc.Context())
		if err != nil {
			return err
		}

		var merr error

		flags := cc.Flags()
		if flags.Changed("log_level") {
			if cfg.LogLevel, err = flags.GetString("log_level"); err != nil {
				merr = multierror.Append(merr, err)
			}
		}
		if flags.Changed("log_format") {
			if cfg.LogFormat, err = flags.GetString("log_format"); err != nil {
				merr = multierror.Append(merr, err)
			}
		}
		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		h, err := log.CreateHandler(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}
		slog.SetDefault(slog.New(h))

		a.cfg = cfg
		return nil
	}

	cmd.AddCommand(newRenderCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newDescriptorsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cc *cobra.Command, _ []string) {
			fmt.Fprintf(cc.OutOrStdout(), "survey-charts %s (%s %s/%s)\n",
				version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
