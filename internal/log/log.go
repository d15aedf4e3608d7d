// Package log builds the slog handlers used by the CLI.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

const (
	JSONFormat   = "json"
	TextFormat   = "text"
	LogfmtFormat = "logfmt"
)

// CreateHandler creates a [slog.Handler] writing to w from level and format
// strings.
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(logFormat) {
	case JSONFormat:
		formatter = charmlog.JSONFormatter
	case LogfmtFormat:
		formatter = charmlog.LogfmtFormatter
	case TextFormat, "":
		formatter = charmlog.TextFormatter
	default:
		return nil, fmt.Errorf("unknown log format '%s'", logFormat)
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: formatter != charmlog.TextFormatter,
	}), nil
}

// GetLevel parses a level name. An empty name is "warn".
func GetLevel(level string) (charmlog.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return charmlog.WarnLevel, nil
	case "trace":
		return charmlog.DebugLevel, nil
	case "warning":
		return charmlog.WarnLevel, nil
	}

	l, err := charmlog.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("unknown log level '%s': %w", level, err)
	}
	return l, nil
}
