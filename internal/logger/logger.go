// Package logger builds the structured logger used by the commands.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options select the level, destination and format of the log output.
type Options struct {
	Level   string `yaml:"level"`
	Logfile string `yaml:"file"`
	Format  string `yaml:"format"`
}

// New returns a logger for the options. Invalid options fall back to their defaults (level warn,
// standard error, text) and the problem is logged as a warning. The returned function closes the
// log file, if one was opened.
func New(options Options, stderr io.Writer) (*slog.Logger, func() error) {
	noop := func() error { return nil }

	var opts slog.HandlerOptions
	var warnings []string
	switch strings.ToLower(options.Level) {
	case "", "warn":
		opts.Level = slog.LevelWarn
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "error":
		opts.Level = slog.LevelError
	case "off":
		return slog.New(slog.DiscardHandler), noop
	default:
		opts.Level = slog.LevelWarn
		warnings = append(warnings, "could not parse logger level "+options.Level)
	}

	output := stderr
	closer := noop
	switch options.Logfile {
	case "":
	case os.DevNull:
		return slog.New(slog.DiscardHandler), noop
	default:
		file, err := os.OpenFile(options.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			warnings = append(warnings, "could not open logger output: "+err.Error())
		} else {
			output = file
			closer = file.Close
		}
	}

	var handler slog.Handler
	switch strings.ToLower(options.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, &opts)
	case "", "text":
		handler = slog.NewTextHandler(output, &opts)
	default:
		handler = slog.NewTextHandler(output, &opts)
		warnings = append(warnings, "could not parse logger format "+options.Format)
	}

	logger := slog.New(handler)
	for _, w := range warnings {
		logger.Warn(w)
	}
	return logger, closer
}
