// Package logging provides the engine's operational diagnostics logger:
// startup/shutdown messages, ingestion progress, and internal failures
// that aren't part of the data-plane protocol. It is never used for the
// accounts CSV on stdout or the per-record errors on stderr the engine
// itself writes — those are program output, not log lines.
//
// Built directly on github.com/phuslu/log's console writer; no
// memory-writer or correlation-id machinery is needed on top of it here.
package logging

import (
	"os"

	"github.com/phuslu/log"
)

// New builds a console logger at the given level, writing to stderr.
// Unrecognized levels fall back to info.
func New(level string) log.Logger {
	return log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		Writer: &log.ConsoleWriter{
			ColorOutput:    false,
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         os.Stderr,
		},
	}
}

func parseLevel(level string) log.Level {
	switch level {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
