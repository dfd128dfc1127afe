// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging sets up the run's diagnostic log: structured JSON records
// in a size-rotated file next to the JSON stores.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the diagnostic log file.
const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 30
)

// New returns a structured logger writing JSON records to a size-rotated
// file at path. The returned closer must be closed when the run ends.
func New(path string) (*slog.Logger, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), rotator
}

// LineWriter adapts a logger to the io.Writer the pipeline stages write
// their progress to. Each non-empty line becomes one info record, so console
// progress and the diagnostic log carry the same events.
type LineWriter struct {
	logger *slog.Logger
}

// NewLineWriter wraps logger as an io.Writer.
func NewLineWriter(logger *slog.Logger) *LineWriter {
	return &LineWriter{logger: logger}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, " ")
		if line != "" {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}
