// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package logutil

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the daemon logger: human-readable output on stderr
// and, when file is non-empty, a rotated JSON log file alongside it.
func NewLogger(level, file string, maxSizeMB, maxBackups int) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	console := slog.NewTextHandler(os.Stderr, opts)
	if file == "" {
		return slog.New(console)
	}

	rotated := slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}, opts)
	return slog.New(slogmulti.Fanout(console, rotated))
}
