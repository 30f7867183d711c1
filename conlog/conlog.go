// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"io"
	"log/slog"
)

// Init installs a text logger writing to w as the default logger.
func Init(w io.Writer, level slog.Level) *slog.Logger {
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}

// Level maps the verbosity flags of the tools to a level.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
