package main

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// resolveLogLevel picks the console log level.
// Priority: --verbose > --quiet > config log.level > warn.
func resolveLogLevel(quiet, verbose bool, configured string) zapcore.Level {
	switch {
	case verbose:
		return zapcore.DebugLevel
	case quiet:
		return zapcore.ErrorLevel
	}
	if configured != "" {
		// Validated by config.Validate.
		if lvl, err := zapcore.ParseLevel(strings.ToLower(configured)); err == nil {
			return lvl
		}
	}
	return zapcore.WarnLevel
}

// newLogger builds the console logger: development encoding without caller
// or stack traces, colored levels when w is a terminal.
func newLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.StacktraceKey = zapcore.OmitKey
	if isTerminal(w) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
