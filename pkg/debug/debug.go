// Package debug builds the zerolog loggers used by the command line and the
// language server.
package debug

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// callerSkip is the number of frames between a hook's Run and the log call site.
const callerSkip = 3

type CustomTimeHook struct {
	Format string
}

func (t CustomTimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if t.Format == "" {
		// millisecond precision, no timezone
		e.Str("time", time.Now().Format("2006-01-02T15:04:05.000Z"))
	} else {
		e.Str("time", time.Now().Format(t.Format))
	}
}

type CustomCallerHook struct {
	WithColor bool
}

func (c CustomCallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return
	}

	loc := fmt.Sprintf("%s:%d", filepath.Base(file), line)
	if c.WithColor {
		loc = color.New(color.Bold).Sprint(filepath.Base(file)) + color.New(color.Faint).Sprint(":") +
			color.New(color.FgHiRed, color.Bold).Sprint(line)
	}

	e.Str("caller", callerPackage(pc)+":"+loc)
}

// callerPackage trims the function part off a frame's symbol name, leaving the
// import path.
func callerPackage(pc uintptr) string {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "?"
	}
	dir, base := path.Split(fn.Name())
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	return dir + base
}

// NewLogger returns a logger writing to w. Colorized output goes through
// zerolog's console writer, everything else is JSON lines.
func NewLogger(w io.Writer, level zerolog.Level, colorize bool) zerolog.Logger {
	if colorize {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000", NoColor: false}
	}

	return zerolog.New(w).
		Level(level).
		Hook(CustomTimeHook{}).
		Hook(CustomCallerHook{WithColor: colorize})
}
