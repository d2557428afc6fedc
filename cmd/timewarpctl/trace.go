package main

import (
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
)

// trace prints scenario narration to a colorable stdout writer, so the
// ANSI codes fatih/color emits degrade gracefully on Windows consoles --
// the same pairing the teacher's go.mod carries (fatih/color +
// mattn/go-colorable), here actually exercised instead of sitting as
// unused indirect requires.
type trace struct {
	out     io.Writer
	info    *color.Color
	commit  *color.Color
	warn    *color.Color
	danger  *color.Color
}

func newTrace() *trace {
	out := colorable.NewColorableStdout()
	return &trace{
		out:    out,
		info:   color.New(color.FgCyan),
		commit: color.New(color.FgGreen, color.Bold),
		warn:   color.New(color.FgYellow),
		danger: color.New(color.FgRed, color.Bold),
	}
}

func (t *trace) Step(format string, args ...interface{}) {
	t.info.Fprintf(t.out, format+"\n", args...)
}

func (t *trace) Commit(format string, args ...interface{}) {
	t.commit.Fprintf(t.out, format+"\n", args...)
}

func (t *trace) Skip(format string, args ...interface{}) {
	t.warn.Fprintf(t.out, format+"\n", args...)
}

func (t *trace) Rollback(format string, args ...interface{}) {
	t.danger.Fprintf(t.out, format+"\n", args...)
}
