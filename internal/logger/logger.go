// Package logger is the bundler's diagnostic sink. It mirrors the shape of
// esbuild's internal/logger package: a Log value with an AddMsg method
// plus a Done method that returns a copy of the accumulated messages, so callers
// never need to know whether messages are being streamed to a terminal or
// collected for a test. Terminal rendering is handed to pterm (used
// elsewhere in this example pack for CLI output) instead of esbuild's
// hand-rolled ANSI color table.
package logger

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (k MsgKind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Msg is one diagnostic: a kind, the module id it concerns (empty for
// build-wide messages), and human text. Id is used to render the importer
// chain back to an entry point (§7: "importer chain back to an entry").
type Msg struct {
	Kind  MsgKind
	Id    string
	Text  string
	Chain []string // importer chain, entry-most last
}

// Log accumulates messages from many goroutines during the parallel
// scanning phase and can be drained once by the orchestrator.
type Log struct {
	mu       *sync.Mutex
	msgs     *[]Msg
	hasError *bool
}

func NewLog() Log {
	return Log{mu: &sync.Mutex{}, msgs: &[]Msg{}, hasError: new(bool)}
}

func (l Log) AddMsg(m Msg) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.msgs = append(*l.msgs, m)
	if m.Kind == Error {
		*l.hasError = true
	}
}

func (l Log) AddError(id string, format string, args ...interface{}) {
	l.AddMsg(Msg{Kind: Error, Id: id, Text: fmt.Sprintf(format, args...)})
}

func (l Log) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.hasError
}

func (l Log) Done() []Msg {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Msg, len(*l.msgs))
	copy(out, *l.msgs)
	return out
}

// PrintToTerminal renders accumulated messages with pterm, one styled line
// per message plus the importer chain indented beneath it.
func PrintToTerminal(msgs []Msg) {
	for _, m := range msgs {
		line := m.Text
		if m.Id != "" {
			line = fmt.Sprintf("%s: %s", m.Id, m.Text)
		}
		switch m.Kind {
		case Error:
			pterm.Error.Println(line)
		case Warning:
			pterm.Warning.Println(line)
		default:
			pterm.Info.Println(line)
		}
		for i := len(m.Chain) - 1; i >= 0; i-- {
			pterm.Println(pterm.Gray("  imported from " + m.Chain[i]))
		}
	}
}
