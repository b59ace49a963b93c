package canopy

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// DebugType classifies debug events.
type DebugType uint8

const (
	DebugTypeLex DebugType = iota
	DebugTypeParse
)

func (d DebugType) String() string {
	if d == DebugTypeLex {
		return "lex"
	}
	return "parse"
}

// Debugger receives parse and lex events from one parser. The zero value
// discards everything. Debug output never affects the parse result.
type Debugger struct {
	Callback func(debugType DebugType, message string)
}

func (d Debugger) active() bool { return d.Callback != nil }

func (d Debugger) logf(debugType DebugType, format string, args ...any) {
	if d.Callback != nil {
		d.Callback(debugType, fmt.Sprintf(format, args...))
	}
}

// NewLogDebugger routes debug events into a commonlog logger at debug
// level, prefixing each message with its event type.
func NewLogDebugger(log commonlog.Logger) Debugger {
	return Debugger{
		Callback: func(debugType DebugType, message string) {
			log.Debugf("%s: %s", debugType, message)
		},
	}
}
