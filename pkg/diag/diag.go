// Package diag collects the non-fatal findings of a build (ignore files that
// are not honored, line-ending conversions, files that vanished mid-build)
// so they can be shown to the user as one coherent report.
package diag

import (
	"fmt"
	"strings"
)

type Severity int

const (
	Info Severity = iota
	Warn
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warn:
		return "Warn"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

type Diagnostic struct {
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
}

func Infof(format string, v ...interface{}) Diagnostic {
	return Diagnostic{Severity: Info, Message: fmt.Sprintf(format, v...)}
}

func Warnf(format string, v ...interface{}) Diagnostic {
	return Diagnostic{Severity: Warn, Message: fmt.Sprintf(format, v...)}
}

// Rule is the separator line framing grouped messages.
const Rule = "----------------------------------------------------------------------"

// Banner frames lines between two separator rules.
func Banner(lines ...string) string {
	var b strings.Builder
	b.WriteString(Rule)
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(Rule)
	return b.String()
}

// Logger is the sink diagnostics are flushed to. console.Console satisfies it.
type Logger interface {
	Info(msg string, v ...interface{})
	Warn(msg string, v ...interface{})
}

// Emit writes a single diagnostic to the logger.
func Emit(logger Logger, d Diagnostic) {
	switch d.Severity {
	case Warn:
		logger.Warn("%s", d.Message)
	default:
		logger.Info("%s", d.Message)
	}
}
