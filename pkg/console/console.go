// Package console provides a standard interface for user- and machine-interface with the console
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/logrusorgru/aurora"
	"github.com/mitchellh/go-wordwrap"
)

// Console represents a standardized interface for console UI. It is designed to abstract:
// - Writing main output (listings, archives written to stdout)
// - Giving information to the user on stderr, tagged with its level
// - Switching between human and machine modes (e.g. no colors or wrapping when piped)
type Console struct {
	Color     bool
	IsMachine bool
	Level     Level
	// Out and Err default to os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
	mu  sync.Mutex
}

// Debug level message
func (c *Console) Debug(msg string, v ...interface{}) {
	c.log(DebugLevel, msg, v...)
}

// Info level message
func (c *Console) Info(msg string, v ...interface{}) {
	c.log(InfoLevel, msg, v...)
}

// Warn level message
func (c *Console) Warn(msg string, v ...interface{}) {
	c.log(WarnLevel, msg, v...)
}

// Error level message
func (c *Console) Error(msg string, v ...interface{}) {
	c.log(ErrorLevel, msg, v...)
}

// Fatal level message, followed by exit
func (c *Console) Fatal(msg string, v ...interface{}) {
	c.log(FatalLevel, msg, v...)
	os.Exit(1)
}

// Output a line to stdout. Useful for printing primary output of a command.
func (c *Console) Output(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.stdout(), line)
}

func (c *Console) stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Console) stderr() io.Writer {
	if c.Err != nil {
		return c.Err
	}
	return os.Stderr
}

var prompts = map[Level]string{
	DebugLevel: "[Debug] ",
	InfoLevel:  "[Info] ",
	WarnLevel:  "[Warn] ",
	ErrorLevel: "[Error] ",
	FatalLevel: "[Error] ",
}

func (c *Console) log(level Level, msg string, v ...interface{}) {
	if level < c.Level {
		return
	}

	prompt := prompts[level]
	formattedMsg := fmt.Sprintf(msg, v...)

	// Word wrap
	if !c.IsMachine {
		width, err := GetWidth()
		if err == nil && width > 30 {
			// Narrower terminals are probably resized for a moment. Also keeps
			// width-len(prompt) positive.
			formattedMsg = wordwrap.WrapString(formattedMsg, uint(width)-uint(len(prompt)))
		}
	}

	// Add color after word wrapping so naive length of prompt is correct
	if c.Color {
		color := aurora.Cyan
		switch level {
		case DebugLevel:
			color = aurora.Faint
		case WarnLevel:
			color = aurora.Yellow
		case ErrorLevel, FatalLevel:
			color = aurora.Red
		}
		prompt = color(prompt).String()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.stderr()
	for i, line := range strings.Split(formattedMsg, "\n") {
		if c.Color && level == DebugLevel {
			line = aurora.Faint(line).String()
		}
		if i == 0 {
			line = prompt + line
		}
		fmt.Fprintln(w, line)
	}
}
