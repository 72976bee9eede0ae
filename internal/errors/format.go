package errors

import "strings"

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format returns the error laid out for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString(color(colorRed+colorBold, "ERROR"))
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Detail != "" {
		b.WriteString("\n  ")
		b.WriteString(e.Detail)
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		b.WriteString("\n  ")
		b.WriteString(color(colorGray, "cause: "+e.Wrapped.Error()))
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		b.WriteString("\n  ")
		b.WriteString(color(colorYellow, "hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}
	return b.String()
}
