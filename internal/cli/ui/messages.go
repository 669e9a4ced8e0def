// Package ui formats terminal output for the swiftcrud CLI.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Success prints a green success line
func Success(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a yellow warning line
func Warning(w io.Writer, format string, args ...interface{}) {
	warningColor.Fprintf(w, "! %s\n", fmt.Sprintf(format, args...))
}

// Error prints a red error line
func Error(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}
