package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// Colour even when piped; NO_COLOR still wins.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Stdout and Stderr are swapped out by tests.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(Stdout, msg)
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Fprintf(Stdout, format, a...)
}

// Warning prints a warning message in yellow to stderr
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(Stderr, msg)
}

// Step prints a step message with emphasis
func Step(format string, a ...any) {
	cyan.Fprintf(Stdout, "→ %s", fmt.Sprintf(format, a...))
}

// Rail colours a rendered chord line. With enabled=false the text is returned
// untouched so column alignment is identical either way.
func Rail(chordLine string, enabled bool) string {
	if !enabled {
		return chordLine
	}
	return cyan.Sprint(chordLine)
}

// Title renders a sheet heading in bold.
func Title(s string, enabled bool) string {
	if !enabled {
		return s
	}
	return bold.Sprint(s)
}

// Subtle renders secondary text (artist, key line) faintly.
func Subtle(s string, enabled bool) string {
	if !enabled {
		return s
	}
	return faint.Sprint(s)
}

// Error prints a formatted error with title, explanation and suggestions to
// stderr and returns a plain error carrying only the title for Cobra.
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error with an extra block of key/value details.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(Stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(Stderr, "%s\n", explanation)
	}

	if len(context) > 0 {
		fmt.Fprintf(Stderr, "\n")
		for key, value := range context {
			fmt.Fprintf(Stderr, "  %s: %s\n", key, value)
		}
	}

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(Stderr, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(Stderr, "\nEither:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(Stderr, "  %d. %s\n", i+1, suggestion)
		}
	}

	return fmt.Errorf("%s", title)
}
