package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ginjaninja78/x9-check-image-validator/internal/validation"
)

// Terminal styles. color.NoColor (set by --no-color or a non-terminal
// stdout) turns them into plain text.
var (
	successStyle = color.New(color.FgGreen)
	errorStyle   = color.New(color.FgRed, color.Bold)
	warnStyle    = color.New(color.FgYellow)
	infoStyle    = color.New(color.FgCyan)
)

func printSuccess(w io.Writer, format string, a ...any) {
	successStyle.Fprintln(w, fmt.Sprintf(format, a...))
}

func printError(w io.Writer, format string, a ...any) {
	errorStyle.Fprintln(w, fmt.Sprintf(format, a...))
}

func printWarn(w io.Writer, format string, a ...any) {
	warnStyle.Fprintln(w, fmt.Sprintf(format, a...))
}

func printInfo(w io.Writer, format string, a ...any) {
	infoStyle.Fprintln(w, fmt.Sprintf(format, a...))
}

// printFindings prints each finding message, hard ones in red.
func printFindings(w io.Writer, result *validation.ValidationResult) {
	for _, f := range result.Findings {
		if f.Severity == validation.SeverityHard {
			printError(w, "%s", f.Message)
		} else {
			printWarn(w, "%s", f.Message)
		}
	}
}
