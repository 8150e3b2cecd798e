// Package exit carries a message, destination and process exit code from the
// CLI layers back to main.
package exit

import (
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	CodeOK      = 0 // success
	CodeRuntime = 1 // evaluation or I/O failure
	CodeUsage   = 2 // bad flags or arguments
	CodeStrict  = 3 // strict mode violation
	CodeParse   = 4 // malformed path expression or mapping document
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeOK,
		Message:  message,
	}
}

// Error creates a runtime failure result on stderr.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeRuntime,
		Message:  message,
	}
}

// Errorf creates a runtime failure result with a formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// Usagef creates a usage error result with a formatted message.
func Usagef(format string, a ...any) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeUsage,
		Message:  fmt.Sprintf(format, a...),
	}
}

// Strictf creates a strict-violation result with a formatted message.
func Strictf(format string, a ...any) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeStrict,
		Message:  fmt.Sprintf(format, a...),
	}
}

// Parsef creates a parse failure result with a formatted message.
func Parsef(format string, a ...any) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeParse,
		Message:  fmt.Sprintf(format, a...),
	}
}
