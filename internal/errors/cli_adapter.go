package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	c, ok := AsClassified(err)
	if !ok {
		return 1
	}
	switch c.Category() {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryNetwork:
		return 8 // External system error
	case CategoryTemplate, CategoryBuild, CategoryStyle, CategorySerialize, CategoryStorage:
		return 11 // Generation error
	case CategoryRuntime:
		return 12 // Runtime error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return c.Error()
	}
	switch c.Category() {
	case CategoryConfig, CategoryValidation:
		return c.Message()
	default:
		return fmt.Sprintf("%s: %s", c.Category(), c.Message())
	}
}

// HandleError processes an error and exits the program with the appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if c, ok := AsClassified(err); ok && (a.verbose || c.IsFatal() || c.IsCategory(CategoryInternal)) {
		a.logger.Error(c.Error())
	}
	fmt.Fprintf(os.Stderr, "%s\n", a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}
