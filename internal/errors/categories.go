package errors

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryConflict   ErrorCategory = "conflict"

	// CategoryNetwork represents transport failures observed by the client.
	CategoryNetwork ErrorCategory = "network"

	// Pipeline stage errors.
	CategoryTemplate  ErrorCategory = "template"
	CategoryBuild     ErrorCategory = "build"
	CategoryStyle     ErrorCategory = "style"
	CategorySerialize ErrorCategory = "serialize"
	CategoryStorage   ErrorCategory = "storage"

	// CategoryRuntime represents runtime and infrastructure errors.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ErrorContext stores structured key-value context attached to an error.
type ErrorContext map[string]any

// Set returns a copy of the context with the key set.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[key] = value
	return out
}
