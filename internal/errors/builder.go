package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// New creates a new ErrorBuilder with the specified category and message.
func New(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// Wrap creates a new ErrorBuilder that wraps an existing error.
func Wrap(err error, category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		cause:    err,
		context:  make(ErrorContext),
	}
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder { return b.WithSeverity(SeverityFatal) }

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for common error patterns.

// ValidationError creates a validation error builder.
func ValidationError(message string) *ErrorBuilder { return New(CategoryValidation, message) }

// NotFoundError creates a not-found error builder.
func NotFoundError(message string) *ErrorBuilder { return New(CategoryNotFound, message) }

// ConflictError creates a conflict error builder.
func ConflictError(message string) *ErrorBuilder { return New(CategoryConflict, message) }

// StyleError creates a style-resolution error builder (programmer error in the resolver).
func StyleError(message string) *ErrorBuilder { return New(CategoryStyle, message) }

// SerializeError creates a serialization error builder.
func SerializeError(message string) *ErrorBuilder { return New(CategorySerialize, message) }

// StorageError creates a storage error builder.
func StorageError(message string) *ErrorBuilder { return New(CategoryStorage, message) }

// NetworkError creates a network/transport error builder.
func NetworkError(message string) *ErrorBuilder { return New(CategoryNetwork, message) }

// InternalError creates an internal error builder.
func InternalError(message string) *ErrorBuilder { return New(CategoryInternal, message) }
