package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
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

// WithCause sets the wrapped error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

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

// Convenience constructors for the pipeline's failure kinds.

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// IOError wraps a filesystem failure.
func IOError(err error, message string) *ErrorBuilder {
	return WrapError(err, CategoryIO, message)
}

// ParentError reports a path with no parent directory.
func ParentError(path string) *ErrorBuilder {
	return NewError(CategoryParent, "path has no parent directory").WithContext("path", path)
}

// FileNameError reports a path with no file stem.
func FileNameError(path string) *ErrorBuilder {
	return NewError(CategoryFileName, "path has no file name").WithContext("path", path)
}

// MetadataDeserializeError reports front matter that failed to decode.
func MetadataDeserializeError(path string, err error) *ErrorBuilder {
	return WrapError(err, CategoryMetadataDeserialize, "failed to deserialize file \""+path+"\" metadata").
		WithContext("path", path)
}

// MetadataMissingError reports an entry without front matter.
func MetadataMissingError(path string) *ErrorBuilder {
	return NewError(CategoryMetadataMissing, "failed to extract metadata from file \""+path+"\"").
		WithContext("path", path)
}

// TemplateEnvironmentError reports a template that could not be loaded or compiled.
func TemplateEnvironmentError(err error) *ErrorBuilder {
	return WrapError(err, CategoryTemplateEnvironment, "failed to load template")
}

// TemplateRenderError reports a template that failed while rendering.
func TemplateRenderError(err error) *ErrorBuilder {
	return WrapError(err, CategoryTemplateRender, "failed to render template")
}

// ServerError creates a preview server error.
func ServerError(message string) *ErrorBuilder {
	return NewError(CategoryServer, message).Fatal()
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
