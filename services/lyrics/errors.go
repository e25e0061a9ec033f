package lyrics

// ConversionError reports a payload that could not be turned into a document.
type ConversionError struct {
	Format string
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return e.Format + ": " + e.Reason + ": " + e.Err.Error()
	}
	return e.Format + ": " + e.Reason
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new ConversionError
func NewConversionError(format, reason string, err error) *ConversionError {
	return &ConversionError{
		Format: format,
		Reason: reason,
		Err:    err,
	}
}
