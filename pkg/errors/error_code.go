package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidMultiplier    ErrorCode = 105
	ErrCodeInvalidPolicy        ErrorCode = 106

	// Series shape errors (200-299)
	ErrCodeInputShape  ErrorCode = 200
	ErrCodeOutOfOrder  ErrorCode = 201
	ErrCodeEmptySeries ErrorCode = 202

	// Data/Resource errors (300-399)
	ErrCodeDataNotFound          ErrorCode = 300
	ErrCodeDataSourceUnavailable ErrorCode = 301
	ErrCodeQueryFailed           ErrorCode = 302
	ErrCodeUnsupportedFormat     ErrorCode = 303

	// Indicator errors (400-499)
	ErrCodeIndicatorNotFound      ErrorCode = 400
	ErrCodeIndicatorAlreadyExists ErrorCode = 401
	ErrCodeIndicatorCalculation   ErrorCode = 402

	// Output errors (500-599)
	ErrCodeWriteFailed ErrorCode = 500
)
