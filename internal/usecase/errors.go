package usecase

import "errors"

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps infrastructure failures. Retryable marks errors the caller may retry as-is.
type TechnicalError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func IsRetryable(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te) && te.Retryable
}

const (
	CodeInvalidReport  = "INVALID_REPORT"
	CodeLeadNotFound   = "LEAD_NOT_FOUND"
	CodeForbidden      = "FORBIDDEN"
	CodeFetchTimeout   = "FETCH_TIMEOUT"
	CodeFetchFailed    = "FETCH_FAILED"
	CodePersistFailed  = "PERSIST_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeStaleDiscarded = "STALE_RESULT"
	CodeInvalidFormat  = "INVALID_FORMAT"
	CodeExportFailed   = "EXPORT_FAILED"
	CodeUserNotFound   = "USER_NOT_FOUND"
)
