package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/easydrink/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// ProviderError is a failure reported by an identity provider. Code is one of
// the common.Code* values when the provider's reason is known, otherwise it
// holds the provider's raw reason.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity provider: %s", e.Code)
	}
	return fmt.Sprintf("identity provider: %s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NetworkError wraps a transport failure.
func NetworkError(err error) *ProviderError {
	return &ProviderError{
		Code:    common.CodeNetworkRequestFailed,
		Message: err.Error(),
		Err:     errors.Join(ErrUnavailable, err),
	}
}

// CodeOf extracts the provider code from err, or "" if err is not a ProviderError.
func CodeOf(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
