package types

import (
	"errors"

	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
)

// FromAppError renders err for a response body. Errors that are not
// AppErrors, or are internal, carry no detail.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if !errors.As(err, &e) || e.Code == appErr.CodeInternal {
		return &APIError{Code: string(appErr.CodeInternal), Message: "internal server error"}
	}
	return &APIError{Code: string(e.Code), Message: e.Message, Fields: e.Fields()}
}
