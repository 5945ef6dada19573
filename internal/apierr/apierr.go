package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeAlreadyClaimed   = "already_claimed"
	CodeNotFound         = "not_found"
	CodePermissionDenied = "permission_denied"
	CodeUnauthorized     = "unauthorized"
	CodeUploadFailed     = "upload_failed"
	CodeValidationFailed = "validation_failed"
	CodeInvalidStatus    = "invalid_status"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func AlreadyClaimed(err error) *Error {
	return New(http.StatusConflict, CodeAlreadyClaimed, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func PermissionDenied(err error) *Error {
	return New(http.StatusForbidden, CodePermissionDenied, err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

func UploadFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeUploadFailed, err)
}

func ValidationFailed(err error) *Error {
	return New(http.StatusBadRequest, CodeValidationFailed, err)
}

func InvalidStatus(err error) *Error {
	return New(http.StatusConflict, CodeInvalidStatus, err)
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for
// anything that is not an *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the error code for err, or "" for plain errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
