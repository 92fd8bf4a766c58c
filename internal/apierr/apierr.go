package apierr

import (
  "errors"
  "fmt"
  "net/http"
)

// Codes surfaced in the JSON error envelope. Handlers map these straight to
// HTTP statuses, so every service-level failure picks exactly one.
const (
  CodeValidation         = "validation"
  CodeConflict           = "conflict"
  CodeNotFound           = "not_found"
  CodeUnauthorized       = "unauthorized"
  CodeConfiguration      = "configuration"
  CodeRateLimit          = "rate_limit"
  CodeServiceUnavailable = "service_unavailable"
  CodeNetwork            = "network"
  CodeInternal           = "internal"
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

func Validation(format string, args ...any) *Error {
  return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func Conflict(format string, args ...any) *Error {
  return New(http.StatusConflict, CodeConflict, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...any) *Error {
  return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...any) *Error {
  return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

func Configuration(format string, args ...any) *Error {
  return New(http.StatusInternalServerError, CodeConfiguration, fmt.Errorf(format, args...))
}

func RateLimit(format string, args ...any) *Error {
  return New(http.StatusTooManyRequests, CodeRateLimit, fmt.Errorf(format, args...))
}

func ServiceUnavailable(err error) *Error {
  return New(http.StatusServiceUnavailable, CodeServiceUnavailable, err)
}

func Network(err error) *Error {
  return New(http.StatusBadGateway, CodeNetwork, err)
}

func Internal(err error) *Error {
  return New(http.StatusInternalServerError, CodeInternal, err)
}

// From pulls an *Error out of a wrapped chain, defaulting to internal so a
// raw database error never leaks a 200-range status.
func From(err error) *Error {
  if err == nil {
    return nil
  }
  var ae *Error
  if errors.As(err, &ae) {
    return ae
  }
  return Internal(err)
}
