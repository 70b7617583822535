package domain

import (
	"errors"
	"net/http"
	"strings"
)

// FailureCategory is the closed set of remote completion failures shown to users.
type FailureCategory string

const (
	FailureModelNotFound FailureCategory = "model_not_found"
	FailureAuth          FailureCategory = "auth_error"
	FailureRateLimited   FailureCategory = "rate_limited"
	FailureUnknown       FailureCategory = "unknown"
)

// CompletionError wraps a failed remote completion call together with its category.
type CompletionError struct {
	Category   FailureCategory
	StatusCode int
	Raw        string
	Err        error
}

func (e *CompletionError) Error() string { return e.Raw }

func (e *CompletionError) Unwrap() error { return e.Err }

// NewCompletionError classifies err. statusCode is 0 when the provider did not expose one.
func NewCompletionError(statusCode int, err error) *CompletionError {
	raw := ""
	if err != nil {
		raw = err.Error()
	}
	return &CompletionError{
		Category:   ClassifyFailure(statusCode, raw),
		StatusCode: statusCode,
		Raw:        raw,
		Err:        err,
	}
}

// ClassifyFailure maps the error text (and, failing that, the HTTP status) to a category.
// Text rules are evaluated in order: not-found, auth, rate limit.
func ClassifyFailure(statusCode int, raw string) FailureCategory {
	switch {
	case strings.Contains(raw, "404") || strings.Contains(raw, "No endpoints"):
		return FailureModelNotFound
	case strings.Contains(raw, "401") || strings.Contains(strings.ToLower(raw), "auth"):
		return FailureAuth
	case strings.Contains(raw, "429"):
		return FailureRateLimited
	}

	switch statusCode {
	case http.StatusNotFound:
		return FailureModelNotFound
	case http.StatusUnauthorized:
		return FailureAuth
	case http.StatusTooManyRequests:
		return FailureRateLimited
	}
	return FailureUnknown
}

// CategoryOf returns the category carried by err, or FailureUnknown.
func CategoryOf(err error) FailureCategory {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return FailureUnknown
}
