package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when the catalog has no record for an id
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrTimeout is returned when an upstream call exceeds its time bound
	ErrTimeout = errors.New("upstream request timed out")

	// ErrNetworkFailure is returned for DNS, connection and transport failures
	ErrNetworkFailure = errors.New("upstream network failure")

	// ErrUpstream matches every *UpstreamError
	ErrUpstream = errors.New("upstream returned an error status")

	// ErrMalformedResponse is returned when an upstream body cannot be decoded
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// UpstreamError carries a non-2xx upstream status and its body.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// UserMessage turns a pipeline failure into the text stored in lastError.
func UserMessage(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "The product catalog took too long to respond. Please try again."
	case errors.Is(err, ErrNetworkFailure):
		return "The product catalog is unreachable. Check your connection and try again."
	case errors.Is(err, ErrProductNotFound):
		return "This product could not be found."
	case errors.Is(err, ErrInvalidRequest):
		return "The request is missing required information."
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please wait a moment."
	case errors.As(err, &upstream):
		return fmt.Sprintf("The product catalog returned an error (status %d).", upstream.Status)
	default:
		return "An error occurred."
	}
}
