package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Kind classifies an error by the subsystem it originated from.
type Kind string

const (
	// KindConfiguration represents invalid or missing configuration; fatal at startup
	KindConfiguration Kind = "configuration"
	// KindValidation represents a malformed input entry; fatal for one cycle only
	KindValidation Kind = "validation"
	// KindNetwork represents transport failures and unexpected HTTP statuses
	KindNetwork Kind = "network"
	// KindParsing represents response-shape and document parsing failures
	KindParsing Kind = "parsing"
	// KindRateLimit represents blocking or throttling responses from a marketplace
	KindRateLimit Kind = "rate_limit"
	// KindOutput represents output document write failures
	KindOutput Kind = "output"
	// KindStore represents listings-database failures
	KindStore Kind = "store"
	// KindPublisher represents listing-publisher failures
	KindPublisher Kind = "publisher"
)

// Error is the error type every platform backend and collaborator reports.
// Platform identifies the marketplace when the error is platform-scoped.
type Error struct {
	Kind     Kind
	Platform string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Platform != "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s: %s - %v", e.Kind, e.Platform, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Platform, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s - %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// WithPlatform returns a copy of the error tagged with a marketplace name.
func (e *Error) WithPlatform(platform string) *Error {
	clone := *e
	clone.Platform = platform
	return &clone
}

// IsRetryable returns true if retrying the same request may succeed.
func (e *Error) IsRetryable() bool {
	return e.Kind == KindNetwork
}

// New creates a new Error
func New(kind Kind, platform, message string, err error) *Error {
	return &Error{
		Kind:     kind,
		Platform: platform,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *Error {
	return New(KindConfiguration, "", message, err)
}

// NewValidation creates a new input validation error
func NewValidation(message string) *Error {
	return New(KindValidation, "", message, nil)
}

// NewNetwork creates a new network error
func NewNetwork(platform, message string, err error) *Error {
	return New(KindNetwork, platform, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(platform, message string, err error) *Error {
	return New(KindParsing, platform, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(platform string, duration time.Duration) *Error {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(KindRateLimit, platform, message, nil)
}

// NewOutput creates a new output write error
func NewOutput(message string, err error) *Error {
	return New(KindOutput, "", message, err)
}

// NewStore creates a new store error
func NewStore(message string, err error) *Error {
	return New(KindStore, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(platform, message string, err error) *Error {
	return New(KindPublisher, platform, message, err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
