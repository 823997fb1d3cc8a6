package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies an extraction failure. Retryable kinds are retried by
// the orchestrator; terminal kinds skip straight to the next strategy.
type ErrorKind string

const (
	ErrKindNone ErrorKind = ""
	// Transient network or timeout failure. Retryable.
	ErrKindNetwork ErrorKind = "network_or_timeout"
	// Quota exhaustion or bad credentials. Terminal for the strategy.
	ErrKindQuotaAuth ErrorKind = "quota_or_auth"
	// Input the strategy cannot process at all. Terminal, no retry.
	ErrKindMalformedInput ErrorKind = "malformed_input"
	// Provider answered successfully but produced no usable text. Retryable,
	// since it may be transient.
	ErrKindEmptyResult ErrorKind = "empty_result"
)

func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrKindNetwork, ErrKindEmptyResult:
		return true
	default:
		return false
	}
}

// ExtractError is the structured failure a strategy reports across the
// orchestrator boundary. Expected failure modes never panic or propagate as
// bare errors; they carry a kind.
type ExtractError struct {
	Kind ErrorKind
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

func NetworkErr(err error) error {
	return &ExtractError{Kind: ErrKindNetwork, Err: err}
}

func QuotaAuthErr(err error) error {
	return &ExtractError{Kind: ErrKindQuotaAuth, Err: err}
}

func MalformedInputErr(err error) error {
	return &ExtractError{Kind: ErrKindMalformedInput, Err: err}
}

func EmptyResultErr(msg string) error {
	return &ExtractError{Kind: ErrKindEmptyResult, Err: errors.New(msg)}
}

// KindOf extracts the error kind, classifying untyped errors conservatively:
// context deadlines and net errors are transient, anything else unknown is
// treated as transient too so a flaky provider gets its retries.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrKindNone
	}
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrKindNetwork
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ErrKindNetwork
	}
	return ErrKindNetwork
}

// KindFromStatus maps an HTTP status to an error kind at a provider adapter
// boundary.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusPaymentRequired,
		status == http.StatusTooManyRequests:
		return ErrKindQuotaAuth
	case status == http.StatusBadRequest,
		status == http.StatusNotFound,
		status == http.StatusUnsupportedMediaType,
		status == http.StatusUnprocessableEntity:
		return ErrKindMalformedInput
	default:
		return ErrKindNetwork
	}
}

// StatusErr builds a kind-classified error from a provider HTTP response.
func StatusErr(status int, body string) error {
	if len(body) > 200 {
		body = body[:200]
	}
	return &ExtractError{
		Kind: KindFromStatus(status),
		Err:  fmt.Errorf("http %d: %s", status, body),
	}
}
