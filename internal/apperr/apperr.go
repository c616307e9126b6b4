// Package apperr defines the error taxonomy shared by every core
// component and its mapping onto the wire envelope's error codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by the handling the caller should give it,
// not by the Go type that carries it.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindUnauthorized   Kind = "unauthorized"
	KindStorage        Kind = "storage"
	KindEmbedding      Kind = "embedding"
	KindLLM            Kind = "llm"
	KindLLMUnavailable Kind = "llm_unavailable"
	KindLLMRateLimited Kind = "llm_rate_limited"
	KindLLMAuth        Kind = "llm_auth"
	KindReranker       Kind = "reranker"
	KindProcessing     Kind = "processing"
	KindInternal       Kind = "internal"
)

// Error is the concrete error type every layer of the core returns.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter int // seconds; zero means unset
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func new(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error   { return new(KindValidation, format, args...) }
func NotFound(format string, args ...any) *Error     { return new(KindNotFound, format, args...) }
func Unauthorized(format string, args ...any) *Error { return new(KindUnauthorized, format, args...) }
func Internal(format string, args ...any) *Error     { return new(KindInternal, format, args...) }
func Processing(format string, args ...any) *Error   { return new(KindProcessing, format, args...) }
func Reranker(format string, args ...any) *Error     { return new(KindReranker, format, args...) }
func Embedding(format string, args ...any) *Error    { return new(KindEmbedding, format, args...) }

func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Message: "storage operation failed", Cause: cause}
}

func LLM(format string, args ...any) *Error { return new(KindLLM, format, args...) }

func LLMUnavailable(reason string) *Error {
	return &Error{Kind: KindLLMUnavailable, Message: reason}
}

func LLMRateLimited(retryAfter int) *Error {
	return &Error{Kind: KindLLMRateLimited, Message: "rate limited by language model provider", RetryAfter: retryAfter}
}

func LLMAuth(reason string) *Error {
	return &Error{Kind: KindLLMAuth, Message: reason}
}

// As extracts an *Error from a wrapped error chain, if present.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, defaulting to KindInternal when err
// is not (or does not wrap) an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// WireCode is the symbolic error code carried in the HTTP error envelope.
type WireCode string

const (
	CodeInvalidRequest      WireCode = "invalidRequest"
	CodeUnauthorized        WireCode = "unauthorized"
	CodeNotFound            WireCode = "notFound"
	CodeConflict            WireCode = "conflict"
	CodeTooManyRequests     WireCode = "tooManyRequests"
	CodeInternal            WireCode = "internal"
	CodeBadGateway          WireCode = "badGateway"
	CodeServiceUnavailable  WireCode = "serviceUnavailable"
)

// Wire maps a Kind onto the HTTP status and wire code the envelope
// carries for it.
func (k Kind) Wire() (int, WireCode) {
	switch k {
	case KindValidation:
		return http.StatusBadRequest, CodeInvalidRequest
	case KindUnauthorized:
		return http.StatusUnauthorized, CodeUnauthorized
	case KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case KindLLMRateLimited:
		return http.StatusTooManyRequests, CodeTooManyRequests
	case KindLLMUnavailable:
		return http.StatusServiceUnavailable, CodeServiceUnavailable
	case KindLLMAuth, KindLLM, KindEmbedding, KindReranker:
		return http.StatusBadGateway, CodeBadGateway
	case KindStorage, KindProcessing, KindInternal:
		return http.StatusInternalServerError, CodeInternal
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
