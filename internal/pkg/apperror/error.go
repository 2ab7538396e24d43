// internal/pkg/apperror/error.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can branch on it without string matching
type Kind string

const (
	KindInvalidIdentity       Kind = "INVALID_IDENTITY"
	KindStorageUnavailable    Kind = "STORAGE_UNAVAILABLE"
	KindPriceResolutionFailed Kind = "PRICE_RESOLUTION_FAILED"
	KindInvalidSignature      Kind = "INVALID_SIGNATURE"
	KindUnhandledEventType    Kind = "UNHANDLED_EVENT_TYPE"
	KindMissingCorrelation    Kind = "MISSING_CORRELATION"
	KindDuplicateFulfillment  Kind = "DUPLICATE_FULFILLMENT"
	KindEmptyCartFulfillment  Kind = "EMPTY_CART_FULFILLMENT"
	KindNotificationFailed    Kind = "NOTIFICATION_FAILED"
	KindGatewayUnavailable    Kind = "GATEWAY_UNAVAILABLE"
	KindInvalidRequest        Kind = "INVALID_REQUEST"
	KindNotFound              Kind = "NOT_FOUND"
	KindInternal              Kind = "INTERNAL"
)

// Error is the error type returned across domain boundaries
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, apperror.New(KindNotFound, "", "")) works
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap attaches a kind and operation to an underlying error
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Wrapf attaches a kind, operation and message to an underlying error
func Wrapf(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error kind to a transport status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidIdentity, KindInvalidRequest, KindInvalidSignature, KindMissingCorrelation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPriceResolutionFailed, KindEmptyCartFulfillment:
		return http.StatusUnprocessableEntity
	case KindDuplicateFulfillment:
		return http.StatusConflict
	case KindGatewayUnavailable:
		return http.StatusBadGateway
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message safe to show to API clients
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch KindOf(err) {
	case KindStorageUnavailable:
		return "Storage is temporarily unavailable"
	case KindGatewayUnavailable:
		return "Payment provider is temporarily unavailable"
	case KindNotFound:
		return "Resource not found"
	default:
		return "Internal server error"
	}
}
