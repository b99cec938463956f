package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrNotFound = errors.New("artwork not found")

// HTTPError is a non-2xx response from the catalog backend.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "http error"
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
}

// Is lets callers match a 404 with errors.Is(err, ErrNotFound).
func (e *HTTPError) Is(target error) bool {
	return e != nil && target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// TransportError wraps failures that happened before a response arrived:
// dial errors, resets, timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Timeout() bool {
	return e != nil && errors.Is(e.Err, context.DeadlineExceeded)
}

// DecodeError means a response arrived but its body was unusable
// (malformed JSON, oversized or undecodable image payload).
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "decode error"
	}
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type FailureReason string

const (
	ReasonNone      FailureReason = ""
	ReasonInvalidID FailureReason = "invalid_id"
	ReasonNotFound  FailureReason = "not_found"
	ReasonTransport FailureReason = "transport"
	ReasonDecode    FailureReason = "decode"
	ReasonUpstream  FailureReason = "upstream"
	ReasonCanceled  FailureReason = "canceled"
)

// Classify maps any error returned by Client onto the failure taxonomy.
func Classify(err error) FailureReason {
	if err == nil {
		return ReasonNone
	}
	if errors.Is(err, ErrInvalidID) {
		return ReasonInvalidID
	}
	if errors.Is(err, ErrNotFound) {
		return ReasonNotFound
	}
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return ReasonDecode
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	var trErr *TransportError
	if errors.As(err, &trErr) {
		return ReasonTransport
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTransport
	}
	return ReasonUpstream
}

func parseHTTPError(status int, raw []byte) error {
	body := strings.TrimSpace(string(raw))

	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &env); err == nil {
		msg = strings.TrimSpace(env.Message)
		if len(env.Error) > 0 {
			var s string
			var obj struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(env.Error, &s) == nil {
				msg = strings.TrimSpace(s)
			} else if json.Unmarshal(env.Error, &obj) == nil && strings.TrimSpace(obj.Message) != "" {
				msg = strings.TrimSpace(obj.Message)
			}
		}
	}

	return &HTTPError{
		StatusCode: status,
		Message:    msg,
		Body:       body,
	}
}
