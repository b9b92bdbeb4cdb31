package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinels matched by (*Error).Is.
var (
	ErrTransport    = errors.New("api: transport failure")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrValidation   = errors.New("api: validation failed")
	ErrServer       = errors.New("api: server error")
)

const (
	msgTransport    = "Cannot reach the server. Check your connection and try again."
	msgUnauthorized = "Your session has expired. Please log in again."
	msgForbidden    = "You are not allowed to do that."
	msgNotFound     = "The requested item was not found."
	msgValidation   = "Some of the submitted data is invalid."
	msgServer       = "Something went wrong. Please try again."
	msgCanceled     = "The request was cancelled."
)

// Error is returned for every failed call. Message is safe to show to a
// user; Fields holds per-field validation messages when the server sent any.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("api ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// FieldMessage returns the first message for field, or "".
func (e *Error) FieldMessage(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// FieldNames lists fields with messages, sorted.
func (e *Error) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

func defaultMessage(k Kind) string {
	switch k {
	case KindTransport:
		return msgTransport
	case KindUnauthorized:
		return msgUnauthorized
	case KindForbidden:
		return msgForbidden
	case KindNotFound:
		return msgNotFound
	case KindValidation:
		return msgValidation
	default:
		return msgServer
	}
}

type errorBody struct {
	Message string                     `json:"message"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// statusError builds the error for a non-2xx response. Bodies that are not
// the usual {message, errors} shape fall back to a generic message.
func statusError(status int, body []byte) *Error {
	kind := kindForStatus(status)
	e := &Error{Kind: kind, Status: status, Message: defaultMessage(kind)}

	var eb errorBody
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &eb) != nil {
		return e
	}
	if msg := strings.TrimSpace(eb.Message); msg != "" {
		e.Message = msg
	}
	if len(eb.Errors) > 0 {
		e.Fields = make(map[string][]string, len(eb.Errors))
		for field, raw := range eb.Errors {
			var list []string
			if json.Unmarshal(raw, &list) == nil {
				e.Fields[field] = list
				continue
			}
			var one string
			if json.Unmarshal(raw, &one) == nil {
				e.Fields[field] = []string{one}
			}
		}
	}
	return e
}

// UserMessage turns any error from this package's callers into text for
// display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if errors.Is(apiErr.Err, context.Canceled) {
			return msgCanceled
		}
		return apiErr.Message
	}
	if errors.Is(err, context.Canceled) {
		return msgCanceled
	}
	return err.Error()
}
