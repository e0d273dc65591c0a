package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthenticated
	Forbidden
	NotFound
	Conflict
	Upstream
	PartialFailure
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Upstream:
		return "upstream"
	case PartialFailure:
		return "partial_failure"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	// Fields are merged into the error envelope.
	Fields map[string]any `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// With attaches an extra envelope field and returns e.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// New creates a new Error
func New(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    kind.Status(),
		Message: message,
		Err:     err,
	}
}

func NewValidation(message string) *Error { return New(Validation, message, nil) }

func NewUnauthenticated(message string) *Error { return New(Unauthenticated, message, nil) }

func NewForbidden(message string) *Error { return New(Forbidden, message, nil) }

func NewNotFound(message string) *Error { return New(NotFound, message, nil) }

func NewConflict(message string) *Error { return New(Conflict, message, nil) }

func NewUpstream(message string, err error) *Error { return New(Upstream, message, err) }

func NewPartialFailure(message string, err error) *Error { return New(PartialFailure, message, err) }

func NewInternal(message string, err error) *Error { return New(Internal, message, err) }

// KindOf reports the kind of err. Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Envelope builds the JSON error body for err.
func Envelope(err error) (int, gin.H) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = NewInternal("Internal server error", err)
	}

	body := gin.H{
		"success": false,
		"msg":     appErr.Message,
	}
	if appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	} else {
		body["error"] = appErr.Message
	}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	return appErr.Code, body
}

// ErrorMiddleware renders the last error recorded on the gin context.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		code, body := Envelope(c.Errors.Last().Err)
		c.JSON(code, body)
		c.Abort()
	}
}
