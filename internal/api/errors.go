package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fridgechef/internal/pantry"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidImageType     = "INVALID_IMAGE_TYPE"
	CodeInvalidImageSize     = "INVALID_IMAGE_SIZE"
	CodeNotFound             = "NOT_FOUND"
	CodeRequestTimeout       = "REQUEST_TIMEOUT"
	CodeNoDetection          = "NO_DETECTION"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeMalformedResponse    = "MALFORMED_RESPONSE"
	CodeInvalidModelResponse = "INVALID_MODEL_RESPONSE"
	CodeModelUnauthorized    = "MODEL_UNAUTHORIZED"
)

// Error is an API failure with its HTTP status and public message.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new API error.
func NewError(code, message string, status int, err error) *Error {
	return &Error{Code: code, Message: message, Status: status, Err: err}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// statusCoder is implemented by the platform client errors.
type statusCoder interface {
	HTTPStatus() int
}

// badRequest reports invalid client input.
func badRequest(message string, err error) *Error {
	return NewError(CodeInvalidRequest, message, http.StatusBadRequest, err)
}

// clientInputError classifies a validation failure of the request body.
func clientInputError(err error) *Error {
	if pantry.IsInputError(err) {
		return badRequest("Invalid request body", err)
	}
	return badRequest("Request body must be a JSON object", err)
}

// modelError classifies a failure of the model call or of its output.
func modelError(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(CodeRequestTimeout, "Request timeout. Please try again.", http.StatusRequestTimeout, err)
	case errors.Is(err, pantry.ErrNoDetection):
		return NewError(CodeNoDetection, "No food items detected with sufficient confidence. Please try with a clearer image.", http.StatusUnprocessableEntity, err)
	case errors.Is(err, pantry.ErrMalformedResponse):
		return NewError(CodeMalformedResponse, "Invalid response format from the model", http.StatusBadGateway, err)
	case pantry.IsInputError(err):
		return NewError(CodeInvalidModelResponse, "Invalid response structure from the model", http.StatusBadGateway, err)
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch sc.HTTPStatus() {
		case http.StatusTooManyRequests:
			return NewError(CodeTooManyRequests, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewError(CodeModelUnauthorized, "The model provider rejected the configured credentials.", http.StatusBadGateway, err)
		}
	}
	return NewError(CodeInternalError, "Failed to process request. Please try again.", http.StatusInternalServerError, err)
}

// respondError writes e as JSON. Details are only exposed in debug mode.
func (h *Handler) respondError(c *gin.Context, e *Error) {
	_ = c.Error(e)

	body := ErrorResponse{Code: e.Code, Message: e.Message}
	if h.opts.Debug && e.Err != nil {
		body.Details = errorDetails(e.Err)
	}
	c.AbortWithStatusJSON(e.Status, body)
}

func errorDetails(err error) any {
	var perr *pantry.Error
	if errors.As(err, &perr) && perr.Kind == pantry.KindInvalidField {
		return gin.H{
			"key":    perr.Key,
			"field":  perr.Field,
			"index":  perr.Index,
			"reason": perr.Reason,
		}
	}
	return err.Error()
}
