package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/payrecord/internal/payment/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// Codes kept for clients of the original payments API.
const (
	legacyCodeValidation    = "PAYMENT_CREATED_ERROR"
	legacyCodeDuplicate     = "ERR-01"
	legacyCodeCreateFailed  = "ERR-02"
	legacyCodeNotFound      = "ERR-03"
	legacyCodeLookupByID    = "ERR-04"
	legacyCodeLookupByEmail = "ERR-05"
)

// lookupError pins the legacy code of a read failure to the route that produced it.
type lookupError struct {
	code string
	err  error
}

func (e *lookupError) Error() string { return e.err.Error() }

func (e *lookupError) Unwrap() error { return e.err }

func withLookupCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &lookupError{code: code, err: err}
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError(message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   "request",
				Code:    "invalid_request",
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var domainErr *paymentdomain.Error
	if errors.As(err, &domainErr) {
		return mapPaymentError(err, domainErr)
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Code:    legacyCodeValidation,
			Message: vErr.Errors[0].Message,
			Errors:  vErr.Errors,
		}
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Code:    legacyCodeValidation,
			Message: "invalid request",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func mapPaymentError(err error, domainErr *paymentdomain.Error) (int, errorPayload) {
	payload := errorPayload{
		Type:    string(domainErr.Kind),
		Message: domainErr.Error(),
	}

	switch domainErr.Kind {
	case paymentdomain.KindValidationFailed:
		payload.Code = legacyCodeValidation
		payload.Errors = toValidationErrors(domainErr.Violations)
		return http.StatusBadRequest, payload
	case paymentdomain.KindDuplicateExternalID:
		payload.Code = legacyCodeDuplicate
		return http.StatusConflict, payload
	case paymentdomain.KindNotFound:
		payload.Code = legacyCodeNotFound
		return http.StatusNotFound, payload
	case paymentdomain.KindCreateFailed:
		payload.Code = legacyCodeCreateFailed
		return http.StatusInternalServerError, payload
	case paymentdomain.KindLookupFailed:
		payload.Code = legacyCodeLookupByID
		var lErr *lookupError
		if errors.As(err, &lErr) {
			payload.Code = lErr.code
		}
		return http.StatusInternalServerError, payload
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func toValidationErrors(violations paymentdomain.Violations) []ValidationError {
	out := make([]ValidationError, 0, len(violations))
	for _, v := range violations {
		out = append(out, ValidationError{Field: v.Field, Code: v.Code, Message: v.Message})
	}
	return out
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil && len(vErr.Errors) > 0 {
		return vErr
	}
	return nil
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, payload.Code
}
