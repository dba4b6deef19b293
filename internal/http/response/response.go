package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
)

type APIError struct {
	Message    string                  `json:"message"`
	Code       string                  `json:"code,omitempty"`
	Fields     []apperr.FieldViolation `json:"fields,omitempty"`
	RetryAfter *int                    `json:"retry_after_seconds,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondAppError maps the service error taxonomy onto HTTP statuses.
// Internal causes are never echoed to the client.
func RespondAppError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{
			Message: "validation failed",
			Code:    "validation_error",
			Fields:  verr.Violations,
		}})
		return
	}

	var qerr *apperr.QuotaExceededError
	if errors.As(err, &qerr) {
		secs := int(qerr.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, ErrorEnvelope{Error: APIError{
			Message:    "generation quota exceeded",
			Code:       "quota_exceeded",
			RetryAfter: &secs,
		}})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperr.ErrProviderDown):
		RespondError(c, http.StatusServiceUnavailable, "provider_unavailable",
			errors.New("generation service unavailable, try again shortly"))
	case errors.Is(err, apperr.ErrProviderOutput):
		RespondError(c, http.StatusBadGateway, "provider_error",
			errors.New("generation failed, try again shortly"))
	case errors.Is(err, apperr.ErrInvalidArgument), errors.Is(err, apperr.ErrValidation):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error",
			errors.New("something went wrong"))
	}
}
