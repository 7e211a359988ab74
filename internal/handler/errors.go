package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	customError "github.com/segyhp/trainer-billing/pkg/errors"
	"github.com/segyhp/trainer-billing/pkg/response"
)

// statusFor maps a business error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case customError.ErrCodeInvalidAmount,
		customError.ErrCodeUnsupportedMethod,
		customError.ErrCodeInvalidRate,
		customError.ErrCodeMissingPricing:
		return http.StatusBadRequest
	case customError.ErrCodePackageNotFound,
		customError.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case customError.ErrCodeNoSessionsRemaining,
		customError.ErrCodePackageInactive,
		customError.ErrCodeInvalidSessionTransition:
		return http.StatusConflict
	case customError.ErrCodeInconsistentPricing:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service error. Server-side failures are logged
// and their details kept out of the response.
func (h *BillingHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := customError.Code(err)
	status := statusFor(code)

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.Any("error", err),
		)
		response.ErrorWithCode(w, status, code, "Internal server error", nil)
		return
	}

	message := err.Error()
	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}
	response.ErrorWithCode(w, status, code, message, nil)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		first := errs[0]
		response.BadRequest(w, "Validation failed", fmt.Errorf("field %s failed on %q", first.Field(), first.Tag()))
		return
	}
	response.BadRequest(w, "Validation failed", err)
}
