package response

import (
	"errors"
	"net/http"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/validation"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps ledger errors to HTTP status codes. Anything that is not an
// application error is treated as an infrastructure failure.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		logger.GetDefault().LogHTTPError(c, err, http.StatusInternalServerError)
		RespondJSON(c, "error", http.StatusInternalServerError, "internal server error", nil, nil)
		return
	}

	code := StatusCode(appErr.Kind)
	RespondJSON(c, "error", code, appErr.Error(), nil, ErrorDetail{
		Kind:  string(appErr.Kind),
		Field: appErr.Field,
	})
}

// StatusCode returns the HTTP status for an error kind.
func StatusCode(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInsufficientInventory, apperr.KindInvalidState, apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondBindError reports a request body or query that gin could not bind.
// Validator failures are reported like service-level validation errors.
func RespondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		RespondError(c, validation.ToAppError(err))
		return
	}
	RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, ErrorDetail{
		Kind: string(apperr.KindValidation),
	})
}
