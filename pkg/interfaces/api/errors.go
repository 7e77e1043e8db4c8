package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/tabular"
)

// Error codes returned in ErrorResponse.Code
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeParse             = "PARSE_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeTooLarge          = "REQUEST_TOO_LARGE"
	ErrCodeCanceled          = "REQUEST_CANCELED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Row       int    `json:"row,omitempty"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(requestIDKey),
	})
}

// writeRunError maps a failed run to a response. Malformed fields are 422,
// unreadable or incomplete inputs are 400.
func writeRunError(c *gin.Context, err error) {
	_ = c.Error(err)

	var parseErr *entities.ParseError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &parseErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
			Code:      ErrCodeParse,
			Message:   err.Error(),
			Row:       parseErr.Row,
			Field:     parseErr.Field,
			RequestID: c.GetString(requestIDKey),
		})
	case errors.As(err, &tooLarge):
		abortWithError(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
	case errors.Is(err, tabular.ErrUnsupportedFormat):
		abortWithError(c, http.StatusUnsupportedMediaType, ErrCodeUnsupportedFormat, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusServiceUnavailable, ErrCodeCanceled, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
	}
}
