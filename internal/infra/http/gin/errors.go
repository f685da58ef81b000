package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentavail/internal/domain/shared/apperr"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUpstream:
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError writes the {code, message} body for err. Server-side
// failures are logged; client errors only tag the request log.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	body := errorBody{Code: apperr.CodeOf(err), Message: err.Error()}
	if body.Code == "" {
		body.Code = "internal"
	}
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "status", status, "code", body.Code, "error", err, "path", c.FullPath(), "request_id", c.GetString("request_id"))
		}
		if status == http.StatusInternalServerError {
			body.Message = "internal error"
		}
	}
	c.Set("error_code", body.Code)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.Set("error_code", apperr.CodeInvalidPayload)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Code: apperr.CodeInvalidPayload, Message: err.Error()})
}
