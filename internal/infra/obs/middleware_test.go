package obs

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"rentavail/internal/domain/pricing"
)

func TestRecoveryTurnsInvariantViolationInto500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	m := Middleware{Logger: slog.New(slog.NewJSONHandler(&logs, nil))}
	router := gin.New()
	router.Use(m.Recovery(), m.RequestID(), m.LoggerMiddleware())
	router.GET("/boom", func(*gin.Context) {
		panic(pricing.InvariantViolation{Reason: "total - fees != base"})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"internal","message":"internal error"}`, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), "pricing invariant violated")
	assert.Contains(t, logs.String(), `"request_id":"req-1"`)
}
