package ginserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/domain/shared/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusForKinds(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation(apperr.CodeInvalidDate, "bad"), http.StatusBadRequest},
		{apperr.NotFound(apperr.CodeUnitNotFound, "missing"), http.StatusNotFound},
		{apperr.Conflict(apperr.CodeDatesUnavailable, "taken"), http.StatusConflict},
		{apperr.Upstream(errors.New("mongo down")), http.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondErrorHidesInternalMessage(t *testing.T) {
	router := gin.New()
	router.GET("/fail", func(c *gin.Context) { respondError(c, nil, errors.New("secret dsn leaked")) })
	router.GET("/taken", func(c *gin.Context) {
		respondError(c, nil, apperr.Conflict(apperr.CodeDatesUnavailable, "unavailable: 2030-02-11"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal", body.Code)
	assert.NotContains(t, body.Message, "dsn")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/taken", nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeDatesUnavailable, body.Code)
	assert.Contains(t, body.Message, "2030-02-11")
}

func TestCallerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CallerMiddleware)
	router.GET("/who", func(c *gin.Context) {
		p, ok := requireCaller(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "can_manage": p.CanManage})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(principalHeader, " host-1 ")
	req.Header.Set(canManageBlockHeader, "true")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"host-1","can_manage":true}`, rec.Body.String())
}

func TestAllowedOriginsFallsBackToWildcard(t *testing.T) {
	assert.Equal(t, []string{"*"}, allowedOrigins([]string{" ", ""}))
	assert.Equal(t, []string{"https://a.example"}, allowedOrigins([]string{" https://a.example "}))
}
