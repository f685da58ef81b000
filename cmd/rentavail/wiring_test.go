package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	quotesapp "rentavail/internal/app/handlers/quotes"
	appoutbox "rentavail/internal/app/outbox"
	"rentavail/internal/app/sessions"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/infra/config"
	"rentavail/internal/infra/holidays"
	ginserver "rentavail/internal/infra/http/gin"
	"rentavail/internal/infra/ical"
	"rentavail/internal/infra/obs"
	infrapricing "rentavail/internal/infra/pricing"
	"rentavail/internal/infra/storage/memory"
	"rentavail/internal/infra/validation"
)

type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	outbox   *memory.Outbox
	commands commands.Bus
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := openBackend(context.Background(), config.Config{}, logger)
	require.NoError(t, err)

	engine, err := infrapricing.LoadEngine(config.FeeSettings{
		ServiceFeeRate:       "0.06",
		ProcessorPercentRate: "0.029",
		ProcessorFixedMinor:  20,
	}, logger)
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC) }
	registry, err := sessions.NewRegistry(domainavailability.DefaultWindowPolicy(), clock)
	require.NoError(t, err)

	deps := handlerDeps{
		factory:   store.factory,
		outbox:    store.outbox,
		encoder:   appoutbox.JSONEventEncoder{},
		quotes:    &quotesapp.Service{Pricing: engine},
		holidays:  holidays.USFederal(),
		codec:     ical.Codec{},
		sessions:  registry,
		maxSpan:   120,
		now:       clock,
		logger:    logger,
		validator: validation.New(),
	}
	cmds, qs := deps.buses(store.idempotency)
	router := ginserver.NewRouter(config.Config{}, obs.Middleware{Logger: logger}, obs.HealthHandlers{}, httpHandlers(cmds, qs, logger))
	return &testAPI{t: t, router: router, outbox: store.outbox.(*memory.Outbox), commands: cmds}
}

func (a *testAPI) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var (
	host    = map[string]string{"X-Principal-ID": "host-1", "X-Can-Manage-Blocks": "true"}
	guest   = map[string]string{"X-Principal-ID": "guest-7"}
	visitor = map[string]string{}
)

func registerTestUnit(t *testing.T, api *testAPI) {
	t.Helper()
	rec := api.do(http.MethodPost, "/api/v1/units", map[string]any{
		"id":           "u1",
		"title":        "Harbor flat",
		"currency":     "USD",
		"nightly_rate": "100.00",
		"timezone":     "UTC",
		"min_nights":   1,
	}, host)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestBlocksBookingsAndOccupancyEndToEnd(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)

	rec := api.do(http.MethodPost, "/api/v1/units/u1/blocks", map[string]any{
		"start_date": "2030-02-10", "end_date": "2030-02-11", "label": "Painting",
	}, guest)
	assert.Equal(t, http.StatusForbidden, rec.Code, "caller without block permission")

	rec = api.do(http.MethodPost, "/api/v1/units/u1/blocks", map[string]any{
		"start_date": "2030-02-10", "end_date": "2030-02-11", "label": "Painting",
	}, host)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/bookings", map[string]any{
		"unit_id": "u1", "check_in": "2030-02-11", "check_out": "2030-02-13", "guests": 2,
	}, guest)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "dates_unavailable", decode[map[string]string](t, rec)["code"])

	rec = api.do(http.MethodPost, "/api/v1/bookings", map[string]any{
		"unit_id": "u1", "check_in": "2030-02-12", "check_out": "2030-02-14", "guests": 2,
	}, visitor)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/bookings", map[string]any{
		"unit_id": "u1", "check_in": "2030-02-12", "check_out": "2030-02-14", "guests": 2,
	}, guest)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	booking := decode[map[string]any](t, rec)
	assert.Equal(t, float64(2), booking["nights"])

	rec = api.do(http.MethodGet, "/api/v1/units/u1/occupancy?from=2030-02-01&to=2030-03-01", nil, visitor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	occ := decode[struct {
		BookedDays   []string `json:"booked_days"`
		BlockedDays  []string `json:"blocked_days"`
		DisabledDays []string `json:"disabled_days"`
		Degraded     bool     `json:"degraded"`
	}](t, rec)
	assert.Equal(t, []string{"2030-02-12", "2030-02-13"}, occ.BookedDays)
	assert.Equal(t, []string{"2030-02-10", "2030-02-11"}, occ.BlockedDays)
	assert.Equal(t, []string{"2030-02-10", "2030-02-11", "2030-02-12", "2030-02-13"}, occ.DisabledDays)
	assert.False(t, occ.Degraded)

	rec = api.do(http.MethodGet, "/api/v1/me/bookings", nil, guest)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[struct {
		Items []map[string]any `json:"items"`
	}](t, rec)
	assert.Len(t, mine.Items, 1)

	assert.NotEmpty(t, api.outbox.Pending(), "events are staged for relay")
}

func TestOccupancyRejectsOversizedWindow(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)

	rec := api.do(http.MethodGet, "/api/v1/units/u1/occupancy?from=2030-01-01&to=2030-12-31", nil, visitor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "window_too_large", decode[map[string]string](t, rec)["code"])

	rec = api.do(http.MethodGet, "/api/v1/units/nope/occupancy?from=2030-01-01&to=2030-01-31", nil, visitor)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOccupancyWindowBoundary(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)

	// 2030-01-01 to 2030-05-01 is exactly 120 days, to exclusive.
	rec := api.do(http.MethodGet, "/api/v1/units/u1/occupancy?from=2030-01-01&to=2030-05-01", nil, visitor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/units/u1/occupancy?from=2030-01-01&to=2030-05-02", nil, visitor)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "window_too_large", decode[map[string]string](t, rec)["code"])
}

func TestNavigateReadsBoundedSliceOfGrownHorizon(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)

	rec := api.do(http.MethodPost, "/api/v1/sessions/s1/units/u1/calendar/navigate", map[string]any{"position": "2032-01-01"}, visitor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[dto.CalendarView](t, rec)
	require.NotNil(t, view.Occupancy)
	assert.Equal(t, "2030-01-01", view.Window.Start)
	assert.Equal(t, "2032-03-21", view.Window.End, "horizon grows past the visible month")

	// 120 day occupancy span, four spans per navigate read.
	assert.Equal(t, "2030-11-27", view.Occupancy.From)
	assert.Equal(t, view.Window.End, view.Occupancy.To)
}

func TestDeleteUnknownBlock(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)

	rec := api.do(http.MethodDelete, "/api/v1/blocks/missing-block", nil, host)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Equal(t, "block_not_found", decode[map[string]string](t, rec)["code"])

	rec = api.do(http.MethodDelete, "/api/v1/blocks/missing-block", nil, guest)
	assert.Equal(t, http.StatusForbidden, rec.Code, "permission is checked before lookup")
}

func TestQuotePreviewAndIdempotentIssue(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)

	rec := api.do(http.MethodGet, "/api/v1/units/u1/quote?check_in=2030-03-01&check_out=2030-03-04", nil, visitor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[map[string]any](t, rec)
	assert.Equal(t, float64(3), preview["nights"])
	assert.Equal(t, float64(30000), preview["host_net_total_minor"])
	assert.Greater(t, preview["guest_total_minor"].(float64), float64(30000))
	assert.Empty(t, preview["quote_id"])

	body := map[string]any{"unit_id": "u1", "check_in": "2030-03-01", "check_out": "2030-03-04"}
	key := map[string]string{"Idempotency-Key": "quote-1"}
	first := api.do(http.MethodPost, "/api/v1/quotes", body, key)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := api.do(http.MethodPost, "/api/v1/quotes", body, key)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	issued := decode[map[string]any](t, first)
	assert.NotEmpty(t, issued["quote_id"])
	assert.Equal(t, issued["quote_id"], decode[map[string]any](t, second)["quote_id"])
	assert.Equal(t, preview["guest_total_minor"], issued["guest_total_minor"])

	rec = api.do(http.MethodGet, "/api/v1/quotes/"+issued["quote_id"].(string), nil, visitor)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/units/u1/quote?check_in=2030-03-04&check_out=2030-03-01", nil, visitor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarExportAndChannelImport(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)

	rec := api.do(http.MethodPost, "/api/v1/units/u1/channel-events", map[string]any{
		"channel": "airbnb", "external_id": "HM123", "kind": "booked",
		"start_date": "2030-01-20", "end_date": "2030-01-22",
	}, visitor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/units/u1/occupancy?from=2030-01-15&to=2030-01-31", nil, visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	occ := decode[map[string]any](t, rec)
	assert.Equal(t, []any{"2030-01-20", "2030-01-21", "2030-01-22"}, occ["booked_days"])

	rec = api.do(http.MethodGet, "/api/v1/units/u1/calendar.ics", nil, visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "DTSTART;VALUE=DATE:20300120")
}

func TestRegisterUnitRejectsDuplicateID(t *testing.T) {
	api := newTestAPI(t)
	registerTestUnit(t, api)
	rec := api.do(http.MethodPost, "/api/v1/units", map[string]any{
		"id": "u1", "title": "Again", "currency": "USD", "nightly_rate": "90.00", "timezone": "UTC",
	}, host)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "unit_exists", decode[map[string]string](t, rec)["code"])
}

func TestSeedUnitsIsRepeatable(t *testing.T) {
	api := newTestAPI(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "units.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "a", "host_id": "h", "title": "A", "currency": "USD", "nightly_rate": "80.00", "timezone": "UTC"},
		{"id": "b", "host_id": "h", "title": "B", "currency": "EUR", "nightly_rate": "not-money", "timezone": "UTC"}
	]`), 0o600))

	app := &application{commands: api.commands}
	require.NoError(t, app.seedUnits(context.Background(), path, logger))
	require.NoError(t, app.seedUnits(context.Background(), path, logger))
	require.NoError(t, app.seedUnits(context.Background(), filepath.Join(t.TempDir(), "missing.json"), logger))

	rec := api.do(http.MethodGet, "/api/v1/units", nil, visitor)
	require.Equal(t, http.StatusOK, rec.Code)
	units := decode[struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}](t, rec)
	require.Len(t, units.Items, 1)
	assert.Equal(t, "a", units.Items[0].ID)
}
