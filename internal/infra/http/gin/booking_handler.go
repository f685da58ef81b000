package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	bookingapp "rentavail/internal/app/handlers/booking"
	"rentavail/internal/app/queries"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Transition(c *gin.Context)
	Mine(c *gin.Context)
	ForUnit(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	UnitID                string `json:"unit_id"`
	CheckIn               string `json:"check_in"`
	CheckOut              string `json:"check_out"`
	Guests                int    `json:"guests"`
	FirstCompletedBooking bool   `json:"first_completed_booking"`
}

type transitionRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	guest, ok := requireCaller(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		UnitID:                req.UnitID,
		GuestID:               guest.ID,
		CheckIn:               req.CheckIn,
		CheckOut:              req.CheckOut,
		Guests:                req.Guests,
		FirstCompletedBooking: req.FirstCompletedBooking,
		IdempotencyKeyV:       c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

func (h BookingHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.TransitionBookingCommand{
		BookingID: strings.TrimSpace(c.Param("id")),
		Action:    strings.ToLower(strings.TrimSpace(req.Action)),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[bookingapp.TransitionBookingCommand, *bookingapp.TransitionBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Mine(c *gin.Context) {
	guest, ok := requireCaller(c)
	if !ok {
		return
	}
	query := bookingapp.ListGuestBookingsQuery{GuestID: guest.ID}
	result, err := queries.Ask[bookingapp.ListGuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ForUnit(c *gin.Context) {
	query := bookingapp.ListUnitBookingsQuery{
		UnitID: strings.TrimSpace(c.Param("id")),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: c.Query("status"),
	}
	result, err := queries.Ask[bookingapp.ListUnitBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
