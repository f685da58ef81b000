package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentavail/internal/app/dto"
	availabilityapp "rentavail/internal/app/handlers/availability"
	"rentavail/internal/app/queries"
)

type AvailabilityHTTP interface {
	Occupancy(c *gin.Context)
	Navigate(c *gin.Context)
}

type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h AvailabilityHandler) Occupancy(c *gin.Context) {
	strict, _ := strconv.ParseBool(c.DefaultQuery("strict", "false"))
	query := availabilityapp.GetOccupancyQuery{
		UnitID: strings.TrimSpace(c.Param("id")),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Strict: strict,
	}
	result, err := queries.Ask[availabilityapp.GetOccupancyQuery, dto.Occupancy](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type navigateRequest struct {
	Position string `json:"position"`
}

func (h AvailabilityHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	query := availabilityapp.NavigateCalendarQuery{
		SessionID: strings.TrimSpace(c.Param("sid")),
		UnitID:    strings.TrimSpace(c.Param("id")),
		Position:  req.Position,
	}
	result, err := queries.Ask[availabilityapp.NavigateCalendarQuery, dto.CalendarView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
