package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	quotesapp "rentavail/internal/app/handlers/quotes"
	"rentavail/internal/app/queries"
)

type QuoteHTTP interface {
	Preview(c *gin.Context)
	Issue(c *gin.Context)
	Get(c *gin.Context)
}

type QuoteHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type issueQuoteRequest struct {
	UnitID                string `json:"unit_id"`
	CheckIn               string `json:"check_in"`
	CheckOut              string `json:"check_out"`
	FirstCompletedBooking bool   `json:"first_completed_booking"`
}

// Preview prices a stay without storing a quote.
func (h QuoteHandler) Preview(c *gin.Context) {
	first, _ := strconv.ParseBool(c.DefaultQuery("first_completed_booking", "false"))
	query := quotesapp.QuoteStayQuery{
		UnitID:                strings.TrimSpace(c.Param("id")),
		CheckIn:               c.Query("check_in"),
		CheckOut:              c.Query("check_out"),
		FirstCompletedBooking: first,
	}
	result, err := queries.Ask[quotesapp.QuoteStayQuery, dto.StayQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Issue(c *gin.Context) {
	var req issueQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := quotesapp.IssueQuoteCommand{
		UnitID:                req.UnitID,
		CheckIn:               req.CheckIn,
		CheckOut:              req.CheckOut,
		FirstCompletedBooking: req.FirstCompletedBooking,
		IdempotencyKeyV:       c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[quotesapp.IssueQuoteCommand, *dto.StayQuote](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h QuoteHandler) Get(c *gin.Context) {
	query := quotesapp.GetQuoteQuery{QuoteID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[quotesapp.GetQuoteQuery, dto.StayQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ QuoteHTTP = QuoteHandler{}
