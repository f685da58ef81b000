package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	blocksapp "rentavail/internal/app/handlers/blocks"
	"rentavail/internal/app/queries"
)

type BlockHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type BlockHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type blockSpanRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartAt   string `json:"start_at"`
	EndAt     string `json:"end_at"`
}

func (r blockSpanRequest) input() blocksapp.SpanInput {
	return blocksapp.SpanInput{StartDate: r.StartDate, EndDate: r.EndDate, StartAt: r.StartAt, EndAt: r.EndAt}
}

type createBlockRequest struct {
	blockSpanRequest
	Label string `json:"label"`
	Notes string `json:"notes"`
	Color string `json:"color"`
}

type updateBlockRequest struct {
	blockSpanRequest
	Label *string `json:"label"`
	Notes *string `json:"notes"`
	Color *string `json:"color"`
}

func (h BlockHandler) List(c *gin.Context) {
	query := blocksapp.ListBlocksQuery{
		UnitID: strings.TrimSpace(c.Param("id")),
		From:   c.Query("from"),
		To:     c.Query("to"),
	}
	result, err := queries.Ask[blocksapp.ListBlocksQuery, dto.BlockCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlockHandler) Create(c *gin.Context) {
	var req createBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := blocksapp.CreateBlockCommand{
		UnitID:          strings.TrimSpace(c.Param("id")),
		Span:            req.input(),
		Label:           req.Label,
		Notes:           req.Notes,
		Color:           req.Color,
		CanManage:       currentCaller(c).CanManage,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[blocksapp.CreateBlockCommand, *dto.BlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BlockHandler) Update(c *gin.Context) {
	var req updateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := blocksapp.UpdateBlockCommand{
		BlockID:   strings.TrimSpace(c.Param("id")),
		Span:      req.input(),
		Label:     req.Label,
		Notes:     req.Notes,
		Color:     req.Color,
		CanManage: currentCaller(c).CanManage,
	}
	result, err := commands.Dispatch[blocksapp.UpdateBlockCommand, *dto.BlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlockHandler) Delete(c *gin.Context) {
	cmd := blocksapp.DeleteBlockCommand{
		BlockID:   strings.TrimSpace(c.Param("id")),
		CanManage: currentCaller(c).CanManage,
	}
	if _, err := commands.Dispatch[blocksapp.DeleteBlockCommand, *blocksapp.DeleteBlockResult](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ BlockHTTP = BlockHandler{}
