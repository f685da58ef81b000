package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	unitsapp "rentavail/internal/app/handlers/units"
	"rentavail/internal/app/queries"
)

type UnitHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Register(c *gin.Context)
	ChangeRate(c *gin.Context)
	Suspend(c *gin.Context)
}

type UnitHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type registerUnitRequest struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Currency    string  `json:"currency"`
	NightlyRate string  `json:"nightly_rate"`
	Timezone    string  `json:"timezone"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	MinNights   int     `json:"min_nights"`
	MaxNights   int     `json:"max_nights"`
}

type changeRateRequest struct {
	NightlyRate string `json:"nightly_rate"`
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (h UnitHandler) List(c *gin.Context) {
	result, err := queries.Ask[unitsapp.ListUnitsQuery, dto.UnitCollection](c.Request.Context(), h.Queries, unitsapp.ListUnitsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UnitHandler) Get(c *gin.Context) {
	query := unitsapp.GetUnitQuery{UnitID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[unitsapp.GetUnitQuery, dto.Unit](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Register adds a unit hosted by the caller.
func (h UnitHandler) Register(c *gin.Context) {
	host, ok := requireCaller(c)
	if !ok {
		return
	}
	var req registerUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := unitsapp.RegisterUnitCommand{
		ID:          strings.TrimSpace(req.ID),
		HostID:      host.ID,
		Title:       req.Title,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		NightlyRate: req.NightlyRate,
		Timezone:    req.Timezone,
		Lat:         req.Lat,
		Lon:         req.Lon,
		MinNights:   req.MinNights,
		MaxNights:   req.MaxNights,
	}
	result, err := commands.Dispatch[unitsapp.RegisterUnitCommand, *dto.Unit](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h UnitHandler) ChangeRate(c *gin.Context) {
	var req changeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := unitsapp.ChangeRateCommand{UnitID: strings.TrimSpace(c.Param("id")), NightlyRate: req.NightlyRate}
	result, err := commands.Dispatch[unitsapp.ChangeRateCommand, *dto.Unit](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UnitHandler) Suspend(c *gin.Context) {
	var req suspendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	cmd := unitsapp.SuspendUnitCommand{UnitID: strings.TrimSpace(c.Param("id")), Reason: req.Reason}
	result, err := commands.Dispatch[unitsapp.SuspendUnitCommand, *dto.Unit](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ UnitHTTP = UnitHandler{}
