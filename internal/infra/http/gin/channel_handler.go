package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	channelsapp "rentavail/internal/app/handlers/channels"
	"rentavail/internal/app/queries"
)

type ChannelHTTP interface {
	ImportEvent(c *gin.Context)
	RegisterFeed(c *gin.Context)
	SyncFeed(c *gin.Context)
	Calendar(c *gin.Context)
}

type ChannelHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type channelEventRequest struct {
	Channel    string `json:"channel"`
	ExternalID string `json:"external_id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Summary    string `json:"summary"`
	Removed    bool   `json:"removed"`
}

type registerFeedRequest struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
	Kind    string `json:"kind"`
}

func (h ChannelHandler) ImportEvent(c *gin.Context) {
	var req channelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := channelsapp.ImportChannelEventCommand{
		UnitID:     strings.TrimSpace(c.Param("id")),
		Channel:    req.Channel,
		ExternalID: req.ExternalID,
		Kind:       strings.ToLower(strings.TrimSpace(req.Kind)),
		Status:     req.Status,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Summary:    req.Summary,
		Removed:    req.Removed,
	}
	result, err := commands.Dispatch[channelsapp.ImportChannelEventCommand, *channelsapp.ImportChannelEventResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ChannelHandler) RegisterFeed(c *gin.Context) {
	var req registerFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := channelsapp.RegisterFeedCommand{
		UnitID:    strings.TrimSpace(c.Param("id")),
		Channel:   req.Channel,
		URL:       strings.TrimSpace(req.URL),
		Kind:      strings.ToLower(strings.TrimSpace(req.Kind)),
		CanManage: currentCaller(c).CanManage,
	}
	result, err := commands.Dispatch[channelsapp.RegisterFeedCommand, *dto.FeedSubscription](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SyncFeed pulls one feed now. A failed pull still answers 200 with the
// error recorded on the result.
func (h ChannelHandler) SyncFeed(c *gin.Context) {
	cmd := channelsapp.SyncFeedCommand{FeedID: strings.TrimSpace(c.Param("id"))}
	result, err := commands.Dispatch[channelsapp.SyncFeedCommand, *dto.FeedSyncResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ChannelHandler) Calendar(c *gin.Context) {
	query := channelsapp.ExportCalendarQuery{UnitID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[channelsapp.ExportCalendarQuery, dto.CalendarExport](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

var _ ChannelHTTP = ChannelHandler{}
