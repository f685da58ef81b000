package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentavail/internal/infra/config"
	"rentavail/internal/infra/obs"
)

type Handlers struct {
	Units        UnitHTTP
	Availability AvailabilityHTTP
	Blocks       BlockHTTP
	Quotes       QuoteHTTP
	Bookings     BookingHTTP
	Channels     ChannelHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without touching the global gin mode.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(obsMW.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins(cfg.CORSOrigins),
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", principalHeader, canManageBlockHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	router.Use(CallerMiddleware)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Units != nil {
		api.GET("/units", h.Units.List)
		api.POST("/units", h.Units.Register)
		api.GET("/units/:id", h.Units.Get)
		api.PUT("/units/:id/rate", h.Units.ChangeRate)
		api.POST("/units/:id/suspend", h.Units.Suspend)
	}
	if h.Availability != nil {
		api.GET("/units/:id/occupancy", h.Availability.Occupancy)
		api.POST("/sessions/:sid/units/:id/calendar/navigate", h.Availability.Navigate)
	}
	if h.Blocks != nil {
		api.GET("/units/:id/blocks", h.Blocks.List)
		api.POST("/units/:id/blocks", h.Blocks.Create)
		api.PATCH("/blocks/:id", h.Blocks.Update)
		api.DELETE("/blocks/:id", h.Blocks.Delete)
	}
	if h.Quotes != nil {
		api.GET("/units/:id/quote", h.Quotes.Preview)
		api.POST("/quotes", h.Quotes.Issue)
		api.GET("/quotes/:id", h.Quotes.Get)
	}
	if h.Bookings != nil {
		api.POST("/bookings", h.Bookings.Create)
		api.POST("/bookings/:id/transition", h.Bookings.Transition)
		api.GET("/units/:id/bookings", h.Bookings.ForUnit)
		api.GET("/me/bookings", h.Bookings.Mine)
	}
	if h.Channels != nil {
		api.POST("/units/:id/channel-events", h.Channels.ImportEvent)
		api.POST("/units/:id/feeds", h.Channels.RegisterFeed)
		api.POST("/feeds/:id/sync", h.Channels.SyncFeed)
		api.GET("/units/:id/calendar.ics", h.Channels.Calendar)
	}
	return router
}

func allowedOrigins(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
