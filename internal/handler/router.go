package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/handler/api"
	"courier-escrow/internal/handler/middleware"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Booking *api.BookingHandler
	Review  *api.ReviewHandler
	Webhook *api.WebhookHandler
}

func NewHandlers(booking *api.BookingHandler, review *api.ReviewHandler, webhook *api.WebhookHandler) Handlers {
	return Handlers{Booking: booking, Review: review, Webhook: webhook}
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	recorder *metrics.Recorder,
	limiter *middleware.RateLimiter,
	logger *middleware.Logger,
) {
	setupMiddleware(engine, cfg, recorder, logger)
	setupRoutes(engine, cfg, handlers, authMiddleware, recorder, limiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, recorder *metrics.Recorder, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.Middleware())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.Metrics(recorder))
	}
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	recorder *metrics.Recorder,
	limiter *middleware.RateLimiter,
) {
	engine.GET("/health", healthCheck)

	if cfg.Metrics.Enabled {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{})))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	webhooks := engine.Group("/webhooks")
	webhooks.Use(limiter.Middleware())
	addRoutes(webhooks, []route{
		{Method: http.MethodPost, Path: "/payments", Handler: h.Webhook.HandlePayment},
	})

	apiGroup := engine.Group("/api")
	apiGroup.Use(limiter.Middleware(), authMiddleware.RequireAuth())
	{
		consumerOnly := authMiddleware.RequireRole(identity.RoleConsumer)
		refunders := authMiddleware.RequireRole(identity.RoleProvider, identity.RoleAdmin)

		bookings := apiGroup.Group("/bookings")
		addRoutes(bookings, []route{
			{Method: http.MethodPost, Path: "", Handler: h.Booking.Create, Mw: []gin.HandlerFunc{consumerOnly}},
			{Method: http.MethodGet, Path: "", Handler: h.Booking.List},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
			{Method: http.MethodGet, Path: "/:id/events", Handler: h.Booking.Events},
			{Method: http.MethodPost, Path: "/:id/accept", Handler: h.Booking.Accept},
			{Method: http.MethodPost, Path: "/:id/start", Handler: h.Booking.Start},
			{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Booking.Complete},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Booking.Cancel},
			{Method: http.MethodPost, Path: "/:id/capture", Handler: h.Booking.Capture},
			{Method: http.MethodPost, Path: "/:id/refunds", Handler: h.Booking.Refund, Mw: []gin.HandlerFunc{refunders}},
		})

		addRoutes(apiGroup.Group("/reviews"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Review.Create},
		})

		addRoutes(apiGroup.Group("/users"), []route{
			{Method: http.MethodGet, Path: "/:id/rating", Handler: h.Review.RatingStats},
			{Method: http.MethodGet, Path: "/:id/reviews", Handler: h.Review.ListByUser},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
