package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/handler"
	"github.com/noah-isme/popspot-calendar/internal/middleware"
	"github.com/noah-isme/popspot-calendar/internal/service"
	"github.com/noah-isme/popspot-calendar/pkg/config"
	"github.com/noah-isme/popspot-calendar/pkg/logger"
	corsmiddleware "github.com/noah-isme/popspot-calendar/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/popspot-calendar/pkg/middleware/requestid"
)

type routes struct {
	calendar *handler.CalendarHandler
	metrics  *handler.MetricsHandler
	viewers  *service.ViewerService
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, h routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	r.GET("/metrics/summary", h.metrics.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta(), middleware.Viewer(h.viewers))

	cal := api.Group("/calendar")
	cal.GET("/month", h.calendar.Month)
	cal.GET("/simple", h.calendar.Simple)
	cal.GET("/events", h.calendar.Events)
	cal.POST("/state/transitions", h.calendar.Transition)
	cal.POST("/share", h.calendar.CreateShare)
	cal.GET("/share/:token", h.calendar.ResolveShare)

	events := api.Group("/events")
	events.GET("/popular", h.calendar.Popular)
	events.GET("/export", h.calendar.Export)

	return r
}
