package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/popspot-calendar/api/swagger"
	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/handler"
	"github.com/noah-isme/popspot-calendar/internal/ics"
	"github.com/noah-isme/popspot-calendar/internal/query"
	"github.com/noah-isme/popspot-calendar/internal/repository"
	"github.com/noah-isme/popspot-calendar/internal/service"
	"github.com/noah-isme/popspot-calendar/internal/session"
	"github.com/noah-isme/popspot-calendar/internal/source"
	"github.com/noah-isme/popspot-calendar/pkg/cache"
	"github.com/noah-isme/popspot-calendar/pkg/config"
	"github.com/noah-isme/popspot-calendar/pkg/database"
	"github.com/noah-isme/popspot-calendar/pkg/export"
	"github.com/noah-isme/popspot-calendar/pkg/logger"
	"github.com/noah-isme/popspot-calendar/pkg/sharelink"
)

// @title PopSpot Calendar API
// @version 1.0.0
// @description Calendar query state, month grids and filtered event lists for exhibitions and pop-ups.
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Calendar.Location()
	bounds := calendar.YearBounds{Min: cfg.Calendar.MinYear, Max: cfg.Calendar.MaxYear}
	codec := query.NewCodec(query.WithBounds(bounds), query.WithLocation(loc))
	metricsSvc := service.NewMetricsService()
	pingers := map[string]handler.Pinger{}

	var (
		backend source.EventSource
		likes   *repository.LikeRepository
	)
	switch cfg.Source.Backend {
	case config.SourceICS:
		feeds, err := ics.LoadFeeds(cfg.Source.ICSSourcesFile)
		if err != nil {
			logr.Fatal("failed to load ics sources", zap.String("file", cfg.Source.ICSSourcesFile), zap.Error(err))
		}
		backend = ics.NewSource(feeds, ics.NewFetcher(cfg.Source.ICSFetchTimeout, logr), loc, logr)
		logr.Info("using ics event source", zap.Int("feeds", len(feeds)))
	default:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := database.NewPostgres(dbCtx, cfg.Database)
		cancel()
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close()
		events := repository.NewEventRepository(db)
		backend = events
		likes = repository.NewLikeRepository(db)
		pingers["postgres"] = events
	}

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := cache.NewRedis(redisCtx, cfg.Redis)
		cancel()
		if err != nil {
			logr.Warn("summary cache disabled, redis unreachable", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client, cfg.Redis.KeyPrefix, logr)
			defer cacheRepo.Close()
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
			pingers["redis"] = cacheRepo
		}
	}
	instrumented := service.NewInstrumentedSource(backend, cacheSvc, metricsSvc, cfg.Cache.TTL, logr)

	opts := session.Options{
		Weeks:     cfg.Calendar.GridWeeks,
		WeekStart: calendar.ParseWeekStart(cfg.Calendar.WeekStart),
		Locale:    calendar.MatchLocale(cfg.Calendar.Locale),
	}
	calendarSvc := service.NewCalendarService(codec, instrumented, opts, metricsSvc, logr)
	exportSvc := service.NewExportService(calendarSvc, export.NewCSVExporter(true), export.NewPDFExporter(""))
	shareSvc := service.NewShareService(calendarSvc, sharelink.NewSigner(cfg.Share.Secret, cfg.Share.TTL), cfg.Share.BaseURL, logr)
	var likeReader interface {
		LikedEventIDs(ctx context.Context, userID string) ([]string, error)
	}
	if likes != nil {
		likeReader = likes
	}
	viewerSvc := service.NewViewerService(cfg.JWT.Secret, likeReader, logr)

	if cfg.Warmup.Enabled && cacheSvc.Enabled() {
		warmup := service.NewWarmupService(instrumented, time.Now, loc, bounds, service.WarmupConfig{
			Schedule:    cfg.Warmup.Schedule,
			MonthsAhead: cfg.Warmup.MonthsAhead,
			Workers:     cfg.Warmup.Workers,
			Timeout:     cfg.Warmup.Timeout,
		}, metricsSvc, logr)
		if err := warmup.Start(ctx); err != nil {
			logr.Fatal("failed to start summary warm-up", zap.Error(err))
		}
		defer warmup.Stop()
	}

	router := newRouter(cfg, logr, metricsSvc, routes{
		calendar: handler.NewCalendarHandler(calendarSvc, exportSvc, shareSvc),
		metrics:  handler.NewMetricsHandler(metricsSvc, pingers),
		viewers:  viewerSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "source", cfg.Source.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
