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

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-hub/scheduling-api/api/swagger"
	"github.com/campus-hub/scheduling-api/internal/handler"
	"github.com/campus-hub/scheduling-api/internal/middleware"
	"github.com/campus-hub/scheduling-api/internal/models"
	"github.com/campus-hub/scheduling-api/internal/repository"
	"github.com/campus-hub/scheduling-api/internal/service"
	"github.com/campus-hub/scheduling-api/pkg/cache"
	"github.com/campus-hub/scheduling-api/pkg/config"
	"github.com/campus-hub/scheduling-api/pkg/database"
	"github.com/campus-hub/scheduling-api/pkg/logger"
	corsmiddleware "github.com/campus-hub/scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-hub/scheduling-api/pkg/middleware/requestid"
)

// @title Campus Hub Scheduling API
// @version 1.0.0
// @description Classroom assignment, schedule exceptions and weekly schedule resolution
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Caching is an optimisation; the API still serves without it.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	slotRepo := repository.NewScheduleSlotRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	classRepo := repository.NewClassRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	exceptionRepo := repository.NewExceptionRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
	}

	notifierSvc := service.NewNotifierService(cfg.Notifier, metricsSvc, logr)
	notifierSvc.Start(ctx)
	defer notifierSvc.Stop()

	availabilitySvc := service.NewAvailabilityService(roomRepo, slotRepo, exceptionRepo, cfg.Scheduling.LabRoomTypeIDs, nil, logr)
	assignmentSvc := service.NewAssignmentService(slotRepo, roomRepo, cacheSvc, notifierSvc, metricsSvc, nil, logr)
	exceptionSvc := service.NewExceptionService(exceptionRepo, slotRepo, classRepo, availabilitySvc, assignmentSvc, notifierSvc, nil, logr)
	weeklySvc := service.NewWeeklyScheduleService(slotRepo, exceptionRepo, timeSlotRepo, nil, logr)
	statsSvc := service.NewStatsService(slotRepo, classRepo, cacheSvc, logr)

	// Handlers.
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	exceptionHandler := handler.NewExceptionHandler(exceptionSvc)
	weeklyHandler := handler.NewWeeklyHandler(weeklySvc)
	statsHandler := handler.NewStatsHandler(statsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.GET("/rooms/available", availabilityHandler.ListAvailable)
		api.GET("/schedule/weekly", weeklyHandler.Weekly)
		api.GET("/schedule/stats", statsHandler.Stats)

		admin := api.Group("", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("/schedule/assign", assignmentHandler.Assign)
			admin.POST("/schedule/unassign", assignmentHandler.Unassign)
			admin.PUT("/schedule-exceptions/:id", exceptionHandler.Update)
			admin.POST("/schedule-exceptions/:id/approve", exceptionHandler.Approve)
			admin.DELETE("/schedule-exceptions/:id", exceptionHandler.Delete)
		}

		api.POST("/schedule-exceptions",
			middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher),
			exceptionHandler.Create,
		)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
