package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/opencampus-io/registrar-api/api/swagger"
	"github.com/opencampus-io/registrar-api/internal/handler"
	"github.com/opencampus-io/registrar-api/internal/middleware"
	"github.com/opencampus-io/registrar-api/internal/repository"
	"github.com/opencampus-io/registrar-api/internal/service"
	"github.com/opencampus-io/registrar-api/pkg/cache"
	"github.com/opencampus-io/registrar-api/pkg/config"
	"github.com/opencampus-io/registrar-api/pkg/database"
	"github.com/opencampus-io/registrar-api/pkg/jobs"
	"github.com/opencampus-io/registrar-api/pkg/logger"
	corsmiddleware "github.com/opencampus-io/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/opencampus-io/registrar-api/pkg/middleware/requestid"
)

// @title Campus Registrar - Courses API
// @version 1.0.0
// @description Course catalog records
// @BasePath /
// @schemes http

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

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheRepo != nil)

	invalidations := jobs.NewQueue("cache-invalidation", func(ctx context.Context, job jobs.Job) error {
		key, ok := job.Payload.(string)
		if !ok {
			return nil
		}
		return cacheSvc.Invalidate(ctx, key)
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	invalidations.Start(context.Background())
	defer invalidations.Stop()

	courseRepo := repository.NewCourseRepository(db)
	courseSvc := service.NewCourseService(courseRepo, validator.New(), cacheSvc, invalidations, logr)
	courseHandler := handler.NewCourseHandler(courseSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	courses := api.Group("/courses")
	courses.POST("", courseHandler.Create)
	courses.GET("", courseHandler.Stream)
	courses.GET("/:courseId", courseHandler.Get)
	courses.PUT("/:courseId", courseHandler.Update)
	courses.DELETE("/:courseId", courseHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("courses api starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
