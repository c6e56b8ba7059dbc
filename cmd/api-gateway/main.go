package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/grundschule/stundenplan-api/api/swagger"
	"github.com/grundschule/stundenplan-api/internal/handler"
	"github.com/grundschule/stundenplan-api/internal/middleware"
	"github.com/grundschule/stundenplan-api/internal/repository"
	"github.com/grundschule/stundenplan-api/internal/service"
	"github.com/grundschule/stundenplan-api/pkg/cache"
	"github.com/grundschule/stundenplan-api/pkg/config"
	"github.com/grundschule/stundenplan-api/pkg/database"
	"github.com/grundschule/stundenplan-api/pkg/logger"
	corsmiddleware "github.com/grundschule/stundenplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/grundschule/stundenplan-api/pkg/middleware/requestid"
)

// @title Stundenplan API
// @version 1.0.0
// @description Automatic timetable generation for a German Grundschule
// @BasePath /api/v1
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(redisClient, cfg.Solver.ResultCacheTTL, metricsSvc, logr)

	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	timeslotRepo := repository.NewTimeSlotRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	qualificationRepo := repository.NewQualificationRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	domain := service.NewDomainLoader(teacherRepo, classRepo, subjectRepo, timeslotRepo, availabilityRepo, qualificationRepo, requirementRepo)

	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	timeslotSvc := service.NewTimeSlotService(timeslotRepo, validate, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, teacherRepo, validate, logr)
	qualificationSvc := service.NewQualificationService(qualificationRepo, teacherRepo, subjectRepo, validate, logr)
	requirementSvc := service.NewRequirementService(requirementRepo, classRepo, subjectRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, domain, cacheSvc, validate, logr)
	solveSvc := service.NewSolveService(domain, scheduleRepo, nil, cfg.Solver, cacheSvc, metricsSvc, validate, logr)

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.NewTeacherHandler(teacherSvc).Register(api)
	handler.NewClassHandler(classSvc, requirementSvc).Register(api)
	handler.NewSubjectHandler(subjectSvc).Register(api)
	handler.NewTimeSlotHandler(timeslotSvc).Register(api)
	handler.NewAvailabilityHandler(availabilitySvc, qualificationSvc).Register(api)
	handler.NewScheduleHandler(scheduleSvc).Register(api)
	handler.NewSolveHandler(solveSvc).Register(api)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
