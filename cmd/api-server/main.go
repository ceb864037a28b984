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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/jtech-innovations/report-card-api/api/swagger"
	"github.com/jtech-innovations/report-card-api/internal/handler"
	"github.com/jtech-innovations/report-card-api/internal/middleware"
	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/repository"
	"github.com/jtech-innovations/report-card-api/internal/service"
	"github.com/jtech-innovations/report-card-api/pkg/cache"
	"github.com/jtech-innovations/report-card-api/pkg/config"
	"github.com/jtech-innovations/report-card-api/pkg/database"
	"github.com/jtech-innovations/report-card-api/pkg/export"
	"github.com/jtech-innovations/report-card-api/pkg/jobs"
	"github.com/jtech-innovations/report-card-api/pkg/logger"
	corsmiddleware "github.com/jtech-innovations/report-card-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jtech-innovations/report-card-api/pkg/middleware/requestid"
	"github.com/jtech-innovations/report-card-api/pkg/storage"
)

// @title Report Card API
// @version 1.0.0
// @description Template driven report card composition and rendering service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, template cache disabled", zap.Error(err))
		redisClient = nil
	}

	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init report storage", zap.Error(err))
	}
	uploadStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	skillRepo := repository.NewSocialSkillRepository(db)
	signatureRepo := repository.NewSignatureRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	batchRepo := repository.NewReportBatchRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	templateSvc := service.NewTemplateService(templateRepo, cacheRepo, validate, logr, service.TemplateServiceConfig{
		CacheEnabled: cfg.Cache.Enabled && redisClient != nil,
		CacheTTL:     cfg.Cache.TemplateTTL,
	})
	templateSvc.SetMetrics(metricsSvc)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	skillSvc := service.NewSocialSkillService(skillRepo, templateSvc, validate, logr)
	commentSvc := service.NewCommentService(commentRepo, validate, logr)
	contextSvc := service.NewContextService(studentRepo, classRepo, gradeRepo, attendanceRepo, skillRepo, signatureRepo, commentRepo, logr)
	uploadSvc := service.NewUploadService(uploadStore, signatureRepo, logr, service.UploadServiceConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	})

	pdfExporter := export.NewPDFExporter(cfg.Uploads.StorageDir)
	reportSvc := service.NewReportCardService(batchRepo, templateSvc, contextSvc, pdfExporter, reportStore, signer, logr, service.ReportCardServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})

	queue := jobs.NewQueue("report-cards", reportSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc.SetQueue(queue)
	reportSvc.SetMetrics(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()
	reportSvc.StartCleanup(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	classHandler := handler.NewClassHandler(classSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	skillHandler := handler.NewSocialSkillHandler(skillSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	reportHandler := handler.NewReportCardHandler(reportSvc)
	uploadHandler := handler.NewUploadHandler(uploadSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.Static("/uploads", cfg.Uploads.StorageDir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	v1 := r.Group(prefix)
	{
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/refresh", authHandler.Refresh)

		// Signed token downloads carry their own auth.
		v1.GET("/export/:token", reportHandler.Download)

		authed := v1.Group("")
		authed.Use(middleware.JWT(authSvc))
		{
			authed.GET("/auth/me", authHandler.Me)

			authed.GET("/report-templates/fields", templateHandler.Fields)
			templates := authed.Group("/report-templates")
			templates.Use(middleware.RequireSchool("school_code"))
			{
				templates.GET("/:school_code", templateHandler.Get)
				templates.PUT("/:school_code",
					middleware.RequireRoles(models.RoleSuperuser),
					templateHandler.Save)
			}

			staff := middleware.RequireRoles(models.RoleSuperuser, models.RoleAdmin, models.RoleTeacher)
			admins := middleware.RequireRoles(models.RoleSuperuser, models.RoleAdmin)

			authed.GET("/students", staff, studentHandler.List)
			authed.GET("/students/:id", staff, studentHandler.Get)
			authed.POST("/students", admins, studentHandler.Create)
			authed.PUT("/students/:id", admins, studentHandler.Update)
			authed.DELETE("/students/:id", admins, studentHandler.Delete)

			authed.GET("/classes", staff, classHandler.List)
			authed.GET("/classes/:id", staff, classHandler.Get)
			authed.POST("/classes", admins, classHandler.Create)
			authed.PUT("/classes/:id", admins, classHandler.Update)
			authed.DELETE("/classes/:id", admins, classHandler.Delete)

			authed.PUT("/grades", staff, gradeHandler.Upsert)
			authed.GET("/students/:id/grades", staff, gradeHandler.ListByStudent)
			authed.GET("/classes/:id/grades", staff, gradeHandler.ListByClass)

			authed.PUT("/attendance", staff, attendanceHandler.BulkUpsert)
			authed.GET("/students/:id/attendance", staff, attendanceHandler.GetSummary)
			authed.GET("/classes/:id/attendance", staff, attendanceHandler.ListByClass)

			authed.PUT("/students/:id/social-skills", staff, skillHandler.Replace)
			authed.GET("/students/:id/social-skills", staff, skillHandler.ListByStudent)

			authed.PUT("/comments", staff, commentHandler.Upsert)
			authed.GET("/students/:id/comments", staff, commentHandler.Get)

			authed.POST("/report-cards/generate", staff, reportHandler.Generate)
			authed.GET("/report-cards/:id", staff, reportHandler.Status)
			authed.POST("/report-cards/preview", staff, reportHandler.Preview)

			authed.POST("/uploads", admins, uploadHandler.UploadImage)
			authed.POST("/signatures", admins, uploadHandler.UploadSignature)
			authed.GET("/signatures", staff, uploadHandler.ListSignatures)
		}
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
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
}
