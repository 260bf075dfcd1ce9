package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/collegeportal/admission-api/api/swagger"
	"github.com/collegeportal/admission-api/internal/handler"
	"github.com/collegeportal/admission-api/internal/middleware"
	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/payment"
	"github.com/collegeportal/admission-api/internal/repository"
	"github.com/collegeportal/admission-api/internal/service"
	"github.com/collegeportal/admission-api/pkg/cache"
	"github.com/collegeportal/admission-api/pkg/config"
	"github.com/collegeportal/admission-api/pkg/database"
	"github.com/collegeportal/admission-api/pkg/jobs"
	"github.com/collegeportal/admission-api/pkg/logger"
	corsmiddleware "github.com/collegeportal/admission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/collegeportal/admission-api/pkg/middleware/requestid"
	"github.com/collegeportal/admission-api/pkg/storage"
)

// @title College Admission Portal API
// @version 1.0.0
// @description Online admission portal: wizard, documents, payments and review.
// @BasePath /api/v1
// @schemes http https
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	jobRepo := repository.NewTranscriptJobRepository(db)
	courseRepo := repository.NewCourseRepository()

	var drafts repository.DraftRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		drafts = repository.NewRedisDraftRepository(redisClient, cfg.Admissions.DraftTTL)
	} else {
		logr.Info("redis disabled, keeping admission drafts in memory")
		drafts = repository.NewMemoryDraftRepository(cfg.Admissions.DraftTTL)
	}

	// Blob stores.
	documentStore, err := newBlobStore(cfg.Documents.Backend, cfg.Documents)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}
	transcriptStore := documentStore
	if cfg.Documents.Backend != "s3" {
		transcriptStore, err = storage.NewLocalStorage(cfg.Transcripts.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init transcript storage", "error", err)
		}
	}

	documentSigner := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	transcriptSigner := storage.NewSignedURLSigner(cfg.Transcripts.SignedURLSecret, cfg.Transcripts.SignedURLTTL)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "admission-api",
	})

	gateway := payment.NewSimulatedGateway(cfg.Payments.ProcessingTime, float64(cfg.Payments.DeclineRate)/100)
	processor := payment.NewProcessor(gateway, logr)

	admissionSvc := service.NewAdmissionService(drafts, appRepo, courseRepo, userRepo, processor, nil, logr, service.AdmissionConfig{
		ApplicationFee: cfg.Admissions.ApplicationFee,
		AcademicYear:   cfg.Admissions.AcademicYear,
	})
	admissionSvc.AttachMetrics(metricsSvc)

	courseSvc := service.NewCourseService(courseRepo, logr)
	documentSvc := service.NewDocumentService(admissionSvc, documentStore, documentSigner, logr)
	adminSvc := service.NewAdminService(appRepo, courseRepo, userRepo, nil, logr, cfg.Admissions.AcademicYear)

	var transcriptSvc *service.TranscriptService
	var transcriptQueue *jobs.Queue
	if cfg.Transcripts.Enabled {
		worker := service.NewTranscriptWorker(jobRepo, appRepo, courseRepo, nil, transcriptStore, transcriptSigner, cfg.Transcripts.WorkerRetries, logr)
		transcriptQueue = jobs.NewQueue("transcripts", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Transcripts.WorkerConcurrency,
			MaxRetries: cfg.Transcripts.WorkerRetries,
			Logger:     logr,
		})
		transcriptQueue.Start(ctx)
		defer transcriptQueue.Stop()

		transcriptSvc = service.NewTranscriptService(jobRepo, appRepo, courseRepo, transcriptQueue, transcriptSigner, transcriptStore, logr)
		transcriptSvc.StartCleanup(ctx, cfg.Transcripts.CleanupInterval, cfg.Transcripts.SignedURLTTL)
	}

	seedAdminAccount(ctx, cfg.Seed, userRepo, logr)

	router := buildRouter(cfg, logr, metricsSvc, authSvc, admissionSvc, courseSvc, documentSvc, adminSvc, transcriptSvc, userRepo)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func newBlobStore(backend string, cfg config.DocumentsConfig) (storage.BlobStore, error) {
	switch backend {
	case "s3":
		return storage.NewS3Storage(cfg)
	default:
		return storage.NewLocalStorage(cfg.StorageDir)
	}
}

func buildRouter(
	cfg *config.Config,
	logr *zap.Logger,
	metricsSvc *service.MetricsService,
	authSvc *service.AuthService,
	admissionSvc *service.AdmissionService,
	courseSvc *service.CourseService,
	documentSvc *service.DocumentService,
	adminSvc *service.AdminService,
	transcriptSvc *service.TranscriptService,
	userRepo *repository.UserRepository,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	authHandler := handler.NewAuthHandler(authSvc)
	admissionHandler := handler.NewAdmissionHandler(admissionSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	statusHandler := handler.NewStatusHandler(admissionSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// Public catalog and status check.
	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)
	api.GET("/announcements", courseHandler.Announcements)
	api.GET("/important-dates", courseHandler.ImportantDates)
	api.GET("/status/:id", statusHandler.Lookup)

	student := api.Group("", middleware.JWT(authSvc))
	wizard := student.Group("/admission")
	wizard.GET("/draft", admissionHandler.Draft)
	wizard.PUT("/steps/personal", admissionHandler.SubmitPersonal)
	wizard.PUT("/steps/educational", admissionHandler.SubmitEducational)
	wizard.PUT("/steps/course", admissionHandler.SubmitCourse)
	wizard.POST("/steps/documents", admissionHandler.SubmitDocuments)
	wizard.POST("/documents/:slot", documentHandler.Upload)
	wizard.DELETE("/documents/:slot", documentHandler.Remove)
	wizard.POST("/back", admissionHandler.Back)
	wizard.POST("/edit", admissionHandler.EditStep)
	wizard.POST("/review/confirm", admissionHandler.ConfirmReview)
	wizard.POST("/payment", admissionHandler.Pay)
	wizard.GET("/applications", admissionHandler.MyApplications)
	student.GET("/documents/download/:token", documentHandler.Download)

	if transcriptSvc != nil {
		transcriptHandler := handler.NewTranscriptHandler(transcriptSvc)
		student.POST("/transcripts", transcriptHandler.Request)
		student.GET("/transcripts/:id", transcriptHandler.Status)
		api.GET("/transcripts/download/:token", transcriptHandler.Download)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/applications", adminHandler.List)
	admin.GET("/applications/:id", adminHandler.Get)
	admin.PATCH("/applications/:id/status", adminHandler.UpdateStatus)
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/metrics", metricsHandler.Summary)
	if cfg.Exports.Enabled {
		admin.GET("/applications/export",
			middleware.Audit(userRepo, models.AuditActionExport, "application"),
			adminHandler.Export)
	}

	return r
}

// seedAdminAccount provisions the admissions office login on first boot. A
// blank password disables seeding.
func seedAdminAccount(ctx context.Context, cfg config.SeedConfig, users *repository.UserRepository, logr *zap.Logger) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	if _, err := users.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logr.Sugar().Warnw("failed to check seed admin", "error", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logr.Sugar().Warnw("failed to hash seed admin password", "error", err)
		return
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		FullName:     cfg.AdminName,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, user); err != nil {
		logr.Sugar().Warnw("failed to seed admin account", "error", err)
		return
	}
	logr.Sugar().Infow("seeded admin account", "email", cfg.AdminEmail)
}
