package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uniplanner-api/api/swagger"
	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/handler"
	"github.com/noah-isme/uniplanner-api/internal/repository"
	"github.com/noah-isme/uniplanner-api/internal/service"
	"github.com/noah-isme/uniplanner-api/pkg/cache"
	"github.com/noah-isme/uniplanner-api/pkg/config"
	"github.com/noah-isme/uniplanner-api/pkg/database"
	"github.com/noah-isme/uniplanner-api/pkg/export"
	"github.com/noah-isme/uniplanner-api/pkg/jobs"
	"github.com/noah-isme/uniplanner-api/pkg/logger"
	"github.com/noah-isme/uniplanner-api/pkg/storage"
)

// @title UniPlanner API
// @version 1.0.0
// @description Curriculum eligibility, course selection and study planning for university students
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	version, err := database.Migrate(ctx, db, logr)
	if err != nil {
		return err
	}
	logr.Info("schema migrated", zap.Int64("version", version))

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-process state", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	policy := curriculum.Policy{
		FreeElectiveCode: cfg.Curriculum.FreeElectiveCode,
		FreeElectiveCap:  cfg.Curriculum.FreeElectiveCap,
	}
	if policy.FreeElectiveCode == "" || policy.FreeElectiveCap <= 0 {
		policy = curriculum.DefaultPolicy()
	}

	courseRepo := repository.NewCourseRepository(db)
	recordRepo := repository.NewAcademicRecordRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	reportRepo := repository.NewReportRepository(db)
	sessionRepo := repository.NewSelectionSessionRepository(redisClient, cfg.Selection.SessionTTL)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
	catalogSvc := service.NewCatalogService(courseRepo, policy, cacheSvc, metrics, cfg.Catalog.CacheTTL, logr)
	eligibilitySvc := service.NewEligibilityService(catalogSvc, recordRepo, metrics, logr)
	selectionSvc := service.NewSelectionService(catalogSvc, sessionRepo, policy, validate, metrics, logr)
	authSvc := service.NewAuthService(userRepo, catalogSvc, selectionSvc, policy, validate, metrics, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	studentSvc := service.NewStudentService(userRepo, recordRepo, taskRepo, catalogSvc, policy, validate, metrics, logr)
	taskSvc := service.NewTaskService(taskRepo, catalogSvc, validate, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, validate, logr)

	handlers := routeHandlers{
		auth:      handler.NewAuthHandler(authSvc),
		courses:   handler.NewCourseHandler(catalogSvc, eligibilitySvc),
		selection: handler.NewSelectionHandler(selectionSvc),
		students:  handler.NewStudentHandler(studentSvc),
		semaforo:  handler.NewSemaforoHandler(eligibilitySvc),
		tasks:     handler.NewTaskHandler(taskSvc),
		calendar:  handler.NewCalendarHandler(calendarSvc),
		metrics:   handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient)),
	}

	if cfg.Reports.Enabled {
		reports, queue, err := newReporting(cfg, reportRepo, eligibilitySvc, taskSvc, validate, metrics, logr)
		if err != nil {
			return err
		}
		queue.Start(ctx)
		defer queue.Stop()
		reports.RecoverPendingJobs(ctx)
		go reports.StartCleanup(ctx)
		handlers.reports = handler.NewReportHandler(reports)
	}

	router := newRouter(cfg, logr, authSvc, metrics, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newReporting(
	cfg *config.Config,
	repo *repository.ReportRepository,
	progress *service.EligibilityService,
	tasks *service.TaskService,
	validate *validator.Validate,
	metrics *service.MetricsService,
	logr *zap.Logger,
) (*service.ReportService, *jobs.Queue, error) {
	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exporter := service.NewExportService(progress, tasks, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	worker := service.NewReportWorker(repo, exporter, metrics, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})

	reports := service.NewReportService(repo, queue, exporter, validate, metrics, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})
	return reports, queue, nil
}

func readinessChecks(db handler.Pinger, client *redis.Client) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{"postgres": db}
	if client != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	return checks
}
