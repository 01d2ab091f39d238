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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-records/api/swagger"
	"github.com/noah-isme/school-records/internal/handler"
	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/repository"
	"github.com/noah-isme/school-records/internal/router"
	"github.com/noah-isme/school-records/internal/service"
	"github.com/noah-isme/school-records/internal/view"
	"github.com/noah-isme/school-records/migrations"
	"github.com/noah-isme/school-records/pkg/cache"
	"github.com/noah-isme/school-records/pkg/config"
	"github.com/noah-isme/school-records/pkg/database"
	"github.com/noah-isme/school-records/pkg/logger"
	"github.com/noah-isme/school-records/pkg/storage"
	"github.com/noah-isme/school-records/pkg/validation"
)

const shutdownTimeout = 15 * time.Second

// @title School Records
// @version 1.0.0
// @description Server rendered school records site: accounts, subjects, grades, GPA and announcements
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB, migrations.FS, ".", "up"); err != nil {
			return err
		}
		logr.Info("database migrations applied")
	}

	var redisClient redis.UniversalClient
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	media, err := storage.NewLocalStorage(cfg.Media.StorageDir)
	if err != nil {
		return fmt.Errorf("init media storage: %w", err)
	}
	exports, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validation.Default()
	metrics := service.NewMetricsService()

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	courses := repository.NewCourseRepository(db)
	subjects := repository.NewSubjectRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	grades := repository.NewGradeRepository(db)
	gpaRecords := repository.NewGPARepository(db)
	announcements := repository.NewAnnouncementRepository(db)

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Cache.DashboardTTL, logr, cfg.Cache.Enabled)

	authSvc := service.NewAuthService(users, media, metrics, validate, logr, service.AuthConfig{
		SessionSecret: cfg.Session.Secret,
		SessionTTL:    cfg.Session.TTL,
		Issuer:        cfg.Session.Issuer,
	})
	profileSvc := service.NewProfileService(profiles, users, courses, media, service.MediaConfig{
		MaxFileSizeBytes: cfg.Media.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Media.AllowedMIMEs,
	}, validate, logr)
	catalogSvc := service.NewCatalogService(service.CatalogServiceParams{
		Courses:     courses,
		Subjects:    subjects,
		Users:       users,
		Enrollments: enrollments,
		Grades:      grades,
		GPA:         gpaRecords,
		Audit:       users,
		Cache:       cacheSvc,
		Validator:   validate,
		Logger:      logr,
	})
	enrollmentSvc := service.NewEnrollmentService(enrollments, users, subjects, users, cacheSvc, validate, logr)
	gradeSvc := service.NewGradeService(grades, users, cacheSvc, metrics, logr)
	gpaSvc := service.NewGPAService(grades, gpaRecords, users, users, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcements, subjects, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Enrollments:   enrollments,
		Subjects:      subjects,
		Grades:        gradeSvc,
		Announcements: announcementSvc,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Cache.DashboardTTL},
	})
	exportSvc := service.NewExportService(gradeSvc, profiles, exports, signer, metrics, logr)

	templates, err := view.Load()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	session := middleware.SessionConfig{CookieName: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	engine := router.New(router.Config{
		Templates:    templates,
		Logger:       logr,
		Metrics:      metrics,
		Auth:         authSvc,
		Session:      session,
		FlashSecret:  cfg.Session.FlashSecret,
		AllowOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:   cfg.Env != config.EnvProduction,

		AuthHandler:         handler.NewAuthHandler(authSvc, session),
		ProfileHandler:      handler.NewProfileHandler(profileSvc, authSvc, catalogSvc, session),
		DashboardHandler:    handler.NewDashboardHandler(dashboardSvc),
		SubjectHandler:      handler.NewSubjectHandler(catalogSvc),
		GradeHandler:        handler.NewGradeHandler(gradeSvc),
		ExportHandler:       handler.NewExportHandler(exportSvc),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementSvc),
		AdminHandler:        handler.NewAdminHandler(catalogSvc, enrollmentSvc, gpaSvc),
		MetricsHandler:      handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case sig := <-shutdown:
		logr.Info("shutdown requested", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown: %w", err)
		}
	}
	return nil
}
