package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/eduboard/notice-api/internal/config"
	"github.com/eduboard/notice-api/internal/handler"
	authHandler "github.com/eduboard/notice-api/internal/handler/auth"
	groupHandler "github.com/eduboard/notice-api/internal/handler/group"
	notificationHandler "github.com/eduboard/notice-api/internal/handler/notification"
	userHandler "github.com/eduboard/notice-api/internal/handler/user"
	"github.com/eduboard/notice-api/internal/middleware"
	"github.com/eduboard/notice-api/internal/repository/postgres"
	"github.com/eduboard/notice-api/internal/router"
	authService "github.com/eduboard/notice-api/internal/service/auth"
	groupService "github.com/eduboard/notice-api/internal/service/group"
	notificationService "github.com/eduboard/notice-api/internal/service/notification"
	userService "github.com/eduboard/notice-api/internal/service/user"
	"github.com/eduboard/notice-api/pkg/auth"
	"github.com/eduboard/notice-api/pkg/logger"
	"github.com/eduboard/notice-api/pkg/metrics"
	"github.com/eduboard/notice-api/pkg/security"
	"github.com/eduboard/notice-api/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	store, err := storage.NewLocalStore(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	groupRepo := postgres.NewGroupRepository(baseRepo)
	notificationRepo := postgres.NewNotificationRepository(baseRepo)
	viewRepo := postgres.NewViewRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	authSvc := authService.NewService(userRepo, groupRepo, jwtSvc, hasher)
	notificationSvc := notificationService.NewService(notificationRepo, groupRepo, viewRepo, outboxRepo, store, appLogger)
	groupSvc := groupService.NewService(groupRepo, userRepo)
	userSvc := userService.NewService(userRepo, groupRepo, hasher)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, userRepo)

	// Handlers
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	notificationH := notificationHandler.NewHandler(notificationSvc)
	groupH := groupHandler.NewHandler(groupSvc)
	userH := userHandler.NewHandler(userSvc)

	m := metrics.NewMetrics("notice", "api")

	r := router.NewRouter(
		authMiddleware,
		authH,
		notificationH,
		groupH,
		userH,
		h,
		m,
		router.RouterConfig{
			RateLimit:  rate.Limit(100),
			RateBurst:  200,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
