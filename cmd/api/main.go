package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hvac-service-desk/internal/api/http"
	"github.com/spec-kit/hvac-service-desk/internal/api/http/handlers"
	"github.com/spec-kit/hvac-service-desk/internal/auth"
	"github.com/spec-kit/hvac-service-desk/internal/config"
	"github.com/spec-kit/hvac-service-desk/internal/events"
	"github.com/spec-kit/hvac-service-desk/internal/observability"
	"github.com/spec-kit/hvac-service-desk/internal/persistence"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
	"github.com/spec-kit/hvac-service-desk/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	helpRepo := repository.NewHelpRequestRepository(pool)
	equipmentRepo := repository.NewEquipmentTypeRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(userRepo, tokenManager)
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost, logger)
	requestService := service.NewRequestService(requestRepo, commentRepo, historyRepo, equipmentRepo, cfg.Workflow, dispatcher)
	lifecycleService := service.NewLifecycleService(requestRepo, userRepo, dispatcher)
	deadlineService := service.NewDeadlineService(requestRepo, cfg.Workflow, dispatcher)
	escalationService := service.NewEscalationService(helpRepo, requestRepo, lifecycleService, deadlineService, dispatcher)
	statsService := service.NewStatsService(statsRepo, redis.Client, cfg.Workflow.StatsCacheTTL(), logger)

	auditService := service.NewAuditService(logger)
	auditService.RegisterHandlers(dispatcher)

	if err := userService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminUser, cfg.Auth.BootstrapAdminPass, cfg.Auth.BootstrapAdminName); err != nil {
		logger.Fatal("failed to ensure bootstrap admin", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Requests:       handlers.NewRequestsHandler(requestService, lifecycleService, deadlineService),
		Escalations:    handlers.NewEscalationsHandler(escalationService),
		Stats:          handlers.NewStatsHandler(statsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
