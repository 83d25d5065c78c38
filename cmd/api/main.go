package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workdesk/internal/api/http"
	"github.com/spec-kit/workdesk/internal/api/http/handlers"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/channel"
	"github.com/spec-kit/workdesk/internal/config"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/observability"
	"github.com/spec-kit/workdesk/internal/persistence"
	"github.com/spec-kit/workdesk/internal/repository"
	"github.com/spec-kit/workdesk/internal/scheduler"
	"github.com/spec-kit/workdesk/internal/service"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	itemRepo := repository.NewWorkItemRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	timeEntryRepo := repository.NewTimeEntryRepository(pool)
	rosterRepo := repository.NewRosterRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	preferenceRepo := repository.NewPreferenceRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	emailSender := channel.NewEmailSender(cfg.Notification, logger)
	chatPoster := channel.NewChatPoster(cfg.Notification, logger)

	notifier := service.NewNotifierService(service.NotifierDependencies{
		NotificationRepo: notificationRepo,
		PreferenceRepo:   preferenceRepo,
		UserRepo:         userRepo,
		Email:            emailSender,
		Chat:             chatPoster,
		Logger:           logger,
	})
	notifier.Register(dispatcher)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	itemService := service.NewWorkItemService(service.WorkItemDependencies{
		ItemRepo:    itemRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	rosterService := service.NewRosterService(rosterRepo, userRepo)
	branchService := service.NewBranchService(branchRepo)
	timelogService := service.NewTimelogService(timeEntryRepo, itemRepo, nil)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Items:          handlers.NewItemsHandler(itemService),
		Notifications:  handlers.NewNotificationsHandler(notifier),
		Oncall:         handlers.NewOncallHandler(rosterService),
		Time:           handlers.NewTimeHandler(timelogService),
		Branches:       handlers.NewBranchesHandler(branchService),
		AuthMiddleware: authMiddleware,
	})

	if cfg.Scheduler.Enabled {
		var lock scheduler.RunLock = scheduler.NoopRunLock{}
		if redis.Client != nil {
			lock = scheduler.NewRedisRunLock(redis.Client, "workdesk:monitor:", cfg.Scheduler.LockTTL())
		}
		monitor := scheduler.NewMonitor(lock, logger, metrics,
			scheduler.NewSLATask(itemRepo, userRepo, dispatcher, cfg.Scheduler.SLAWindowHours, logger),
			scheduler.NewDigestTask(userRepo, itemRepo, preferenceRepo, notifier, cfg.Scheduler.DailyHourUTC, logger),
			scheduler.NewRotationTask(rosterService, userRepo, notifier, cfg.Scheduler.DailyHourUTC, logger),
		)
		go monitor.Run(ctx)
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
