package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appconfig "evcharge/internal/config"
	"evcharge/internal/db"
	httpserver "evcharge/internal/http"
	"evcharge/internal/http/handlers"
	"evcharge/internal/http/middleware"
	"evcharge/internal/password"
	redisstore "evcharge/internal/redis"
	"evcharge/internal/repository"
	"evcharge/internal/scheduler"
	"evcharge/internal/service"
	"evcharge/internal/ws"
	libredis "evcharge/libs/redis"

	goredis "github.com/redis/go-redis/v9"
)

// App wires dependencies for the service.
type App struct {
	server    *httpserver.Server
	scheduler *scheduler.Scheduler
	db        *sql.DB
	redis     *goredis.Client
	logger    *zap.Logger
}

// New builds the application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var (
		redisClient  *goredis.Client
		metricsCache service.MetricsCache
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		metricsCache = redisstore.NewMetricsCache(redisClient, cfg.MetricsTTL())
	} else {
		logger.Info("metrics cache disabled, no redis addr configured")
	}

	userRepo := repository.NewUserRepository(sqlDB)
	stationRepo := repository.NewStationRepository(sqlDB)

	hasher := password.NewBcryptHasher(0)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())

	hub := ws.NewHub(logger)

	authSvc := service.NewAuthService(userRepo, hasher, tokenSvc, logger)
	userSvc := service.NewUserService(userRepo)
	stationSvc := service.NewStationService(stationRepo, hub, logger)
	metricsSvc := service.NewMetricsService(stationRepo, metricsCache, logger)

	var statusScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		statusScheduler = scheduler.New(stationRepo, hub, cfg.SchedulerInterval(), nil, logger)
	} else {
		logger.Info("station status scheduler disabled")
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Auth:     handlers.NewAuthHandlers(authSvc),
		Users:    handlers.NewUserHandlers(userSvc),
		Stations: handlers.NewStationHandlers(stationSvc),
		Metrics:  handlers.NewMetricsHandler(metricsSvc),
		Health:   handlers.NewHealthHandler(),
		WS:       hub.HandleWS,
	}, middleware.Auth(tokenSvc, logger))

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.Recovery(logger),
		middleware.Logging(logger),
	)

	return &App{
		server:    server,
		scheduler: statusScheduler,
		db:        sqlDB,
		redis:     redisClient,
		logger:    logger,
	}, nil
}

// Run serves HTTP traffic and the background sweep until ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.server.Run(ctx)
	})
	if a.scheduler != nil {
		group.Go(func() error {
			return a.scheduler.Run(ctx)
		})
	}

	return group.Wait()
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
