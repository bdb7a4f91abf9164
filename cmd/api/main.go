package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/google"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/repository"
	"shareit/internal/service"
	"shareit/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, baseLogger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(baseLogger, "api-main")

	db, err := initDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	defer func() { _ = repository.Close(redisClient) }()

	eventBus := events.NewEventBus()
	if nc := initNATS(cfg, eventBus, logger); nc != nil {
		defer nc.Close()
	}
	initTelegram(cfg, eventBus, logging.Component(baseLogger, "telegram"))

	var syncWorker domain.SyncWorker
	if sheetsWorker := initSheetsWorker(ctx, cfg, db, redisClient, logging.Component(baseLogger, "sheets-worker")); sheetsWorker != nil {
		go sheetsWorker.Start(ctx)
		syncWorker = sheetsWorker
	}

	services := buildServices(cfg, db, redisClient, eventBus, syncWorker, logging.Component(baseLogger, "service"))

	if err := seedData(ctx, services, logger); err != nil {
		return err
	}

	go database.NewBackupService(cfg.Database.Path, cfg.Backup, logging.Component(baseLogger, "backup")).Start(ctx)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API, db, baseLogger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
		go grpcServer.WatchDatabase(ctx, 15*time.Second)
	}

	httpServer := api.NewHTTPServer(cfg.API, services, db, initRateLimiter(cfg, redisClient, logger), logging.Component(baseLogger, "http"))

	startMetrics(ctx, cfg, logger)

	return startServers(ctx, grpcServer, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, baseLogger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initNATS(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) *nats.Conn {
	if cfg.Events.NatsURL == "" {
		return nil
	}

	nc, err := events.ConnectNATS(cfg.Events.NatsURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("nats connection failed, booking events stay in-process")
		return nil
	}
	events.NewNATSForwarder(nc, cfg.Events.SubjectPrefix, logger).Attach(bus)

	logger.Info().Str("url", cfg.Events.NatsURL).Msg("nats connected")
	return nc
}

func initTelegram(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	service.NewTelegramService(bot, cfg.Telegram.ChatID, logger).Attach(bus)

	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
}

func initSheetsWorker(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	redisClient *redis.Client,
	logger *zerolog.Logger,
) *worker.SheetsWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingsSpreadsheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheets")
		return nil
	}
	if err := sheetsService.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets row cache warm-up failed")
	}

	logger.Info().Msg("google sheets connected")
	if failed, err := db.GetFailedSyncTasks(ctx); err != nil {
		logger.Warn().Err(err).Msg("load failed sync tasks")
	} else if len(failed) > 0 {
		logger.Warn().Int("count", len(failed)).Msg("sheets sync has failed tasks, see the dead-letter list")
	}
	return worker.NewSheetsWorker(db, sheetsService, redisClient, worker.DefaultRetryPolicy(), logger)
}

func buildServices(
	cfg *config.Config,
	db *database.DB,
	redisClient *redis.Client,
	eventBus *events.EventBus,
	syncWorker domain.SyncWorker,
	logger *zerolog.Logger,
) api.Services {
	ttl := time.Duration(cfg.Redis.UserCacheTTLSec) * time.Second

	var userCache domain.UserCache = repository.NewMemoryUserCache(ttl)
	if redisClient != nil {
		userCache = repository.NewFailoverUserCache(repository.NewRedisUserCache(redisClient, ttl), userCache, logger)
	}

	checker := service.NewConsistencyChecker()
	users := service.NewUserService(db, userCache, db, checker, logger)
	items := service.NewItemService(db, db, db, db, checker, logger)
	bookings := service.NewBookingService(db, db, checker, eventBus, syncWorker, logger)
	requests := service.NewRequestService(db, db, checker, logger)
	checker.Wire(users, items, bookings)

	return api.Services{
		Users:    users,
		Items:    items,
		Bookings: bookings,
		Requests: requests,
	}
}

func initRateLimiter(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.RateLimiter {
	rl := cfg.API.RateLimit
	if !rl.Enabled {
		return nil
	}

	var limiter domain.RateLimiter = repository.NewMemoryRateLimiter(rl.RPS, rl.Burst)
	if redisClient != nil {
		window := time.Duration(rl.WindowSec) * time.Second
		limiter = repository.NewFailoverRateLimiter(
			repository.NewRedisRateLimiter(redisClient, rl.Requests, window),
			limiter,
			logger,
		)
	}
	return limiter
}

type seedUser struct {
	Name  string        `yaml:"name"`
	Email string        `yaml:"email"`
	Items []models.Item `yaml:"items"`
}

// seedData loads SEED_PATH (default configs/seed.yaml) into an empty database.
// A missing seed file is not an error.
func seedData(ctx context.Context, services api.Services, logger *zerolog.Logger) error {
	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = "configs/seed.yaml"
	}
	data, err := os.ReadFile(seedPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("read seed")
		return err
	}

	var seed struct {
		Users []seedUser `yaml:"users"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("parse seed")
		return err
	}

	existing, err := services.Users.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("check existing users: %w", err)
	}
	if len(existing) > 0 {
		logger.Debug().Int("users", len(existing)).Msg("database not empty, skipping seed")
		return nil
	}

	var itemCount int
	for _, su := range seed.Users {
		user, err := services.Users.CreateUser(ctx, &models.User{Name: su.Name, Email: su.Email})
		if err != nil {
			return fmt.Errorf("seed user %q: %w", su.Email, err)
		}
		for i := range su.Items {
			item := su.Items[i]
			if _, err := services.Items.CreateItem(ctx, user.ID, &item); err != nil {
				return fmt.Errorf("seed item %q: %w", item.Name, err)
			}
			itemCount++
		}
	}

	logger.Info().Int("users", len(seed.Users)).Int("items", itemCount).Msg("seed data loaded")
	return nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Bool("grpc", grpcServer != nil).Msg("shareit server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("shareit server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
