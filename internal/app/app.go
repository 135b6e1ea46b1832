// Package app wires configuration into the harvester's components. Both the
// API server and the CLI build their object graph here.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/adapter/chromedp_browser"
	"github.com/user/profile-harvester/internal/adapter/postgres"
	redis_adapter "github.com/user/profile-harvester/internal/adapter/redis"
	"github.com/user/profile-harvester/internal/adapter/usnews"
	"github.com/user/profile-harvester/internal/monitoring"
	"github.com/user/profile-harvester/internal/proxy"
	"github.com/user/profile-harvester/internal/usecase"
	"github.com/user/profile-harvester/pkg/config"
)

// NewPipeline builds the browser, parsers and pipeline for the configured site.
func NewPipeline(cfg *config.Config, metrics *monitoring.Metrics, logger *zap.Logger) (usecase.Pipeline, error) {
	listing, err := usnews.NewListingParser(cfg.SiteBaseURL)
	if err != nil {
		return nil, err
	}
	browser := chromedp_browser.NewChromedpBrowser(chromedp_browser.Options{
		Headless: cfg.Headless,
		MaxTabs:  cfg.MaxTabs,
		Proxies:  proxy.NewManager(cfg.ProxyServers, cfg.UserAgents),
		ExecPath: cfg.ChromePath,
	}, logger)

	timeouts := usecase.Timeouts{Navigation: cfg.NavigationTimeout, Ready: cfg.ReadyTimeout}
	return usecase.NewPipeline(
		browser,
		usecase.NewDiscoverer(listing, timeouts, metrics, logger),
		usecase.NewExtractor(usnews.NewProfileParser(), timeouts, metrics, logger),
		logger,
	), nil
}

// Stores holds the connections and repositories backing a HarvestService.
type Stores struct {
	DB    *pgxpool.Pool
	Redis *redis.Client

	Profiles  *postgres.DoctorRepoImpl
	Failed    *postgres.FailedTargetRepoImpl
	Harvested *redis_adapter.HarvestedRepoImpl
	Lock      *redis_adapter.RunLockRepoImpl
	Queue     *redis_adapter.SeedQueueRepoImpl
}

// OpenStores connects to PostgreSQL and Redis and applies the schema.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		dbpool.Close()
		return nil, err
	}
	logger.Info("postgresql connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		dbpool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis connection established")

	return &Stores{
		DB:        dbpool,
		Redis:     rdb,
		Profiles:  postgres.NewDoctorRepo(dbpool),
		Failed:    postgres.NewFailedTargetRepo(dbpool),
		Harvested: redis_adapter.NewHarvestedRepo(rdb),
		Lock:      redis_adapter.NewRunLockRepo(rdb),
		Queue:     redis_adapter.NewSeedQueueRepo(rdb),
	}, nil
}

func (s *Stores) Close() error {
	s.DB.Close()
	return s.Redis.Close()
}

func (s *Stores) PingPostgres(ctx context.Context) error { return s.DB.Ping(ctx) }

func (s *Stores) PingRedis(ctx context.Context) error { return s.Redis.Ping(ctx).Err() }

func NewHarvestService(cfg *config.Config, pipeline usecase.Pipeline, s *Stores, metrics *monitoring.Metrics, logger *zap.Logger) usecase.HarvestService {
	return usecase.NewHarvestService(
		pipeline,
		s.Profiles, s.Failed, s.Harvested, s.Lock, s.Queue,
		usecase.HarvestOptions{
			DefaultConcurrency: cfg.Concurrency,
			RunTimeout:         cfg.RunTimeout,
			HarvestedTTL:       cfg.HarvestedTTL,
			LockTTL:            cfg.RunLockTTL,
			QueueDrainMax:      cfg.QueueDrainMax,
		},
		metrics,
		logger,
	)
}

func NewStatusService(s *Stores) usecase.StatusService {
	return usecase.NewStatusService(s.Profiles, s.Failed, s.Harvested)
}
