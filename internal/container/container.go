package container

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/infrastructure/cache"
	"github.com/oksasatya/user-account-service/internal/infrastructure/events"
	"github.com/oksasatya/user-account-service/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-account-service/internal/infrastructure/search"
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// Container holds the components built once at startup. It is constructed
// explicitly and passed along; nothing here is package-level state.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher

	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
	Service *application.Service
}

// New connects the configured backends and assembles the user service.
// Optional backends (redis, rabbitmq, elasticsearch) are skipped when their
// address is empty and logged, not fatal, when unreachable.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	switch cfg.StoreDriver {
	case "memory":
		c.Repo = memory.NewUserRepository()
		logger.Warn("using in-memory user store; records are lost on restart")
	default:
		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		c.PGPool = pool
		c.Repo = pginfra.NewUserRepository(pool)
	}

	if rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		c.Redis = rdb
		c.Repo = cache.NewUserRepository(c.Repo, rdb, cfg.UserListCacheTTL, logger)
	}

	c.JWT = helpers.NewJWTManager(cfg.JWTSecret)

	var opts []application.Option
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, lifecycle events disabled")
		} else {
			c.RabbitPub = pub
			opts = append(opts, application.WithEvents(events.NewPublisher(pub)))
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed, search disabled")
	} else if es != nil {
		idx := search.NewUserIndex(es, cfg.ESUsersIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("ensure users index failed")
		}
		c.ES = es
		opts = append(opts, application.WithIndexer(idx))
	}

	c.Service = application.NewService(
		c.Repo,
		helpers.NewBcryptHasher(),
		c.JWT,
		application.Settings{AllowUserRegistration: cfg.AllowUserRegistration},
		logger,
		opts...,
	)
	return c, nil
}

// HealthChecks returns a ping per connected backend.
func (c *Container) HealthChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if c.PGPool != nil {
		checks["postgres"] = c.PGPool
	}
	if c.Redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		})
	}
	if c.ES != nil {
		checks["elasticsearch"] = handlers.PingFunc(func(ctx context.Context) error {
			return helpers.PingES(ctx, c.ES)
		})
	}
	return checks
}

// Close releases every backend connection.
func (c *Container) Close() {
	c.RabbitPub.Close()
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
