// Package bootstrap wires the store, cache and metrics that the server,
// seeder and migrate commands share.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"socialapi/internal/cache"
	"socialapi/internal/config"
	"socialapi/internal/database"
	"socialapi/internal/middleware"
	"socialapi/internal/observability"
	"socialapi/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Runtime holds initialized connections and the repositories built on them.
// Exactly one of DB and MongoDB is set. Redis may be nil.
type Runtime struct {
	DB       *gorm.DB
	Mongo    *mongo.Client
	MongoDB  *mongo.Database
	Redis    *redis.Client
	Cache    *cache.Cache
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Users    repository.UserRepository
	Thoughts repository.ThoughtRepository
}

// InitRuntime connects to the store named by cfg.DBDriver and to Redis.
// An unreachable Redis is not an error; the runtime then works uncached.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = cache.Connect(ctx, cfg.RedisURL)
	}

	if cfg.DBDriver == config.DriverMongo {
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			closeRedis(rdb)
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return NewMongoRuntime(client, db, rdb), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		closeRedis(rdb)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt, err := NewGormRuntime(db, rdb)
	if err != nil {
		closeRedis(rdb)
		return nil, err
	}
	return rt, nil
}

// NewGormRuntime builds a runtime over an open GORM connection and registers
// the query latency plugin on it.
func NewGormRuntime(db *gorm.DB, rdb *redis.Client) (*Runtime, error) {
	rt := newRuntime(rdb)
	if err := db.Use(observability.NewGormPlugin(rt.Metrics)); err != nil {
		return nil, fmt.Errorf("failed to register gorm metrics: %w", err)
	}
	rt.DB = db
	rt.Users = repository.NewCachedUserRepository(repository.NewUserRepository(db), rt.Cache)
	rt.Thoughts = repository.NewCachedThoughtRepository(repository.NewThoughtRepository(db), rt.Cache)
	return rt, nil
}

// NewMongoRuntime builds a runtime over a connected MongoDB database.
func NewMongoRuntime(client *mongo.Client, db *mongo.Database, rdb *redis.Client) *Runtime {
	rt := newRuntime(rdb)
	rt.Mongo = client
	rt.MongoDB = db
	rt.Users = repository.NewCachedUserRepository(repository.NewMongoUserRepository(db, rt.Metrics), rt.Cache)
	rt.Thoughts = repository.NewCachedThoughtRepository(repository.NewMongoThoughtRepository(db, rt.Metrics), rt.Cache)
	return rt
}

func newRuntime(rdb *redis.Client) *Runtime {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	return &Runtime{
		Redis:    rdb,
		Cache:    cache.New(rdb, metrics),
		Registry: reg,
		Metrics:  metrics,
	}
}

// Ping checks the primary store.
func (rt *Runtime) Ping(ctx context.Context) error {
	switch {
	case rt.DB != nil:
		sqlDB, err := rt.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	case rt.Mongo != nil:
		return rt.Mongo.Ping(ctx, nil)
	default:
		return errors.New("no database configured")
	}
}

// Reset deletes every user, thought, reaction and friendship and empties
// the cache. Used by the seeder before loading fresh data.
func (rt *Runtime) Reset(ctx context.Context) error {
	if rt.DB != nil {
		err := rt.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			tables := database.PersistentModels()
			// Children first so foreign keys hold on postgres.
			for i := len(tables) - 1; i >= 0; i-- {
				model := tables[i]
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
	}
	if rt.MongoDB != nil {
		for _, name := range []string{database.UsersCollection, database.ThoughtsCollection} {
			if _, err := rt.MongoDB.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
				return fmt.Errorf("failed to reset %s: %w", name, err)
			}
		}
	}
	if err := rt.Cache.Purge(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "cache purge failed", slog.String("error", err.Error()))
	}
	return nil
}

// Close releases every connection. Errors are logged.
func (rt *Runtime) Close(ctx context.Context) {
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}
	if rt.Mongo != nil {
		if err := rt.Mongo.Disconnect(ctx); err != nil {
			middleware.Logger.Error("error closing mongodb", slog.String("error", err.Error()))
		}
	}
	closeRedis(rt.Redis)
}

func closeRedis(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
	}
}
