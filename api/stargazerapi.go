// Package api is the programmatic entry point of the stargazer service: it
// wires configuration, logging, the MySQL cache store and the optional
// Kafka edge pipeline, and runs star-neighbour queries.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/internal/batcher"
	"github.com/mx42/stargazer/internal/cache"
	"github.com/mx42/stargazer/internal/githubapi"
	"github.com/mx42/stargazer/internal/model"
	"github.com/mx42/stargazer/internal/neighbors"
	"github.com/mx42/stargazer/pkg/db"
	"github.com/mx42/stargazer/pkg/kafka"
	"github.com/mx42/stargazer/pkg/log"
)

// StargazerAPI wires the long-lived parts of the service. The per-request
// pipeline (caller, batcher, cache, aggregator) is rebuilt for every query
// so each request owns its batch queue and its bearer token.
type StargazerAPI struct {
	config    *cfg.Config
	logger    log.Logger
	mysql     *db.Mysql
	store     cache.EdgeStore
	producers []*kafka.Producer
}

func NewStargazerAPI() *StargazerAPI {
	return &StargazerAPI{}
}

// Initialize loads the configuration and sets up logging, the database and
// the cache store. When Kafka brokers are configured, cache write-backs are
// also published on the edge topics.
func (a *StargazerAPI) Initialize(ctx context.Context) error {
	var err error

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	a.config, err = loader.Load()
	if err != nil {
		a.logger, _ = log.NewCslLogger()
		a.logger.Error(ctx, "Failed to load configuration: %v", err)
		return err
	}

	// Set up logger
	a.logger, err = log.NewCslLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Set up database
	a.mysql, err = db.NewMysql(a.config)
	if err != nil {
		a.logger.Error(ctx, "Failed to connect to database: %v", err)
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := a.migrateDatabase(); err != nil {
		return err
	}

	// Cache store, optionally publishing write-backs to Kafka
	store, err := model.NewStore(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create cache store: %w", err)
	}
	a.store = store

	if len(a.config.Kafka.Brokers) > 0 {
		starEdges := kafka.NewProducer(a.config, a.logger, a.config.Kafka.StarEdgeTopic)
		userStars := kafka.NewProducer(a.config, a.logger, a.config.Kafka.UserStarTopic)
		a.producers = []*kafka.Producer{starEdges, userStars}

		a.store, err = model.NewPublishingStore(store, a.logger, starEdges, userStars)
		if err != nil {
			return fmt.Errorf("failed to create publishing store: %w", err)
		}
		a.logger.Info(ctx, "Publishing cache write-backs to Kafka topics %s and %s",
			a.config.Kafka.StarEdgeTopic, a.config.Kafka.UserStarTopic)
	}

	return nil
}

// migrateDatabase ensures the two edge tables exist.
func (a *StargazerAPI) migrateDatabase() error {
	if a.mysql == nil {
		return errors.New("database connection not initialized")
	}

	starEdgeMd, err := model.NewStarEdge(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create star edge model: %w", err)
	}

	starredRepoEdgeMd, err := model.NewStarredRepoEdge(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create starred repo edge model: %w", err)
	}

	return a.mysql.Migrate(starEdgeMd, starredRepoEdgeMd)
}

func (a *StargazerAPI) Config() *cfg.Config {
	return a.config
}

func (a *StargazerAPI) Logger() log.Logger {
	return a.logger
}

// GetStarNeighbors answers one star-neighbour query. An empty token uses
// the configured credential.
func (a *StargazerAPI) GetStarNeighbors(ctx context.Context, owner, repo, token string) ([]neighbors.Neighbor, error) {
	caller := githubapi.NewCaller(a.logger, a.config, token)
	b := batcher.NewBatcher(a.logger, caller, a.config.Fetcher.MaxParallelFetches)
	maxAge := time.Duration(a.config.Cache.MaxAgeDays) * 24 * time.Hour
	c := cache.NewCache(a.logger, a.store, caller, caller, b, maxAge)

	aggregator, err := neighbors.NewAggregator(a.logger, c)
	if err != nil {
		return nil, err
	}
	return aggregator.GetStarNeighbors(ctx, owner, repo)
}

// Ping reports whether the cache database is reachable.
func (a *StargazerAPI) Ping() error {
	if a.mysql == nil {
		return errors.New("database not initialized")
	}
	return a.mysql.Ping()
}

// Close releases the Kafka producers and the database pool.
func (a *StargazerAPI) Close() error {
	for _, producer := range a.producers {
		if err := producer.Close(); err != nil {
			return err
		}
	}
	if a.mysql != nil {
		return a.mysql.Close()
	}
	return nil
}
