// Consumer warming the cache tables from the Kafka edge topics. Another
// instance publishes its cache write-backs (see model.PublishingStore);
// this process replays them into the local database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/internal/model"
	"github.com/mx42/stargazer/pkg/db"
	"github.com/mx42/stargazer/pkg/kafka"
	"github.com/mx42/stargazer/pkg/log"
)

func main() {
	consumerType := flag.String("type", "", "Type of consumer to run (star-edge, user-star)")
	flag.Parse()

	if *consumerType == "" {
		fmt.Println("Please specify a consumer type: -type=[star-edge|user-star]")
		os.Exit(1)
	}

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger and database
	logger, _ := log.NewCslLogger()
	mysql, _ := db.NewMysql(config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	starEdgeMd, _ := model.NewStarEdge(config, logger, mysql)
	starredRepoEdgeMd, _ := model.NewStarredRepoEdge(config, logger, mysql)

	if err := mysql.Migrate(starEdgeMd, starredRepoEdgeMd); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	switch *consumerType {
	case "star-edge":
		startStarEdgeConsumer(ctx, config, logger, starEdgeMd)
	case "user-star":
		startUserStarConsumer(ctx, config, logger, starredRepoEdgeMd)
	default:
		logger.Error(ctx, "Unknown consumer type: %s", *consumerType)
		os.Exit(1)
	}

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startStarEdgeConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, starEdgeMd *model.StarEdge) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.StarEdgeTopic, "star-edge-consumer-group")

	consumer.RegisterHandler("star-edge", func(data []byte) error {
		var msg model.StarEdgeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal star edge message: %w", err)
		}

		// One message carries one full write-back batch
		if err := starEdgeMd.CreateBatch(ctx, msg.Owner, msg.Repo, msg.Stargazers); err != nil {
			return fmt.Errorf("failed to save star edges: %w", err)
		}

		logger.Debug(ctx, "Warmed %d star edges for %s/%s", len(msg.Stargazers), msg.Owner, msg.Repo)
		return nil
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Star edge consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Star edge consumer started successfully")
}

func startUserStarConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, starredRepoEdgeMd *model.StarredRepoEdge) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.UserStarTopic, "user-star-consumer-group")

	consumer.RegisterHandler("user-star", func(data []byte) error {
		var msg model.UserStarMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal user star message: %w", err)
		}

		if err := starredRepoEdgeMd.CreateBatch(ctx, msg.User, msg.StarredRepos); err != nil {
			return fmt.Errorf("failed to save user stars: %w", err)
		}

		logger.Debug(ctx, "Warmed %d starred repos for user %s", len(msg.StarredRepos), msg.User)
		return nil
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "User star consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "User star consumer started successfully")
}
