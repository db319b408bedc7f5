package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mx42/stargazer/api"
	"github.com/mx42/stargazer/internal/server"
)

func main() {
	ctx := context.Background()

	stargazer := api.NewStargazerAPI()
	if err := stargazer.Initialize(ctx); err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer stargazer.Close()

	logger := stargazer.Logger()
	config := stargazer.Config()

	handler, _ := server.NewHandler(logger, config, stargazer)
	srv, _ := server.NewServer(logger, config, handler, config.Server.Port)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error(ctx, "Server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Failed to stop server: %v", err)
	}
}
