package main

import (
	"context"
	"log/slog"
	"os"

	_ "workspaceflow/docs"
	"workspaceflow/internal/config"
	"workspaceflow/internal/server"
)

// @title           Workspaceflow API
// @version         1.0
// @description     Team collaboration API: workspaces, workflows, tasks, status templates and activity.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	s, err := server.Init(context.Background(), cfg, log)
	if err != nil {
		log.Error("server initialization failed", "error", err)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
