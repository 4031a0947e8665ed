package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gabeVald/Personal-Task-Manager/internal/config"
	"github.com/gabeVald/Personal-Task-Manager/internal/database"
	"github.com/gabeVald/Personal-Task-Manager/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		slog.Error("init database", "err", err)
		os.Exit(1)
	}

	r := router.SetupRouter(cfg, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	slog.Info("server listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("run server", "err", err)
		os.Exit(1)
	}
}
