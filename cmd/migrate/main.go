package main

import (
	"flag"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/segyhp/trainer-billing/internal/config"
	"github.com/segyhp/trainer-billing/migrations"
	"github.com/segyhp/trainer-billing/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status, version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Error("failed to set goose dialect", "error", err)
		os.Exit(1)
	}

	log.Info("running migrations", "command", *command)

	if err := goose.Run(*command, db.DB, "."); err != nil {
		log.Error("migrations failed", "command", *command, "error", err)
		os.Exit(1)
	}

	log.Info("migrations applied", "command", *command)
}
