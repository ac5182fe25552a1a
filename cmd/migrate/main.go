package main

import (
	"context"
	"flag"

	"shelfapi/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	logger.Init("info", "text")
	log := logrus.WithField("component", "migrate")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		log.WithError(err).Fatal("failed to set dialect")
	}

	dir := migrationsDir()

	switch *command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			log.WithError(err).Fatal("failed to run migrations")
		}
		log.Info("migrations applied successfully")
	case "down":
		if err := goose.Down(db, dir); err != nil {
			log.WithError(err).Fatal("failed to roll back migration")
		}
		log.Info("migration rolled back successfully")
	case "status":
		if err := goose.Status(db, dir); err != nil {
			log.WithError(err).Fatal("failed to check migration status")
		}
	case "create":
		if *name == "" {
			log.Fatal("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.WithError(err).Fatal("failed to create migration")
		}
		log.WithField("name", *name).Info("migration created")
	default:
		log.Fatalf("unknown command: %s. Use: up, down, status, create", *command)
	}
}
