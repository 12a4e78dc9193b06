package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/config"
	"github.com/segyhp/clinic-billing/pkg/logger"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to roll back with down (0 = all)")
	path := flag.String("path", "", "migrations directory (defaults to DATABASE_MIGRATIONS_PATH)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-path dir] [-steps n] up|down|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	if *path == "" {
		*path = cfg.Database.MigrationsPath
	}

	m, err := migrate.New("file://"+*path, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch flag.Arg(0) {
	case "up":
		err = m.Up()
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		flag.Usage()
		os.Exit(2)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to apply")
		err = nil
	}
	if err != nil {
		log.Fatalf("Migration %s failed: %v", flag.Arg(0), err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("database has no migrations applied")
		return
	}
	if err != nil {
		log.Fatalf("Failed to read migration version: %v", err)
	}

	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration state")
}
