package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bsm/redislock"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/cache"
	"github.com/segyhp/clinic-billing/internal/config"
	"github.com/segyhp/clinic-billing/internal/repository"
	"github.com/segyhp/clinic-billing/internal/scheduler"
	"github.com/segyhp/clinic-billing/internal/service"
	"github.com/segyhp/clinic-billing/pkg/logger"
	"github.com/segyhp/clinic-billing/pkg/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	log.Info("starting billing scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	financingService := service.NewFinancingService(
		repository.NewTxManager(db),
		repository.NewFinancingRepository(db),
		repository.NewPatientRepository(db),
		repository.NewQuotationRepository(db),
		cache.NewViewCache(redisClient, cfg.Business.ViewCacheTTL, cfg.Business.ViewChannel, log),
		validation.New(),
		cfg,
		log,
	)

	location := cfg.Location()
	job := scheduler.NewOverdueJob(financingService, redislock.New(redisClient), cfg.Scheduler.LockTTL, location, log)

	c := scheduler.NewCron(location)
	if _, err := job.Schedule(c, cfg.Scheduler.OverdueCron); err != nil {
		log.Fatalf("Error scheduling overdue sweep: %v", err)
	}

	c.Start()
	log.WithFields(logrus.Fields{
		"cron":     cfg.Scheduler.OverdueCron,
		"timezone": location.String(),
	}).Info("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	// wait for a running sweep to finish
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}
