package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/cache"
	"github.com/segyhp/clinic-billing/internal/config"
	"github.com/segyhp/clinic-billing/internal/handler"
	"github.com/segyhp/clinic-billing/internal/repository"
	"github.com/segyhp/clinic-billing/internal/service"
	"github.com/segyhp/clinic-billing/pkg/logger"
	"github.com/segyhp/clinic-billing/pkg/response"
	"github.com/segyhp/clinic-billing/pkg/validation"
)

type handlers struct {
	health     *handler.HealthHandler
	patient    *handler.PatientHandler
	quotation  *handler.QuotationHandler
	financing  *handler.FinancingHandler
	payment    *handler.PaymentHandler
	middleware []mux.MiddlewareFunc
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	validate := validation.New()
	txManager := repository.NewTxManager(db)
	viewCache := cache.NewViewCache(redisClient, cfg.Business.ViewCacheTTL, cfg.Business.ViewChannel, log)

	eventsCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()
	go func() {
		if err := viewCache.Subscribe(eventsCtx, cache.LogEvents(log)); err != nil {
			log.WithError(err).Warn("view event subscription stopped")
		}
	}()

	// Initialize repositories
	patientRepo := repository.NewPatientRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	financingRepo := repository.NewFinancingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize services
	patientService := service.NewPatientService(patientRepo, validate, cfg, log)
	quotationService := service.NewQuotationService(txManager, quotationRepo, patientRepo, validate, log)
	financingService := service.NewFinancingService(txManager, financingRepo, patientRepo, quotationRepo, viewCache, validate, cfg, log)
	paymentService := service.NewPaymentService(txManager, paymentRepo, financingRepo, patientRepo, viewCache, validate, cfg, log)

	router := setupRoutes(handlers{
		health:    handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
		patient:   handler.NewPatientHandler(patientService),
		quotation: handler.NewQuotationHandler(quotationService),
		financing: handler.NewFinancingHandler(financingService),
		payment:   handler.NewPaymentHandler(paymentService),
		middleware: []mux.MiddlewareFunc{
			response.CORSMiddleware,
			response.LoggingMiddleware(log),
		},
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"addr": server.Addr,
			"env":  cfg.Server.Env,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	stopEvents()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(h handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.middleware...)

	// Health check
	router.HandleFunc("/health", h.health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.health.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/patients", h.patient.Create).Methods("POST")
	api.HandleFunc("/patients", h.patient.List).Methods("GET")
	api.HandleFunc("/patients/active", h.patient.ListActive).Methods("GET")
	api.HandleFunc("/patients/{id}", h.patient.Get).Methods("GET")
	api.HandleFunc("/patients/{id}", h.patient.Update).Methods("PUT")
	api.HandleFunc("/patients/{id}", h.patient.Delete).Methods("DELETE")
	api.HandleFunc("/patients/{id}/financings", h.financing.ListByPatient).Methods("GET")
	api.HandleFunc("/patients/{id}/payments", h.payment.ListByPatient).Methods("GET")
	api.HandleFunc("/patients/{id}/quotations", h.quotation.ListByPatient).Methods("GET")

	api.HandleFunc("/quotations", h.quotation.Create).Methods("POST")
	api.HandleFunc("/quotations/accepted", h.quotation.ListAccepted).Methods("GET")
	api.HandleFunc("/quotations/{id}", h.quotation.Get).Methods("GET")
	api.HandleFunc("/quotations/{id}", h.quotation.Update).Methods("PUT")
	api.HandleFunc("/quotations/{id}", h.quotation.Delete).Methods("DELETE")
	api.HandleFunc("/quotations/{id}/status", h.quotation.UpdateStatus).Methods("PATCH")

	api.HandleFunc("/financings", h.financing.Create).Methods("POST")
	api.HandleFunc("/financings", h.financing.List).Methods("GET")
	api.HandleFunc("/financings/{id}", h.financing.Get).Methods("GET")
	api.HandleFunc("/financings/{id}/schedule.xlsx", h.financing.ExportSchedule).Methods("GET")
	api.HandleFunc("/financings/{id}/cancel", h.financing.Cancel).Methods("POST")

	api.HandleFunc("/payments", h.payment.Create).Methods("POST")
	api.HandleFunc("/payments", h.payment.List).Methods("GET")
	api.HandleFunc("/payments/{id}", h.payment.Get).Methods("GET")
	api.HandleFunc("/payments/{id}/revert", h.payment.Revert).Methods("POST")

	return router
}
