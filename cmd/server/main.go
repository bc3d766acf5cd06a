package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-dashboard/internal/auth"
	"order-dashboard/internal/config"
	"order-dashboard/internal/database"
	"order-dashboard/internal/handlers"
	"order-dashboard/internal/kafka"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
	"order-dashboard/internal/redis"
	"order-dashboard/internal/services"

	"github.com/joho/godotenv"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	// .env опционален: в контейнерах конфигурация приходит из окружения
	_ = godotenv.Load()

	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting order dashboard server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = app.consumer.Stop()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	_ = app.producer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
	app.log.Info("Server exited")
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	tokenManager := auth.NewManager(&cfg.JWT)

	userService := services.NewUserService(db, log, cfg.JWT.BcryptCost)
	orderService := services.NewOrderService(db, log)
	statsService := services.NewStatsService(db, log)
	chartService := services.NewChartService(db, log)
	dashboardService := services.NewDashboardService(statsService, chartService, orderService, redisClient, log,
		time.Duration(cfg.Analytics.CacheTTLMinutes)*time.Minute)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	authHandler := handlers.NewAuthHandler(userService, tokenManager, producer, log)
	orderHandler := handlers.NewOrderHandler(orderService, producer, redisClient, log)
	statsHandler := handlers.NewStatsHandler(statsService, chartService, orderService, dashboardService, log, &cfg.Analytics)
	healthHandler := handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	registerEventHandlers(consumer, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	mux := setupRoutes(authHandler, orderHandler, statsHandler, healthHandler, rateLimitHandler, rateLimiter, tokenManager, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		mux:      mux,
		server:   server,
	}, nil
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(authHandler *handlers.AuthHandler, orderHandler *handlers.OrderHandler, statsHandler *handlers.StatsHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter *services.RateLimiter, tokenManager *auth.Manager, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, h))
	}
	authenticated := func(h http.HandlerFunc) http.HandlerFunc {
		return applyAPI(handlers.AuthMiddleware(tokenManager, log, h))
	}
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return authenticated(handlers.RequireRole(models.RoleAdmin, h))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Auth endpoints
	mux.HandleFunc("/api/auth/register", applyAPI(authHandler.Register))
	mux.HandleFunc("/api/auth/login", applyAPI(authHandler.Login))

	// Order endpoints
	mux.HandleFunc("/api/orders", authenticated(orderHandler.Orders))
	mux.HandleFunc("/api/orders/", authenticated(orderHandler.OrderByID))

	// Dashboard analytics endpoints
	mux.HandleFunc("/api/stats/stats", adminOnly(statsHandler.GetStats))
	mux.HandleFunc("/api/stats/revenue-chart", adminOnly(statsHandler.GetRevenueChart))
	mux.HandleFunc("/api/stats/category-chart", adminOnly(statsHandler.GetCategoryChart))
	mux.HandleFunc("/api/stats/orders", adminOnly(statsHandler.GetOrders))
	mux.HandleFunc("/api/stats/dashboard", adminOnly(statsHandler.GetDashboard))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", applyAPI(rateLimitHandler.Status))

	return mux
}

// registerEventHandlers регистрирует обработчики событий Kafka
func registerEventHandlers(consumer *kafka.Consumer, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeOrderCreated, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing order created event")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeOrderDeleted, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing order deleted event")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeUserRegistered, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing user registered event")
		return nil
	})
}

// corsMiddleware и другие helper функции
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
