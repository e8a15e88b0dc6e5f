package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/DigitariaWebs/Safyr-sub007/internal/broker/rabbitmq"
	"github.com/DigitariaWebs/Safyr-sub007/internal/config"
	v1 "github.com/DigitariaWebs/Safyr-sub007/internal/handler/http/v1"
	mqtthandler "github.com/DigitariaWebs/Safyr-sub007/internal/handler/mqtt"
	"github.com/DigitariaWebs/Safyr-sub007/internal/metrics"
	"github.com/DigitariaWebs/Safyr-sub007/internal/monitor"
	"github.com/DigitariaWebs/Safyr-sub007/internal/repository"
	"github.com/DigitariaWebs/Safyr-sub007/internal/service"
	"github.com/DigitariaWebs/Safyr-sub007/internal/webhook"
	"github.com/DigitariaWebs/Safyr-sub007/pkg/logger"
	mqttclient "github.com/DigitariaWebs/Safyr-sub007/pkg/mqtt"
	"github.com/DigitariaWebs/Safyr-sub007/pkg/postgres"
	rabbitmqclient "github.com/DigitariaWebs/Safyr-sub007/pkg/rabbitmq"
	redisclient "github.com/DigitariaWebs/Safyr-sub007/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	_ "github.com/DigitariaWebs/Safyr-sub007/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Work Zone Monitor API
// @version 1.0
// @description Geofence dwell-time monitoring for field agents.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	workerDone := webhookWorker.Start(ctx)

	// Метрики Prometheus
	collector, err := metrics.NewMonitorCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	// Инициализация репозиториев
	zoneRepo := repository.NewZoneRepository(dbpool, redisClient, cfg.ZoneCacheTTL)
	trackingRepo := repository.NewTrackingRepository(dbpool)

	// Уведомления дополнительно уходят в RabbitMQ, если он настроен
	var alertPublisher webhook.WebhookPublisher = webhookPublisher
	if cfg.RabbitMQURL != "" {
		amqpConn, err := rabbitmqclient.NewRabbitMQConnection(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer amqpConn.Close()

		rabbitPublisher, err := rabbitmq.NewAlertPublisher(amqpConn, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Failed to init RabbitMQ alert publisher: %v", err)
		}
		alertPublisher = webhook.FanoutPublisher{webhookPublisher, rabbitPublisher}
		log.Info("Successfully connected to RabbitMQ")
	}

	// Инициализация сервисов
	zoneService := service.NewZoneService(zoneRepo, log, cfg)
	trackingService := service.NewTrackingService(zoneService, trackingRepo, alertPublisher, collector, monitor.SystemClock{}, log, cfg)

	// Прием позиций по MQTT
	if cfg.MQTTBroker != "" {
		mqttClient, err := mqttclient.NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		defer mqttClient.Disconnect(250)

		subscriber := mqtthandler.NewPositionSubscriber(mqttClient, cfg.MQTTTopic, trackingService, log)
		if err := subscriber.Start(); err != nil {
			log.Fatalf("Failed to subscribe to agent positions: %v", err)
		}
		defer subscriber.Stop()
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(zoneService, trackingService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	// Останавливаем воркер и ждем завершения текущей доставки
	cancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn("Webhook worker did not stop in time")
	}

	log.Info("Server gracefully stopped")
}
