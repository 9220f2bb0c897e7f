package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
	healthcheck "github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/health"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/heartbeat"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/messaging/kafka"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/metrics"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/service/crm"
	gqlsvc "github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/service/graphql"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/service/outbox"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/storage/memory"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/storage/postgres"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/version"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	// PostgresDSN пустой — работаем на in-memory хранилище (dev-режим).
	PostgresDSN string

	// KafkaBrokers пустой — outbox worker не запускается.
	KafkaBrokers string

	HeartbeatEnabled  bool
	HeartbeatInterval time.Duration
	HeartbeatLogFile  string
	HeartbeatEndpoint string
}

// DefaultConfig возвращает базовые адреса GraphQL API и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:          ":8000",
		MetricsAddr:       ":9090",
		HeartbeatInterval: heartbeat.DefaultInterval,
		HeartbeatLogFile:  heartbeat.DefaultLogFile,
	}
}

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	var (
		customers  domain.CustomerRepository
		products   domain.ProductRepository
		orders     domain.OrderRepository
		outboxRepo domain.OutboxRepository
		store      *postgres.Store
	)

	if cfg.PostgresDSN != "" {
		var err error
		store, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		customers = postgres.NewCustomerRepository(store)
		products = postgres.NewProductRepository(store)
		orders = postgres.NewOrderRepository(store)
		outboxRepo = postgres.NewOutboxRepository(store)
		logger.Info("postgres хранилище инициализировано")
	} else {
		customerRepo := memory.NewCustomerRepository()
		customers = customerRepo
		products = memory.NewProductRepository()
		orders = memory.NewOrderRepository(customerRepo)
		outboxRepo = memory.NewOutboxRepository()
		logger.Info("используется in-memory хранилище")
	}

	mutationMetrics := metrics.NewMutationMetrics()
	service := crm.NewService(
		customers,
		products,
		orders,
		crm.WithLogger(logger.WithField("layer", "crm")),
		crm.WithOutbox(outboxRepo),
		crm.WithMetrics(mutationMetrics),
	)

	schema, err := gqlsvc.NewSchema(service)
	if err != nil {
		return err
	}
	graphqlHandler := gqlsvc.NewHandler(schema)

	// Kafka producer и outbox worker (опционально)
	var kafkaProducer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		producer, err := kafka.NewProducer(brokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			logger.WithField("brokers", brokers).Info("kafka producer initialized")

			worker := outbox.NewWorker(
				outboxRepo,
				kafka.NewOutboxPublisher(kafkaProducer),
				outbox.WithLogger(logger.WithField("component", "outbox-worker")),
				outbox.WithDLQPublisher(newDLQPublisher(kafkaProducer)),
			)
			go worker.Run(ctx)
		}
	}

	// HTTP Health checks
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", 2*time.Second, store.Ping))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	mux := http.NewServeMux()
	mux.Handle("/graphql", graphqlHandler)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	if cfg.HeartbeatEnabled {
		endpoint := cfg.HeartbeatEndpoint
		if endpoint == "" {
			endpoint = "http://localhost" + cfg.HTTPAddr + "/graphql"
		}
		hb := heartbeat.NewWorker(
			heartbeat.WithLogger(logger.WithField("component", "heartbeat")),
			heartbeat.WithEndpoint(endpoint),
			heartbeat.WithLogFile(cfg.HeartbeatLogFile),
			heartbeat.WithInterval(cfg.HeartbeatInterval),
		)
		go hb.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("GraphQL API слушает %s/graphql", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		closeProducer(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeProducer(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newDLQPublisher оборачивает producer для публикации в DLQ-topic.
func newDLQPublisher(producer *kafka.Producer) domain.OutboxPublisher {
	return dlqPublisher{producer: producer}
}

type dlqPublisher struct {
	producer *kafka.Producer
}

func (p dlqPublisher) Publish(event domain.OutboxMessage) error {
	key := event.AggregateID
	if key == "" {
		key = event.ID
	}
	return p.producer.PublishEvent(kafka.TopicDeadLetterQueue, key, event)
}

func closeProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http server shutdown with error")
	}
}
