package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/orders/internal/health"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/inbox"
	"github.com/vladislavdragonenkov/orders/internal/service/order"
	"github.com/vladislavdragonenkov/orders/internal/service/outbox"
	httpapi "github.com/vladislavdragonenkov/orders/internal/transport/http"
	"github.com/vladislavdragonenkov/orders/internal/version"
)

// Run собирает зависимости и запускает HTTP API, metrics-сервер, outbox
// worker и inbox consumer. Блокируется до отмены ctx или фатальной ошибки
// HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	writeMetrics := metrics.NewWriteMetrics()

	// Kafka опционален: без brokers события остаются pending в outbox,
	// а inbox доступен только через HTTP.
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	var (
		eventPublisher domain.OutboxPublisher
		dlqPublisher   domain.OutboxPublisher
		dispatcher     *outbox.Dispatcher
	)
	if kafkaProducer != nil {
		eventPublisher = kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher = kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		dispatcher = outbox.NewDispatcher(storage.Outbox, eventPublisher, logger)
	}

	writer := order.NewWriter(storage.UnitOfWork, dispatcher, writeMetrics, nil)
	reader := order.NewReader(storage.UnitOfWork)
	inboxHandler := inbox.NewHandler(storage.Variants, nil)

	if eventPublisher != nil {
		worker := outbox.NewWorker(storage.Outbox, eventPublisher,
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryBaseDelay),
		)
		go worker.Run(ctx)
	}

	var inboxConsumer *kafka.Consumer
	if kafkaProducer != nil {
		consumer, err := initInboxConsumer(cfg, inboxHandler, kafkaProducer, logger)
		if err != nil {
			logger.WithError(err).Warn("failed to create inbox consumer, continuing without it")
		} else if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Warn("failed to start inbox consumer")
		} else {
			inboxConsumer = consumer
		}
	}
	defer func() {
		if inboxConsumer == nil {
			return
		}
		if err := inboxConsumer.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop inbox consumer")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	httpapi.NewHandler(writer, reader, inboxHandler, nil).Register(router)

	healthHandler := healthcheck.NewHandler(version.Version())
	healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return storage.Ping(pingCtx)
	}))
	if cfg.KafkaBrokers != "" {
		healthHandler.RegisterChecker("kafka", healthcheck.NewSimpleChecker("kafka", func() error {
			if kafkaProducer == nil {
				return errors.New("kafka producer is not connected")
			}
			return nil
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP-сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проб.
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
		logger.WithError(err).Warn("http shutdown with error")
	}
}
