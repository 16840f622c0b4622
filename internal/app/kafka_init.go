package app

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/service/inbox"
)

// initKafkaProducer инициализирует Kafka producer, если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if strings.TrimSpace(brokers) == "" {
		return nil, nil
	}

	brokerList := splitBrokers(brokers)
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// initInboxConsumer подписывает обработчик входящих событий каталога на topic
// inbox. Сообщения, не обработанные после maxRetries, уходят в DLQ.
func initInboxConsumer(cfg Config, handler *inbox.Handler, dlqProducer *kafka.Producer, logger *log.Entry) (*kafka.Consumer, error) {
	consumer, err := kafka.NewConsumerWithDLQ(
		splitBrokers(cfg.KafkaBrokers),
		cfg.ConsumerGroup,
		[]string{kafka.TopicInbox},
		func(ctx context.Context, message *sarama.ConsumerMessage) error {
			envelope, err := kafka.ParseInboundEnvelope(message)
			if err != nil {
				return err
			}
			return handler.Handle(ctx, envelope)
		},
		dlqProducer,
		cfg.OutboxMaxAttempts,
	)
	if err != nil {
		return nil, err
	}

	logger.WithField("topic", kafka.TopicInbox).Info("inbox consumer initialized")
	return consumer, nil
}

// closeKafka закрывает Kafka producer, если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

func splitBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
