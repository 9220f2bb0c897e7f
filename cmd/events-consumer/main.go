package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/messaging/kafka"
)

// events-consumer читает доменные события CRM из Kafka и пишет их в лог.
// Удобен для проверки пайплайна outbox -> Kafka на стенде.
func main() {
	brokersFlag := flag.String("brokers", "", "список Kafka-брокеров через запятую (по умолчанию KAFKA_BROKERS)")
	groupID := flag.String("group", "crm-events-consumer", "consumer group")
	topicsFlag := flag.String("topics", "", "topics через запятую (по умолчанию все topics событий CRM)")
	maxRetries := flag.Int("max-retries", 3, "максимум попыток обработки сообщения")
	flag.Parse()

	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	logger := log.WithField("component", "events-consumer")

	brokers := splitList(*brokersFlag)
	if len(brokers) == 0 {
		brokers = splitList(os.Getenv("KAFKA_BROKERS"))
	}
	if len(brokers) == 0 {
		logger.Fatal("не заданы Kafka-брокеры: используйте -brokers или KAFKA_BROKERS")
	}

	topics := splitList(*topicsFlag)
	if len(topics) == 0 {
		topics = kafka.EventTopics()
	}

	dlqProducer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Fatal("не удалось создать Kafka producer для DLQ")
	}
	defer func() {
		if err := dlqProducer.Close(); err != nil {
			logger.WithError(err).Error("ошибка при закрытии Kafka producer")
		}
	}()

	consumer, err := kafka.NewConsumerWithDLQ(brokers, *groupID, topics, logEvent(logger), dlqProducer, *maxRetries)
	if err != nil {
		logger.WithError(err).Fatal("не удалось создать Kafka consumer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.WithError(err).Fatal("не удалось запустить consumer")
	}

	<-ctx.Done()
	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Error("ошибка при остановке consumer")
	}
}

// logEvent возвращает обработчик, пишущий событие в лог.
func logEvent(logger *log.Entry) kafka.MessageHandler {
	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		envelope, err := kafka.ParseEventEnvelope(message)
		if err != nil {
			return err
		}

		logger.WithFields(log.Fields{
			"topic":          message.Topic,
			"partition":      message.Partition,
			"offset":         message.Offset,
			"event_id":       envelope.ID,
			"event_type":     envelope.EventType,
			"aggregate_type": envelope.AggregateType,
			"aggregate_id":   envelope.AggregateID,
		}).Info("событие CRM получено")
		return nil
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
