package kafka

import (
	"encoding/json"
	"time"
)

// Topics для Kafka
const (
	TopicCustomerEvents  = "crm.customer.events"
	TopicProductEvents   = "crm.product.events"
	TopicOrderEvents     = "crm.order.events"
	TopicDeadLetterQueue = "crm.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// Aggregate types, по которым outbox-паблишер выбирает topic.
const (
	AggregateCustomer = "customer"
	AggregateProduct  = "product"
	AggregateOrder    = "order"
)

// TopicForAggregate возвращает topic для агрегата.
// Неизвестные типы уходят в общий topic заказов.
func TopicForAggregate(aggregateType string) string {
	switch aggregateType {
	case AggregateCustomer:
		return TopicCustomerEvents
	case AggregateProduct:
		return TopicProductEvents
	case AggregateOrder:
		return TopicOrderEvents
	default:
		return TopicOrderEvents
	}
}

// EventTopics возвращает все topics с доменными событиями CRM (без DLQ).
func EventTopics() []string {
	return []string{TopicCustomerEvents, TopicProductEvents, TopicOrderEvents}
}

// EventEnvelope — формат доменного события CRM в Kafka.
type EventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}
