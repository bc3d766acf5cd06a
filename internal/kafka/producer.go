package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"order-dashboard/internal/config"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует доменные события в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронный Kafka producer
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka producer")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishOrderCreated публикует событие создания заказа
func (p *Producer) PublishOrderCreated(order *models.Order) error {
	return p.publishEvent(p.topics.Orders, models.Event{
		ID:         uuid.New(),
		Type:       models.EventTypeOrderCreated,
		OccurredAt: time.Now(),
		Payload: map[string]interface{}{
			"order_id":         order.ID.String(),
			"product_name":     order.ProductName,
			"product_category": order.ProductCategory,
			"price":            order.Price,
			"user_id":          order.UserID.String(),
		},
	})
}

// PublishOrderUpdated публикует событие изменения заказа
func (p *Producer) PublishOrderUpdated(order *models.Order) error {
	return p.publishEvent(p.topics.Orders, models.Event{
		ID:         uuid.New(),
		Type:       models.EventTypeOrderUpdated,
		OccurredAt: time.Now(),
		Payload: map[string]interface{}{
			"order_id": order.ID.String(),
		},
	})
}

// PublishOrderDeleted публикует событие удаления заказа
func (p *Producer) PublishOrderDeleted(orderID uuid.UUID) error {
	return p.publishEvent(p.topics.Orders, models.Event{
		ID:         uuid.New(),
		Type:       models.EventTypeOrderDeleted,
		OccurredAt: time.Now(),
		Payload: map[string]interface{}{
			"order_id": orderID.String(),
		},
	})
}

// PublishUserRegistered публикует событие регистрации пользователя
func (p *Producer) PublishUserRegistered(user *models.User) error {
	return p.publishEvent(p.topics.Users, models.Event{
		ID:         uuid.New(),
		Type:       models.EventTypeUserRegistered,
		OccurredAt: time.Now(),
		Payload: map[string]interface{}{
			"user_id": user.ID.String(),
			"email":   user.Email,
			"role":    string(user.Role),
		},
	})
}

// publishEvent сериализует событие и отправляет его в топик
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"type":      event.Type,
		"partition": partition,
		"offset":    offset,
	}).Debug("Event published")

	return nil
}
