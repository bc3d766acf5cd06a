package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"order-dashboard/internal/config"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"

	"github.com/IBM/sarama"
)

// EventHandler обрабатывает одно событие из Kafka
type EventHandler func(ctx context.Context, event *models.Event) error

// Consumer читает события из Kafka и направляет их зарегистрированным обработчикам
type Consumer struct {
	consumer sarama.ConsumerGroup
	log      *logger.Logger
	handlers map[models.EventType]EventHandler
	topics   []string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
}

// NewConsumer создает consumer group для топиков из конфигурации
func NewConsumer(cfg *config.KafkaConfig, log *logger.Logger) (*Consumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Consumer{
		consumer: group,
		log:      log,
		handlers: make(map[models.EventType]EventHandler),
		topics:   []string{cfg.Topics.Orders, cfg.Topics.Users},
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// NewTestConsumer создает consumer поверх готовой consumer group (для тестов)
func NewTestConsumer(group sarama.ConsumerGroup, log *logger.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		consumer: group,
		log:      log,
		handlers: make(map[models.EventType]EventHandler),
		topics:   []string{"orders"},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// RegisterHandler регистрирует обработчик для типа события
func (c *Consumer) RegisterHandler(eventType models.EventType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = handler
}

// Handler возвращает обработчик для типа события
func (c *Consumer) Handler(eventType models.EventType) EventHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handlers[eventType]
}

// HandlerCount возвращает количество зарегистрированных обработчиков
func (c *Consumer) HandlerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}

// Start запускает цикл потребления в фоне
func (c *Consumer) Start() error {
	if c.consumer == nil {
		return fmt.Errorf("consumer group is not initialized")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			if err := c.consumer.Consume(c.ctx, c.topics, c); err != nil {
				c.log.WithError(err).Error("Kafka consume loop error")
			}
			if c.ctx.Err() != nil {
				return
			}
		}
	}()

	return nil
}

// Stop останавливает потребление и закрывает consumer group
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if c.consumer == nil {
		return nil
	}
	return c.consumer.Close()
}

// Setup вызывается перед началом сессии consumer group
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup вызывается после завершения сессии consumer group
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim обрабатывает сообщения одной партиции
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := c.processMessage(msg); err != nil {
			c.log.WithError(err).WithField("topic", msg.Topic).Error("Failed to process message")
		}
		if session != nil {
			session.MarkMessage(msg, "")
		}
	}
	return nil
}

// processMessage декодирует событие и вызывает его обработчик
func (c *Consumer) processMessage(msg *sarama.ConsumerMessage) error {
	var event models.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	handler := c.Handler(event.Type)
	if handler == nil {
		c.log.WithField("type", event.Type).Debug("No handler registered for event type")
		return nil
	}

	if err := handler(c.ctx, &event); err != nil {
		return fmt.Errorf("handler failed for event %s: %w", event.ID, err)
	}

	return nil
}
