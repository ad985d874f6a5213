package events

import (
	"context"
	"encoding/json"
	"time"

	"tiendabot/internal/logger"

	"github.com/segmentio/kafka-go"
)

const (
	TypeCatalogImported = "catalog.imported"
)

type Event struct {
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	UpdateID      string    `json:"update_id"`
	ProductsCount int       `json:"products_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher writes catalog events for the worker to pick up.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers, topic string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Source),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
