package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tiendabot/internal/config"
	"tiendabot/internal/database"
	"tiendabot/internal/events"
	"tiendabot/internal/logger"
	"tiendabot/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    *kafka.Reader
	processor *processors.CatalogProcessor
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "tiendabot-worker",
		Topic:          cfg.CatalogTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	processor := processors.NewCatalogProcessor(db.DB, logger)

	return &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: processor,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for catalog events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var event events.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if err := w.processor.Process(event); err != nil {
			w.logger.Error("Failed to process %s event: %v", event.Type, err)
			continue
		}

		w.logger.Debug("Event %s processed", event.Type)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
