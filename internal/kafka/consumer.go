package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/application"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
	"github.com/segmentio/kafka-go"
)

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// Notifier delivers an order confirmation to its recipient.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, ev application.ConfirmationEvent) error
}

// StartConsumer drains the confirmation topic and hands each event to the
// notifier. Delivery is best-effort: a failed send is logged and the
// message committed anyway, so one unreachable recipient cannot wedge the
// queue.
func StartConsumer(ctx context.Context, notifier Notifier, cfg ConsumerConfig) (*kafka.Reader, error) {
	brokers := strings.Split(cfg.Brokers, ",")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})

	logger.Info("kafka consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		backoff := time.Millisecond * 300
		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				time.Sleep(backoff)
				continue
			}

			var ev application.ConfirmationEvent
			if err = json.Unmarshal(m.Value, &ev); err != nil {
				logger.Warn("kafka invalid json. skip and commit", "err", err)
				_ = r.CommitMessages(ctx, m)
				continue
			}

			if err = notifier.SendOrderConfirmation(ctx, ev); err != nil {
				logger.Warn("confirmation delivery failed", "order_number", ev.OrderNumber, "err", err)
			} else {
				logger.Info("confirmation delivered", "order_number", ev.OrderNumber)
			}

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("[kafka] commit failed", "err", err)
			}
		}
	}()
	return r, nil
}
