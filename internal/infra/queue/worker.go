package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// LeadEventHandler turns a lead event into its side effects (notifications).
type LeadEventHandler interface {
	HandleLeadEvent(ctx context.Context, event LeadEvent) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Handler LeadEventHandler
}

func NewWorker(ch Consumer, handler LeadEventHandler) *Worker {
	return &Worker{
		Channel: ch,
		Handler: handler,
	}
}

// Start consumes queueName until ctx is done or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register RabbitMQ consumer: %w", err)
	}

	logrus.Infof(" [*] Worker waiting on queue '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("⚠️ [WORKER] stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				logrus.Warn("⚠️ [WORKER] delivery channel closed")
				return nil
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		logrus.Errorf("❌ [WORKER] invalid JSON: %s", err)
		// malformed messages go straight to the DLQ
		d.Nack(false, false)
		return
	}

	log := logrus.WithFields(logrus.Fields{"type": event.Type, "lead_id": event.LeadID})
	log.Info("📥 [WORKER] lead event received")

	if err := w.Handler.HandleLeadEvent(ctx, event); err != nil {
		// one redelivery, then dead letter
		requeue := !d.Redelivered
		log.WithField("requeue", requeue).Errorf("❌ [WORKER] handling failed: %s", err)
		d.Nack(false, requeue)
		return
	}

	log.Info("✅ [WORKER] lead event processed")
	d.Ack(false)
}
