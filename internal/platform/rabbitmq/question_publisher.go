package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopherqa/internal/model"
)

// QuestionPublisher enqueues answered questions for asynchronous persistence.
type QuestionPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewQuestionPublisher(conn *amqp.Connection, queueName string) *QuestionPublisher {
	return &QuestionPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *QuestionPublisher) Publish(ctx context.Context, record model.Question) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal question payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish question failed: %w", err)
	}
	return nil
}
