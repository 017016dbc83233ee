package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopherqa/internal/model"
	"gopherqa/internal/repository"
)

// QuestionPersistWorker drains the persistence queue and writes answered
// questions through the repository. Persistence is best effort: a record that
// cannot be decoded or stored is logged and dropped, never retried back to the
// request path.
type QuestionPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.QuestionRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQuestionPersistWorker(conn *amqp.Connection, repo *repository.QuestionRepository, queueName string) *QuestionPersistWorker {
	return &QuestionPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *QuestionPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var record model.Question
				if err := json.Unmarshal(d.Body, &record); err != nil {
					log.Printf("worker decode question failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&record); err != nil {
					log.Printf("worker persist question failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *QuestionPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
