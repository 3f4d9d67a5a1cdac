package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/query"
)

// BatchQueryMsg is one batch of queries enqueued by the server.
type BatchQueryMsg struct {
	BatchID     string                      `json:"batch_id"`
	Requests    []query.UnifiedQueryRequest `json:"requests"`
	Concurrency int                         `json:"concurrency,omitempty"`
	SubmittedAt time.Time                   `json:"submitted_at"`
}

// BatchResultMsg is the worker's answer to one batch.
type BatchResultMsg struct {
	BatchID     string                       `json:"batch_id"`
	Responses   []query.UnifiedQueryResponse `json:"responses"`
	CompletedAt time.Time                    `json:"completed_at"`
}

// PublishBatch enqueues a batch of queries for asynchronous execution.
func PublishBatch(ch *amqp091.Channel, msg BatchQueryMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(ch, BatchQueryQueue, body)
}

// ConsumeBatches processes batch query messages until the context ends.
// Malformed messages go to the dead-letter queue; execution failures are
// carried inside the per-query responses and the batch still acks.
func ConsumeBatches(ctx context.Context, ch *amqp091.Channel, orchestrator *query.Orchestrator) error {
	deliveries, err := ch.Consume(
		BatchQueryQueue,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	logger.Info("Batch worker consuming", "queue", BatchQueryQueue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			handleBatchDelivery(ctx, ch, orchestrator, delivery)
		}
	}
}

func handleBatchDelivery(ctx context.Context, ch *amqp091.Channel, orchestrator *query.Orchestrator, delivery amqp091.Delivery) {
	var msg BatchQueryMsg
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		logger.Error("Malformed batch message", "err", err)
		if err := PublishFIFO(ch, BatchQueryQueue+"_dlq", delivery.Body); err != nil {
			logger.Error("Failed to dead-letter batch message", "err", err)
		}
		_ = delivery.Ack(false)
		return
	}

	logger.Info("Processing batch", "batchId", msg.BatchID, "queries", len(msg.Requests))
	responses := orchestrator.ExecuteBatch(ctx, msg.Requests, msg.Concurrency)

	result := BatchResultMsg{
		BatchID:     msg.BatchID,
		Responses:   responses,
		CompletedAt: time.Now(),
	}
	body, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to marshal batch result", "batchId", msg.BatchID, "err", err)
		_ = delivery.Nack(false, false)
		return
	}
	if err := PublishFIFO(ch, BatchResultQueue, body); err != nil {
		logger.Error("Failed to publish batch result, retrying", "batchId", msg.BatchID, "err", err)
		if err := PublishFIFO(ch, BatchQueryQueue+"_retry", delivery.Body); err != nil {
			logger.Error("Failed to requeue batch", "batchId", msg.BatchID, "err", err)
		}
		_ = delivery.Ack(false)
		return
	}

	_ = delivery.Ack(false)
	logger.Info("Batch completed", "batchId", msg.BatchID)
}
