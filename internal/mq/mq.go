// Package mq provides the durable queue used for outbound email jobs,
// with RabbitMQ and Google Cloud Pub/Sub backends behind one interface.
// Each backend is bound to a single channel at construction.
package mq

import (
	"context"
	"fmt"

	"github.com/finacore/apiserver/config"
)

// Job represents a broker-agnostic payload delivered to the worker.
type Job struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a job. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, job Job) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// New constructs the queue backend selected by config. It returns nil with
// no error when no backend is configured; callers then deliver inline.
func New(ctx context.Context, cfg config.QueueConfig) (Backend, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQBackend(cfg.RabbitMQ, cfg.Channel)
	case "pubsub":
		return NewPubSubBackend(ctx, cfg.PubSub, cfg.Channel)
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}
