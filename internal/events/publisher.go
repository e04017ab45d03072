package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

const (
	// StreamKey is the Redis stream for library events.
	StreamKey = "stream:library_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:library_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Payload is the stream encoding of a library event.
// The stream entry ID becomes the event_id on the consumer side.
type Payload struct {
	Kind       model.LibraryEventKind `json:"kind"`
	UserID     string                 `json:"user_id"`
	BookID     string                 `json:"book_id"`
	EntryID    string                 `json:"entry_id"`
	Status     model.ListStatus       `json:"list,omitempty"`
	Rating     int                    `json:"rate"`
	OccurredAt int64                  `json:"occurred_at"` // Unix milliseconds
}

// NewPayload encodes event for the stream.
func NewPayload(event model.LibraryEvent) Payload {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return Payload{
		Kind:       event.Kind,
		UserID:     event.UserID,
		BookID:     event.BookID,
		EntryID:    event.EntryID,
		Status:     event.Status,
		Rating:     event.Rating,
		OccurredAt: occurred.UnixMilli(),
	}
}

// Publisher enqueues library events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new library event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream synchronously and returns its stream ID.
func (p *Publisher) Publish(ctx context.Context, event model.LibraryEvent) (string, error) {
	data, err := json.Marshal(NewPayload(event))
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged and counted, never returned.
func (p *Publisher) PublishAsync(event model.LibraryEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish library event",
				"kind", event.Kind,
				"user_id", event.UserID,
				"error", err,
			)
			p.metrics.IncLibraryEventPublished(metrics.StatusDropped)
			return
		}

		p.logger.Debug("library event published",
			"kind", event.Kind,
			"stream_id", streamID,
		)
		p.metrics.IncLibraryEventPublished(metrics.StatusSuccess)
	}()
}
