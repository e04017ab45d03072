package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

const (
	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "library_workers"

	// DefaultBatchSize is the max events per batch.
	DefaultBatchSize = 100

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultMaxRetries is the max retries for batch processing.
	DefaultMaxRetries = 3

	// DefaultClaimInterval is how often to scan pending messages.
	DefaultClaimInterval = 10 * time.Second

	// DefaultClaimIdle is the idle time before reclaiming pending messages.
	DefaultClaimIdle = 30 * time.Second

	// DefaultMetricsInterval is how often to refresh queue depth metrics.
	DefaultMetricsInterval = 5 * time.Second

	deadLetterMaxLen = 10000
)

// Repository persists processed events and derived book ratings.
type Repository interface {
	BulkInsert(ctx context.Context, events []*model.LibraryEvent) error
	UpdateBookRatings(ctx context.Context, events []*model.LibraryEvent) error
}

// Invalidator drops cached views made stale by a batch.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
	InvalidateTopBooks(ctx context.Context) error
	InvalidateRecommendations(ctx context.Context) error
	InvalidateBooks(ctx context.Context, ids ...string) error
}

// Worker processes library events from the Redis stream.
type Worker struct {
	redis           *redis.Client
	repo            Repository
	views           Invalidator
	logger          *slog.Logger
	metrics         metrics.Recorder
	consumerID      string
	batchSize       int
	blockTimeout    time.Duration
	maxRetries      int
	retryBase       time.Duration
	claimInterval   time.Duration
	claimIdle       time.Duration
	metricsInterval time.Duration
	claimStartID    string
	lastClaim       time.Time
	lastMetrics     time.Time

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewWorker creates a new library event worker. views may be nil.
func NewWorker(client *redis.Client, repo Repository, views Invalidator, logger *slog.Logger, consumerID string, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		redis:           client,
		repo:            repo,
		views:           views,
		logger:          logger.With("component", "events.worker", "consumer_id", consumerID),
		metrics:         recorder,
		consumerID:      consumerID,
		batchSize:       DefaultBatchSize,
		blockTimeout:    DefaultBlockTimeout,
		maxRetries:      DefaultMaxRetries,
		retryBase:       time.Second,
		claimInterval:   DefaultClaimInterval,
		claimIdle:       DefaultClaimIdle,
		metricsInterval: DefaultMetricsInterval,
		claimStartID:    "0-0",
	}
}

// Run starts the worker loop. Blocks until context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	// Ensure consumer group exists
	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("library event worker started")

	for {
		w.mu.Lock()
		draining := w.draining
		w.mu.Unlock()

		if draining {
			w.logger.Info("library event worker draining, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			w.logger.Info("library event worker stopping")
			return ctx.Err()
		default:
			if err := w.processOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("process error", "error", err)
				// Back off before the next read so a dead Redis does not spin
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Shutdown stops the worker after the in-flight batch.
// It matches server.ShutdownFunc.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	w.logger.Info("library event worker shutdown initiated")

	// Signal the worker to stop
	if cancel != nil {
		cancel()
	}

	// Wait for worker to finish or context timeout
	if done != nil {
		select {
		case <-done:
			w.logger.Info("library event worker shutdown complete")
			return nil
		case <-ctx.Done():
			w.logger.Warn("library event worker shutdown timed out")
			return ctx.Err()
		}
	}
	return nil
}

// SetBatchSize overrides the default batch size.
func (w *Worker) SetBatchSize(size int) {
	if size > 0 {
		w.batchSize = size
	}
}

// SetBlockTimeout overrides the default blocking timeout.
func (w *Worker) SetBlockTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.blockTimeout = timeout
	}
}

// SetRetryBackoff overrides the base of the exponential retry backoff.
func (w *Worker) SetRetryBackoff(base time.Duration) {
	if base > 0 {
		w.retryBase = base
	}
}

// SetClaimIdle overrides the default pending idle threshold.
func (w *Worker) SetClaimIdle(idle time.Duration) {
	if idle > 0 {
		w.claimIdle = idle
	}
}

// ensureConsumerGroup creates the consumer group and stream if missing.
func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !isConsumerGroupExistsError(err) {
		return err
	}
	return nil
}

// processOnce reads and processes a single batch.
func (w *Worker) processOnce(ctx context.Context) error {
	w.maybeUpdateQueueDepth(ctx)

	claimed, err := w.maybeClaimPending(ctx)
	if err != nil {
		w.logger.Warn("failed to claim pending messages", "error", err)
	}

	// Reclaimed messages take priority over new ones
	messages := claimed
	if len(messages) == 0 {
		messages, err = w.readBatch(ctx)
		if err != nil {
			return err
		}
	}

	if len(messages) == 0 {
		return nil
	}

	events, messageIDs := w.parseMessages(ctx, messages)
	if len(events) == 0 {
		// All messages were malformed and already dead-lettered, ACK them
		return w.ackMessages(ctx, messageIDs)
	}

	// Process with retries
	if err := w.processBatchWithRetry(ctx, events); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		w.logger.Error("batch processing failed after retries",
			"batch_size", len(events),
			"error", err,
		)
		// Park the batch in the dead-letter stream so it stops blocking the group
		failed := make(map[string]bool, len(events))
		for _, e := range events {
			failed[e.EventID] = true
		}
		for _, msg := range messages {
			if failed[msg.ID] {
				w.deadLetterMessage(ctx, msg, "max_retries", err.Error())
			}
		}
	}

	return w.ackMessages(ctx, messageIDs)
}

// maybeClaimPending reclaims messages left pending by a crashed consumer.
func (w *Worker) maybeClaimPending(ctx context.Context) ([]redis.XMessage, error) {
	if w.claimInterval <= 0 || w.claimIdle <= 0 {
		return nil, nil
	}
	if !w.lastClaim.IsZero() && time.Since(w.lastClaim) < w.claimInterval {
		return nil, nil
	}

	w.lastClaim = time.Now()
	// Resume the scan where the previous claim stopped
	messages, start, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.claimIdle,
		Start:    w.claimStartID,
		Count:    int64(w.batchSize),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if start != "" {
		w.claimStartID = start
	}
	return messages, nil
}

// maybeUpdateQueueDepth refreshes the pending+lag gauge at most once per interval.
func (w *Worker) maybeUpdateQueueDepth(ctx context.Context) {
	if w.metricsInterval <= 0 {
		return
	}
	if !w.lastMetrics.IsZero() && time.Since(w.lastMetrics) < w.metricsInterval {
		return
	}
	w.lastMetrics = time.Now()

	groups, err := w.redis.XInfoGroups(ctx, StreamKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		w.logger.Warn("failed to read stream group info", "error", err)
		return
	}
	for _, group := range groups {
		if group.Name == ConsumerGroup {
			w.metrics.SetEventQueueDepth(group.Pending + group.Lag)
			return
		}
	}
}

// readBatch reads new messages for this consumer using XREADGROUP.
func (w *Worker) readBatch(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.batchSize),
		Block:    w.blockTimeout,
	}).Result()

	if errors.Is(err, redis.Nil) || len(streams) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	return streams[0].Messages, nil
}

// parseMessages decodes stream messages. Malformed or invalid messages are
// moved to the dead-letter stream; every message ID is returned for ACK.
func (w *Worker) parseMessages(ctx context.Context, messages []redis.XMessage) ([]*model.LibraryEvent, []string) {
	events := make([]*model.LibraryEvent, 0, len(messages))
	messageIDs := make([]string, 0, len(messages))

	for _, msg := range messages {
		messageIDs = append(messageIDs, msg.ID)

		event, reason, err := decodeMessage(msg)
		if err != nil {
			w.deadLetterMessage(ctx, msg, reason, err.Error())
			continue
		}
		events = append(events, event)
	}

	return events, messageIDs
}

// decodeMessage turns a stream entry into a LibraryEvent, returning the
// dead-letter reason when it cannot.
func decodeMessage(msg redis.XMessage) (*model.LibraryEvent, string, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return nil, "invalid_format", errors.New("payload field missing or not a string")
	}

	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, "unmarshal_error", err
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, "validation_error", err
	}

	return &model.LibraryEvent{
		ID:         ulid.Make().String(),
		EventID:    msg.ID,
		Kind:       payload.Kind,
		UserID:     payload.UserID,
		BookID:     payload.BookID,
		EntryID:    payload.EntryID,
		Status:     payload.Status,
		Rating:     payload.Rating,
		OccurredAt: time.UnixMilli(payload.OccurredAt).UTC(),
	}, "", nil
}

// deadLetterMessage moves a poison message to the dead-letter stream.
func (w *Worker) deadLetterMessage(ctx context.Context, msg redis.XMessage, reason, detail string) {
	w.logger.Warn("dead-lettering message",
		"message_id", msg.ID,
		"reason", reason,
		"detail", detail,
	)

	// Write to dead-letter stream with metadata
	_, err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		MaxLen: deadLetterMaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"original_id":      msg.ID,
			"original_stream":  StreamKey,
			"reason":           reason,
			"detail":           detail,
			"payload":          msg.Values["payload"],
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		w.logger.Error("failed to write to dead-letter stream",
			"message_id", msg.ID,
			"error", err,
		)
	}

	w.metrics.IncLibraryEventProcessed(metrics.StatusSkipped)
}

// processBatchWithRetry retries a failed batch with exponential backoff.
func (w *Worker) processBatchWithRetry(ctx context.Context, events []*model.LibraryEvent) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		err := w.processBatch(ctx, events)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == w.maxRetries {
			break
		}

		// Exponential backoff: 2s, 4s, ... with the default base
		backoff := time.Duration(1<<attempt) * w.retryBase
		w.logger.Warn("batch processing failed, retrying",
			"attempt", attempt,
			"backoff_seconds", backoff.Seconds(),
			"error", err,
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	for range events {
		w.metrics.IncLibraryEventProcessed(metrics.StatusFailed)
	}
	return lastErr
}

// processBatch stores events, recomputes touched book ratings and drops
// the cached views they affect.
func (w *Worker) processBatch(ctx context.Context, events []*model.LibraryEvent) error {
	start := time.Now()

	// Bulk insert with ON CONFLICT DO NOTHING for idempotency
	if err := w.repo.BulkInsert(ctx, events); err != nil {
		return fmt.Errorf("bulk insert: %w", err)
	}

	// Recompute the average rating of every touched book
	if err := w.repo.UpdateBookRatings(ctx, events); err != nil {
		return fmt.Errorf("update book ratings: %w", err)
	}

	w.invalidate(ctx, events)

	w.logger.Info("batch processed",
		"events_count", len(events),
		"duration_ms", float64(time.Since(start).Microseconds())/1000,
	)

	w.metrics.ObserveEventBatchSize(len(events))
	w.metrics.ObserveEventBatchDuration(time.Since(start))
	for range events {
		w.metrics.IncLibraryEventProcessed(metrics.StatusSuccess)
	}
	return nil
}

// invalidate drops cached views derived from the touched users and books.
// Cache errors are logged and never fail the batch.
func (w *Worker) invalidate(ctx context.Context, events []*model.LibraryEvent) {
	if w.views == nil {
		return
	}

	users, books := touched(events)
	for _, userID := range users {
		if err := w.views.InvalidateUser(ctx, userID); err != nil {
			w.logger.Debug("user view invalidation failed", "user_id", userID, "error", err)
		}
	}
	if err := w.views.InvalidateBooks(ctx, books...); err != nil {
		w.logger.Debug("book cache invalidation failed", "error", err)
	}
	if err := w.views.InvalidateTopBooks(ctx); err != nil {
		w.logger.Debug("top books invalidation failed", "error", err)
	}
	// Ratings moved, so every reader's ranked candidates may have too.
	if err := w.views.InvalidateRecommendations(ctx); err != nil {
		w.logger.Debug("recommendation invalidation failed", "error", err)
	}
}

// touched returns the sorted distinct user and book ids of events.
func touched(events []*model.LibraryEvent) (users, books []string) {
	seenUsers := make(map[string]bool)
	seenBooks := make(map[string]bool)
	for _, e := range events {
		if !seenUsers[e.UserID] {
			seenUsers[e.UserID] = true
			users = append(users, e.UserID)
		}
		if !seenBooks[e.BookID] {
			seenBooks[e.BookID] = true
			books = append(books, e.BookID)
		}
	}
	sort.Strings(users)
	sort.Strings(books)
	return users, books
}

// ackMessages acknowledges processed messages.
func (w *Worker) ackMessages(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	if _, err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, messageIDs...).Result(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

// isConsumerGroupExistsError reports a BUSYGROUP reply.
func isConsumerGroupExistsError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
