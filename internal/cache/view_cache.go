package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/clinic-billing/internal/domain"
)

const (
	financingKeyPrefix        = "financing:view:"
	financingGenerationPrefix = "financing:gen:"
)

// setIfCurrent stores a view only while the financing's generation still
// matches the one read before loading it from the database.
var setIfCurrent = redis.NewScript(`
if (redis.call("GET", KEYS[1]) or "0") ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

// ViewCache stores rendered financing details in Redis and announces stale
// views on a pub/sub channel. Every invalidation bumps a per-financing
// generation so a reader that loaded an older row cannot store it afterwards.
type ViewCache struct {
	client  *redis.Client
	ttl     time.Duration
	channel string
	logger  logrus.FieldLogger
}

func NewViewCache(client *redis.Client, ttl time.Duration, channel string, logger logrus.FieldLogger) *ViewCache {
	return &ViewCache{
		client:  client,
		ttl:     ttl,
		channel: channel,
		logger:  logger,
	}
}

func financingKey(id uuid.UUID) string {
	return financingKeyPrefix + id.String()
}

func generationKey(id uuid.UUID) string {
	return financingGenerationPrefix + id.String()
}

// GetFinancing returns the cached detail, or nil on a miss, together with
// the financing's current generation. Pass the generation to SetFinancing.
func (c *ViewCache) GetFinancing(ctx context.Context, id uuid.UUID) (*domain.FinancingDetail, int64, error) {
	key := financingKey(id)

	pipe := c.client.Pipeline()
	viewCmd := pipe.Get(ctx, key)
	genCmd := pipe.Get(ctx, generationKey(id))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("failed to get financing view: %w", err)
	}

	generation, err := genCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("failed to read financing view generation: %w", err)
	}

	data, err := viewCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get financing view: %w", err)
	}

	var detail domain.FinancingDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		// corrupted entry
		c.client.Del(ctx, key)
		c.logger.WithField("key", key).WithError(err).Warn("dropped unreadable financing view")
		return nil, generation, nil
	}

	return &detail, generation, nil
}

// SetFinancing stores detail unless the financing was invalidated after
// generation was read. A skipped write is not an error.
func (c *ViewCache) SetFinancing(ctx context.Context, detail *domain.FinancingDetail, generation int64) error {
	if detail == nil || detail.Financing == nil {
		return nil
	}

	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal financing view: %w", err)
	}

	stored, err := setIfCurrent.Run(ctx, c.client,
		[]string{generationKey(detail.ID), financingKey(detail.ID)},
		strconv.FormatInt(generation, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to set financing view: %w", err)
	}

	if stored == 0 {
		c.logger.WithField("financing_id", detail.ID).Debug("skipped stale financing view")
	}

	return nil
}

// InvalidateFinancings drops the cached views and bumps their generations.
func (c *ViewCache) InvalidateFinancings(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for _, id := range ids {
		pipe.Incr(ctx, generationKey(id))
		if c.ttl > 0 {
			// outlives any view stored under an older generation
			pipe.Expire(ctx, generationKey(id), 2*c.ttl)
		}
		pipe.Del(ctx, financingKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate financing views: %w", err)
	}

	return nil
}

// Publish sends event as JSON on the view channel.
func (c *ViewCache) Publish(ctx context.Context, event *domain.ViewEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal view event: %w", err)
	}

	if err := c.client.Publish(ctx, c.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish view event: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"channel": c.channel,
		"event":   event.Type,
	}).Debug("published view event")

	return nil
}

// Subscribe calls handle for every event received on the view channel until
// ctx is done. Unreadable messages are skipped.
func (c *ViewCache) Subscribe(ctx context.Context, handle func(*domain.ViewEvent)) error {
	pubsub := c.client.Subscribe(ctx, c.channel)
	defer pubsub.Close()

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.ViewEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				c.logger.WithError(err).Warn("skipped unreadable view event")
				continue
			}
			handle(&event)
		}
	}
}

// LogEvents returns a Subscribe handler that writes every view event to
// logger at debug level.
func LogEvents(logger logrus.FieldLogger) func(*domain.ViewEvent) {
	return func(event *domain.ViewEvent) {
		fields := logrus.Fields{
			"event":      event.Type,
			"financings": len(event.FinancingIDs),
		}
		if event.PatientID != nil {
			fields["patient_id"] = *event.PatientID
		}
		if event.PaymentID != nil {
			fields["payment_id"] = *event.PaymentID
		}
		logger.WithFields(fields).Debug("view event received")
	}
}
