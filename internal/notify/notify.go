// Package notify publishes event store changes to other processes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Op names the kind of mutation a Change describes
type Op string

const (
	OpCreated       Op = "created"
	OpUpdated       Op = "updated"
	OpDeleted       Op = "deleted"
	OpSeriesUpdated Op = "series_updated"
	OpSeriesDeleted Op = "series_deleted"
)

// Change is one committed mutation of the event store
type Change struct {
	ID        string    `json:"id"`
	Op        Op        `json:"op"`
	EventIDs  []string  `json:"ids,omitempty"`
	SeriesID  string    `json:"series_id,omitempty"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChange stamps a change with a fresh identifier and the current time.
func NewChange(op Op, seriesID string, eventIDs ...string) Change {
	return Change{
		ID:        uuid.NewString(),
		Op:        op,
		EventIDs:  eventIDs,
		SeriesID:  seriesID,
		Count:     len(eventIDs),
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers changes after they are committed. A publish failure never
// undoes the change.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Discard drops every change.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Change) error { return nil }

// redisClient is the part of the go-redis client the publisher needs
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher sends changes as JSON messages on a Redis pub/sub channel
type RedisPublisher struct {
	client  redisClient
	channel string
	logger  *slog.Logger
	closer  io.Closer
}

func NewRedisPublisher(client redisClient, channel string, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Dial connects to the Redis server at addr and checks it answers.
func Dial(ctx context.Context, addr, channel string, logger *slog.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	p := NewRedisPublisher(client, channel, logger)
	p.closer = client
	p.logger.Info("connected to redis", "addr", addr, "channel", channel)
	return p, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		p.logger.Error("failed to publish change",
			"channel", p.channel,
			"op", change.Op,
			"error", err)
		return fmt.Errorf("failed to publish change: %w", err)
	}

	p.logger.Debug("published change",
		"channel", p.channel,
		"op", change.Op,
		"series_id", change.SeriesID,
		"receivers", receivers)
	return nil
}

func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
