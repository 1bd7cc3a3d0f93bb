package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	channel  string
	messages [][]byte
	err      error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.messages = append(f.messages, message.([]byte))
	return redis.NewIntResult(1, nil)
}

func TestRedisPublisher_Publish(t *testing.T) {
	fake := &fakeRedis{}
	p := NewRedisPublisher(fake, "repeatcal", nil)

	change := NewChange(OpSeriesDeleted, "s1", "a", "b")
	require.NoError(t, p.Publish(context.Background(), change))

	assert.Equal(t, "repeatcal", fake.channel)
	require.Len(t, fake.messages, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fake.messages[0], &got))
	assert.Equal(t, "series_deleted", got["op"])
	assert.Equal(t, "s1", got["series_id"])
	assert.Equal(t, []any{"a", "b"}, got["ids"])
	assert.EqualValues(t, 2, got["count"])
	assert.NotEmpty(t, got["id"])
}

func TestRedisPublisher_PublishError(t *testing.T) {
	fake := &fakeRedis{err: errors.New("connection refused")}
	p := NewRedisPublisher(fake, "repeatcal", nil)

	err := p.Publish(context.Background(), NewChange(OpCreated, "", "a"))
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, p.Close())
}

func TestNewChange(t *testing.T) {
	change := NewChange(OpSeriesDeleted, "s1")
	assert.Zero(t, change.Count)
	assert.Empty(t, change.EventIDs)
	assert.NotEqual(t, change.ID, NewChange(OpSeriesDeleted, "s1").ID)
	assert.NoError(t, Discard.Publish(context.Background(), change))
}
