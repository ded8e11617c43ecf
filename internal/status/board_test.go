package status_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsarma/runbox/internal/status"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "runbox:run:abc:status", status.Key("abc"))
	assert.Equal(t, "runbox:run:abc", status.Channel("abc"))
}

func TestBoard(t *testing.T) {
	addr := os.Getenv("RUNBOX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RUNBOX_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := status.Connect(ctx, addr, "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	b := status.New(rdb, time.Minute)
	id := uuid.NewString()

	_, err = b.Get(ctx, id)
	assert.ErrorIs(t, err, status.ErrNotFound)

	sub := rdb.Subscribe(ctx, status.Channel(id))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Set(ctx, id, "Running..."))
	got, err := b.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Running...", got)

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "Running...", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("status change was not published")
	}

	ttl, err := rdb.TTL(ctx, status.Key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
