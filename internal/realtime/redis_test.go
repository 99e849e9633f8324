package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisDirectory(t *testing.T) {
	ctx := context.Background()
	dir := NewRedisDirectory(newRedis(t))

	_, ok, err := dir.Lookup(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, dir.Register(ctx, "u-1", "conn-a"))
	require.NoError(t, dir.Register(ctx, "u-1", "conn-b"))

	// the first socket closing must not evict the second
	require.NoError(t, dir.Unregister(ctx, "u-1", "conn-a"))
	id, ok, err := dir.Lookup(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "conn-b", id)

	require.NoError(t, dir.Unregister(ctx, "u-1", "conn-b"))
	_, ok, err = dir.Lookup(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRelay(t *testing.T) {
	client := newRedis(t)
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	local := &Client{id: "c-1", hub: hub, send: make(chan []byte, 4)}
	require.NoError(t, hub.attach(local))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	relay := NewRedisRelay(client, hub)
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- relay.Subscribe(ctx, ready) }()
	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not ready")
	}

	receive := func() Envelope {
		select {
		case frame := <-local.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			return env
		case <-time.After(2 * time.Second):
			t.Fatal("no frame relayed")
		}
		return Envelope{}
	}

	require.NoError(t, relay.Broadcast(ctx, "orderPlaced", map[string]string{"orderId": "o-1"}))
	assert.Equal(t, "orderPlaced", receive().Event)

	// frames for connections on other instances are ignored
	require.NoError(t, relay.SendToConnection(ctx, "elsewhere", "orderStatusChanged", 1))
	require.NoError(t, relay.SendToConnection(ctx, "c-1", "orderStatusChanged", map[string]string{"status": "PREPARING"}))
	env := receive()
	assert.Equal(t, "orderStatusChanged", env.Event)
	assert.JSONEq(t, `{"status":"PREPARING"}`, string(env.Data))

	cancel()
	require.NoError(t, <-done)
	hub.Stop()
}
