package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodcourt-be/internal/auth"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// asHeaderUser stands in for the auth middleware.
func asHeaderUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-User"); id != "" {
			r = r.WithContext(auth.WithActor(r.Context(), auth.Actor{UserID: id, Role: auth.RoleCustomer}))
		}
		next.ServeHTTP(w, r)
	})
}

// verifyNoLeaks runs after every other cleanup of the test.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	opt := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, opt) })
}

type harness struct {
	hub *Hub
	dir *MemoryDirectory
	srv *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := NewMemoryDirectory()
	hub := NewHub(dir)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(asHeaderUser(NewHandler(hub, "")))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
		cancel()
	})
	return &harness{hub: hub, dir: dir, srv: srv}
}

func (h *harness) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set("X-Test-User", userID)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(h.srv.URL, "http"), header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHub_BroadcastReachesEveryConnection(t *testing.T) {
	verifyNoLeaks(t)

	h := newHarness(t)
	a, b := h.dial(t, "u-1"), h.dial(t, "u-2")
	require.Eventually(t, func() bool { return h.hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.hub.Broadcast(context.Background(), "orderStatusChanged", map[string]string{"orderId": "o-1"}))

	for _, conn := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, conn)
		assert.Equal(t, "orderStatusChanged", env.Event)
		assert.JSONEq(t, `{"orderId":"o-1"}`, string(env.Data))
	}
}

func TestHub_DirectoryTracksConnections(t *testing.T) {
	verifyNoLeaks(t)

	h := newHarness(t)
	ctx := context.Background()
	conn := h.dial(t, "u-1")

	var connID string
	require.Eventually(t, func() bool {
		id, ok, _ := h.dir.Lookup(ctx, "u-1")
		connID = id
		return ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, h.hub.SendToConnection(ctx, connID, "orderStatusChanged", map[string]string{"status": "READY_FOR_PICKUP"}))
	env := readEnvelope(t, conn)
	assert.JSONEq(t, `{"status":"READY_FOR_PICKUP"}`, string(env.Data))

	conn.Close()
	require.Eventually(t, func() bool {
		_, ok, _ := h.dir.Lookup(ctx, "u-1")
		return !ok && h.hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, h.hub.SendToConnection(ctx, connID, "orderStatusChanged", nil), ErrConnectionGone)
}

func TestHub_RejectsAnonymous(t *testing.T) {
	verifyNoLeaks(t)

	h := newHarness(t)
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(h.srv.URL, "http"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestHub_StopClosesConnections(t *testing.T) {
	verifyNoLeaks(t)

	h := newHarness(t)
	conn := h.dial(t, "u-1")
	require.Eventually(t, func() bool { return h.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, h.hub.ClientCount())
}

func TestHub_SlowConsumer(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	defer hub.Stop()

	c := &Client{id: "c-1", hub: hub, send: make(chan []byte, 1)}
	require.NoError(t, hub.attach(c))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToConnection(ctx, "c-1", "orderPlaced", 1))
	assert.ErrorIs(t, hub.SendToConnection(ctx, "c-1", "orderPlaced", 2), ErrSlowConsumer)

	// broadcast drops instead of blocking
	require.NoError(t, hub.Broadcast(ctx, "orderPlaced", 3))
	assert.Len(t, c.send, 1)

	stats := hub.Stats()
	assert.Equal(t, uint64(1), stats.Queued)
	assert.Equal(t, uint64(2), stats.Dropped)
}

func TestMemoryDirectory_StaleUnregister(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	require.NoError(t, dir.Register(ctx, "u-1", "old"))
	require.NoError(t, dir.Register(ctx, "u-1", "new"))
	require.NoError(t, dir.Unregister(ctx, "u-1", "old"))

	id, ok, err := dir.Lookup(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", id)
}
