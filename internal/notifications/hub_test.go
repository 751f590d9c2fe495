package notifications

import (
	"context"
	"testing"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Connections(1))

	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Connections(1))
	_, open := <-a.Send
	assert.False(t, open, "unregister closes the send channel")

	// unregistering twice is harmless
	hub.UnregisterClient(a)
	hub.UnregisterClient(b)
	assert.Zero(t, hub.Connections(1))
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)

	_, err = hub.Register(6, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastTargetsOneUser(t *testing.T) {
	hub := NewHub()
	a, _ := hub.Register(1, nil)
	b, _ := hub.Register(2, nil)

	hub.Broadcast(1, "hello")
	require.Len(t, a.Send, 1)
	assert.Equal(t, "hello", string(<-a.Send))
	assert.Empty(t, b.Send)
}

func TestClient_TrySendDropsWhenFullOrClosed(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))

	hub.UnregisterClient(c)
	assert.False(t, c.TrySend([]byte("late")))
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(4, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Zero(t, hub.Connections(4))
	assert.False(t, c.TrySend([]byte("after shutdown")))

	_, err = hub.Register(4, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_ShutdownHandsCloseFrameToWritePump(t *testing.T) {
	hub := NewHub()
	leaving, err := hub.Register(5, nil)
	require.NoError(t, err)
	staying, err := hub.Register(6, nil)
	require.NoError(t, err)

	hub.UnregisterClient(leaving)
	assert.Empty(t, leaving.closeMessage())

	require.NoError(t, hub.Shutdown(context.Background()))
	_, open := <-staying.Send
	assert.False(t, open)
	assert.Equal(t,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, shutdownReason),
		staying.closeMessage())
}
