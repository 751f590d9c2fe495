package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.PublishEvent(context.Background(), 1, NewEvent(EventFollowCreated, 2, "bob")))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishUser(context.Background(), 1, "x"))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, ok := ParseUserChannel(tt.expected)
		assert.True(t, ok)
		assert.Equal(t, tt.userID, id)
	}
}

func TestParseUserChannel_Invalid(t *testing.T) {
	t.Parallel()
	for _, channel := range []string{"", "notifications:user:", "notifications:user:abc", "notifications:user:0", "chat:conv:1"} {
		_, ok := ParseUserChannel(channel)
		assert.False(t, ok, channel)
	}
}

func TestEvent_RoundTrip(t *testing.T) {
	ticketID := uint(9)
	e := NewEvent(EventReviewCreated, 3, "carol")
	e.TicketID = &ticketID

	payload, err := e.Encode()
	require.NoError(t, err)
	assert.Contains(t, payload, `"type":"review.created"`)
	assert.NotContains(t, payload, "edge_id")

	decoded, err := DecodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, e.ID, decoded.ID)
	require.NotNil(t, decoded.TicketID)
	assert.Equal(t, ticketID, *decoded.TicketID)
}

func TestHub_StartWiringDeliversToUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n := NewNotifier(rdb)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	recipient, err := hub.Register(7, nil)
	require.NoError(t, err)
	bystander, err := hub.Register(8, nil)
	require.NoError(t, err)

	require.NoError(t, hub.StartWiring(ctx, n))
	require.NoError(t, n.PublishEvent(context.Background(), 7, NewEvent(EventFollowCreated, 8, "bystander")))

	select {
	case msg := <-recipient.Send:
		e, err := DecodeEvent(string(msg))
		require.NoError(t, err)
		assert.Equal(t, EventFollowCreated, e.Type)
		assert.Equal(t, uint(8), e.ActorID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}

	assert.Never(t, func() bool { return len(bystander.Send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) { payloads <- payload }))

	require.NoError(t, n.PublishUser(context.Background(), 1, "before-cancel"))
	assert.Eventually(t, func() bool { return len(payloads) == 1 }, time.Second, 10*time.Millisecond)

	<-payloads
	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishUser(context.Background(), 1, "after-cancel"))
	assert.Never(t, func() bool { return len(payloads) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
