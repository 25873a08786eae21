package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"onechart-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToUserConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	a1 := &Client{Hub: hub, UserID: alice, Send: make(chan []byte, 4)}
	a2 := &Client{Hub: hub, UserID: alice, Send: make(chan []byte, 4)}
	b1 := &Client{Hub: hub, UserID: bob, Send: make(chan []byte, 4)}
	hub.register <- a1
	hub.register <- a2
	hub.register <- b1

	require.Eventually(t, func() bool { return hub.Connections(alice) == 2 }, time.Second, 5*time.Millisecond)

	hub.Send(alice, Envelope{Type: "session.upsert", Data: map[string]string{"id": "s1"}})

	for _, c := range []*Client{a1, a2} {
		select {
		case raw := <-c.Send:
			var env map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &env))
			assert.Equal(t, "session.upsert", env["type"])
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Len(t, b1.Send, 0)

	hub.unregister <- a1
	require.Eventually(t, func() bool { return hub.Connections(alice) == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-a1.Send
	assert.False(t, open)
}
