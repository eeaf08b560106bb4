package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func registerClient(t *testing.T, h *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{hub: h, userID: userID, send: make(chan []byte, buffer)}
	select {
	case h.register <- client:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not accept registration")
	}
	return client
}

func TestHub_SendToUser(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()
	defer h.Stop()

	userID := uuid.New()
	client := registerClient(t, h, userID, 2)

	h.SendToUser(userID, []byte("private"))

	select {
	case msg := <-client.send:
		assert.Equal(t, "private", string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("expected unicast message")
	}
}

func TestHub_SendToUser_OnlyMatchingClientsReceive(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()
	defer h.Stop()

	targetID := uuid.New()
	otherID := uuid.New()
	target := registerClient(t, h, targetID, 1)
	other := registerClient(t, h, otherID, 1)

	h.SendToUser(targetID, []byte("only-target"))

	select {
	case msg := <-target.send:
		assert.Equal(t, "only-target", string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("target did not receive message")
	}

	select {
	case <-other.send:
		t.Fatal("non-target client should not receive unicast")
	default:
	}
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()
	defer h.Stop()

	userID := uuid.New()
	first := registerClient(t, h, userID, 1)
	second := registerClient(t, h, userID, 1)

	h.SendToUser(userID, []byte("both-tabs"))

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.send:
			assert.Equal(t, "both-tabs", string(msg))
		case <-time.After(2 * time.Second):
			t.Fatal("every connection of the user should receive the payload")
		}
	}
}

func TestHub_SlowConsumerIsDropped(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()
	defer h.Stop()

	userID := uuid.New()
	// Buffer of one: the second send cannot be queued.
	client := registerClient(t, h, userID, 1)

	h.SendToUser(userID, []byte("first"))
	h.SendToUser(userID, []byte("second"))

	assert.Equal(t, "first", string(<-client.send))

	// The dropped client's channel gets closed by the hub.
	select {
	case _, open := <-client.send:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("slow consumer was not dropped")
	}
}

func TestHub_SendAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()
	h.Stop()

	done := make(chan struct{})
	go func() {
		h.SendToUser(uuid.New(), []byte("late"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SendToUser blocked after Stop")
	}
}
