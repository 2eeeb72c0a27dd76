package websocket

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/pkg/logger"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []string
	fail     bool
	closed   bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, string(data))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestHubPublishesToRecipientOnly(t *testing.T) {
	logger.InitNop()
	hub := NewHub()
	alice1, alice2, bob := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Register(&Client{UserID: "alice", Conn: alice1})
	hub.Register(&Client{UserID: "alice", Conn: alice2})
	hub.Register(&Client{UserID: "bob", Conn: bob})

	hub.Publish("alice", map[string]string{"message": "hi"})

	require.Len(t, alice1.messages, 1)
	assert.JSONEq(t, `{"message":"hi"}`, alice1.messages[0])
	assert.Len(t, alice2.messages, 1)
	assert.Empty(t, bob.messages)
}

func TestHubDropsFailingClients(t *testing.T) {
	logger.InitNop()
	hub := NewHub()
	broken := &fakeConn{fail: true}
	hub.Register(&Client{UserID: "alice", Conn: broken})
	require.Equal(t, 1, hub.Connections("alice"))

	hub.Publish("alice", "ping")

	assert.Equal(t, 0, hub.Connections("alice"))
	assert.True(t, broken.closed)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	c := &Client{UserID: "alice", Conn: conn}
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	assert.Equal(t, 0, hub.Connections("alice"))
	assert.True(t, conn.closed)
	hub.Publish("alice", "nobody listening")
}
