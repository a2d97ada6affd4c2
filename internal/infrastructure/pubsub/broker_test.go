package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_RoutesByUser(t *testing.T) {
	b := NewBroker()
	alice, cancelAlice := b.Subscribe("alice")
	defer cancelAlice()
	all, cancelAll := b.Subscribe("")
	defer cancelAll()

	b.Publish("bob")
	assert.Empty(t, alice)
	require.Len(t, all, 1)
	assert.Equal(t, "bob", <-all)

	b.Publish("alice")
	assert.Equal(t, "alice", <-alice)
	assert.Equal(t, "alice", <-all)
}

func TestBroker_PublishCoalesces(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("alice")
	defer cancel()

	b.Publish("alice")
	b.Publish("alice")
	b.Publish("alice")
	assert.Len(t, ch, 1)
}

func TestBroker_Cancel(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("alice")
	assert.Equal(t, 1, b.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, b.Subscribers())
	_, open := <-ch
	assert.False(t, open)

	// publishing after cancel must not panic on the closed channel
	b.Publish("alice")
}
