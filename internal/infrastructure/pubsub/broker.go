package pubsub

import (
	"sync"
)

// Publisher announces that data owned by a user changed
type Publisher interface {
	Publish(userID string)
}

// Broker fans change notifications out to subscribers, keyed by user id.
// A subscriber registered with an empty user id hears about every user.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	userID string
	ch     chan string
}

var _ Publisher = &Broker{}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int]*subscription),
	}
}

// Subscribe returns a channel receiving the ids of changed users and a cancel func
// which must be called to release the subscription.
//
// notifications are coalesced, a slow reader sees at least one event after the last change
func (b *Broker) Subscribe(userID string) (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscription{userID: userID, ch: make(chan string, 1)}
	b.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Publish never blocks
func (b *Broker) Publish(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.userID != "" && sub.userID != userID {
			continue
		}
		select {
		case sub.ch <- userID:
		default: // a notification is already pending
		}
	}
}

// Subscribers number of live subscriptions
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
