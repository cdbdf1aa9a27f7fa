package application

import (
	"sync"
	"time"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// DefaultMessageTTL is how long a status message stays visible.
const DefaultMessageTTL = 5 * time.Second

// MessageBoard shows a single status message and clears it after a TTL.
// A newer message replaces the current one; the older message's pending
// expiry then fires without effect.
type MessageBoard struct {
	mu     sync.Mutex
	screen driven.Screen
	ttl    time.Duration
	gen    uint64
}

// NewMessageBoard creates a MessageBoard. A non-positive ttl uses DefaultMessageTTL.
func NewMessageBoard(screen driven.Screen, ttl time.Duration) *MessageBoard {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	return &MessageBoard{screen: screen, ttl: ttl}
}

// Show displays text with the given severity and schedules its expiry.
func (b *MessageBoard) Show(text string, severity model.Severity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gen++
	gen := b.gen
	b.screen.ShowMessage(model.Message{Text: text, Severity: severity})

	time.AfterFunc(b.ttl, func() { b.expire(gen) })
}

func (b *MessageBoard) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		return
	}
	b.screen.ClearMessage()
}
