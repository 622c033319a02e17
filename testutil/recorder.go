package testutil

import (
	"context"
	"sync"
)

// Message is one event captured by a Recorder.
type Message struct {
	Key     string
	Payload any
}

// Recorder keeps published events in memory. Tests use it in place of a
// broker.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) PublishJSON(_ context.Context, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Key: key, Payload: v})
	return nil
}

// Keys returns the routing keys published so far, in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		keys = append(keys, m.Key)
	}
	return keys
}

// Messages returns a copy of everything published so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
