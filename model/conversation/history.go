package conversation

import "sync"

// DefaultLimit caps retained messages; one turn contributes a user and an
// assistant entry, so 20 keeps the last 10 exchanges.
const DefaultLimit = 20

// History is a bounded message log; once the limit is reached the oldest
// entries are discarded. Safe for use from a single chat turn at a time,
// the mutex only guards against a reader racing a background turn.
type History struct {
	mux      sync.RWMutex
	limit    int
	messages []Message
}

// NewHistory creates a history bounded to limit messages (DefaultLimit when
// limit <= 0).
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Append adds a message, evicting the oldest entries beyond the limit.
func (h *History) Append(message Message) {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.messages = append(h.messages, message)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append([]Message(nil), h.messages[over:]...)
	}
}

// Messages returns a copy of the retained messages in order.
func (h *History) Messages() []Message {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return append([]Message(nil), h.messages...)
}

// Size returns the number of retained messages.
func (h *History) Size() int {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return len(h.messages)
}
