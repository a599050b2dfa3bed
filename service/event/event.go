// Package event delivers typed notifications about chat turns and command
// execution over in-memory queues, so user interfaces can observe progress
// without polling.
package event

import (
	"time"

	"github.com/viant/devchat/internal/clock"
	"github.com/viant/devchat/model/plan"
)

// Event types published by the chat service.
const (
	TypeTurnStarted     = "turnStarted"
	TypeTurnCompleted   = "turnCompleted"
	TypeCommandExecuted = "commandExecuted"
)

// Context identifies the turn an event belongs to.
type Context struct {
	TurnID      string `json:"turnID"`
	EventType   string `json:"eventType"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Event carries a typed payload with its turn context.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// TurnUpdate is the payload published when a chat turn starts or completes.
type TurnUpdate struct {
	Message  string                 `json:"message,omitempty"`
	Results  []plan.ExecutionResult `json:"results,omitempty"`
	Commands []plan.Command         `json:"commands,omitempty"`
}
