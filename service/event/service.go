package event

import (
	"reflect"
	"sync"

	"github.com/viant/devchat/service/messaging"
	"github.com/viant/devchat/service/messaging/memory"
)

// Service hands out typed publishers and listeners backed by in-memory
// queues, one queue per payload type.
type Service struct {
	typedPublishers map[reflect.Type]any
	typedListeners  map[reflect.Type]any
	newQueueConfig  func(name string) memory.Config
	mux             sync.RWMutex
}

// Option customises the event service
type Option func(s *Service)

// WithQueueConfig overrides the per-queue configuration
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}

// New creates an event service
func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListeners:  make(map[reflect.Type]any),
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(&t)
	return rType.Elem()
}

// PublisherOf returns the publisher for the provided payload type, creating
// its queue on first use.
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	queue := messaging.Queue[Event[T]](memory.NewQueue[Event[T]](s.newQueueConfig(key.String())))
	publisher := NewPublisher[T](queue)
	s.mux.Lock()
	s.typedPublishers[key] = publisher
	s.mux.Unlock()
	return publisher
}

// SetListenerOf replaces the listener for the provided payload type and
// starts it.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedListeners[key]
	s.mux.RUnlock()
	if ok {
		ret.(*Listener[T]).Stop()
	}
	listener := NewListener[T](PublisherOf[T](s), handler)
	s.mux.Lock()
	s.typedListeners[key] = listener
	s.mux.Unlock()
	listener.Start()
}

// Stop terminates all listeners.
func (s *Service) Stop() {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, l := range s.typedListeners {
		if stopper, ok := l.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}
	s.typedListeners = make(map[reflect.Type]any)
}
