package extension

import (
	"sync"

	"github.com/viant/devchat/model/types"
	"github.com/viant/x"
)

// DataTypeIniter lets a service register the data types it exposes.
type DataTypeIniter interface {
	InitTypes(types *Types)
}

// Actions provides a registry of action services
type Actions struct {
	types    *Types
	services map[string]types.Service
	mux      sync.RWMutex
}

// Types returns the data type registry
func (s *Actions) Types() *Types {
	return s.types
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register registers a service
func (s *Actions) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if typer, ok := service.(DataTypeIniter); ok {
		typer.InitTypes(s.types)
	}
	s.services[service.Name()] = service
}

// Services returns the registered service names
func (s *Actions) Services() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var names []string
	for name := range s.services {
		names = append(names, name)
	}
	return names
}

// NewActions creates a new action registry
func NewActions(goTypes ...*x.Type) *Actions {
	ret := &Actions{
		types:    NewTypes(),
		services: make(map[string]types.Service),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
