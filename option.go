package devchat

import (
	"github.com/viant/devchat/policy"
	"github.com/viant/devchat/service/chat"
	"github.com/viant/devchat/service/event"
	"github.com/viant/x"
)

// Option customises the service
type Option func(s *Service)

// WithConfig replaces the default configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithClient sets the chat client, bypassing API key resolution
func WithClient(client *chat.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithPolicy sets the command approval policy
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithEventService sets the event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithExtensionTypes registers additional data types
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}
