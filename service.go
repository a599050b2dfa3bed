package devchat

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/devchat/extension"
	"github.com/viant/devchat/internal/clock"
	"github.com/viant/devchat/internal/idgen"
	"github.com/viant/devchat/model/conversation"
	"github.com/viant/devchat/model/plan"
	"github.com/viant/devchat/policy"
	"github.com/viant/devchat/service/action/system/exec"
	"github.com/viant/devchat/service/action/system/storage"
	"github.com/viant/devchat/service/chat"
	"github.com/viant/devchat/service/event"
	"github.com/viant/devchat/service/sandbox"
	"github.com/viant/x"
)

// Turn is the outcome of one chat exchange: the model response plus the
// execution result of every command it proposed.
type Turn struct {
	ID       string                 `json:"id"`
	Response *plan.Response         `json:"response"`
	Results  []plan.ExecutionResult `json:"results,omitempty"`
}

// Service is the chat front door. It owns the conversation history, the
// confinement checker and the command executor, and turns user messages into
// executed command plans.
type Service struct {
	config         *Config
	fs             afs.Service
	checker        *sandbox.Checker
	executor       *exec.Service
	storage        *storage.Service
	client         *chat.Client
	history        *conversation.History
	events         *event.Service
	actions        *extension.Actions
	policy         *policy.Policy
	extensionTypes []*x.Type
}

// New creates the service. Unless WithClient is supplied the model API key is
// resolved from the environment or the configured secret URL.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{
		config: DefaultConfig(),
		fs:     afs.New(),
	}
	for _, option := range options {
		option(ret)
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	ret.checker = sandbox.New(ret.config.Workspace.Root)
	ret.executor = exec.New(ret.checker)
	ret.storage = storage.New(ret.checker)
	ret.history = conversation.NewHistory(ret.config.Chat.HistoryLimit)
	if ret.events == nil {
		ret.events = event.New()
	}
	if ret.policy == nil && ret.config.Policy != nil {
		ret.policy = policy.FromConfig(ret.config.Policy)
	}
	if ret.client == nil {
		apiKey, err := chat.APIKey(ctx, ret.config.Chat.APIKeyURL)
		if err != nil {
			return nil, err
		}
		var clientOptions []chat.ClientOption
		if ret.config.Chat.BaseURL != "" {
			clientOptions = append(clientOptions, chat.WithBaseURL(ret.config.Chat.BaseURL))
		}
		ret.client = chat.NewClient(apiKey, ret.config.Chat.Model, clientOptions...)
	}
	ret.actions = extension.NewActions(append([]*x.Type{
		x.NewType(reflect.TypeOf(plan.Command{})),
		x.NewType(reflect.TypeOf(plan.ExecutionResult{})),
	}, ret.extensionTypes...)...)
	ret.actions.Register(ret.executor)
	ret.actions.Register(ret.storage)
	return ret, nil
}

// Actions returns the action service registry.
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// Events returns the event service.
func (s *Service) Events() *event.Service {
	return s.events
}

// History returns a copy of the retained conversation.
func (s *Service) History() []conversation.Message {
	return s.history.Messages()
}

// ProjectDirectory returns the current project directory, empty when none is
// set.
func (s *Service) ProjectDirectory() string {
	return s.checker.Root()
}

// SetProjectDirectory re-points the service at a project directory, creating
// it when missing. The persistent shell session, if any, is torn down so the
// next command starts in the new root.
func (s *Service) SetProjectDirectory(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("project directory was empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory %v: %w", path, err)
	}
	if ok, _ := s.fs.Exists(ctx, abs); !ok {
		if err = s.fs.Create(ctx, abs, file.DefaultDirOsMode, true); err != nil {
			return fmt.Errorf("failed to create project directory %v: %w", abs, err)
		}
	}
	if err = s.checker.SetRoot(abs); err != nil {
		return err
	}
	s.executor.InvalidateSession()
	s.config.Workspace.Root = abs
	return nil
}

// Send runs one chat turn: the message goes to the model with the retained
// history, and every command the model proposes is classified and executed.
// Model failures are recovered into the response message so a turn always
// yields a result.
func (s *Service) Send(ctx context.Context, message string) (*Turn, error) {
	turn := &Turn{ID: idgen.New()}
	root := s.checker.Root()
	if root == "" {
		turn.Response = &plan.Response{Message: "No project directory is set. Choose one before sending a message."}
		return turn, nil
	}
	if s.policy != nil {
		ctx = policy.WithPolicy(ctx, s.policy)
	}
	publisher := event.PublisherOf[event.TurnUpdate](s.events)
	_ = publisher.Publish(ctx, event.NewEvent(
		&event.Context{TurnID: turn.ID, EventType: event.TypeTurnStarted},
		event.TurnUpdate{Message: message},
	))
	started := clock.Now()

	s.history.Append(conversation.Message{Role: conversation.RoleUser, Content: message})
	messages := append(
		[]conversation.Message{{Role: conversation.RoleSystem, Content: chat.SystemPrompt(root)}},
		s.history.Messages()...,
	)
	response, err := s.client.Complete(ctx, messages)
	if err != nil {
		response = &plan.Response{Message: fmt.Sprintf("The model request failed: %v", err)}
	}
	turn.Response = response
	s.history.Append(conversation.Message{Role: conversation.RoleAssistant, Content: response.Message})

	if len(response.Commands) > 0 {
		output := &exec.Output{}
		_ = s.executor.Execute(ctx, &exec.Input{
			Commands:   response.Commands,
			Env:        s.config.Executor.Env,
			TimeoutMs:  s.config.Executor.TimeoutMs,
			UseSession: s.config.Executor.UseSession,
		}, output)
		turn.Results = output.Results
		_ = publisher.Publish(ctx, event.NewEvent(
			&event.Context{TurnID: turn.ID, EventType: event.TypeCommandExecuted},
			event.TurnUpdate{Commands: response.Commands, Results: output.Results},
		))
	}

	_ = publisher.Publish(ctx, event.NewEvent(
		&event.Context{
			TurnID:      turn.ID,
			EventType:   event.TypeTurnCompleted,
			TimeTakenMs: int(time.Since(started).Milliseconds()),
		},
		event.TurnUpdate{Message: response.Message, Results: turn.Results},
	))
	return turn, nil
}

// Close releases the persistent shell session and stops event listeners.
func (s *Service) Close(ctx context.Context) error {
	s.events.Stop()
	return s.executor.Close(ctx)
}
