package devchat

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/devchat/model/conversation"
	"github.com/viant/devchat/policy"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML; the zero-value is useful, all nested
// fields inherit their package defaults.
type Config struct {
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace"`
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Executor  ExecutorConfig  `json:"executor" yaml:"executor"`
	Policy    *policy.Config  `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// WorkspaceConfig locates the project directory.
type WorkspaceConfig struct {
	Root string `json:"root,omitempty" yaml:"root,omitempty"`
}

// ChatConfig configures the model client.
type ChatConfig struct {
	Model        string `json:"model" yaml:"model"`
	BaseURL      string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	APIKeyURL    string `json:"apiKeyURL,omitempty" yaml:"apiKeyURL,omitempty"`
	HistoryLimit int    `json:"historyLimit,omitempty" yaml:"historyLimit,omitempty"`
}

// ExecutorConfig configures command execution.
type ExecutorConfig struct {
	TimeoutMs  int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	UseSession bool              `json:"useSession,omitempty" yaml:"useSession,omitempty"`
	Env        map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// DefaultConfig returns a Config populated with package defaults. Callers may
// modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Chat: ChatConfig{
			Model:        "gpt-4o-mini",
			HistoryLimit: conversation.DefaultLimit,
		},
		Executor: ExecutorConfig{
			TimeoutMs: 60000,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Chat.Model == "" {
		return fmt.Errorf("chat.model must not be empty")
	}
	if c.Chat.HistoryLimit < 0 {
		return fmt.Errorf("chat.historyLimit must be >= 0")
	}
	if c.Executor.TimeoutMs < 0 {
		return fmt.Errorf("executor.timeoutMs must be >= 0")
	}
	return nil
}

// LoadConfig reads a YAML configuration from the supplied URL (any scheme
// supported by afs) on top of the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
