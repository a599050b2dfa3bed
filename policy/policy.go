// Package policy provides an optional per-command approval layer that can be
// attached to an execution via context. It is deliberately decoupled from the
// rest of the module so that using it is entirely opt-in: callers that do not
// embed a Policy in their context keep the default "auto" behaviour.
package policy

import (
	"context"
	"strings"
)

// Execution modes recognised by the dispatcher.
const (
	ModeAsk  = "ask"  // ask user before every command
	ModeAuto = "auto" // execute automatically (default)
	ModeDeny = "deny" // block execution
)

// AskFunc is invoked when Mode==ask. Returning true approves the command,
// false rejects it. Implementations MAY mutate the policy (for example,
// switching to ModeAuto after the first approval).
type AskFunc func(ctx context.Context, command string, p *Policy) bool

// Policy represents the approval settings for the current execution.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList, BlockList filter by command verb regardless of Mode.
//   - Ask is only used when Mode==ask.
//
// A nil *Policy means "execute everything automatically" and is therefore the
// zero-cost default.
type Policy struct {
	Mode      string   // ask / auto / deny      (default = auto)
	AllowList []string // whitelist of verbs (empty => all)
	BlockList []string // blacklist of verbs
	Ask       AskFunc  // used only when Mode==ask
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// FromConfig converts a stored Config back to a runtime Policy (without
// AskFunc).
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// IsAllowed evaluates AllowList / BlockList against the command verb, matched
// by exact case-insensitive comparison.
func (p *Policy) IsAllowed(verb string) bool {
	if p == nil {
		return true
	}

	normalized := strings.ToLower(verb)

	// BlockList has priority.
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}

	// AllowList: if empty everything is allowed, otherwise only the listed
	// entries.
	if len(p.AllowList) == 0 {
		return true
	}

	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}

	return false
}

// Approves reports whether the policy lets the command run. The verb is
// checked against the allow/block lists first, then the mode is applied.
func (p *Policy) Approves(ctx context.Context, verb, command string) bool {
	if p == nil {
		return true
	}
	if !p.IsAllowed(verb) {
		return false
	}
	switch p.Mode {
	case ModeDeny:
		return false
	case ModeAsk:
		if p.Ask == nil {
			return false
		}
		return p.Ask(ctx, command, p)
	default:
		return true
	}
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy if present.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
