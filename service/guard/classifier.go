package guard

import (
	"strings"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/viant/devchat/service/sandbox"
)

// Kind tags the recognised command variant so the dispatcher can route
// without re-parsing.
type Kind int

const (
	// KindRejected - the command must not run
	KindRejected Kind = iota
	// KindWhitelisted - a recognised filesystem verb with confined paths
	KindWhitelisted
	// KindContentFlag - a content-writing verb (Set-Content/Add-Content/New-Item)
	KindContentFlag
	// KindRedirection - output redirection into a file
	KindRedirection
	// KindPassthrough - anything else, forwarded to the shell
	KindPassthrough
)

// Verdict is the classification outcome for one command.
type Verdict struct {
	Kind   Kind
	Verb   string
	Paths  []string // path arguments that were validated
	Reason string   // populated when Kind==KindRejected
}

// deniedVerb has no legitimate project-scoped use.
const deniedVerb = "format"

// whitelisted filesystem verbs and the minimum number of positional path
// arguments each expects; every positional argument is confined to the
// project.
var whitelistedVerbs = map[string]int{
	"dir":    0,
	"type":   1,
	"move":   2,
	"ren":    2,
	"rename": 2,
	"del":    1,
	"rm":     1,
	"rmdir":  1,
	"rd":     1,
}

// contentVerbs supply file content via a -Value style flag; their -Path flag
// value is confined when present.
var contentVerbs = map[string]bool{
	"add-content": true,
	"set-content": true,
	"new-item":    true,
}

// Classifier decides whether a command may touch the filesystem. It is
// state-free apart from the confinement checker it consults.
type Classifier struct {
	checker *sandbox.Checker
}

// New creates a classifier bound to the supplied confinement checker.
func New(checker *sandbox.Checker) *Classifier {
	return &Classifier{checker: checker}
}

// IsSafeCommand reports whether command is permitted to run.
func (c *Classifier) IsSafeCommand(command string) bool {
	return c.Classify(command).Kind != KindRejected
}

// Classify tags command with the variant the dispatcher should route it to,
// validating every recognised path argument through the confinement checker.
func (c *Classifier) Classify(command string) Verdict {
	if c.checker.Root() == "" {
		return rejected("", "project directory is not configured")
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return rejected("", "empty command")
	}
	verb := strings.ToLower(fields[0])
	if verb == deniedVerb {
		return rejected(verb, "destructive command is blocked")
	}
	// coarse net on top of per-path checks
	if strings.Contains(command, "..") || strings.Contains(command, "~") {
		return rejected(verb, "command references a path outside the project directory")
	}
	// the colon scan runs on every command regardless of which variant
	// classifies it
	colonPaths, confined := c.confinedColonTokens(fields)
	if !confined {
		return rejected(verb, "absolute path is outside the project directory")
	}

	if expected, ok := whitelistedVerbs[verb]; ok {
		return c.classifyWhitelisted(command, verb, expected)
	}
	if contentVerbs[verb] {
		return c.classifyContentFlag(command, verb)
	}
	kind := KindPassthrough
	if strings.Contains(command, ">") {
		kind = KindRedirection
	}
	return Verdict{Kind: kind, Verb: verb, Paths: colonPaths}
}

func (c *Classifier) classifyWhitelisted(command, verb string, expected int) Verdict {
	args := positionalArgs(command)
	if len(args) < expected {
		return rejected(verb, "missing path argument")
	}
	var paths []string
	for _, arg := range args {
		if !c.checker.IsPathInProject(arg) {
			return rejected(verb, "path argument is outside the project directory")
		}
		paths = append(paths, arg)
	}
	return Verdict{Kind: KindWhitelisted, Verb: verb, Paths: paths}
}

func (c *Classifier) classifyContentFlag(command, verb string) Verdict {
	// only validated when the flag is found; content verbs without an
	// explicit -Path are resolved by the interpreter against the root
	if value, ok := FlagValue(command, "-Path"); ok {
		if !c.checker.IsPathInProject(value) {
			return rejected(verb, "-Path points outside the project directory")
		}
		return Verdict{Kind: KindContentFlag, Verb: verb, Paths: []string{value}}
	}
	return Verdict{Kind: KindContentFlag, Verb: verb}
}

// confinedColonTokens validates every token containing a colon, the
// heuristic for a drive-qualified absolute path. Quote characters around the
// token are stripped before validation. The second return is false when any
// such token resolves outside the project.
func (c *Classifier) confinedColonTokens(tokens []string) ([]string, bool) {
	var paths []string
	for _, token := range tokens {
		if !strings.Contains(token, ":") {
			continue
		}
		candidate := strings.Trim(token, `"'`)
		if !c.checker.IsPathInProject(candidate) {
			return nil, false
		}
		paths = append(paths, candidate)
	}
	return paths, true
}

// positionalArgs returns the non-flag arguments after the verb, honouring
// shell quoting so a quoted path with spaces stays one argument.
func positionalArgs(command string) []string {
	tokens, err := shellwords.Parse(command)
	if err != nil {
		tokens = strings.Fields(command)
	}
	if len(tokens) <= 1 {
		return nil
	}
	var args []string
	for _, token := range tokens[1:] {
		if strings.HasPrefix(token, "-") {
			continue
		}
		args = append(args, token)
	}
	return args
}

// FlagValue extracts the value following the named flag (case-insensitive),
// stripping surrounding quote characters. The second return is false when
// the flag is absent or has no value.
func FlagValue(command, flag string) (string, bool) {
	tokens, err := shellwords.Parse(command)
	if err != nil {
		tokens = strings.Fields(command)
	}
	for i, token := range tokens {
		if !strings.EqualFold(token, flag) {
			continue
		}
		if i+1 >= len(tokens) {
			return "", false
		}
		return strings.Trim(tokens[i+1], `"'`), true
	}
	return "", false
}

func rejected(verb, reason string) Verdict {
	return Verdict{Kind: KindRejected, Verb: verb, Reason: reason}
}
