package plan

// Command is a single model-proposed shell command together with the
// human-readable rationale supplied by the model. Instances are immutable
// once issued.
type Command struct {
	Command     string `json:"command" description:"shell command to execute"`
	Description string `json:"description" description:"brief description of what the command does"`
}

// Response is the structured payload the model returns for one chat turn.
type Response struct {
	Message  string    `json:"message"`
	Commands []Command `json:"commands,omitempty"`
}

// ExecutionResult captures the outcome of dispatching a single command.
// Stdout/Stderr are nil when the command was rejected before execution.
type ExecutionResult struct {
	Command     string  `json:"command"`
	Description string  `json:"description"`
	Stdout      *string `json:"stdout"`
	Stderr      *string `json:"stderr"`
	IsSafe      bool    `json:"isSafe"`
	Preview     string  `json:"preview,omitempty"` // unified diff when a file write replaced prior content
}

// NewRejected returns the result recorded for a command the classifier
// declined; no process is spawned and both output streams stay nil.
func NewRejected(cmd Command) ExecutionResult {
	return ExecutionResult{Command: cmd.Command, Description: cmd.Description, IsSafe: false}
}

// NewExecuted wraps captured output streams for a permitted command. A
// non-zero exit or stderr output is a runtime outcome, not a safety
// violation, so IsSafe remains true.
func NewExecuted(cmd Command, stdout, stderr string) ExecutionResult {
	return ExecutionResult{
		Command:     cmd.Command,
		Description: cmd.Description,
		Stdout:      &stdout,
		Stderr:      &stderr,
		IsSafe:      true,
	}
}
