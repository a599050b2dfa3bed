package exec

import "github.com/viant/devchat/model/plan"

// Input represents an execution request for a batch of model-proposed
// commands. Commands run sequentially and a failure never aborts the batch;
// every command produces a result.
type Input struct {
	Commands   []plan.Command    `json:"commands" required:"true" description:"commands to execute in order"`
	Env        map[string]string `json:"env,omitempty" description:"environment variables for the execution"`
	TimeoutMs  int               `json:"timeoutMs,omitempty" description:"per command timeout in milliseconds"`
	UseSession bool              `json:"useSession,omitempty" description:"run shell commands in a persistent session instead of spawning a process per command"`
}

const defaultTimeoutMs = 60000

// Init applies defaults
func (i *Input) Init() {
	if i.TimeoutMs <= 0 {
		i.TimeoutMs = defaultTimeoutMs
	}
}
