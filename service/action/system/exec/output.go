package exec

import (
	"strings"

	"github.com/viant/devchat/model/plan"
)

// Output represents execution output; one result per input command in order.
type Output struct {
	Results []plan.ExecutionResult `json:"results"`
	Stdout  string                 `json:"stdout,omitempty" description:"combined stdout of all executed commands"`
	Stderr  string                 `json:"stderr,omitempty" description:"combined stderr of all executed commands"`
}

// Finalize combines the per-command streams
func (o *Output) Finalize() {
	var stdout, stderr strings.Builder
	for i := range o.Results {
		result := &o.Results[i]
		if result.Stdout != nil && *result.Stdout != "" {
			stdout.WriteString(*result.Stdout)
			stdout.WriteString("\n")
		}
		if result.Stderr != nil && *result.Stderr != "" {
			stderr.WriteString(*result.Stderr)
			stderr.WriteString("\n")
		}
	}
	o.Stdout = strings.TrimSpace(stdout.String())
	o.Stderr = strings.TrimSpace(stderr.String())
}
