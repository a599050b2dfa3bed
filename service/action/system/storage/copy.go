package storage

import (
	"context"
	"fmt"
)

// CopyInput represents copy input
type CopyInput struct {
	Source string `json:"source" required:"true" description:"source path inside the project directory"`
	Dest   string `json:"dest" required:"true" description:"destination path inside the project directory"`
}

// CopyOutput represents copy output
type CopyOutput struct {
	Source  string `json:"source,omitempty" description:"resolved source location"`
	Dest    string `json:"dest,omitempty" description:"resolved destination location"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Copy duplicates a file between two project-confined locations. The copy
// goes through afs so file metadata travels with the content.
func (s *Service) Copy(ctx context.Context, input *CopyInput, output *CopyOutput) error {
	source, err := s.checker.ResolveInProject(input.Source)
	if err != nil {
		output.Error = err.Error()
		return nil
	}
	dest, err := s.checker.ResolveInProject(input.Dest)
	if err != nil {
		output.Error = err.Error()
		return nil
	}
	output.Source = source
	output.Dest = dest
	if ok, _ := s.fs.Exists(ctx, source); !ok {
		output.Error = fmt.Sprintf("source does not exist: %v", source)
		return nil
	}
	if err = s.ensureParent(ctx, dest); err != nil {
		output.Error = err.Error()
		return nil
	}
	if err = s.fs.Copy(ctx, source, dest); err != nil {
		output.Error = fmt.Sprintf("failed to copy %v to %v: %v", source, dest, err)
		return nil
	}
	output.Success = true
	return nil
}
