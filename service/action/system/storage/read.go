package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ReadInput represents read input
type ReadInput struct {
	Path string `json:"path" required:"true" description:"source path, relative to the project directory or absolute inside it"`
}

// ReadOutput represents read output
type ReadOutput struct {
	Path    string `json:"path,omitempty" description:"resolved absolute location"`
	Content string `json:"content,omitempty"`
	Size    int    `json:"size,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Read loads the content of a project-confined file, consuming the source one
// chunk at a time.
func (s *Service) Read(ctx context.Context, input *ReadInput, output *ReadOutput) error {
	location, err := s.checker.ResolveInProject(input.Path)
	if err != nil {
		output.Error = err.Error()
		return nil
	}
	output.Path = location
	if ok, _ := s.fs.Exists(ctx, location); !ok {
		output.Error = fmt.Sprintf("file does not exist: %v", location)
		return nil
	}
	reader, err := s.fs.OpenURL(ctx, location)
	if err != nil {
		output.Error = fmt.Sprintf("failed to read %v: %v", location, err)
		return nil
	}
	defer reader.Close()

	var builder strings.Builder
	buffer := make([]byte, s.chunkSize)
	for {
		n, err := reader.Read(buffer)
		if n > 0 {
			builder.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			output.Error = fmt.Sprintf("failed to read %v: %v", location, err)
			return nil
		}
	}
	output.Content = builder.String()
	output.Size = builder.Len()
	output.Success = true
	return nil
}
