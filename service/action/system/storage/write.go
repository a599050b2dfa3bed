package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/viant/afs/file"
)

// WriteInput represents write input
type WriteInput struct {
	Path    string `json:"path" required:"true" description:"destination path, relative to the project directory or absolute inside it"`
	Content string `json:"content" description:"literal content to write"`
	Append  bool   `json:"append,omitempty" description:"append to existing content instead of replacing it"`
}

// WriteOutput represents write output
type WriteOutput struct {
	Path         string `json:"path,omitempty" description:"resolved absolute location"`
	BytesWritten int    `json:"bytesWritten,omitempty"`
	Overwritten  bool   `json:"overwritten,omitempty"`
	Preview      string `json:"preview,omitempty" description:"unified diff against the previous content"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// Write stores literal content at a project-confined location, creating
// intermediate directories as needed. Failures are recorded on the output
// rather than returned, so a batch caller always gets a result per command.
func (s *Service) Write(ctx context.Context, input *WriteInput, output *WriteOutput) error {
	location, err := s.checker.ResolveInProject(input.Path)
	if err != nil {
		output.Error = err.Error()
		return nil
	}
	output.Path = location

	prior, hadPrior := s.priorContent(ctx, location)
	content := input.Content
	if input.Append && hadPrior {
		content = prior + content
	}
	if err = s.ensureParent(ctx, location); err != nil {
		output.Error = err.Error()
		return nil
	}
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, newChunkReader(content, s.chunkSize)); err != nil {
		output.Error = fmt.Sprintf("failed to write %v: %v", location, err)
		return nil
	}
	output.BytesWritten = len(content)
	output.Success = true
	if hadPrior && prior != content {
		output.Overwritten = true
		output.Preview = unifiedDiff(location, prior, content)
	}
	return nil
}

func (s *Service) priorContent(ctx context.Context, location string) (string, bool) {
	if ok, _ := s.fs.Exists(ctx, location); !ok {
		return "", false
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *Service) ensureParent(ctx context.Context, location string) error {
	parent := filepath.Dir(location)
	if parent == "" || parent == "." {
		return nil
	}
	if ok, _ := s.fs.Exists(ctx, parent); ok {
		return nil
	}
	if err := s.fs.Create(ctx, parent, file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("failed to create %v: %w", parent, err)
	}
	return nil
}

func unifiedDiff(location, prior, current string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(prior),
		B:        difflib.SplitLines(current),
		FromFile: location,
		ToFile:   location,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}

// chunkReader serves content in bounded slices so large payloads are not
// handed to the writer in a single buffer.
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func newChunkReader(content string, size int) io.Reader {
	return &chunkReader{data: []byte(content), size: size}
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	limit := r.size
	if limit > len(p) {
		limit = len(p)
	}
	if rest := len(r.data) - r.pos; limit > rest {
		limit = rest
	}
	n := copy(p[:limit], r.data[r.pos:r.pos+limit])
	r.pos += n
	return n, nil
}
