package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/viant/afs/option"
	afstorage "github.com/viant/afs/storage"
)

// ListInput represents list input
type ListInput struct {
	Path      string `json:"path,omitempty" description:"location to list, defaults to the project directory"`
	Recursive bool   `json:"recursive,omitempty" description:"list nested directories"`
	PageSize  int    `json:"pageSize,omitempty" description:"maximum number of results to return"`
}

// ListOutput represents list output
type ListOutput struct {
	Assets  []*Asset `json:"assets,omitempty"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

// Asset describes a listed file or directory
type Asset struct {
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	IsDir   bool      `json:"isDir,omitempty"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"modTime,omitempty"`
}

// List enumerates files at a project-confined location.
func (s *Service) List(ctx context.Context, input *ListInput, output *ListOutput) error {
	target := input.Path
	if target == "" {
		target = "."
	}
	location, err := s.checker.ResolveInProject(target)
	if err != nil {
		output.Error = err.Error()
		return nil
	}
	listOptions := make([]afstorage.Option, 0)
	if input.Recursive {
		listOptions = append(listOptions, option.NewRecursive(true))
	}
	if input.PageSize > 0 {
		listOptions = append(listOptions, option.NewPage(0, input.PageSize))
	}
	objects, err := s.fs.List(ctx, location, listOptions...)
	if err != nil {
		output.Error = fmt.Sprintf("failed to list %v: %v", location, err)
		return nil
	}
	for _, object := range objects {
		output.Assets = append(output.Assets, &Asset{
			Name:    path.Base(object.URL()),
			URL:     object.URL(),
			IsDir:   object.IsDir(),
			Size:    object.Size(),
			ModTime: object.ModTime(),
		})
	}
	output.Success = true
	return nil
}
