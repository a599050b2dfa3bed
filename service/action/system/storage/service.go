package storage

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/devchat/model/types"
	"github.com/viant/devchat/service/sandbox"
)

const name = "system/storage"

// defaultChunkSize bounds single write/read operations; content is
// byte-identical regardless of the chunk size.
const defaultChunkSize = 64 * 1024

// Service provides project-confined file operations using viant/afs. Every
// path is validated through the confinement checker before it is touched and
// every failure is recovered into the output - the service never panics
// outward.
type Service struct {
	fs        afs.Service
	checker   *sandbox.Checker
	chunkSize int
}

// Option customises the storage service
type Option func(s *Service)

// WithChunkSize overrides the write/read chunk size
func WithChunkSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// New creates a new storage service confined by the supplied checker
func New(checker *sandbox.Checker, options ...Option) *Service {
	ret := &Service{fs: afs.New(), checker: checker, chunkSize: defaultChunkSize}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "write",
			Description: "Writes literal content to a file inside the project directory, creating intermediate directories as needed",
			Input:       reflect.TypeOf(&WriteInput{}),
			Output:      reflect.TypeOf(&WriteOutput{}),
		},
		{
			Name:        "read",
			Description: "Reads a file inside the project directory",
			Input:       reflect.TypeOf(&ReadInput{}),
			Output:      reflect.TypeOf(&ReadOutput{}),
		},
		{
			Name:        "copy",
			Description: "Copies a file between two project-confined locations preserving metadata",
			Input:       reflect.TypeOf(&CopyInput{}),
			Output:      reflect.TypeOf(&CopyOutput{}),
		},
		{
			Name:        "list",
			Description: "Lists files at a project-confined location",
			Input:       reflect.TypeOf(&ListInput{}),
			Output:      reflect.TypeOf(&ListOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "write":
		return s.write, nil
	case "read":
		return s.read, nil
	case "copy":
		return s.copy, nil
	case "list":
		return s.list, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) write(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*WriteInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*WriteOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Write(ctx, input, output)
}

func (s *Service) read(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ReadInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ReadOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Read(ctx, input, output)
}

func (s *Service) copy(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*CopyInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*CopyOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Copy(ctx, input, output)
}

func (s *Service) list(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ListInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ListOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.List(ctx, input, output)
}
