package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/devchat/service/sandbox"
)

func newTestService(t *testing.T) (*Service, string) {
	root := t.TempDir()
	checker := sandbox.New(root)
	return New(checker, WithChunkSize(4)), root
}

func TestService_Write(t *testing.T) {
	service, root := newTestService(t)
	ctx := context.Background()

	output := &WriteOutput{}
	err := service.Write(ctx, &WriteInput{Path: "nested/dir/hello.txt", Content: "hello world"}, output)
	assert.Nil(t, err)
	assert.True(t, output.Success, output.Error)
	assert.Equal(t, len("hello world"), output.BytesWritten)

	data, err := os.ReadFile(filepath.Join(root, "nested", "dir", "hello.txt"))
	assert.Nil(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestService_Write_overwritePreview(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first := &WriteOutput{}
	assert.Nil(t, service.Write(ctx, &WriteInput{Path: "a.txt", Content: "one\ntwo\n"}, first))
	assert.True(t, first.Success)
	assert.False(t, first.Overwritten)

	second := &WriteOutput{}
	assert.Nil(t, service.Write(ctx, &WriteInput{Path: "a.txt", Content: "one\nthree\n"}, second))
	assert.True(t, second.Success)
	assert.True(t, second.Overwritten)
	assert.Contains(t, second.Preview, "-two")
	assert.Contains(t, second.Preview, "+three")
}

func TestService_Write_append(t *testing.T) {
	service, root := newTestService(t)
	ctx := context.Background()

	assert.Nil(t, service.Write(ctx, &WriteInput{Path: "log.txt", Content: "first\n"}, &WriteOutput{}))
	output := &WriteOutput{}
	assert.Nil(t, service.Write(ctx, &WriteInput{Path: "log.txt", Content: "second\n", Append: true}, output))
	assert.True(t, output.Success)

	data, err := os.ReadFile(filepath.Join(root, "log.txt"))
	assert.Nil(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestService_Write_escapesProject(t *testing.T) {
	service, _ := newTestService(t)
	output := &WriteOutput{}
	err := service.Write(context.Background(), &WriteInput{Path: "../outside.txt", Content: "x"}, output)
	assert.Nil(t, err)
	assert.False(t, output.Success)
	assert.NotEmpty(t, output.Error)
}

func TestService_Read(t *testing.T) {
	service, root := newTestService(t)
	ctx := context.Background()
	assert.Nil(t, os.WriteFile(filepath.Join(root, "data.txt"), []byte("payload"), 0o644))

	output := &ReadOutput{}
	assert.Nil(t, service.Read(ctx, &ReadInput{Path: "data.txt"}, output))
	assert.True(t, output.Success, output.Error)
	assert.Equal(t, "payload", output.Content)
	assert.Equal(t, len("payload"), output.Size)

	missing := &ReadOutput{}
	assert.Nil(t, service.Read(ctx, &ReadInput{Path: "absent.txt"}, missing))
	assert.False(t, missing.Success)
	assert.NotEmpty(t, missing.Error)
}

func TestService_Read_multiByteSpansChunks(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	// well over the 4-byte chunk, with code points whose encodings straddle
	// chunk boundaries
	content := "héllo wörld ünïcode 漢字テスト ✓✗ émoji 🙂🚀 end"
	written := &WriteOutput{}
	assert.Nil(t, service.Write(ctx, &WriteInput{Path: "unicode.txt", Content: content}, written))
	assert.True(t, written.Success, written.Error)
	assert.Equal(t, len(content), written.BytesWritten)

	output := &ReadOutput{}
	assert.Nil(t, service.Read(ctx, &ReadInput{Path: "unicode.txt"}, output))
	assert.True(t, output.Success, output.Error)
	assert.Equal(t, content, output.Content)
	assert.Equal(t, len(content), output.Size)
}

func TestService_Copy(t *testing.T) {
	service, root := newTestService(t)
	ctx := context.Background()
	assert.Nil(t, os.WriteFile(filepath.Join(root, "src.txt"), []byte("copied"), 0o644))

	output := &CopyOutput{}
	assert.Nil(t, service.Copy(ctx, &CopyInput{Source: "src.txt", Dest: "backup/dst.txt"}, output))
	assert.True(t, output.Success, output.Error)

	data, err := os.ReadFile(filepath.Join(root, "backup", "dst.txt"))
	assert.Nil(t, err)
	assert.Equal(t, "copied", string(data))

	escape := &CopyOutput{}
	assert.Nil(t, service.Copy(ctx, &CopyInput{Source: "src.txt", Dest: "../dst.txt"}, escape))
	assert.False(t, escape.Success)
}

func TestService_List(t *testing.T) {
	service, root := newTestService(t)
	ctx := context.Background()
	assert.Nil(t, os.WriteFile(filepath.Join(root, "one.txt"), []byte("1"), 0o644))
	assert.Nil(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	assert.Nil(t, os.WriteFile(filepath.Join(root, "sub", "two.txt"), []byte("2"), 0o644))

	output := &ListOutput{}
	assert.Nil(t, service.List(ctx, &ListInput{Recursive: true}, output))
	assert.True(t, output.Success, output.Error)

	var names []string
	for _, asset := range output.Assets {
		names = append(names, asset.Name)
	}
	assert.Contains(t, names, "one.txt")
	assert.Contains(t, names, "two.txt")
}

func TestService_Method(t *testing.T) {
	service, _ := newTestService(t)
	for _, name := range []string{"write", "read", "copy", "list"} {
		method, err := service.Method(name)
		assert.Nil(t, err, name)
		assert.NotNil(t, method, name)
	}
	_, err := service.Method("unknown")
	assert.NotNil(t, err)
}
