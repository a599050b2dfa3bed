package exec

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/devchat/model/plan"
	"github.com/viant/devchat/policy"
	"github.com/viant/devchat/service/sandbox"
)

func newTestService(t *testing.T) (*Service, string) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on /bin/sh")
	}
	root := t.TempDir()
	return New(sandbox.New(root)), root
}

func TestService_Execute_batchNeverAborts(t *testing.T) {
	service, _ := newTestService(t)
	output := &Output{}
	err := service.Execute(context.Background(), &Input{
		Commands: []plan.Command{
			{Command: "echo hello", Description: "greet"},
			{Command: "format C:", Description: "wipe the drive"},
		},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 2, len(output.Results)) {
		return
	}
	first := output.Results[0]
	assert.True(t, first.IsSafe)
	if assert.NotNil(t, first.Stdout) {
		assert.Equal(t, "hello", *first.Stdout)
	}

	second := output.Results[1]
	assert.False(t, second.IsSafe)
	assert.Nil(t, second.Stdout)
	assert.Nil(t, second.Stderr)

	assert.Equal(t, "hello", output.Stdout)
}

func TestService_Execute_contentCommand(t *testing.T) {
	service, root := newTestService(t)
	output := &Output{}
	err := service.Execute(context.Background(), &Input{
		Commands: []plan.Command{
			{Command: `Set-Content -Path note.txt -Value "line1\nline2"`},
		},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 1, len(output.Results)) {
		return
	}
	assert.True(t, output.Results[0].IsSafe)

	data, err := os.ReadFile(filepath.Join(root, "note.txt"))
	assert.Nil(t, err)
	assert.Equal(t, "line1\nline2", string(data))
}

func TestService_Execute_redirection(t *testing.T) {
	service, root := newTestService(t)
	output := &Output{}
	err := service.Execute(context.Background(), &Input{
		Commands: []plan.Command{
			{Command: `echo "captured" > out.txt`},
		},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 1, len(output.Results)) {
		return
	}
	assert.True(t, output.Results[0].IsSafe)

	data, err := os.ReadFile(filepath.Join(root, "out.txt"))
	assert.Nil(t, err)
	assert.Equal(t, "captured", string(data))
}

func TestService_Execute_traversalRejected(t *testing.T) {
	service, _ := newTestService(t)
	output := &Output{}
	err := service.Execute(context.Background(), &Input{
		Commands: []plan.Command{
			{Command: `type ..\secret.txt`},
		},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 1, len(output.Results)) {
		return
	}
	assert.False(t, output.Results[0].IsSafe)
}

func TestService_Execute_policyDeny(t *testing.T) {
	service, _ := newTestService(t)
	ctx := policy.WithPolicy(context.Background(), &policy.Policy{Mode: policy.ModeDeny})
	output := &Output{}
	err := service.Execute(ctx, &Input{
		Commands: []plan.Command{{Command: "echo hello"}},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 1, len(output.Results)) {
		return
	}
	assert.False(t, output.Results[0].IsSafe)
}

func TestService_Execute_commandFailureIsRuntimeOutcome(t *testing.T) {
	service, _ := newTestService(t)
	output := &Output{}
	err := service.Execute(context.Background(), &Input{
		Commands: []plan.Command{{Command: "ls does-not-exist-here"}},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 1, len(output.Results)) {
		return
	}
	result := output.Results[0]
	assert.True(t, result.IsSafe)
	if assert.NotNil(t, result.Stderr) {
		assert.NotEmpty(t, *result.Stderr)
	}
}

func TestService_Execute_sessionRecreatedOnRootChange(t *testing.T) {
	service, _ := newTestService(t)
	defer service.Close(context.Background())

	output := &Output{}
	err := service.Execute(context.Background(), &Input{
		UseSession: true,
		Commands: []plan.Command{
			{Command: "export MARKER=alive"},
			{Command: "echo $MARKER"},
		},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 2, len(output.Results)) {
		return
	}
	if assert.NotNil(t, output.Results[1].Stdout) {
		assert.Equal(t, "alive", *output.Results[1].Stdout, "session state persists across commands")
	}

	// moving the project directory opens a fresh session, dropping state
	assert.Nil(t, service.checker.SetRoot(t.TempDir()))
	output = &Output{}
	err = service.Execute(context.Background(), &Input{
		UseSession: true,
		Commands:   []plan.Command{{Command: "echo $MARKER"}},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 1, len(output.Results)) {
		return
	}
	if assert.NotNil(t, output.Results[0].Stdout) {
		assert.Equal(t, "", *output.Results[0].Stdout)
	}
}

func TestService_InvalidateSession(t *testing.T) {
	service, _ := newTestService(t)
	defer service.Close(context.Background())

	output := &Output{}
	err := service.Execute(context.Background(), &Input{
		UseSession: true,
		Commands:   []plan.Command{{Command: "export MARKER=alive"}},
	}, output)
	assert.Nil(t, err)

	service.InvalidateSession()
	output = &Output{}
	err = service.Execute(context.Background(), &Input{
		UseSession: true,
		Commands:   []plan.Command{{Command: "echo $MARKER"}},
	}, output)
	assert.Nil(t, err)
	if !assert.Equal(t, 1, len(output.Results)) {
		return
	}
	if assert.NotNil(t, output.Results[0].Stdout) {
		assert.Equal(t, "", *output.Results[0].Stdout)
	}
}

func TestService_Method(t *testing.T) {
	service, _ := newTestService(t)
	method, err := service.Method("execute")
	assert.Nil(t, err)
	assert.NotNil(t, method)
	_, err = service.Method("unknown")
	assert.NotNil(t, err)
}
