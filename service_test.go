package devchat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/devchat/model/conversation"
	"github.com/viant/devchat/service/chat"
)

// newModelStub returns a server that always answers with the supplied plan
// content.
func newModelStub(content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func newTestService(t *testing.T, modelContent string) *Service {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on /bin/sh")
	}
	server := newModelStub(modelContent)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.Workspace.Root = t.TempDir()
	service, err := New(context.Background(),
		WithConfig(config),
		WithClient(chat.NewClient("test-key", config.Chat.Model, chat.WithBaseURL(server.URL))),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = service.Close(context.Background()) })
	return service
}

func TestService_Send_executesPlan(t *testing.T) {
	content := `{"message":"writing the file","commands":[` +
		`{"command":"Set-Content -Path hello.txt -Value \"hi there\"","description":"create hello.txt"},` +
		`{"command":"format C:","description":"wipe the drive"}]}`
	service := newTestService(t, content)

	turn, err := service.Send(context.Background(), "create hello.txt")
	assert.Nil(t, err)
	assert.Equal(t, "writing the file", turn.Response.Message)
	if !assert.Equal(t, 2, len(turn.Results)) {
		return
	}
	assert.True(t, turn.Results[0].IsSafe)
	assert.False(t, turn.Results[1].IsSafe)

	data, err := os.ReadFile(filepath.Join(service.ProjectDirectory(), "hello.txt"))
	assert.Nil(t, err)
	assert.Equal(t, "hi there", string(data))
}

func TestService_Send_requiresProjectDirectory(t *testing.T) {
	content := `{"message":"ok","commands":[]}`
	server := newModelStub(content)
	defer server.Close()

	config := DefaultConfig()
	service, err := New(context.Background(),
		WithConfig(config),
		WithClient(chat.NewClient("test-key", config.Chat.Model, chat.WithBaseURL(server.URL))),
	)
	assert.Nil(t, err)

	turn, err := service.Send(context.Background(), "hello")
	assert.Nil(t, err)
	assert.Empty(t, turn.Results)
	assert.Contains(t, turn.Response.Message, "project directory")
}

func TestService_Send_retainsHistory(t *testing.T) {
	service := newTestService(t, `{"message":"noted","commands":[]}`)

	_, err := service.Send(context.Background(), "remember this")
	assert.Nil(t, err)

	history := service.History()
	if !assert.Equal(t, 2, len(history)) {
		return
	}
	assert.Equal(t, conversation.RoleUser, history[0].Role)
	assert.Equal(t, conversation.RoleAssistant, history[1].Role)
	assert.Equal(t, "noted", history[1].Content)
}

func TestService_SetProjectDirectory(t *testing.T) {
	service := newTestService(t, `{"message":"ok","commands":[]}`)

	next := filepath.Join(t.TempDir(), "fresh")
	err := service.SetProjectDirectory(context.Background(), next)
	assert.Nil(t, err)
	assert.Equal(t, next, service.ProjectDirectory())

	info, err := os.Stat(next)
	assert.Nil(t, err)
	assert.True(t, info.IsDir())

	assert.NotNil(t, service.SetProjectDirectory(context.Background(), " "))
}

func TestService_actionRegistry(t *testing.T) {
	service := newTestService(t, `{"message":"ok","commands":[]}`)
	assert.NotNil(t, service.Actions().Lookup("system/exec"))
	assert.NotNil(t, service.Actions().Lookup("system/storage"))
	assert.Nil(t, service.Actions().Lookup("missing"))
}
