package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/devchat/model/conversation"
)

func newStubServer(t *testing.T, content string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.Nil(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "test-model", reqBody["model"])
		assert.NotNil(t, reqBody["response_format"])

		w.WriteHeader(status)
		if status != http.StatusOK {
			return
		}
		payload := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func TestClient_Complete(t *testing.T) {
	content := `{"message":"creating the file","commands":[{"command":"Set-Content -Path a.txt -Value \"x\"","description":"create a.txt"}]}`
	server := newStubServer(t, content, http.StatusOK)
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	response, err := client.Complete(context.Background(), []conversation.Message{
		{Role: conversation.RoleSystem, Content: SystemPrompt("/tmp/project")},
		{Role: conversation.RoleUser, Content: "create a.txt"},
	})
	assert.Nil(t, err)
	assert.Equal(t, "creating the file", response.Message)
	if assert.Equal(t, 1, len(response.Commands)) {
		assert.Equal(t, "create a.txt", response.Commands[0].Description)
	}
}

func TestClient_Complete_fencedJSON(t *testing.T) {
	content := "```json\n{\"message\":\"ok\",\"commands\":[]}\n```"
	server := newStubServer(t, content, http.StatusOK)
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	response, err := client.Complete(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Content: "hi"},
	})
	assert.Nil(t, err)
	assert.Equal(t, "ok", response.Message)
	assert.Empty(t, response.Commands)
}

func TestClient_Complete_apiError(t *testing.T) {
	server := newStubServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	_, err := client.Complete(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Content: "hi"},
	})
	assert.NotNil(t, err)
}

func TestAPIKey_envWins(t *testing.T) {
	t.Setenv(apiKeyEnv, "from-env")
	key, err := APIKey(context.Background(), "")
	assert.Nil(t, err)
	assert.Equal(t, "from-env", key)
}

func TestAPIKey_missing(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	_, err := APIKey(context.Background(), "")
	assert.NotNil(t, err)
}
