package chat

import (
	"context"
	"fmt"
	"os"

	"github.com/viant/scy"
)

const apiKeyEnv = "OPENAI_API_KEY"

// APIKey resolves the model API key. A key present in the environment wins;
// otherwise keyURL is decrypted through scy when supplied.
func APIKey(ctx context.Context, keyURL string) (string, error) {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, nil
	}
	if keyURL == "" {
		return "", fmt.Errorf("api key is not configured: set %v or provide a secret URL", apiKeyEnv)
	}
	service := scy.New()
	secret, err := service.Load(ctx, scy.NewResource(nil, keyURL, "blowfish://default"))
	if err != nil {
		return "", fmt.Errorf("failed to load api key from %v: %w", keyURL, err)
	}
	return secret.String(), nil
}
