package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// NewClient creates an OpenAI client. baseURL overrides the public API
// endpoint when set (proxies, compatible servers).
func NewClient(apiKey, baseURL string, timeout time.Duration) (*openai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(cfg), nil
}
