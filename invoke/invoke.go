// Package invoke turns a routing client configuration into a live provider
// call. It is the reference consumer of the routing projection: ForClient
// dispatches on the canonical provider name and returns an Invoker backed
// by the matching vendor SDK.
package invoke

import (
	"context"
	"fmt"

	"github.com/hupe1980/magma/routing"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Client   routing.ClientConfig
	Messages []Message
}

// Usage reports token consumption of one completion.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Response is a provider-agnostic completion result.
type Response struct {
	Text  string
	Usage Usage
}

// Invoker executes completion requests against one configured client.
type Invoker interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ForClient builds the Invoker serving cfg's canonical provider.
//
// openai and openai-generic share the OpenAI-compatible backend (the
// generic variant is pointed at cfg's api_base); anthropic uses the
// Anthropic SDK; azure-openai uses the Azure OpenAI SDK. Any other provider
// is unsupported here.
func ForClient(cfg routing.ClientConfig) (Invoker, error) {
	switch cfg.Provider {
	case "openai", "openai-generic":
		return newOpenAIInvoker(cfg)
	case "anthropic":
		return newAnthropicInvoker(cfg)
	case "azure-openai":
		return newAzureInvoker(cfg)
	default:
		return nil, fmt.Errorf("invoke: unsupported provider %q", cfg.Provider)
	}
}
