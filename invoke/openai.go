package invoke

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/magma/routing"
)

// openAIInvoker serves both the openai and openai-generic providers; the
// generic variant differs only in its api_base.
type openAIInvoker struct {
	client      *openai.Client
	model       string
	temperature *float64
	maxTokens   *int64
}

func newOpenAIInvoker(cfg routing.ClientConfig) (*openAIInvoker, error) {
	model, err := modelOption(cfg)
	if err != nil {
		return nil, err
	}

	var clientOpts []option.RequestOption
	if key, ok := stringOption(cfg.Options, optionAPIKey); ok {
		clientOpts = append(clientOpts, option.WithAPIKey(key))
	}
	if base, ok := stringOption(cfg.Options, optionAPIBase); ok {
		clientOpts = append(clientOpts, option.WithBaseURL(base))
	}

	client := openai.NewClient(clientOpts...)

	inv := &openAIInvoker{client: &client, model: model}
	if temp, ok := floatOption(cfg.Options, optionTemperature); ok {
		inv.temperature = &temp
	}
	if max, ok := intOption(cfg.Options, optionMaxTokens); ok {
		inv.maxTokens = &max
	}

	return inv, nil
}

// Complete implements Invoker.
func (i *openAIInvoker) Complete(ctx context.Context, req Request) (Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    i.model,
	}
	if i.temperature != nil {
		params.Temperature = openai.Float(*i.temperature)
	}
	if i.maxTokens != nil {
		params.MaxCompletionTokens = openai.Int(*i.maxTokens)
	}

	resp, err := i.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("openai api error: no choices returned")
	}

	return Response{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
