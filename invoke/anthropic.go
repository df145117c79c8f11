package invoke

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/magma/routing"
)

// defaultAnthropicMaxTokens applies when the option bag carries no
// max_tokens; the Messages API requires an explicit budget.
const defaultAnthropicMaxTokens = 4096

type anthropicInvoker struct {
	client      *anthropic.Client
	model       anthropic.Model
	temperature *float64
	maxTokens   int64
}

func newAnthropicInvoker(cfg routing.ClientConfig) (*anthropicInvoker, error) {
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

	client := anthropic.NewClient(clientOpts...)

	inv := &anthropicInvoker{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: defaultAnthropicMaxTokens,
	}
	if temp, ok := floatOption(cfg.Options, optionTemperature); ok {
		inv.temperature = &temp
	}
	if max, ok := intOption(cfg.Options, optionMaxTokens); ok {
		inv.maxTokens = max
	}

	return inv, nil
}

// Complete implements Invoker.
func (i *anthropicInvoker) Complete(ctx context.Context, req Request) (Response, error) {
	var (
		messages     []anthropic.MessageParam
		systemBlocks []anthropic.TextBlockParam
	)
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     i.model,
		Messages:  messages,
		MaxTokens: i.maxTokens,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if i.temperature != nil {
		params.Temperature = anthropic.Float(*i.temperature)
	}

	resp, err := i.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}

	return Response{
		Text: text,
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
