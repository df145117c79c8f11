package invoke

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	"github.com/hupe1980/magma/routing"
)

// azureInvoker serves the azure-openai provider. The deployment name is the
// model half of the routing projection; endpoint and api_key come from the
// option bag.
type azureInvoker struct {
	client      *azopenai.Client
	deployment  string
	temperature *float32
	maxTokens   *int32
}

func newAzureInvoker(cfg routing.ClientConfig) (*azureInvoker, error) {
	deployment, err := modelOption(cfg)
	if err != nil {
		return nil, err
	}

	endpoint, ok := stringOption(cfg.Options, optionEndpoint)
	if !ok {
		endpoint, ok = stringOption(cfg.Options, optionAPIBase)
	}
	if !ok {
		return nil, fmt.Errorf("invoke: client %q has no endpoint option", cfg.Name)
	}

	apiKey, ok := stringOption(cfg.Options, optionAPIKey)
	if !ok {
		return nil, fmt.Errorf("invoke: client %q has no api_key option", cfg.Name)
	}

	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("invoke: create azure openai client: %w", err)
	}

	inv := &azureInvoker{client: client, deployment: deployment}
	if temp, ok := floatOption(cfg.Options, optionTemperature); ok {
		f := float32(temp)
		inv.temperature = &f
	}
	if max, ok := intOption(cfg.Options, optionMaxTokens); ok {
		n := int32(max)
		inv.maxTokens = &n
	}

	return inv, nil
}

// Complete implements Invoker.
func (i *azureInvoker) Complete(ctx context.Context, req Request) (Response, error) {
	messages := make([]azopenai.ChatRequestMessageClassification, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, &azopenai.ChatRequestSystemMessage{
				Content: azopenai.NewChatRequestSystemMessageContent(m.Content),
			})
		case RoleAssistant:
			messages = append(messages, &azopenai.ChatRequestAssistantMessage{
				Content: azopenai.NewChatRequestAssistantMessageContent(m.Content),
			})
		default:
			messages = append(messages, &azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(m.Content),
			})
		}
	}

	opts := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(i.deployment),
		Messages:       messages,
	}
	if i.temperature != nil {
		opts.Temperature = i.temperature
	}
	if i.maxTokens != nil {
		opts.MaxTokens = i.maxTokens
	}

	resp, err := i.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return Response{}, fmt.Errorf("azure openai api error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return Response{}, fmt.Errorf("azure openai api error: no completion returned")
	}

	out := Response{Text: *resp.Choices[0].Message.Content}
	if resp.Usage != nil {
		if resp.Usage.PromptTokens != nil {
			out.Usage.InputTokens = int64(*resp.Usage.PromptTokens)
		}
		if resp.Usage.CompletionTokens != nil {
			out.Usage.OutputTokens = int64(*resp.Usage.CompletionTokens)
		}
	}

	return out, nil
}
