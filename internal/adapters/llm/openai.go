// Package llm contains the model-provider adapters implementing
// domain.LLMClient: an OpenAI-compatible client, a Vertex AI (Gemini)
// client, and mocks for tests and local mode.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a chat client. baseURL may point at any
// OpenAI-compatible endpoint; empty uses the official API.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Chat sends the full message history plus the declared tool set and maps
// the response back onto the domain message union.
func (c *OpenAIClient) Chat(ctx context.Context, messages []domain.Message, toolSpecs []domain.ToolSpec) (domain.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toOpenAIMessages(messages),
	}

	if len(toolSpecs) > 0 {
		tools, err := toOpenAITools(toolSpecs)
		if err != nil {
			return domain.Message{}, err
		}
		params.Tools = tools
	}

	chat, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.Message{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return domain.Message{}, fmt.Errorf("openai returned no choices")
	}

	msg := chat.Choices[0].Message
	out := domain.AIMessage(msg.Content)
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out, nil
}

func toOpenAIMessages(messages []domain.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Kind {
		case domain.KindSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case domain.KindHuman:
			out = append(out, openai.UserMessage(m.Content))
		case domain.KindTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case domain.KindAI:
			asst := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(m.Content),
				}
			}
			for _, tc := range m.ToolCalls {
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: string(tc.Arguments),
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		}
	}
	return out
}

func toOpenAITools(specs []domain.ToolSpec) ([]openai.ChatCompletionToolUnionParam, error) {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, s := range specs {
		var params openai.FunctionParameters
		if len(s.Parameters) > 0 {
			if err := json.Unmarshal(s.Parameters, &params); err != nil {
				return nil, fmt.Errorf("tool %s: decode parameter schema: %w", s.Name, err)
			}
		}
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        s.Name,
			Description: openai.String(s.Description),
			Parameters:  params,
		}))
	}
	return out, nil
}
