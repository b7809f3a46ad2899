package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

type VertexClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexClient creates an LLMClient based on Vertex AI (Gemini).
func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("projectID and location must be set for Vertex AI")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Chat implements domain.LLMClient using Vertex AI function calling.
func (v *VertexClient) Chat(ctx context.Context, messages []domain.Message, toolSpecs []domain.ToolSpec) (domain.Message, error) {
	var system string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Kind {
		case domain.KindSystem:
			system = m.Content
		case domain.KindHuman:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case domain.KindAI:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if len(tc.Arguments) > 0 {
					_ = json.Unmarshal(tc.Arguments, &args)
				}
				part := genai.NewPartFromFunctionCall(tc.Name, args)
				part.FunctionCall.ID = tc.ID
				parts = append(parts, part)
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		case domain.KindTool:
			// Gemini correlates responses by function name, so resolve
			// the call id back to the name it belongs to.
			name := callName(messages, m.ToolCallID)
			part := genai.NewPartFromFunctionResponse(name, map[string]any{
				"content": m.Content,
			})
			part.FunctionResponse.ID = m.ToolCallID
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		}
	}

	temp := float32(0)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(toolSpecs) > 0 {
		decls, err := toFunctionDeclarations(toolSpecs)
		if err != nil {
			return domain.Message{}, err
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("vertex generate content: %w", err)
	}

	out := domain.AIMessage(res.Text())
	for _, fc := range res.FunctionCalls() {
		args, err := json.Marshal(fc.Args)
		if err != nil {
			return domain.Message{}, fmt.Errorf("encode function call args: %w", err)
		}
		id := fc.ID
		if id == "" {
			id = uuid.NewString()
		}
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        id,
			Name:      fc.Name,
			Arguments: args,
		})
	}
	return out, nil
}

func toFunctionDeclarations(specs []domain.ToolSpec) ([]*genai.FunctionDeclaration, error) {
	out := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		var schema map[string]any
		if len(s.Parameters) > 0 {
			if err := json.Unmarshal(s.Parameters, &schema); err != nil {
				return nil, fmt.Errorf("tool %s: decode parameter schema: %w", s.Name, err)
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:                 s.Name,
			Description:          s.Description,
			ParametersJsonSchema: schema,
		})
	}
	return out, nil
}

// callName finds the tool name of the AI tool call with the given id.
func callName(messages []domain.Message, callID string) string {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, tc := range messages[i].ToolCalls {
			if tc.ID == callID {
				return tc.Name
			}
		}
	}
	return ""
}
