package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAI drives one model on an OpenAI-compatible server (LM Studio, llama.cpp
// server, etc.) through /v1/chat/completions.
type OpenAI struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAI creates a backend for a single model on the given
// OpenAI-compatible host.
func NewOpenAI(baseURL, model string) *OpenAI {
	return &OpenAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  newHTTPClient(),
	}
}

func (o *OpenAI) Model() string { return o.model }

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	Name       string           `json:"name,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
}

type openAIToolCall struct {
	ID       string                 `json:"id,omitempty"`
	Type     string                 `json:"type"`
	Function openAIToolCallFunction `json:"function"`
}

// openAIToolCallFunction carries arguments as a JSON-encoded string, per the
// OpenAI wire format.
type openAIToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAITool struct {
	Type     string             `json:"type"`
	Function openAIToolFunction `json:"function"`
}

type openAIToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	Tools       []openAITool    `json:"tools,omitempty"`
	Stream      bool            `json:"stream"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     *int `json:"prompt_tokens"`
		CompletionTokens *int `json:"completion_tokens"`
	} `json:"usage"`
}

// Send implements Backend.
func (o *OpenAI) Send(ctx context.Context, req Request) (Response, error) {
	msgs, err := toOpenAIMessages(req.Messages)
	if err != nil {
		return Response{}, &Error{Kind: KindTransport, Err: err}
	}
	payload := openAIChatRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		Tools:       toOpenAITools(req.Tools),
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, &Error{Kind: KindTransport, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, &Error{Kind: KindTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return Response{}, classifySendError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(string(b)), "tool") {
			return Response{}, &Error{Kind: KindUnsupported, Msg: fmt.Sprintf("model %s does not support tool calling", o.model)}
		}
		return Response{}, &Error{Kind: KindTransport, Msg: fmt.Sprintf("chat completions: status=%d body=%s", resp.StatusCode, string(b))}
	}

	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, &Error{Kind: KindMalformed, Err: err}
	}
	if len(out.Choices) == 0 {
		return Response{}, &Error{Kind: KindMalformed, Msg: "chat completions: no choices in response"}
	}

	choice := out.Choices[0].Message
	calls := make([]ToolCall, 0, len(choice.ToolCalls))
	for _, tc := range choice.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return Response{}, &Error{Kind: KindMalformed, Err: fmt.Errorf("tool call arguments: %w", err)}
			}
		}
		calls = append(calls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}

	var usage Usage
	if out.Usage != nil {
		usage = Usage{TokensIn: out.Usage.PromptTokens, TokensOut: out.Usage.CompletionTokens}
	}

	return Response{Content: choice.Content, ToolCalls: calls, Usage: usage}, nil
}

func toOpenAIMessages(msgs []Message) ([]openAIMessage, error) {
	out := make([]openAIMessage, 0, len(msgs))
	for _, m := range msgs {
		om := openAIMessage{Role: m.Role, Content: m.Content}
		if m.Role == RoleTool {
			om.Name = m.ToolName
			om.ToolCallID = m.ToolCallID
		}
		for i, tc := range m.ToolCalls {
			args, err := json.Marshal(tc.Arguments)
			if err != nil {
				return nil, err
			}
			id := tc.ID
			if id == "" {
				id = fmt.Sprintf("call_%d", i)
			}
			om.ToolCalls = append(om.ToolCalls, openAIToolCall{
				ID:       id,
				Type:     "function",
				Function: openAIToolCallFunction{Name: tc.Name, Arguments: string(args)},
			})
		}
		out = append(out, om)
	}
	return out, nil
}

func toOpenAITools(tools []ToolDescriptor) []openAITool {
	out := make([]openAITool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openAITool{
			Type: "function",
			Function: openAIToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Schema,
			},
		})
	}
	return out
}
