// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (including streaming + function/tool calling). It
// adapts the normalized Request/Response structures into the SDK's message
// format and back.
package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/model"
)

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// allowing reconstruction of complete function call parts when finish reason
// is emitted.
type aggCall struct{ id, name, args string }

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// APIKey overrides OPENAI_API_KEY when set.
	APIKey string
	// BaseURL points the client at an OpenAI compatible endpoint.
	BaseURL string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns...)
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns...)}
}

func defaultOptions(optFns ...func(o *Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		params := m.buildParams(req, buildMessages(req))
		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, params, out, errCh)
	}()
	return out, errCh
}

// buildMessages converts normalized contents into OpenAI chat messages.
// Tool results are placed directly after the assistant message that issued
// the matching call; results whose call is not in the window are dropped
// since the API rejects tool messages without a preceding tool_calls entry.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	results := map[string]string{}
	for _, c := range req.Contents {
		if c.Role != "tool" {
			continue
		}
		for _, p := range c.Parts {
			fr, ok := p.(core.FunctionResponsePart)
			if !ok || fr.FunctionResponse.ID == "" {
				continue
			}
			if _, seen := results[fr.FunctionResponse.ID]; !seen {
				results[fr.FunctionResponse.ID] = model.ToolResultText(fr.FunctionResponse)
			}
		}
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, c := range req.Contents {
		text := model.TextOf(c)
		switch c.Role {
		case "tool":
			continue
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "user":
			messages = append(messages, openai.UserMessage(text))
		case "assistant":
			toolCalls := extractToolCalls(c)
			if len(toolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			asst := &openai.ChatCompletionAssistantMessageParam{Role: "assistant", ToolCalls: toolCalls}
			if text != "" {
				asst.Content.OfString = openai.String(text)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: asst})
			for _, id := range model.CallIDs(c) {
				resp, ok := results[id]
				if !ok {
					resp = "Error: no result recorded for this call"
				}
				messages = append(messages, openai.ToolMessage(resp, id))
				delete(results, id)
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	return messages
}

// extractToolCalls converts function call parts into OpenAI tool calls.
func extractToolCalls(c core.Content) []openai.ChatCompletionMessageToolCallParam {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	for _, p := range c.Parts {
		fc, ok := p.(core.FunctionCallPart)
		if !ok || fc.FunctionCall.ID == "" {
			continue
		}
		args := fc.FunctionCall.Arguments
		if args == "" {
			args = "{}"
		}
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   fc.FunctionCall.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.FunctionCall.Name,
				Arguments: args,
			},
		})
	}
	return toolCalls
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (m *Model) buildParams(
	req model.Request,
	messages []openai.ChatCompletionMessageParamUnion,
) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// handleStreaming forwards text deltas as partial responses and emits one
// final response carrying the aggregated text and tool calls.
func (m *Model) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var textBuilder strings.Builder
	toolAgg := map[int64]*aggCall{}
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- model.Response{
					ID:      ck.ID,
					Partial: true,
					Content: core.Content{
						Role:  "assistant",
						Parts: []core.Part{core.TextPart{Text: ch.Delta.Content}},
					},
				}
			}
			aggregateToolCalls(ch, toolAgg)
			if ch.FinishReason != "" {
				out <- model.Response{
					ID:           ck.ID,
					Content:      finalContent(textBuilder.String(), toolAgg),
					FinishReason: ch.FinishReason,
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
	}
}

func aggregateToolCalls(ch openai.ChatCompletionChunkChoice, agg map[int64]*aggCall) {
	for _, tc := range ch.Delta.ToolCalls {
		ac, ok := agg[tc.Index]
		if !ok {
			ac = &aggCall{}
			agg[tc.Index] = ac
		}
		if tc.ID != "" {
			ac.id = tc.ID
		}
		if tc.Function.Name != "" {
			ac.name = tc.Function.Name
		}
		ac.args += tc.Function.Arguments
	}
}

// finalContent orders aggregated calls by their stream index.
func finalContent(text string, agg map[int64]*aggCall) core.Content {
	parts := make([]core.Part, 0, len(agg)+1)
	if text != "" {
		parts = append(parts, core.TextPart{Text: text})
	}
	idx := make([]int64, 0, len(agg))
	for i := range agg {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })
	for _, i := range idx {
		ac := agg[i]
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        ac.id,
			Name:      ac.name,
			Arguments: ac.args,
		}})
	}
	return core.Content{Role: "assistant", Parts: parts}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("openai api error: no choices returned")
		return
	}
	ch0 := resp.Choices[0]
	parts := make([]core.Part, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	out <- model.Response{
		ID:           resp.ID,
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
