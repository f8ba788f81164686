// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/model"
)

// Options configures the Anthropic model adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns...)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns...)}
}

func defaultOptions(optFns ...func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Generate adapts the Messages API into model.Response events. Streaming
// requests are served by a single non-partial response.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:       m.opts.Model,
			Messages:    buildMessages(req.Contents),
			MaxTokens:   m.opts.MaxTokens,
			Temperature: anthropic.Float(m.opts.Temperature),
		}
		if system := systemBlocks(req); len(system) > 0 {
			params.System = system
		}
		if len(req.Tools) > 0 {
			params.Tools = buildTools(req.Tools)
		}

		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		var parts []core.Part
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				if tb := block.AsText(); tb.Text != "" {
					parts = append(parts, core.TextPart{Text: tb.Text})
				}
			case "tool_use":
				tu := block.AsToolUse()
				args := "{}"
				if b, err := json.Marshal(tu.Input); err == nil && string(b) != "null" {
					args = string(b)
				}
				parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
					ID:        tu.ID,
					Name:      tu.Name,
					Arguments: args,
				}})
			}
		}

		finishReason := "stop"
		if resp.StopReason != "" {
			finishReason = string(resp.StopReason)
		}
		out <- model.Response{
			ID:           resp.ID,
			Content:      core.Content{Role: "assistant", Parts: parts},
			FinishReason: finishReason,
			Usage: &model.TokenUsage{
				PromptTokens:     int(resp.Usage.InputTokens),
				CompletionTokens: int(resp.Usage.OutputTokens),
				TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			},
		}
	}()

	return out, errCh
}

// buildMessages converts contents into alternating user/assistant turns.
// Tool results travel as tool_result blocks in the user turn that follows
// the assistant tool_use; results for calls outside the window are dropped.
// Consecutive turns with the same role are merged.
func buildMessages(contents []core.Content) []anthropic.MessageParam {
	results := map[string]core.FunctionResponse{}
	for _, c := range contents {
		if c.Role != "tool" {
			continue
		}
		for _, p := range c.Parts {
			if fr, ok := p.(core.FunctionResponsePart); ok && fr.FunctionResponse.ID != "" {
				if _, seen := results[fr.FunctionResponse.ID]; !seen {
					results[fr.FunctionResponse.ID] = fr.FunctionResponse
				}
			}
		}
	}

	var messages []anthropic.MessageParam
	push := func(role anthropic.MessageParamRole, blocks []anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content = append(messages[n-1].Content, blocks...)
			return
		}
		messages = append(messages, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, c := range contents {
		switch c.Role {
		case "system", "tool":
			continue
		case "assistant":
			blocks, ids := assistantBlocks(c.Parts)
			push(anthropic.MessageParamRoleAssistant, blocks)
			var toolResults []anthropic.ContentBlockParamUnion
			for _, id := range ids {
				fr, ok := results[id]
				if !ok {
					toolResults = append(toolResults, anthropic.NewToolResultBlock(id, "no result recorded for this call", true))
					continue
				}
				toolResults = append(toolResults, anthropic.NewToolResultBlock(id, model.ToolResultText(fr), fr.Error != ""))
				delete(results, id)
			}
			push(anthropic.MessageParamRoleUser, toolResults)
		default:
			push(anthropic.MessageParamRoleUser, textBlocks(c.Parts))
		}
	}
	return messages
}

func systemBlocks(req model.Request) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	if req.Instructions != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: req.Instructions})
	}
	for _, c := range req.Contents {
		if c.Role != "system" {
			continue
		}
		if text := model.TextOf(c); text != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: text})
		}
	}
	return blocks
}

func textBlocks(parts []core.Part) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range parts {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(tp.Text))
		}
	}
	return blocks
}

func assistantBlocks(parts []core.Part) ([]anthropic.ContentBlockParamUnion, []string) {
	var (
		blocks []anthropic.ContentBlockParamUnion
		ids    []string
	)
	for _, p := range parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			if part.FunctionCall.ID == "" {
				continue
			}
			input := map[string]any{}
			if part.FunctionCall.Arguments != "" {
				_ = json.Unmarshal([]byte(part.FunctionCall.Arguments), &input)
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(part.FunctionCall.ID, input, part.FunctionCall.Name))
			ids = append(ids, part.FunctionCall.ID)
		}
	}
	return blocks, ids
}

func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, td := range tools {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if params := td.Function.Parameters; params != nil {
			if props, ok := params["properties"]; ok {
				schema.Properties = props
			}
			switch req := params["required"].(type) {
			case []string:
				schema.Required = req
			case []any:
				for _, r := range req {
					if s, ok := r.(string); ok {
						schema.Required = append(schema.Required, s)
					}
				}
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(schema, td.Function.Name)
		if td.Function.Description != "" {
			out[i].OfTool.Description = anthropic.String(td.Function.Description)
		}
	}
	return out
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
