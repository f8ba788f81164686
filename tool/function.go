package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Arguments are validated against the declared JSON schema before the
// function runs. Failures are normalized to *ToolError:
//
//	VALIDATION_ERROR  -> schema / argument mismatch
//	EXECUTION_ERROR   -> underlying function returned an error (non-ToolError)
//
// Custom codes are preserved if the function returns *ToolError directly.
// A FunctionTool is safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)

	once      sync.Once
	schema    *jsonschema.Schema
	schemaErr error
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// util.CreateSchema.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// NewTypedTool exposes fn as a tool whose schema is derived from A. The
// validated arguments are decoded into A before fn runs.
//
//	type budgetArgs struct {
//	  Category string `json:"category" description:"Budget category"`
//	}
//
//	t := NewTypedTool("get_budget", "Show a budget", func(tc *core.ToolContext, a budgetArgs) (string, error) {
//	  return lookup(a.Category), nil
//	})
func NewTypedTool[A any](
	name, description string,
	fn func(toolCtx *core.ToolContext, args A) (string, error),
) *FunctionTool {
	var zero A
	return NewFunctionTool(name, description, util.CreateSchema(zero), func(tc *core.ToolContext, raw map[string]any) (any, error) {
		var args A
		if err := decodeArgs(raw, &args); err != nil {
			return nil, &ToolError{Tool: name, Message: err.Error(), Code: CodeValidation, cause: err}
		}
		return fn(tc, args)
	})
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the
// underlying function.
//
// Logging Fields:
//
//	tool: tool name
//	fc_id: function call identifier
//	duration_ms: execution time in milliseconds
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	normalized, err := t.validate(args)
	if err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err.Error(),
			cause:   err,
		}
	}

	result, err := t.fn(toolCtx, normalized)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			logger.Error("tool.call.error", "tool", t.name, "code", toolErr.Code, "error", toolErr.Message)

			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
			cause:   err,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// validate round-trips args through JSON so Go values (ints, typed slices)
// take their wire shape, then checks them against the compiled schema.
func (t *FunctionTool) validate(args map[string]any) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	var normalized map[string]any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}

	schema, err := t.compiled()
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return normalized, nil
	}
	if err := schema.Validate(any(normalized)); err != nil {
		return nil, err
	}
	return normalized, nil
}

func (t *FunctionTool) compiled() (*jsonschema.Schema, error) {
	t.once.Do(func() {
		if len(t.parameters) == 0 {
			return
		}
		raw, err := json.Marshal(t.parameters)
		if err != nil {
			t.schemaErr = fmt.Errorf("encode schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		url := t.name + ".schema.json"
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			t.schemaErr = fmt.Errorf("load schema: %w", err)
			return
		}
		t.schema, t.schemaErr = compiler.Compile(url)
	})
	return t.schema, t.schemaErr
}

func decodeArgs(raw map[string]any, dst any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
