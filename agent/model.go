package agent

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/flow"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description           string
	Instruction           Instruction
	EnableStreaming       bool
	EnableFunctionCalling bool
	OutputKey             string
	MaxHistoryMessages    int
	Tools                 []tool.Tool
	// FunctionExecutor overrides the flow's default parallel executor.
	FunctionExecutor flow.FunctionExecutor
}

// ModelAgent answers requests with a language model, calling its registered
// tools over as many model turns as the run's call budget allows.
//
// ModelAgent embeds BaseAgent and implements both core.Agent and flow.FlowAgent.
type ModelAgent struct {
	BaseAgent
	llm                   model.Model
	instruction           Instruction
	enableFunctionCalling bool
	enableStreaming       bool
	outputKey             string
	maxHistoryMessages    int
	executor              flow.FunctionExecutor

	toolsMu sync.RWMutex
	tools   map[string]tool.Tool
}

// NewModelAgent creates a new model-based agent.
//
// Defaults: function calling on, streaming off, a 40 entry history window
// and a generic instruction naming the agent.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:           NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		EnableFunctionCalling: true,
		MaxHistoryMessages:    40,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:             NewBaseAgent(name),
		llm:                   llm,
		instruction:           opts.Instruction,
		enableStreaming:       opts.EnableStreaming,
		enableFunctionCalling: opts.EnableFunctionCalling,
		outputKey:             opts.OutputKey,
		maxHistoryMessages:    opts.MaxHistoryMessages,
		executor:              opts.FunctionExecutor,
		tools:                 make(map[string]tool.Tool, len(opts.Tools)),
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	a.RegisterTools(opts.Tools...)
	return a
}

// RegisterTool adds a tool to the agent's capability set, replacing any
// tool with the same name.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	a.toolsMu.Lock()
	defer a.toolsMu.Unlock()
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	a.toolsMu.RLock()
	defer a.toolsMu.RUnlock()
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the sorted names of all registered tools.
func (a *ModelAgent) ListTools() []string {
	a.toolsMu.RLock()
	defer a.toolsMu.RUnlock()
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetName returns the agent's display name.
func (a *ModelAgent) GetName() string { return a.Name() }

// GetLLM returns the language model instance.
func (a *ModelAgent) GetLLM() model.Model { return a.llm }

// GetTools returns a snapshot of the registered tools.
func (a *ModelAgent) GetTools() map[string]tool.Tool {
	a.toolsMu.RLock()
	defer a.toolsMu.RUnlock()
	tools := make(map[string]tool.Tool, len(a.tools))
	for name, t := range a.tools {
		tools[name] = t
	}
	return tools
}

// IsFunctionCallingEnabled returns whether function calling is enabled.
func (a *ModelAgent) IsFunctionCallingEnabled() bool { return a.enableFunctionCalling }

// IsStreamingEnabled returns whether streaming responses are enabled.
func (a *ModelAgent) IsStreamingEnabled() bool { return a.enableStreaming }

// GetOutputKey returns the session state key for saving responses.
func (a *ModelAgent) GetOutputKey() string { return a.outputKey }

// MaxHistoryMessages returns the maximum number of conversation history messages to keep.
func (a *ModelAgent) MaxHistoryMessages() int { return a.maxHistoryMessages }

// ResolveInstructions produces the system prompt for this run.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// Run implements core.Agent by driving a single agent flow.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.Name(), "run", runCtx.RunID)

	fl := flow.NewSingleAgentFlow(a)
	if a.executor != nil {
		fl.SetFunctionExecutor(a.executor)
	}

	if err := fl.Run(runCtx); err != nil {
		runCtx.LogWarn("agent.run.error", "agent", a.Name(), "error", err.Error())
		return fmt.Errorf("agent %s: %w", a.Name(), err)
	}

	runCtx.LogDebug("agent.run.complete", "agent", a.Name(), "model_calls", runCtx.Limiter.Count())
	return nil
}

var (
	_ core.Agent     = (*ModelAgent)(nil)
	_ flow.FlowAgent = (*ModelAgent)(nil)
)
