package flow

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/tool"
)

// FunctionExecutor executes a batch of function/tool calls, possibly in
// parallel. Implementations must:
//   - Respect runCtx.Context cancellation
//   - Never panic (recover internally and report the panic as the call's error)
//   - Return exactly one FunctionResponse event per incoming FunctionCall, in call order
//   - Apply ToolContext accumulated actions to the returned events
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agentName string, tools map[string]tool.Tool, fnCalls []core.FunctionCall) []core.Event
}

// FunctionExecutorConfig configures the default parallel executor.
type FunctionExecutorConfig struct {
	MaxParallel    int  // 0 or <1 => no explicit limit (len(fnCalls))
	LogStartEvents bool // log a start line per function
}

// parallelFunctionExecutor is the default implementation.
type parallelFunctionExecutor struct {
	cfg FunctionExecutorConfig
}

// NewParallelFunctionExecutor constructs a new executor with the given config.
func NewParallelFunctionExecutor(cfg FunctionExecutorConfig) FunctionExecutor {
	return &parallelFunctionExecutor{cfg: cfg}
}

func (e *parallelFunctionExecutor) Execute(
	runCtx *core.RunContext,
	agentName string,
	tools map[string]tool.Tool,
	fnCalls []core.FunctionCall,
) []core.Event {
	n := len(fnCalls)
	if n == 0 {
		return nil
	}

	results := make([]core.Event, n)

	// Fast path: single call, execute inline.
	if n == 1 {
		results[0] = e.executeOne(runCtx, agentName, tools, fnCalls[0])
		return results
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range fnCalls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeOne(runCtx, agentName, tools, fc)
		}(i, fnCalls[i])
	}
	wg.Wait()

	runCtx.LogDebug(
		"agent.functions.batch.complete",
		"agent", agentName,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (e *parallelFunctionExecutor) executeOne(
	runCtx *core.RunContext,
	agentName string,
	tools map[string]tool.Tool,
	fc core.FunctionCall,
) core.Event {
	if err := runCtx.Err(); err != nil {
		return core.NewFunctionResponseEvent(agentName, fc.ID, fc.Name, nil, err)
	}

	toolCtx := core.NewToolContext(runCtx, fc.ID)
	if e.cfg.LogStartEvents {
		runCtx.LogInfo("agent.function.start", "agent", agentName, "function", fc.Name, "function_call_id", fc.ID)
	}

	start := time.Now()
	var (
		result any
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(r)
				runCtx.LogError("agent.function.panic", "agent", agentName, "function", fc.Name, "recover", r, "stack", string(err.(*panicErr).stack))
			}
		}()
		result, err = executeTool(tools, toolCtx, fc.Name, fc.Arguments)
	}()

	runCtx.LogInfo(
		"agent.function.executed",
		"agent", agentName,
		"function", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	respEv := core.NewFunctionResponseEvent(agentName, fc.ID, fc.Name, result, err)
	respEv.RunID = runCtx.RunID
	toolCtx.InternalApplyActions(&respEv)
	return respEv
}

// panicError converts a recovered panic value to an error.
func panicError(r any) error { return &panicErr{val: r, stack: debug.Stack()} }

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }

// executeTool looks up the tool and decodes the JSON arguments.
func executeTool(tools map[string]tool.Tool, toolCtx *core.ToolContext, toolName, args string) (any, error) {
	impl, ok := tools[toolName]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}

	argMap := map[string]any{}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}

	return impl.Call(toolCtx, argMap)
}
