package flow

import (
	"errors"
	"fmt"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/tool"
)

// BaseFlow is a minimal single‑agent flow implementation that supports a
// request -> LLM -> (optional tool loop) cycle with pluggable pre/post processors.
type BaseFlow struct {
	agent              FlowAgent
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
	executor           FunctionExecutor
}

// NewBaseFlow creates a new basic single-agent flow.
func NewBaseFlow(agent FlowAgent) *BaseFlow {
	return &BaseFlow{
		agent:              agent,
		requestProcessors:  []RequestProcessor{},
		responseProcessors: []ResponseProcessor{},
		executor:           NewParallelFunctionExecutor(FunctionExecutorConfig{}),
	}
}

// AddRequestProcessor appends a request processor; order of registration defines execution order.
func (f *BaseFlow) AddRequestProcessor(processor RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, processor)
}

// AddResponseProcessor appends a response processor executed after each model chunk.
func (f *BaseFlow) AddResponseProcessor(processor ResponseProcessor) {
	f.responseProcessors = append(f.responseProcessors, processor)
}

// SetFunctionExecutor replaces the default parallel executor.
func (f *BaseFlow) SetFunctionExecutor(e FunctionExecutor) { f.executor = e }

// Run loops model turns until the agent produces a final answer.
func (f *BaseFlow) Run(runCtx *core.RunContext) error {
	for {
		if err := runCtx.Err(); err != nil {
			return err
		}

		if err := runCtx.Limiter.Increment(); err != nil {
			return f.emitError(runCtx, CodeModelCallLimit, err)
		}

		last, err := f.runOnce(runCtx)
		if err != nil {
			return err
		}

		switch {
		case last == nil:
			return nil
		case last.SkipsSummarization():
			return nil
		case len(last.GetFunctionResponses()) > 0:
			// tool results go back to the model
			continue
		case last.IsPartial():
			runCtx.LogWarn("flow.partial_tail", "agent", f.agent.GetName(), "event_id", last.ID)
			return nil
		case last.IsFinalResponse():
			return nil
		}
	}
}

// emitError reports err as an error event and waits for it to be persisted.
func (f *BaseFlow) emitError(runCtx *core.RunContext, code string, err error) error {
	runCtx.LogError("flow.error", "agent", f.agent.GetName(), "code", code, "error", err.Error())

	ev := core.NewErrorEvent(runCtx.RunID, f.agent.GetName(), code, err.Error())
	if emitErr := runCtx.EmitEvent(ev); emitErr != nil {
		return emitErr
	}
	return runCtx.WaitForResume()
}

// emit sends a non-partial event and blocks until the runner has persisted it.
func (f *BaseFlow) emit(runCtx *core.RunContext, ev core.Event) error {
	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}
	if ev.IsPartial() {
		return nil
	}
	return runCtx.WaitForResume()
}

// buildRequest refreshes the session snapshot and runs request processors.
func (f *BaseFlow) buildRequest(runCtx *core.RunContext) (*model.Request, error) {
	if err := runCtx.RefreshSession(); err != nil && !errors.Is(err, core.ErrNoSessionStore) {
		runCtx.LogWarn("flow.session.refresh_failed", "agent", f.agent.GetName(), "error", err.Error())
	}

	req := &model.Request{Stream: f.agent.IsStreamingEnabled()}
	for _, processor := range f.requestProcessors {
		if err := processor.ProcessRequest(runCtx, req, f.agent); err != nil {
			return nil, fmt.Errorf("request processor %s failed: %w", processor.Name(), err)
		}
	}

	if f.agent.IsFunctionCallingEnabled() {
		if tools := f.agent.GetTools(); len(tools) > 0 {
			req.Tools = tool.Definitions(tools)
		}
	}
	return req, nil
}

// runOnce performs one model turn, including any tool executions, and
// returns the last emitted event. A nil event means an error event ended the run.
func (f *BaseFlow) runOnce(runCtx *core.RunContext) (*core.Event, error) {
	req, err := f.buildRequest(runCtx)
	if err != nil {
		return nil, f.emitError(runCtx, CodeProcessorFailed, err)
	}

	llm := f.agent.GetLLM()
	if llm == nil {
		return nil, f.emitError(runCtx, CodeFlowError, fmt.Errorf("agent %s has no model", f.agent.GetName()))
	}

	runCtx.LogDebug(
		"flow.model.call",
		"agent", f.agent.GetName(),
		"model", llm.Info().Name,
		"call", runCtx.Limiter.Count(),
		"contents", len(req.Contents),
		"tools", len(req.Tools),
		"stream", req.Stream,
	)

	respCh, errCh := llm.Generate(runCtx.Context, *req)

	var (
		lastEvent *core.Event
		genErr    error
	)
	for respCh != nil || errCh != nil {
		select {
		case <-runCtx.Done():
			return lastEvent, runCtx.Err()
		case e, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if e != nil && genErr == nil {
				genErr = e
			}
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}

			ev, err := f.handleResponse(runCtx, resp)
			if err != nil {
				return nil, err
			}
			if ev == nil {
				return nil, nil
			}
			lastEvent = ev
		}
	}

	if genErr != nil {
		if err := runCtx.Err(); err != nil {
			return lastEvent, err
		}
		return nil, f.emitError(runCtx, CodeModelError, genErr)
	}
	if lastEvent == nil {
		return nil, f.emitError(runCtx, CodeEmptyResponse, fmt.Errorf("model %s returned no response", llm.Info().Name))
	}
	return lastEvent, nil
}

// handleResponse emits one model response and, for a complete response
// carrying function calls, executes them and emits the merged results.
func (f *BaseFlow) handleResponse(runCtx *core.RunContext, resp model.Response) (*core.Event, error) {
	for _, processor := range f.responseProcessors {
		if err := processor.ProcessResponse(runCtx, &resp, f.agent); err != nil {
			return nil, f.emitError(runCtx, CodeProcessorFailed, fmt.Errorf("response processor %s failed: %w", processor.Name(), err))
		}
	}

	ev := core.NewEvent(runCtx.RunID, f.agent.GetName())
	content := resp.Content
	if content.Role == "" {
		content.Role = "assistant"
	}
	ev.Content = &content
	partial := resp.Partial
	ev.Partial = &partial

	fnCalls := ev.GetFunctionCalls()
	if !resp.Partial && len(fnCalls) == 0 {
		complete := true
		ev.TurnComplete = &complete
		if key := f.agent.GetOutputKey(); key != "" {
			runCtx.SetState(key, ev.Text())
		}
	}

	if err := f.emit(runCtx, ev); err != nil {
		return nil, err
	}
	if resp.Partial || len(fnCalls) == 0 {
		return &ev, nil
	}

	results := f.executor.Execute(runCtx, f.agent.GetName(), f.agent.GetTools(), fnCalls)
	merged := mergeFunctionResponseEvents(runCtx.RunID, f.agent.GetName(), results)
	if err := f.emit(runCtx, merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// mergeFunctionResponseEvents folds per-call response events into one tool
// event preserving call order. State deltas merge in order; any tool asking
// to skip summarization marks the merged event.
func mergeFunctionResponseEvents(runID, author string, events []core.Event) core.Event {
	merged := core.NewEvent(runID, author)
	merged.Content = &core.Content{Role: "tool"}
	for _, ev := range events {
		if ev.Content != nil {
			merged.Content.Parts = append(merged.Content.Parts, ev.Content.Parts...)
		}
		if len(ev.Actions.StateDelta) > 0 {
			if merged.Actions.StateDelta == nil {
				merged.Actions.StateDelta = map[string]any{}
			}
			for k, v := range ev.Actions.StateDelta {
				merged.Actions.StateDelta[k] = v
			}
		}
		if ev.SkipsSummarization() {
			skip := true
			merged.Actions.SkipSummarization = &skip
		}
	}
	return merged
}
