package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/internal/util"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/session"
)

var (
	// ErrNoReply is returned by Ask when the agent finished without any final text.
	ErrNoReply = errors.New("agent produced no reply")
	// ErrAgentFailed wraps error events emitted by the agent during Ask.
	ErrAgentFailed = errors.New("agent failed")
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// AgentType labels the agent in run contexts and logs ("router", "domain").
	AgentType string
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// MaxModelCalls limits the number of model calls per run.
	MaxModelCalls int
	// SessionStore persists conversations.
	SessionStore core.SessionStore
	// Logger receives runner and agent logs.
	Logger logging.Logger
}

// Runner drives one agent against named sessions: it creates run contexts,
// persists events, applies state deltas and streams events to the caller.
// Public methods are safe for concurrent use.
type Runner struct {
	agent core.Agent

	agentType       string
	eventBufferSize int
	maxModelCalls   int

	sessionStore core.SessionStore
	logger       logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// Reply is the collected outcome of Ask.
type Reply struct {
	RunID  string
	Text   string
	Events []core.Event
}

// New constructs a Runner with optional overrides.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		AgentType:       "agent",
		EventBufferSize: 100,
		MaxModelCalls:   25,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	return &Runner{
		agent:           agent,
		agentType:       opts.AgentType,
		eventBufferSize: opts.EventBufferSize,
		maxModelCalls:   opts.MaxModelCalls,
		sessionStore:    opts.SessionStore,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Agent returns the agent this runner drives.
func (r *Runner) Agent() core.Agent { return r.agent }

// SessionStore returns the store the runner persists into.
func (r *Runner) SessionStore() core.SessionStore { return r.sessionStore }

// Run starts an asynchronous run. The session is created when it does not
// exist yet. Events arrive on the returned channel; both channels close when
// the run ends.
func (r *Runner) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if errors.Is(err, core.ErrSessionNotFound) {
		sess, err = r.sessionStore.Create(sessionID)
	}
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	runID := util.NewRunID()

	userEvent := core.NewUserContentEvent(runID, &userContent)
	if err := r.sessionStore.AppendEvent(sessionID, userEvent); err != nil {
		return "", nil, nil, fmt.Errorf("failed to append user event: %w", err)
	}
	sess.AddEvent(userEvent)

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 2)
	agentEmit := make(chan core.Event, r.eventBufferSize)
	resumeCh := make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	runCtx := core.NewRunContext(
		ctx,
		sessionID,
		runID,
		core.AgentInfo{Name: r.agent.Name(), Type: r.agentType},
		userContent,
		r.maxModelCalls,
		agentEmit,
		resumeCh,
		sess,
		r.sessionStore,
		r.logger,
	)

	r.logger.Debug("runner.run.start", "agent", r.agent.Name(), "session", sessionID, "run", runID)

	agentErr := make(chan error, 1)
	go func() {
		defer close(agentEmit)
		agentErr <- r.agent.Run(runCtx)
	}()

	go func() {
		defer func() {
			close(eventsCh)
			close(errorsCh)
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
			r.logger.Debug("runner.run.end", "agent", r.agent.Name(), "run", runID)
		}()

		failed := r.processEvents(runCtx, sessionID, agentEmit, resumeCh, eventsCh)
		if failed != nil {
			errorsCh <- failed
		}
		// unblocks an agent stuck on emit after a persistence failure
		cancel()
		if err := <-agentErr; err != nil && failed == nil {
			errorsCh <- fmt.Errorf("agent execution failed: %w", err)
		}
	}()

	return runID, eventsCh, errorsCh, nil
}

// Ask runs the agent on text and blocks until the run ends. It returns the
// final assistant text; ErrNoReply when there is none, and ErrAgentFailed
// when the agent emitted an error event. Reply is populated in every case
// so callers can still inspect the events.
func (r *Runner) Ask(ctx context.Context, sessionID, text string) (Reply, error) {
	content := core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: text}}}

	runID, events, errs, err := r.Run(ctx, sessionID, content)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{RunID: runID}
	var runErr error
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.IsPartial() {
				continue
			}
			reply.Events = append(reply.Events, ev)
			if ev.IsError() && runErr == nil {
				runErr = fmt.Errorf("%w: %s: %s", ErrAgentFailed, deref(ev.ErrorCode), deref(ev.ErrorMessage))
			}
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if runErr == nil {
				runErr = e
			}
		}
	}

	if runErr != nil {
		return reply, runErr
	}
	if err := ctx.Err(); err != nil {
		return reply, err
	}

	reply.Text = FinalText(r.agent.Name(), reply.Events)
	if reply.Text == "" {
		return reply, ErrNoReply
	}
	return reply, nil
}

// FinalText returns the text of the last complete assistant message authored
// by agentName that carries no function calls.
func FinalText(agentName string, events []core.Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Author != agentName || ev.IsPartial() || ev.Content == nil || ev.Content.Role != "assistant" {
			continue
		}
		if len(ev.GetFunctionCalls()) > 0 {
			continue
		}
		if text := ev.Text(); text != "" {
			return text
		}
	}
	return ""
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// processEvents persists and forwards agent events until the agent closes
// its emit channel. It returns the first persistence failure.
func (r *Runner) processEvents(
	runCtx *core.RunContext,
	sessionID string,
	agentEmit <-chan core.Event,
	resumeCh chan<- struct{},
	eventsCh chan<- core.Event,
) error {
	for {
		select {
		case <-runCtx.Done():
			return nil
		case ev, ok := <-agentEmit:
			if !ok {
				return nil
			}
			if err := r.applyEventActions(sessionID, ev); err != nil {
				return fmt.Errorf("failed to process event actions: %w", err)
			}
			if !ev.IsPartial() {
				if err := r.sessionStore.AppendEvent(sessionID, ev); err != nil {
					return fmt.Errorf("failed to append event to session: %w", err)
				}
			}
			select {
			case <-runCtx.Done():
				return nil
			case eventsCh <- ev:
				r.logger.Debug("runner.event.delivered", "event", ev.ID, "session", sessionID, "author", ev.Author)
			}
			if !ev.IsPartial() {
				select {
				case resumeCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (r *Runner) applyEventActions(sessionID string, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(sessionID, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("failed to apply state delta: %w", err)
		}
	}

	if ev.SkipsSummarization() {
		r.logger.Debug("runner.event.skip_summarization", "session", sessionID, "author", ev.Author)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
