package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cagandemirsamli/personalassistant/agent"
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/flow"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/runner"
	"github.com/cagandemirsamli/personalassistant/session"
)

// AgentName identifies the router in sessions and logs.
const AgentName = "Orchestrator"

// Fallback is returned when no route produced any text.
const Fallback = "I'm not sure how to help with that. Could you rephrase your request?"

const instructions = `You are an intelligent router for a Personal Assistant system.

Your job is to understand the user's request and route it to the correct specialized agent:

1. **Expense Agent** - For anything about money:
   - Adding/viewing expenses
   - Creating/checking budgets
   - Spending analysis
   - Keywords: expense, budget, spent, cost, money, TL, dollars, payment, coffee, food

2. **Academic Agent** - For anything about school:
   - Assignments and homework
   - Exams and grades
   - Deadlines and due dates
   - Keywords: assignment, homework, exam, midterm, final, grade, course, class, due

3. **Project Agent** - For personal/side projects:
   - Project management
   - Milestones and features
   - Tech stack and progress notes
   - Keywords: project, milestone, feature, development, coding, tech stack

4. **Email Agent** - For mail-related requests:
   - Checking emails
   - Unread messages
   - Important emails
   - Keywords: email, inbox, unread, mail, gmail, important

5. **General Response** - For everything else:
   - Greetings ("hi", "hello")
   - Questions about what you can do
   - Unclear requests (ask for clarification)

IMPORTANT RULES:
- ALWAYS route to exactly ONE agent per request
- Forward the user's COMPLETE original request to the specialist
- If unsure which agent, ask the user to clarify
- For greetings, use general_response() with a friendly message

When routing, call the appropriate route_to_X() function and pass the user's original request.`

// Options configures a Router.
type Options struct {
	// SessionStore is shared by the router and every domain agent so they
	// see one conversation. Defaults to an in-memory store.
	SessionStore core.SessionStore
	// MaxModelCalls bounds each run (router or domain).
	MaxModelCalls int
	// Now stamps the router prompt. Defaults to time.Now.
	Now    func() time.Time
	Logger logging.Logger
}

// Router classifies each request with the model and forwards it to exactly
// one domain agent, or answers it directly.
type Router struct {
	runner  *runner.Runner
	domains map[Route]*runner.Runner
	logger  logging.Logger

	mu        sync.Mutex
	decisions map[string]Decision
}

// New creates a Router over llm and the domain agents keyed by route.
// RouteGeneral entries in agents are ignored.
func New(llm model.Model, agents map[Route]core.Agent, optFns ...func(o *Options)) *Router {
	opts := Options{
		MaxModelCalls: 25,
		Now:           time.Now,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	r := &Router{
		domains:   map[Route]*runner.Runner{},
		logger:    opts.Logger,
		decisions: map[string]Decision{},
	}

	runnerOpts := func(agentType string) func(o *runner.Options) {
		return func(o *runner.Options) {
			o.AgentType = agentType
			o.MaxModelCalls = opts.MaxModelCalls
			o.SessionStore = opts.SessionStore
			o.Logger = opts.Logger
		}
	}

	for route, a := range agents {
		if route == RouteGeneral || a == nil {
			continue
		}
		r.domains[route] = runner.New(a, runnerOpts("domain"))
	}

	routerAgent := agent.NewModelAgent(AgentName, llm, func(o *agent.ModelAgentOptions) {
		o.Description = "Routes each request to one specialized agent."
		o.Instruction = agent.NewDatedInstruction(instructions, opts.Now())
		o.Tools = r.tools()
		// Dispatch calls run one at a time in call order so the first one wins.
		o.FunctionExecutor = flow.NewParallelFunctionExecutor(flow.FunctionExecutorConfig{MaxParallel: 1})
	})
	r.runner = runner.New(routerAgent, runnerOpts("router"))

	return r
}

// Routes lists the registered domain routes in dispatch order.
func (r *Router) Routes() []Route {
	routes := make([]Route, 0, len(r.domains))
	for route := range r.domains {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return order(routes[i]) < order(routes[j]) })
	return routes
}

// SessionStore returns the conversation store shared by all agents.
func (r *Router) SessionStore() core.SessionStore { return r.runner.SessionStore() }

// Process handles one user request on the named conversation. Model
// failures are returned as errors; every other outcome is a reply.
func (r *Router) Process(ctx context.Context, request, sessionID string) (string, error) {
	reply, err := r.runner.Ask(ctx, sessionID, request)
	decision, decided := r.take(reply.RunID)
	if err != nil && !errors.Is(err, runner.ErrNoReply) {
		return "", fmt.Errorf("router: %w", err)
	}

	if !decided {
		return r.fallback(reply.Text, "no_decision"), nil
	}

	r.logger.Info("router.decision", "session_id", sessionID, "route", string(decision.Route))

	if decision.Route == RouteGeneral {
		if reply.Text != "" {
			return reply.Text, nil
		}
		return r.fallback(decision.Payload, "empty_general"), nil
	}

	domain, ok := r.domains[decision.Route]
	if !ok {
		r.logger.Warn("router.unregistered_route", "route", string(decision.Route))
		return r.fallback(reply.Text, "unregistered_route"), nil
	}

	// The original text is forwarded; the model's user_request paraphrase
	// is only logged.
	r.logger.Debug("router.forward", "route", string(decision.Route), "paraphrase", decision.Payload)
	out, err := domain.Ask(ctx, sessionID, request)
	if errors.Is(err, runner.ErrNoReply) {
		return r.fallback("", "empty_domain"), nil
	}
	if err != nil {
		return "", fmt.Errorf("%s agent: %w", decision.Route, err)
	}
	return out.Text, nil
}

func (r *Router) fallback(text, reason string) string {
	if text != "" {
		return text
	}
	r.logger.Info("router.fallback", "reason", reason)
	return Fallback
}

func (r *Router) record(runID string, d Decision) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decisions[runID]; exists {
		return false
	}
	r.decisions[runID] = d
	return true
}

func (r *Router) take(runID string) (Decision, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.decisions[runID]
	delete(r.decisions, runID)
	return d, ok
}

func order(route Route) int {
	for i, r := range DomainRoutes {
		if r == route {
			return i
		}
	}
	return len(DomainRoutes)
}
