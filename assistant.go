// Package personalassistant assembles the personal assistant: a router
// agent over four domain agents (expenses, academic tracking, projects,
// email) sharing one conversation store and one document store.
//
// Most applications only need New and Process:
//
//	a := personalassistant.New(llm, func(o *personalassistant.Options) {
//		o.DataDir = "./data"
//	})
//	reply, err := a.Process(ctx, "Add 50 TL for coffee", "PersonalAssistant")
//
// Defaults are safe for local development: in-memory conversations, an
// in-memory mail provider and a NoOp logger. Production wiring supplies a
// durable session store and a directory-backed mail provider.
package personalassistant

import (
	"context"
	"time"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/domain/academic"
	"github.com/cagandemirsamli/personalassistant/domain/email"
	"github.com/cagandemirsamli/personalassistant/domain/expense"
	"github.com/cagandemirsamli/personalassistant/domain/project"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/mail"
	"github.com/cagandemirsamli/personalassistant/model"
	"github.com/cagandemirsamli/personalassistant/orchestrator"
	"github.com/cagandemirsamli/personalassistant/session"
	"github.com/cagandemirsamli/personalassistant/store"
)

// Options configures an Assistant.
type Options struct {
	// DataDir holds the JSON documents. Defaults to "./data".
	DataDir string
	// SessionStore keeps conversations. Defaults to in-memory.
	SessionStore core.SessionStore
	// MailProvider backs the email agent. Defaults to an empty in-memory provider.
	MailProvider mail.Provider
	// MailCacheTTL bounds reuse of fetched message contents.
	MailCacheTTL time.Duration
	// MaxModelCalls bounds each agent run.
	MaxModelCalls int
	// Now is the clock used for default dates and prompt dates.
	Now    func() time.Time
	Logger logging.Logger
}

// Assistant is the assembled router and domain tool sets.
type Assistant struct {
	router *orchestrator.Router
	store  *store.Store

	Expense  *expense.Tools
	Academic *academic.Tools
	Project  *project.Tools
	Email    *email.Tools
}

// New assembles an Assistant whose router and domain agents all use llm.
func New(llm model.Model, optFns ...func(o *Options)) *Assistant {
	opts := Options{
		DataDir:       "./data",
		MailCacheTTL:  10 * time.Minute,
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
	if opts.MailProvider == nil {
		opts.MailProvider = mail.NewMemoryProvider()
	}

	docs := store.New(opts.DataDir, academic.RegisterLegacyKeys, func(o *store.Options) {
		o.Logger = logging.With(opts.Logger, "component", "store")
	})

	a := &Assistant{
		store: docs,
		Expense: expense.NewTools(docs, func(o *expense.Options) {
			o.Now, o.Logger = opts.Now, opts.Logger
		}),
		Academic: academic.NewTools(docs, func(o *academic.Options) {
			o.Now, o.Logger = opts.Now, opts.Logger
		}),
		Project: project.NewTools(docs, func(o *project.Options) {
			o.Now, o.Logger = opts.Now, opts.Logger
		}),
		Email: email.NewTools(opts.MailProvider, func(o *email.Options) {
			o.CacheTTL, o.Now, o.Logger = opts.MailCacheTTL, opts.Now, opts.Logger
		}),
	}

	agents := map[orchestrator.Route]core.Agent{
		orchestrator.RouteExpense:  expense.NewAgent(llm, a.Expense),
		orchestrator.RouteAcademic: academic.NewAgent(llm, a.Academic),
		orchestrator.RouteProject:  project.NewAgent(llm, a.Project),
		orchestrator.RouteEmail:    email.NewAgent(llm, a.Email),
	}

	a.router = orchestrator.New(llm, agents, func(o *orchestrator.Options) {
		o.SessionStore = opts.SessionStore
		o.MaxModelCalls = opts.MaxModelCalls
		o.Now = opts.Now
		o.Logger = opts.Logger
	})

	return a
}

// Process routes one request on the named conversation and returns the reply.
func (a *Assistant) Process(ctx context.Context, request, sessionID string) (string, error) {
	return a.router.Process(ctx, request, sessionID)
}

// Router returns the underlying router.
func (a *Assistant) Router() *orchestrator.Router { return a.router }

// Store returns the document store shared by the domain tool sets.
func (a *Assistant) Store() *store.Store { return a.store }
