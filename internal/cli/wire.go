package cli

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/cagandemirsamli/personalassistant"
	"github.com/cagandemirsamli/personalassistant/config"
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/mail"
	"github.com/cagandemirsamli/personalassistant/model"
	anthropicmodel "github.com/cagandemirsamli/personalassistant/model/anthropic"
	"github.com/cagandemirsamli/personalassistant/model/guard"
	openaimodel "github.com/cagandemirsamli/personalassistant/model/openai"
	"github.com/cagandemirsamli/personalassistant/session"
)

type modelFactory func(cfg *config.Config, logger logging.Logger) (model.Model, error)

type app struct {
	cfg       *config.Config
	assistant *personalassistant.Assistant
	logger    logging.Logger
	close     func() error
}

// wireApp builds the assistant and its conversation store from cfg.
func wireApp(cfg *config.Config, models modelFactory) (*app, error) {
	logger := cfg.Logger()

	llm, err := models(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire model: %w", err)
	}

	sessions, closeSessions, err := openSessions(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	a := personalassistant.New(llm, func(o *personalassistant.Options) {
		o.DataDir = cfg.DataDir
		o.SessionStore = sessions
		o.MailProvider = mail.NewDirProvider(cfg.Mail.Dir)
		o.MailCacheTTL = cfg.Mail.CacheTTL
		o.MaxModelCalls = cfg.Model.MaxCalls
		o.Logger = logger
	})

	return &app{cfg: cfg, assistant: a, logger: logger, close: closeSessions}, nil
}

func openSessions(cfg *config.Config, logger logging.Logger) (core.SessionStore, func() error, error) {
	if cfg.Session.Driver == "memory" {
		return session.NewInMemoryStore(), func() error { return nil }, nil
	}
	s, err := session.NewSQLiteStore(cfg.Session.Path, func(o *session.SQLiteOptions) {
		o.Logger = logger
	})
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// newModel builds the configured provider model behind a rate limiter and
// circuit breaker. API keys come from OPENAI_API_KEY / ANTHROPIC_API_KEY.
func newModel(cfg *config.Config, logger logging.Logger) (model.Model, error) {
	var inner model.Model
	switch cfg.Model.Provider {
	case "openai":
		inner = openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = cfg.Model.Name
			o.Temperature = cfg.Model.Temperature
			o.MaxCompletionTokens = cfg.Model.MaxTokens
		})
	case "anthropic":
		inner = anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(cfg.Model.Name)
			o.Temperature = cfg.Model.Temperature
			o.MaxTokens = cfg.Model.MaxTokens
		})
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}

	return guard.New(inner, func(o *guard.Options) {
		o.RequestsPerMinute = cfg.Guard.RequestsPerMinute
		o.Burst = cfg.Guard.Burst
		o.MaxFailures = cfg.Guard.MaxFailures
		o.OpenTimeout = cfg.Guard.OpenTimeout
		o.Logger = logger
	}), nil
}
