// Package guard decorates a model.Model with client-side rate limiting and a
// circuit breaker so a flaky or throttled provider fails fast instead of
// stalling every agent turn.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/model"
)

// Default guard settings.
const (
	defaultMaxFailures uint32 = 5
	defaultOpenTimeout        = 30 * time.Second
	defaultInterval           = 60 * time.Second
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("model circuit open")

// Options configure a guarded model.
type Options struct {
	// RequestsPerMinute caps outgoing calls. Zero disables rate limiting.
	RequestsPerMinute float64
	// Burst is the limiter bucket size (minimum 1).
	Burst int
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a half-open trial request.
	OpenTimeout time.Duration
	// Interval clears failure counts while closed.
	Interval time.Duration
	Logger   logging.Logger
}

// Model wraps another model.Model. Generate drains the inner response stream
// inside the breaker so a failed stream counts as one failure, then replays
// the collected responses to the caller.
type Model struct {
	inner   model.Model
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]model.Response]
	logger  logging.Logger
}

// New wraps inner.
func New(inner model.Model, optFns ...func(o *Options)) *Model {
	opts := Options{
		MaxFailures: defaultMaxFailures,
		OpenTimeout: defaultOpenTimeout,
		Interval:    defaultInterval,
		Burst:       1,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}

	g := &Model{inner: inner, logger: opts.Logger}
	if opts.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerMinute/60), opts.Burst)
	}

	name := inner.Info().Provider + ":" + inner.Info().Name
	maxFailures := opts.MaxFailures
	g.breaker = gobreaker.NewCircuitBreaker[[]model.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    opts.Interval,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("guard.breaker.state", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Cancellation is the caller's doing, not the provider's.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return g
}

// Generate implements model.Model.
func (g *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				errCh <- fmt.Errorf("model rate limit: %w", err)
				return
			}
		}

		responses, err := g.breaker.Execute(func() ([]model.Response, error) {
			return collect(ctx, g.inner, req)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				errCh <- fmt.Errorf("%w: %s: %w", ErrCircuitOpen, g.inner.Info().Name, err)
				return
			}
			errCh <- err
			return
		}
		for _, r := range responses {
			select {
			case out <- r:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()
	return out, errCh
}

// collect drains one inner Generate call.
func collect(ctx context.Context, m model.Model, req model.Request) ([]model.Response, error) {
	respCh, errCh := m.Generate(ctx, req)
	var (
		out    []model.Response
		genErr error
	)
	for respCh != nil || errCh != nil {
		select {
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			out = append(out, r)
		case e, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if e != nil && genErr == nil {
				genErr = e
			}
		}
	}
	if genErr != nil {
		return nil, genErr
	}
	return out, nil
}

// Info implements model.Model.
func (g *Model) Info() model.Info { return g.inner.Info() }

// State reports the breaker state.
func (g *Model) State() gobreaker.State { return g.breaker.State() }

var _ model.Model = (*Model)(nil)
