package run

import (
	"context"
	"errors"
	"time"

	"github.com/coder/retry"
	"go.uber.org/zap"

	"github.com/gsarma/runbox/internal/code"
)

// Request is everything a run needs, captured when the run starts. Later
// edits to the editor state never reach an in-flight run.
type Request struct {
	Language     code.Profile
	Source       string
	Inputs       code.InputSet
	InputEnabled bool
	// Stdin overrides the composed inputs when set.
	Stdin *string
}

// Snapshot returns a copy that shares no mutable state with r.
func (r Request) Snapshot() Request {
	out := r
	out.Inputs = r.Inputs.Clone()
	if r.Stdin != nil {
		s := *r.Stdin
		out.Stdin = &s
	}
	return out
}

func (r Request) submission() code.SubmissionRequest {
	stdin := code.Compose(r.Inputs, r.InputEnabled)
	if r.Stdin != nil {
		stdin = *r.Stdin
	}
	return code.SubmissionRequest{
		LanguageID: r.Language.ID,
		SourceCode: r.Source,
		Stdin:      stdin,
	}
}

// Observer receives progress of a single run. OnResult is called exactly once.
type Observer interface {
	OnStatusChange(status string)
	OnResult(res Result)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Status func(string)
	Result func(Result)
}

func (f ObserverFuncs) OnStatusChange(status string) {
	if f.Status != nil {
		f.Status(status)
	}
}

func (f ObserverFuncs) OnResult(res Result) {
	if f.Result != nil {
		f.Result(res)
	}
}

// Runner executes one run to completion.
type Runner interface {
	Run(ctx context.Context, req Request, obs Observer) Result
}

// Config is the polling and retry policy.
type Config struct {
	PollInterval time.Duration
	MaxWait      time.Duration
	// TransportRetries is how many extra attempts a submit or fetch gets after
	// a transport failure. Zero means single attempt.
	TransportRetries int
	RetryFloor       time.Duration
	RetryCeil        time.Duration
}

// DefaultConfig polls once a second for up to two minutes.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		MaxWait:      2 * time.Minute,
		RetryFloor:   250 * time.Millisecond,
		RetryCeil:    5 * time.Second,
	}
}

// WaitFunc suspends the run for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWait replaces the timed wait between polls.
func WithWait(w WaitFunc) Option {
	return func(o *Orchestrator) {
		o.wait = w
	}
}

// WithClock replaces the clock used for the poll deadline.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator drives submit, poll and result evaluation against a
// SubmissionClient. It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	client code.SubmissionClient
	cfg    Config
	logger *zap.Logger
	wait   WaitFunc
	now    func() time.Time
}

var _ Runner = (*Orchestrator)(nil)

// New creates an Orchestrator. Zero fields in cfg take DefaultConfig values.
func New(client code.SubmissionClient, cfg Config, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	if cfg.RetryFloor <= 0 {
		cfg.RetryFloor = def.RetryFloor
	}
	if cfg.RetryCeil < cfg.RetryFloor {
		cfg.RetryCeil = def.RetryCeil
	}
	o := &Orchestrator{
		client: client,
		cfg:    cfg,
		logger: zap.NewNop(),
		wait:   sleep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes req and returns its result. obs may be nil. Every error is
// folded into the result; Run never returns without one.
func (o *Orchestrator) Run(ctx context.Context, req Request, obs Observer) Result {
	if obs == nil {
		obs = ObserverFuncs{}
	}
	m := &machine{
		o:       o,
		obs:     obs,
		state:   StateIdle,
		started: o.now(),
		logger:  o.logger.With(zap.Int("languageID", req.Language.ID)),
	}
	res := m.run(ctx, req.Snapshot())
	res.Polls = m.polls
	res.Duration = o.now().Sub(m.started)

	m.logger.Info("run finished",
		zap.Stringer("state", res.State),
		zap.String("outcome", string(res.Outcome)),
		zap.String("errorClass", string(res.ErrorClass)),
		zap.Int("polls", res.Polls),
		zap.Duration("duration", res.Duration))

	if res.State == StateFailed {
		obs.OnStatusChange(StatusFailed)
	} else {
		obs.OnStatusChange(res.Status.String())
	}
	obs.OnResult(res)
	return res
}

// machine is the per-run state.
type machine struct {
	o       *Orchestrator
	obs     Observer
	state   State
	started time.Time
	polls   int
	handle  code.Handle
	logger  *zap.Logger
}

func (m *machine) enter(s State, status string) {
	m.logger.Debug("run state", zap.Stringer("from", m.state), zap.Stringer("to", s))
	m.state = s
	if status != "" {
		m.obs.OnStatusChange(status)
	}
}

func (m *machine) run(parent context.Context, req Request) Result {
	// Every suspension point, including a slow HTTP round trip, is bounded
	// by MaxWait.
	ctx, cancel := context.WithTimeout(parent, m.o.cfg.MaxWait)
	defer cancel()

	m.enter(StateSubmitting, StatusCompiling)
	err := m.o.attempt(ctx, opSubmit, func() error {
		h, err := m.o.client.Submit(ctx, req.submission())
		m.handle = h
		return err
	})
	if err != nil {
		return m.fail(parent, ctx, err)
	}
	m.logger = m.logger.With(zap.String("token", m.handle.Token))

	m.enter(StatePolling, StatusRunning)
	deadline := m.started.Add(m.o.cfg.MaxWait)
	for {
		if err := m.o.wait(ctx, m.o.cfg.PollInterval); err != nil {
			return m.fail(parent, ctx, err)
		}

		var report *code.StatusReport
		err := m.o.attempt(ctx, opFetch, func() error {
			r, err := m.o.client.FetchStatus(ctx, m.handle)
			report = r
			return err
		})
		m.polls++
		if err != nil {
			return m.fail(parent, ctx, err)
		}
		if report.Status.Terminal() {
			return m.evaluate(report)
		}

		if now := m.o.now(); !now.Before(deadline) {
			return m.fail(parent, ctx, &TimeoutError{Elapsed: now.Sub(m.started), Limit: m.o.cfg.MaxWait})
		}
	}
}

// fail reports err. An error caused by the run's own deadline rather than
// the caller's context becomes a TimeoutError.
func (m *machine) fail(parent, ctx context.Context, err error) Result {
	if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var te *TimeoutError
		if !errors.As(err, &te) {
			err = &TimeoutError{Elapsed: m.o.now().Sub(m.started), Limit: m.o.cfg.MaxWait}
		}
	}
	m.enter(StateFailed, "")
	res := errorResult(err, parent.Err())
	res.Token = m.handle.Token
	m.logger.Warn("run failed", zap.String("errorClass", string(res.ErrorClass)), zap.Error(err))
	return res
}

func (m *machine) evaluate(report *code.StatusReport) Result {
	status := report.Status
	res := Result{
		Status: &status,
		Token:  m.handle.Token,
		Time:   report.Time,
		Memory: report.Memory,
	}

	if status.Accepted() {
		out, _, err := code.Decode("stdout", report.Stdout)
		if err != nil {
			failed := errorResult(err, nil)
			failed.Status, failed.Token = res.Status, res.Token
			m.enter(StateFailed, "")
			m.logger.Warn("undecodable stdout", zap.Error(err))
			return failed
		}
		if out == "" {
			out = NoOutputMessage
		}
		m.enter(StateCompleted, "")
		res.State = StateCompleted
		res.Outcome = OutcomeSuccess
		res.Output = out
		return res
	}

	m.enter(StateCompleted, "")
	res.State = StateCompleted
	res.Outcome = OutcomeFailure
	res.Output = m.diagnostic(report)
	return res
}

// diagnostic picks the first non-empty, decodable diagnostic field and falls
// back to the status description.
func (m *machine) diagnostic(report *code.StatusReport) string {
	fields := []struct {
		name string
		w    *code.WireText
	}{
		{"compile_output", report.CompileOutput},
		{"stderr", report.Stderr},
		{"message", report.Message},
	}
	for _, f := range fields {
		text, ok, err := code.Decode(f.name, f.w)
		if err != nil {
			m.logger.Warn("undecodable diagnostic field", zap.String("field", f.name), zap.Error(err))
			continue
		}
		if ok && text != "" {
			return text
		}
	}
	return report.Status.String()
}

const (
	opSubmit = "submit"
	opFetch  = "fetch status"
)

// retryable reports whether op may be repeated after err. A submit that got
// an HTTP answer may already have created a submission, so only submits that
// never reached the service are repeated.
func retryable(op string, err error) bool {
	var te *code.TransportError
	if !errors.As(err, &te) {
		return false
	}
	return op != opSubmit || te.StatusCode == 0
}

// attempt calls fn, retrying transport failures up to cfg.TransportRetries
// times with exponential backoff.
func (o *Orchestrator) attempt(ctx context.Context, op string, fn func() error) error {
	var r *retry.Retrier
	for n := 0; ; n++ {
		err := fn()
		if err == nil || n >= o.cfg.TransportRetries || !retryable(op, err) || ctx.Err() != nil {
			return err
		}
		if r == nil {
			r = retry.New(o.cfg.RetryFloor, o.cfg.RetryCeil)
		}
		o.logger.Warn("transport error, retrying", zap.String("op", op), zap.Int("attempt", n+1), zap.Error(err))
		if !r.Wait(ctx) {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
