package scope

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ardnew/bind/lang"
	"github.com/ardnew/bind/log"
)

// Scope is a data container with a set of watchers and the queues that
// drive its digest loop. It implements [lang.Object], so expressions read
// and assign its properties directly.
type Scope struct {
	id   uuid.UUID
	data lang.Map

	watchers  []*watcher
	cursor    int // index of the watcher being scanned, -1 outside a pass
	lastDirty *watcher

	asyncQueue []asyncTask
	postDigest []func()
	phase      Phase

	ttl          int
	shortCircuit bool
	logger       log.Logger
	handler      ExceptionHandler
	host         Host
}

type asyncTask struct {
	scope *Scope
	fn    lang.Evaluator
}

// New returns an empty scope in [PhaseNone]. Without [WithHost], the scope
// schedules deferred digests on a private [Loop] available from Host.
func New(opts ...Option) *Scope {
	s := &Scope{
		id:           uuid.New(),
		data:         lang.Map{},
		cursor:       -1,
		ttl:          DefaultTTL,
		shortCircuit: true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.handler == nil {
		s.handler = s.logError
	}

	if s.host == nil {
		s.host = NewLoop()
	}

	s.logger = s.logger.With(slog.String("scope", s.id.String()))

	return s
}

// ID returns the unique identifier of s.
func (s *Scope) ID() uuid.UUID { return s.id }

// Host returns the host s schedules deferred digests on.
func (s *Scope) Host() Host { return s.host }

// Get returns the property stored under key.
func (s *Scope) Get(key string) (any, bool) { return s.data.Get(key) }

// Set stores value under key.
func (s *Scope) Set(key string, value any) { s.data.Set(key, value) }

// Keys returns the property names of s in sorted order.
func (s *Scope) Keys() []string { return s.data.Keys() }

// Value returns the property stored under key, or [lang.Undefined].
func (s *Scope) Value(key string) any {
	if v, ok := s.data.Get(key); ok {
		return v
	}

	return lang.Undefined
}

// Data returns the property map of s. Changes to it are visible to s.
func (s *Scope) Data() lang.Map { return s.data }

// Eval evaluates fn against s and locals without changing the phase. A nil
// fn yields [lang.Undefined].
func (s *Scope) Eval(fn lang.Evaluator, locals any) (any, error) {
	if fn == nil {
		return lang.Undefined, nil
	}

	return fn.Eval(s, locals)
}

// EvalExpr parses src and evaluates it like Eval.
func (s *Scope) EvalExpr(src string, locals any) (any, error) {
	fn, err := lang.Parse(src, lang.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	return s.Eval(fn, locals)
}

// Apply evaluates fn in [PhaseApply] and then digests s, so changes made
// by fn are seen by watchers. The digest runs even when fn fails; the
// error from fn takes precedence over the digest error.
func (s *Scope) Apply(fn lang.Evaluator) (any, error) {
	if err := s.beginPhase(PhaseApply); err != nil {
		return nil, err
	}

	v, evalErr := s.Eval(fn, nil)

	s.clearPhase()

	digestErr := s.Digest()

	if evalErr != nil {
		s.logger.Debug("apply failed", slog.Any("error", evalErr))

		return nil, evalErr
	}

	return v, digestErr
}

// EvalAsync queues fn to run at the start of the next digest pass. If the
// queue was empty and s is not in a phase, a digest is deferred to the
// host so the task runs even if nobody else digests s.
func (s *Scope) EvalAsync(fn lang.Evaluator) {
	if len(s.asyncQueue) == 0 && s.phase == PhaseNone {
		s.host.Defer(func() {
			if len(s.asyncQueue) == 0 {
				return
			}

			if err := s.Digest(); err != nil {
				s.handler(err)
			}
		})
	}

	s.asyncQueue = append(s.asyncQueue, asyncTask{scope: s, fn: fn})
}

// PostDigest queues fn to run once after the next digest settles.
func (s *Scope) PostDigest(fn func()) {
	if fn == nil {
		return
	}

	s.postDigest = append(s.postDigest, fn)
}
