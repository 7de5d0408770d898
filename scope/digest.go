package scope

import (
	"fmt"
	"log/slog"
)

// Digest evaluates watchers until none of them change, running queued
// async tasks before each pass and post-digest callbacks once it settles.
//
// Digest fails with [ErrInProgress] if s is already in a phase, and with
// [ErrDigestTTL] if watchers are still dirty, or async tasks still
// pending, after ttl extra passes. An error from a watch expression aborts
// the digest and is returned as is. The phase is cleared on every return.
func (s *Scope) Digest() error {
	if err := s.beginPhase(PhaseDigest); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			s.clearPhase()
			panic(r)
		}
	}()

	ttl := s.ttl
	s.lastDirty = nil

	for pass := 1; ; pass++ {
		s.drainAsync()

		dirty, err := s.digestOnce()
		if err != nil {
			s.clearPhase()
			s.logger.Debug("digest aborted", slog.Int("pass", pass), slog.Any("error", err))

			return err
		}

		s.logger.Trace("digest pass",
			slog.Int("pass", pass),
			slog.Bool("dirty", dirty),
			slog.Int("async", len(s.asyncQueue)),
		)

		if !dirty && len(s.asyncQueue) == 0 {
			break
		}

		if ttl == 0 {
			s.clearPhase()

			err := ErrDigestTTL.With(
				slog.Int("ttl", s.ttl),
				slog.Int("watchers", len(s.watchers)),
			)
			s.logger.Warn("digest did not settle", slog.Any("error", err))

			return err
		}

		ttl--
	}

	s.clearPhase()
	s.drainPostDigest()

	return nil
}

// digestOnce evaluates each watcher once in registration order and reports
// whether any of them changed.
func (s *Scope) digestOnce() (bool, error) {
	defer func() { s.cursor = -1 }()

	dirty := false

	// Watchers are stored newest first, so scanning from the back visits
	// them in registration order. Watch and unwatch adjust s.cursor when
	// they shift entries during the scan.
	for s.cursor = len(s.watchers) - 1; s.cursor >= 0; s.cursor-- {
		w := s.watchers[s.cursor]

		value, err := w.fn.Eval(s, nil)
		if err != nil {
			return dirty, err
		}

		if w.equal(value) {
			if s.shortCircuit && w == s.lastDirty {
				break
			}

			continue
		}

		s.lastDirty = w
		dirty = true

		old := w.last
		if _, ok := old.(unset); ok {
			old = value
		}

		if w.deep {
			w.last = deepCopy(value)
		} else {
			w.last = value
		}

		w.listener(value, old, s)
	}

	return dirty, nil
}

func (s *Scope) drainAsync() {
	for len(s.asyncQueue) > 0 {
		task := s.asyncQueue[0]
		s.asyncQueue[0] = asyncTask{}
		s.asyncQueue = s.asyncQueue[1:]

		s.isolate("async", func() error {
			_, err := task.scope.Eval(task.fn, nil)

			return err
		})
	}
}

func (s *Scope) drainPostDigest() {
	for len(s.postDigest) > 0 {
		fn := s.postDigest[0]
		s.postDigest[0] = nil
		s.postDigest = s.postDigest[1:]

		s.isolate("postDigest", func() error {
			fn()

			return nil
		})
	}
}

// isolate runs fn and passes any error or panic to the exception handler.
func (s *Scope) isolate(queue string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.handler(ErrTask.Detail(fmt.Sprint(r)).With(slog.String("queue", queue)))
		}
	}()

	if err := fn(); err != nil {
		s.handler(ErrTask.Wrap(err).With(slog.String("queue", queue)))
	}
}
