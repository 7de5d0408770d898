package scope

import "log/slog"

// Phase is the reentrancy state of a scope.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseDigest
	PhaseApply
)

func (p Phase) String() string {
	switch p {
	case PhaseDigest:
		return "$digest"
	case PhaseApply:
		return "$apply"
	default:
		return ""
	}
}

// Phase returns the phase s is currently in.
func (s *Scope) Phase() Phase { return s.phase }

func (s *Scope) beginPhase(p Phase) error {
	if s.phase != PhaseNone {
		return ErrInProgress.With(
			slog.String("phase", s.phase.String()),
			slog.String("requested", p.String()),
		)
	}

	s.phase = p

	return nil
}

func (s *Scope) clearPhase() { s.phase = PhaseNone }
