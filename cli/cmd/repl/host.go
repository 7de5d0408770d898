package repl

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// deferMsg carries a function deferred by the scope back to the event loop.
type deferMsg struct{ fn func() }

// host implements [scope.Host] on a running bubbletea program. Deferred
// functions are delivered as messages and run by Update on the event-loop
// goroutine, which owns the scope.
type host struct {
	mu      sync.Mutex
	program *tea.Program
	pending []func()
}

// Defer schedules fn as a message to the program. Functions deferred before
// the program is attached are held until attach.
func (h *host) Defer(fn func()) {
	if fn == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.program == nil {
		h.pending = append(h.pending, fn)

		return
	}

	// Send blocks until the event loop receives, and Defer is usually called
	// from inside Update on that same goroutine.
	go h.program.Send(deferMsg{fn})
}

func (h *host) attach(p *tea.Program) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.program = p

	for _, fn := range h.pending {
		go p.Send(deferMsg{fn})
	}

	h.pending = nil
}
