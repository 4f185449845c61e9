package desktop

import (
	"sync"

	"github.com/go-drift/notification/pkg/host"
)

// Handle is one desktop notification.
type Handle struct {
	env      *Environment
	title    string
	options  host.Options
	nativeID uint32

	mu        sync.Mutex
	listeners map[string][]func()
	pending   map[string]bool
	closed    bool
}

func newHandle(env *Environment, title string, opts host.Options) *Handle {
	return &Handle{
		env:       env,
		title:     title,
		options:   opts,
		listeners: make(map[string][]func()),
		pending:   make(map[string]bool),
	}
}

// Get implements host.Handle.
func (h *Handle) Get(property string) any {
	return h.options.Property(h.title, property)
}

// AddEventListener implements host.Handle. A show or error outcome that
// happened before any listener for it existed is delivered to the first one.
func (h *Handle) AddEventListener(event string, listener func()) {
	h.mu.Lock()
	h.listeners[event] = append(h.listeners[event], listener)
	deliver := h.pending[event]
	delete(h.pending, event)
	h.mu.Unlock()

	if deliver {
		go listener()
	}
}

// Close implements host.Handle.
func (h *Handle) Close() {
	if !h.markClosed() {
		return
	}
	h.env.dismiss(h)
}

// markClosed flags the handle closed and reports whether it was open.
func (h *Handle) markClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.closed = true
	return true
}

func (h *Handle) fire(event string) {
	h.mu.Lock()
	listeners := append([]func(){}, h.listeners[event]...)
	if len(listeners) == 0 && (event == host.EventShow || event == host.EventError) {
		h.pending[event] = true
	}
	h.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}
