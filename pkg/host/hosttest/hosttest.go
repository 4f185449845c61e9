// Package hosttest provides a simulated notification environment for tests.
//
// Native occurrences (display, dismissal, permission answers) never happen
// inside the call that caused them: they are queued and delivered by Flush,
// or injected directly with Handle.Fire and ResolvePermission.
package hosttest

import (
	"errors"
	"sync"

	"github.com/go-drift/notification/pkg/host"
)

// ErrCreateFailed is returned by Create when FailCreate is set.
var ErrCreateFailed = errors.New("hosttest: create failed")

// Environment is an in-memory host.Environment.
type Environment struct {
	mu         sync.Mutex
	supported  bool
	permission string
	failCreate bool
	pending    []func(string)
	handles    []*Handle
	queue      []occurrence
	calls      []string
}

type occurrence struct {
	handle *Handle
	event  string
}

// New returns a supporting environment whose permission is "default".
func New() *Environment {
	return &Environment{supported: true, permission: host.PermissionDefault}
}

// Unsupported returns an environment without notification support.
func Unsupported() *Environment {
	return &Environment{permission: host.PermissionDefault}
}

// Install creates an environment, installs a bridge for it and returns both.
func Install() (*Environment, *host.Bridge) {
	env := New()
	return env, host.Install(env)
}

// SetSupported toggles the capability flag.
func (e *Environment) SetSupported(supported bool) {
	e.mu.Lock()
	e.supported = supported
	e.mu.Unlock()
}

// SetPermission sets the raw permission value, which may be any string.
func (e *Environment) SetPermission(permission string) {
	e.mu.Lock()
	e.permission = permission
	e.mu.Unlock()
}

// FailCreate makes subsequent Create calls fail.
func (e *Environment) FailCreate(fail bool) {
	e.mu.Lock()
	e.failCreate = fail
	e.mu.Unlock()
}

// Supported implements host.Environment.
func (e *Environment) Supported() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "supported")
	return e.supported
}

// Permission implements host.Environment.
func (e *Environment) Permission() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "permission")
	return e.permission
}

// RequestPermission implements host.Environment. The prompt stays pending
// until ResolvePermission.
func (e *Environment) RequestPermission(done func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "requestPermission")
	e.pending = append(e.pending, done)
}

// PendingPrompts returns the number of unanswered permission prompts.
func (e *Environment) PendingPrompts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// ResolvePermission answers every pending prompt with permission and stores
// it as the current value.
func (e *Environment) ResolvePermission(permission string) {
	e.mu.Lock()
	e.permission = permission
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, done := range pending {
		done(permission)
	}
}

// Create implements host.Environment. Display is queued as a show
// occurrence when permission is granted and as an error occurrence otherwise.
func (e *Environment) Create(title string, opts host.Options) (host.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "create")
	if e.failCreate {
		return nil, ErrCreateFailed
	}

	h := &Handle{
		env:       e,
		title:     title,
		options:   opts,
		listeners: make(map[string][]func()),
	}
	e.handles = append(e.handles, h)
	if e.permission == host.PermissionGranted {
		e.queue = append(e.queue, occurrence{handle: h, event: host.EventShow})
	} else {
		e.queue = append(e.queue, occurrence{handle: h, event: host.EventError})
	}
	return h, nil
}

// Flush delivers every queued occurrence in order, including ones queued
// while flushing.
func (e *Environment) Flush() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		next.handle.Fire(next.event)
	}
}

// Handles returns every handle created so far.
func (e *Environment) Handles() []*Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Handle(nil), e.handles...)
}

// Last returns the most recently created handle, or nil.
func (e *Environment) Last() *Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.handles) == 0 {
		return nil
	}
	return e.handles[len(e.handles)-1]
}

// Calls returns the environment calls in order, with handle calls prefixed
// by the method name ("addEventListener:click", "get:title", "close").
func (e *Environment) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// CountCalls returns how many recorded calls equal name.
func (e *Environment) CountCalls(name string) int {
	n := 0
	for _, c := range e.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (e *Environment) record(call string) {
	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.mu.Unlock()
}

func (e *Environment) enqueue(h *Handle, event string) {
	e.mu.Lock()
	e.queue = append(e.queue, occurrence{handle: h, event: event})
	e.mu.Unlock()
}

// Handle is a simulated native notification.
type Handle struct {
	env       *Environment
	mu        sync.Mutex
	title     string
	options   host.Options
	listeners map[string][]func()
	closed    bool
}

// Title returns the title the handle was created with.
func (h *Handle) Title() string {
	return h.title
}

// Options returns the options the handle was created with.
func (h *Handle) Options() host.Options {
	return h.options
}

// Get implements host.Handle.
func (h *Handle) Get(property string) any {
	h.env.record("get:" + property)
	return h.options.Property(h.title, property)
}

// AddEventListener implements host.Handle.
func (h *Handle) AddEventListener(event string, listener func()) {
	h.env.record("addEventListener:" + event)
	h.mu.Lock()
	h.listeners[event] = append(h.listeners[event], listener)
	h.mu.Unlock()
}

// ListenerCount returns the number of native listeners for event.
func (h *Handle) ListenerCount(event string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[event])
}

// Close implements host.Handle. The first call queues a close occurrence.
func (h *Handle) Close() {
	h.env.record("close")
	h.mu.Lock()
	already := h.closed
	h.closed = true
	h.mu.Unlock()
	if !already {
		h.env.enqueue(h, host.EventClose)
	}
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Fire simulates a native occurrence, invoking the listeners for event.
func (h *Handle) Fire(event string) {
	h.mu.Lock()
	listeners := append([]func(){}, h.listeners[event]...)
	h.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}
