package notification

import (
	"sync"

	"github.com/go-drift/notification/pkg/errors"
	"github.com/go-drift/notification/pkg/platform"
)

// EventKind identifies a lifecycle event.
type EventKind int

const (
	// EventShow fires when the notification is displayed.
	EventShow EventKind = iota
	// EventClick fires when the user clicks the notification.
	EventClick
	// EventClose fires when the notification is dismissed.
	EventClose
	// EventError fires when the notification cannot be displayed.
	EventError

	eventKindCount
)

var eventKindNames = [eventKindCount]string{"show", "click", "close", "error"}

func (k EventKind) String() string {
	if k < 0 || k >= eventKindCount {
		return "unknown"
	}
	return eventKindNames[k]
}

func parseEventKind(name string) (EventKind, bool) {
	for k, n := range eventKindNames {
		if n == name {
			return EventKind(k), true
		}
	}
	return 0, false
}

// Event is the payload shared by all lifecycle events.
type Event struct {
	Kind         EventKind
	Notification *Notification
}

// ShowEvent is delivered when the notification is displayed.
type ShowEvent struct{ Event }

// ClickEvent is delivered when the user clicks the notification.
type ClickEvent struct{ Event }

// CloseEvent is delivered when the notification is dismissed.
type CloseEvent struct{ Event }

// ErrorEvent is delivered when the notification cannot be displayed, most
// often because permission was not granted.
type ErrorEvent struct{ Event }

type (
	// ShowHandler handles ShowEvent.
	ShowHandler func(ShowEvent)
	// ClickHandler handles ClickEvent.
	ClickHandler func(ClickEvent)
	// CloseHandler handles CloseEvent.
	CloseHandler func(CloseEvent)
	// ErrorHandler handles ErrorEvent.
	ErrorHandler func(ErrorEvent)
)

type lifecycleMessage struct {
	ID   int64
	Kind EventKind
}

func parseLifecycleMessage(data any) (lifecycleMessage, error) {
	m, ok := platform.AsMap(data)
	if !ok {
		return lifecycleMessage{}, &errors.ParseError{Channel: eventsChannelName, DataType: "lifecycleMessage", Got: data}
	}
	id, ok := platform.AsInt64(m["id"])
	if !ok {
		return lifecycleMessage{}, &errors.ParseError{Channel: eventsChannelName, DataType: "lifecycleMessage.id", Got: m["id"]}
	}
	kind, ok := parseEventKind(platform.AsString(m["type"]))
	if !ok {
		return lifecycleMessage{}, &errors.ParseError{Channel: eventsChannelName, DataType: "lifecycleMessage.type", Got: m["type"]}
	}
	return lifecycleMessage{ID: id, Kind: kind}, nil
}

// handlers is an ordered handler list. Dispatch works on a snapshot, so a
// handler added or removed during dispatch only affects later events.
type handlers[E any] struct {
	mu   sync.Mutex
	list []*handlerEntry[E]
}

type handlerEntry[E any] struct {
	fn func(E)
}

func (h *handlers[E]) add(fn func(E)) (remove func()) {
	entry := &handlerEntry[E]{fn: fn}
	h.mu.Lock()
	h.list = append(h.list, entry)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, e := range h.list {
				if e == entry {
					h.list = append(h.list[:i:i], h.list[i+1:]...)
					return
				}
			}
		})
	}
}

func (h *handlers[E]) dispatch(event E) {
	h.mu.Lock()
	snapshot := append([]*handlerEntry[E](nil), h.list...)
	h.mu.Unlock()
	for _, e := range snapshot {
		e.fn(event)
	}
}

func (h *handlers[E]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.list)
}

// OnShow registers a handler for the show event and returns a function that
// removes it.
func (n *Notification) OnShow(handler ShowHandler) (remove func()) {
	if handler == nil {
		return func() {}
	}
	remove = n.show.add(handler)
	n.wire()
	return remove
}

// OnClick registers a handler for the click event.
func (n *Notification) OnClick(handler ClickHandler) (remove func()) {
	if handler == nil {
		return func() {}
	}
	remove = n.click.add(handler)
	n.wire()
	return remove
}

// OnClose registers a handler for the close event.
func (n *Notification) OnClose(handler CloseHandler) (remove func()) {
	if handler == nil {
		return func() {}
	}
	remove = n.close.add(handler)
	n.wire()
	return remove
}

// OnError registers a handler for the error event.
func (n *Notification) OnError(handler ErrorHandler) (remove func()) {
	if handler == nil {
		return func() {}
	}
	remove = n.failures.add(handler)
	n.wire()
	return remove
}

// AddShowHandler registers a show handler.
//
// Deprecated: Use OnShow. Both register into the same list.
func (n *Notification) AddShowHandler(handler ShowHandler) (remove func()) {
	return n.OnShow(handler)
}

// AddCloseHandler registers a close handler.
//
// Deprecated: Use OnClose. Both register into the same list.
func (n *Notification) AddCloseHandler(handler CloseHandler) (remove func()) {
	return n.OnClose(handler)
}

// AddClickHandler is an alias of OnClick.
func (n *Notification) AddClickHandler(handler ClickHandler) (remove func()) {
	return n.OnClick(handler)
}

// AddErrorHandler is an alias of OnError.
func (n *Notification) AddErrorHandler(handler ErrorHandler) (remove func()) {
	return n.OnError(handler)
}

// wire attaches one native listener per event kind the first time any
// handler is registered. A failed attempt is reported and retried by the
// next registration; kinds already attached are not attached twice.
func (n *Notification) wire() {
	n.wireMu.Lock()
	defer n.wireMu.Unlock()
	if n.wired {
		return
	}

	if n.stop == nil {
		id := n.id
		n.stop = svc.events.Listen(func(msg lifecycleMessage) {
			if msg.ID == id {
				n.dispatch(msg.Kind)
			}
		})
	}

	for kind := EventKind(0); kind < eventKindCount; kind++ {
		if n.attached[kind] {
			continue
		}
		_, err := svc.channel.Invoke("addEventListener", map[string]any{"id": n.id, "event": kind.String()})
		if err != nil {
			n.stop()
			n.stop = nil
			errors.Report(&errors.BridgeError{
				Op:      "notification.addEventListener",
				Kind:    errors.KindPlatform,
				Channel: methodChannelName,
				Err:     err,
			})
			return
		}
		n.attached[kind] = true
	}
	n.wired = true
}

func (n *Notification) dispatch(kind EventKind) {
	base := Event{Kind: kind, Notification: n}
	switch kind {
	case EventShow:
		n.show.dispatch(ShowEvent{base})
	case EventClick:
		n.click.dispatch(ClickEvent{base})
	case EventClose:
		n.close.dispatch(CloseEvent{base})
		n.release()
	case EventError:
		n.failures.dispatch(ErrorEvent{base})
	}
}

// release drops the event subscription once the notification has closed.
func (n *Notification) release() {
	n.wireMu.Lock()
	stop := n.stop
	n.stop = nil
	n.wireMu.Unlock()
	if stop != nil {
		stop()
	}
}

// isWired reports whether native listeners are attached.
func (n *Notification) isWired() bool {
	n.wireMu.Lock()
	defer n.wireMu.Unlock()
	return n.wired
}
