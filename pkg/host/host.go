// Package host adapts a native notification environment to the platform
// channel protocol. An Environment models the native notification object
// (constructor, permission API, per-instance fields, listeners and close);
// Bridge serves the notification channels on top of it and is installed with
// platform.SetNativeBridge.
package host

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-drift/notification/pkg/platform"
)

// Channel names served by Bridge.
const (
	MethodChannel     = "drift/notification"
	EventsChannel     = "drift/notification/events"
	PermissionChannel = "drift/notification/permission"
)

// Lifecycle event names accepted by Handle.AddEventListener.
const (
	EventShow  = "show"
	EventClick = "click"
	EventClose = "close"
	EventError = "error"
)

// Raw permission values.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	PermissionDefault = "default"
)

// Property names readable through Handle.Get.
const (
	PropTitle              = "title"
	PropDir                = "dir"
	PropLang               = "lang"
	PropBody               = "body"
	PropTag                = "tag"
	PropIcon               = "icon"
	PropImage              = "image"
	PropData               = "data"
	PropRequireInteraction = "requireInteraction"
	PropSilent             = "silent"
)

// Options is the options bundle handed to the native constructor.
type Options struct {
	Lang               string `json:"lang,omitempty"`
	Body               string `json:"body,omitempty"`
	Tag                string `json:"tag,omitempty"`
	Icon               string `json:"icon,omitempty"`
	Image              string `json:"image,omitempty"`
	Dir                string `json:"dir,omitempty"`
	RequireInteraction bool   `json:"requireInteraction,omitempty"`
	Silent             bool   `json:"silent,omitempty"`
	Data               any    `json:"data,omitempty"`
}

// Property returns the value the native object reports for name, applying
// the platform defaults for omitted options ("auto" direction).
func (o Options) Property(title, name string) any {
	switch name {
	case PropTitle:
		return title
	case PropDir:
		if o.Dir == "" {
			return "auto"
		}
		return o.Dir
	case PropLang:
		return o.Lang
	case PropBody:
		return o.Body
	case PropTag:
		return o.Tag
	case PropIcon:
		return o.Icon
	case PropImage:
		return o.Image
	case PropData:
		return o.Data
	case PropRequireInteraction:
		return o.RequireInteraction
	case PropSilent:
		return o.Silent
	default:
		return nil
	}
}

// Environment is the native notification capability of a host.
type Environment interface {
	// Supported reports whether the host can display notifications at all.
	Supported() bool
	// Permission returns the raw permission value.
	Permission() string
	// RequestPermission starts the consent prompt. done is called at most
	// once, from any goroutine, with the raw result.
	RequestPermission(done func(permission string))
	// Create constructs a native notification and starts displaying it.
	Create(title string, opts Options) (Handle, error)
}

// Handle is one native notification object.
type Handle interface {
	// Get reads a live property.
	Get(property string) any
	// AddEventListener attaches a listener for a lifecycle event name. The
	// listener may be called from any goroutine.
	AddEventListener(event string, listener func())
	// Close dismisses the notification. Closing twice is a no-op.
	Close()
}

// Bridge implements platform.NativeBridge on top of an Environment.
type Bridge struct {
	env Environment

	mu      sync.Mutex
	handles map[int64]*entry
	nextID  int64
	streams map[string]bool
}

// entry is a live handle. A handle with a close listener stays registered
// until its close event has been delivered.
type entry struct {
	handle  Handle
	watched bool
}

// NewBridge creates a bridge for env without installing it.
func NewBridge(env Environment) *Bridge {
	return &Bridge{
		env:     env,
		handles: make(map[int64]*entry),
		streams: make(map[string]bool),
	}
}

// Install creates a bridge for env and installs it as the platform bridge.
func Install(env Environment) *Bridge {
	b := NewBridge(env)
	platform.SetNativeBridge(b)
	return b
}

// Environment returns the wrapped environment.
func (b *Bridge) Environment() Environment {
	return b.env
}

// Live returns the number of handles the bridge still holds.
func (b *Bridge) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

type createArgs struct {
	Title   string  `json:"title"`
	Options Options `json:"options"`
}

type handleArgs struct {
	ID    int64  `json:"id"`
	Event string `json:"event,omitempty"`
	Name  string `json:"name,omitempty"`
}

type permissionArgs struct {
	RequestID int64 `json:"requestId"`
}

var codec = platform.JsonCodec{}

// InvokeMethod serves the drift/notification method channel.
func (b *Bridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	if channel != MethodChannel {
		return nil, platform.ErrChannelNotFound
	}

	var result any
	var err error
	switch method {
	case "isSupported":
		result = map[string]any{"supported": b.env.Supported()}
	case "permission":
		result = map[string]any{"permission": b.env.Permission()}
	case "requestPermission":
		err = b.requestPermission(args)
	case "create":
		result, err = b.create(args)
	case "addEventListener":
		err = b.addEventListener(args)
	case "getProperty":
		result, err = b.getProperty(args)
	case "close":
		err = b.close(args)
	default:
		return nil, platform.ErrMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	return codec.Encode(result)
}

// StartEventStream enables emission on an event channel.
func (b *Bridge) StartEventStream(channel string) error {
	if channel != EventsChannel && channel != PermissionChannel {
		return platform.ErrChannelNotFound
	}
	b.mu.Lock()
	b.streams[channel] = true
	b.mu.Unlock()
	return nil
}

// StopEventStream disables emission on an event channel.
func (b *Bridge) StopEventStream(channel string) error {
	b.mu.Lock()
	delete(b.streams, channel)
	b.mu.Unlock()
	return nil
}

// Shutdown ends the event streams the bridge is serving, telling their
// subscribers no more events will come. Pending permission requests on the
// Go side return instead of waiting for an answer. Streams subscribed to
// afterwards start again.
func (b *Bridge) Shutdown() {
	var ended []string
	b.mu.Lock()
	for _, channel := range []string{EventsChannel, PermissionChannel} {
		if b.streams[channel] {
			delete(b.streams, channel)
			ended = append(ended, channel)
		}
	}
	b.mu.Unlock()

	for _, channel := range ended {
		platform.HandleEventDone(channel)
	}
}

func (b *Bridge) requestPermission(args []byte) error {
	var req permissionArgs
	if err := codec.DecodeInto(args, &req); err != nil {
		return fmt.Errorf("%w: %v", platform.ErrInvalidArguments, err)
	}
	b.env.RequestPermission(func(permission string) {
		b.emit(PermissionChannel, map[string]any{
			"requestId":  req.RequestID,
			"permission": permission,
		})
	})
	return nil
}

func (b *Bridge) create(args []byte) (any, error) {
	var req createArgs
	if err := codec.DecodeInto(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrInvalidArguments, err)
	}
	h, err := b.env.Create(req.Title, req.Options)
	if err != nil {
		return nil, platform.NewChannelError("create_failed", err.Error())
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handles[id] = &entry{handle: h}
	b.mu.Unlock()

	return map[string]any{"id": id}, nil
}

func (b *Bridge) lookup(args []byte) (handleArgs, *entry, error) {
	var req handleArgs
	if err := codec.DecodeInto(args, &req); err != nil {
		return req, nil, fmt.Errorf("%w: %v", platform.ErrInvalidArguments, err)
	}
	b.mu.Lock()
	e := b.handles[req.ID]
	b.mu.Unlock()
	return req, e, nil
}

func (b *Bridge) addEventListener(args []byte) error {
	req, e, err := b.lookup(args)
	if err != nil {
		return err
	}
	if e == nil {
		return unknownHandle(req.ID)
	}
	switch req.Event {
	case EventShow, EventClick, EventError:
	case EventClose:
		b.mu.Lock()
		e.watched = true
		b.mu.Unlock()
	default:
		return fmt.Errorf("%w: event %q", platform.ErrInvalidArguments, req.Event)
	}

	id, event := req.ID, req.Event
	e.handle.AddEventListener(event, func() {
		b.emit(EventsChannel, map[string]any{"id": id, "type": event})
		if event == EventClose {
			// Queued behind the close event so its handlers can still read
			// the notification's fields.
			platform.DispatchOrRun(func() { b.release(id) })
		}
	})
	return nil
}

func (b *Bridge) getProperty(args []byte) (any, error) {
	req, e, err := b.lookup(args)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, unknownHandle(req.ID)
	}
	value := e.handle.Get(req.Name)
	if req.Name == PropData {
		value = serializeData(value)
	}
	return map[string]any{"value": value}, nil
}

func (b *Bridge) close(args []byte) error {
	req, e, err := b.lookup(args)
	if err != nil {
		return err
	}
	if e == nil {
		return nil
	}
	e.handle.Close()

	b.mu.Lock()
	watched := e.watched
	b.mu.Unlock()
	if !watched {
		b.release(req.ID)
	}
	return nil
}

func (b *Bridge) release(id int64) {
	b.mu.Lock()
	delete(b.handles, id)
	b.mu.Unlock()
}

// emit delivers an event through the platform dispatch loop, dropping it
// when nobody listens on the channel.
func (b *Bridge) emit(channel string, payload any) {
	b.mu.Lock()
	listening := b.streams[channel]
	b.mu.Unlock()
	if !listening {
		return
	}
	data, err := codec.Encode(payload)
	if err != nil {
		platform.HandleEventError(channel, "encode_failed", err.Error())
		return
	}
	platform.DispatchOrRun(func() {
		platform.HandleEvent(channel, data)
	})
}

func unknownHandle(id int64) error {
	return platform.NewChannelError("unknown_handle", fmt.Sprintf("no notification with id %d", id))
}

// serializeData renders the data payload the way a structured clone reads
// back through a string accessor.
func serializeData(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
