package notification

import (
	"sync"
	"sync/atomic"

	"github.com/go-drift/notification/pkg/errors"
	"github.com/go-drift/notification/pkg/platform"
)

// Channel names, mirrored by package host.
const (
	methodChannelName     = "drift/notification"
	eventsChannelName     = "drift/notification/events"
	permissionChannelName = "drift/notification/permission"
)

type service struct {
	channel     *platform.MethodChannel
	events      *platform.Stream[lifecycleMessage]
	permissions *platform.Stream[permissionMessage]
	nextRequest atomic.Int64
}

var svc = newService()

func newService() *service {
	return &service{
		channel:     platform.NewMethodChannel(methodChannelName),
		events:      platform.NewStream(platform.NewEventChannel(eventsChannelName), parseLifecycleMessage),
		permissions: platform.NewStream(platform.NewEventChannel(permissionChannelName), parsePermissionMessage),
	}
}

// IsSupported reports whether the host can display notifications. It is
// false when no host is installed.
func IsSupported() bool {
	if !platform.HasNativeBridge() {
		return false
	}
	result, err := svc.channel.Invoke("isSupported", nil)
	if err != nil {
		return false
	}
	m, ok := platform.AsMap(result)
	return ok && platform.AsBool(m["supported"])
}

// Notification wraps one native notification. Property accessors read the
// live native fields on every call.
type Notification struct {
	id int64

	wireMu   sync.Mutex
	attached [eventKindCount]bool
	wired    bool
	stop     func()

	show     handlers[ShowEvent]
	click    handlers[ClickEvent]
	close    handlers[CloseEvent]
	failures handlers[ErrorEvent]
}

// New creates and displays a notification. It returns ErrUnsupported when
// the host has no notification support, an *OptionsError when opts fail
// validation, or the host's error when construction fails.
//
// New does not check permission: without it the host suppresses the display
// and delivers an error event instead.
func New(title string, opts Options) (*Notification, error) {
	if !IsSupported() {
		return nil, ErrUnsupported
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result, err := svc.channel.Invoke("create", map[string]any{
		"title":   title,
		"options": opts,
	})
	if err != nil {
		return nil, err
	}
	m, _ := platform.AsMap(result)
	id, ok := platform.AsInt64(m["id"])
	if !ok {
		return nil, &errors.ParseError{
			Channel:  methodChannelName,
			DataType: "create.id",
			Got:      result,
		}
	}
	return &Notification{id: id}, nil
}

// CreateIfSupported is New for callers that only care whether a notification
// exists. It returns nil when the host lacks support; other failures are
// reported through errors.Report and also yield nil.
func CreateIfSupported(title string, opts Options) *Notification {
	n, err := New(title, opts)
	if err == nil {
		return n
	}
	if err != ErrUnsupported {
		kind := errors.KindPlatform
		if isOptionsError(err) {
			kind = errors.KindValidation
		}
		errors.Report(&errors.BridgeError{
			Op:      "notification.create",
			Kind:    kind,
			Channel: methodChannelName,
			Err:     err,
		})
	}
	return nil
}

// ID returns the host identifier of the notification.
func (n *Notification) ID() int64 {
	return n.id
}

// Title returns the notification title.
func (n *Notification) Title() string {
	return platform.AsString(n.property("title"))
}

// Dir returns the text direction.
func (n *Notification) Dir() Direction {
	return Direction(platform.AsString(n.property("dir")))
}

// Lang returns the language tag.
func (n *Notification) Lang() string {
	return platform.AsString(n.property("lang"))
}

// Body returns the body text.
func (n *Notification) Body() string {
	return platform.AsString(n.property("body"))
}

// Tag returns the tag.
func (n *Notification) Tag() string {
	return platform.AsString(n.property("tag"))
}

// Icon returns the icon reference.
func (n *Notification) Icon() string {
	return platform.AsString(n.property("icon"))
}

// Image returns the image reference.
func (n *Notification) Image() string {
	return platform.AsString(n.property("image"))
}

// Data returns the data payload in serialized form: strings as-is, other
// values as JSON, and "" when no payload was set.
func (n *Notification) Data() string {
	return platform.AsString(n.property("data"))
}

// RequireInteraction reports whether the notification stays until acted on.
func (n *Notification) RequireInteraction() bool {
	return platform.AsBool(n.property("requireInteraction"))
}

// Silent reports whether sounds and vibration are suppressed.
func (n *Notification) Silent() bool {
	return platform.AsBool(n.property("silent"))
}

func (n *Notification) property(name string) any {
	result, err := svc.channel.Invoke("getProperty", map[string]any{"id": n.id, "name": name})
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:      "notification.getProperty",
			Kind:    errors.KindPlatform,
			Channel: methodChannelName,
			Err:     err,
		})
		return nil
	}
	m, _ := platform.AsMap(result)
	return m["value"]
}

// Close dismisses the notification. Closing an already closed notification
// is a no-op.
func (n *Notification) Close() error {
	_, err := svc.channel.Invoke("close", map[string]any{"id": n.id})
	return err
}
