// Package desktop implements host.Environment on top of the operating
// system's notification service: the freedesktop notification server over
// D-Bus on Linux, toast notifications on Windows, and beeep elsewhere.
//
// Desktop platforms have no per-application consent prompt, so permission is
// kept in a PermissionStore and asked for through a Prompter.
package desktop

import (
	"errors"
	"image"
	"sync"

	drifterrors "github.com/go-drift/notification/pkg/errors"
	"github.com/go-drift/notification/pkg/host"
)

// ErrUnavailable is returned by Create when the backend cannot display
// notifications.
var ErrUnavailable = errors.New("desktop: notification service unavailable")

// Message is a notification as handed to a Backend.
type Message struct {
	AppName    string
	Title      string
	Body       string
	Icon       string
	Image      *ImageData
	ReplacesID uint32
	Silent     bool
	Persistent bool
}

// Signal kinds reported by backends.
const (
	SignalClick = host.EventClick
	SignalClose = host.EventClose
)

// Backend delivers messages to the operating system.
type Backend interface {
	// Available reports whether notifications can be displayed.
	Available() bool
	// Send displays msg and returns the service's identifier for it.
	Send(msg Message) (uint32, error)
	// Dismiss removes a displayed notification.
	Dismiss(id uint32) error
	// Subscribe registers the receiver of click and close signals. It
	// returns false when the backend cannot report them.
	Subscribe(sink func(id uint32, signal string)) bool
	// Close releases the backend's resources.
	Close() error
}

// Config configures an Environment. Zero fields take defaults: the system
// backend, an in-memory permission store and a terminal prompter.
type Config struct {
	AppName  string
	Backend  Backend
	Store    PermissionStore
	Prompter Prompter
}

// Environment is the desktop host.Environment.
type Environment struct {
	appName  string
	backend  Backend
	store    PermissionStore
	prompter Prompter
	signals  bool

	mu     sync.Mutex
	byID   map[uint32]*Handle
	byTag  map[string]uint32
	prompt sync.Mutex
}

// New creates an Environment from cfg.
func New(cfg Config) *Environment {
	if cfg.AppName == "" {
		cfg.AppName = "drift-notify"
	}
	if cfg.Backend == nil {
		cfg.Backend = NewSystemBackend(cfg.AppName)
	}
	if u, ok := cfg.Backend.(unavailableBackend); ok && u.err != nil {
		drifterrors.Report(&drifterrors.BridgeError{
			Op:   "desktop.New",
			Kind: drifterrors.KindInit,
			Err:  u.err,
		})
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore(host.PermissionDefault)
	}
	if cfg.Prompter == nil {
		cfg.Prompter = NewTerminalPrompter()
	}
	e := &Environment{
		appName:  cfg.AppName,
		backend:  cfg.Backend,
		store:    cfg.Store,
		prompter: cfg.Prompter,
		byID:     make(map[uint32]*Handle),
		byTag:    make(map[string]uint32),
	}
	e.signals = e.backend.Subscribe(e.onSignal)
	return e
}

// Close releases the backend.
func (e *Environment) Close() error {
	return e.backend.Close()
}

// Supported implements host.Environment.
func (e *Environment) Supported() bool {
	return e.backend.Available()
}

// Permission implements host.Environment.
func (e *Environment) Permission() string {
	p, err := e.store.Load()
	if err != nil {
		drifterrors.Report(&drifterrors.BridgeError{
			Op:   "desktop.permission",
			Kind: drifterrors.KindPlatform,
			Err:  err,
		})
		return host.PermissionDefault
	}
	return normalizePermission(p)
}

// RequestPermission implements host.Environment. A decided permission is
// answered without prompting; otherwise the prompter runs on its own
// goroutine and a decisive answer is stored.
func (e *Environment) RequestPermission(done func(string)) {
	if current := e.Permission(); current != host.PermissionDefault {
		go done(current)
		return
	}
	go func() {
		e.prompt.Lock()
		defer e.prompt.Unlock()

		// Another prompt may have settled it while this one waited.
		if current := e.Permission(); current != host.PermissionDefault {
			done(current)
			return
		}
		answer := normalizePermission(e.prompter.Prompt(e.appName))
		if answer != host.PermissionDefault {
			if err := e.store.Save(answer); err != nil {
				drifterrors.Report(&drifterrors.BridgeError{
					Op:   "desktop.savePermission",
					Kind: drifterrors.KindPlatform,
					Err:  err,
				})
			}
		}
		done(answer)
	}()
}

// Create implements host.Environment. The message is sent right away when
// permission is granted; the outcome is delivered as a show or error event
// once a listener for it is attached.
func (e *Environment) Create(title string, opts host.Options) (host.Handle, error) {
	if !e.backend.Available() {
		return nil, ErrUnavailable
	}
	h := newHandle(e, title, opts)
	if e.Permission() != host.PermissionGranted {
		h.fire(host.EventError)
		return h, nil
	}

	msg := Message{
		AppName:    e.appName,
		Title:      title,
		Body:       opts.Body,
		Icon:       opts.Icon,
		Silent:     opts.Silent,
		Persistent: opts.RequireInteraction,
	}
	if opts.Image != "" {
		img, err := LoadImage(opts.Image)
		if err != nil {
			drifterrors.Report(&drifterrors.BridgeError{
				Op:   "desktop.loadImage",
				Kind: drifterrors.KindPlatform,
				Err:  err,
			})
		} else {
			msg.Image = img
		}
	}

	e.mu.Lock()
	if opts.Tag != "" {
		msg.ReplacesID = e.byTag[opts.Tag]
	}
	e.mu.Unlock()

	id, err := e.backend.Send(msg)
	if err != nil {
		drifterrors.Report(&drifterrors.BridgeError{
			Op:   "desktop.send",
			Kind: drifterrors.KindPlatform,
			Err:  err,
		})
		h.fire(host.EventError)
		return h, nil
	}

	e.mu.Lock()
	h.nativeID = id
	e.byID[id] = h
	if opts.Tag != "" {
		e.byTag[opts.Tag] = id
	}
	e.mu.Unlock()

	h.fire(host.EventShow)
	return h, nil
}

func (e *Environment) onSignal(id uint32, signal string) {
	e.mu.Lock()
	h := e.byID[id]
	if signal == SignalClose && h != nil {
		e.forget(h)
	}
	e.mu.Unlock()
	if h == nil {
		return
	}
	switch signal {
	case SignalClick:
		h.fire(host.EventClick)
	case SignalClose:
		h.markClosed()
		h.fire(host.EventClose)
	}
}

// dismiss closes h through the backend. Backends without signals, and
// notifications that were never displayed, get their close event here.
func (e *Environment) dismiss(h *Handle) {
	e.mu.Lock()
	id := h.nativeID
	shown := id != 0 && e.byID[id] == h
	e.mu.Unlock()

	if shown {
		if err := e.backend.Dismiss(id); err != nil {
			drifterrors.Report(&drifterrors.BridgeError{
				Op:   "desktop.dismiss",
				Kind: drifterrors.KindPlatform,
				Err:  err,
			})
		}
		if e.signals {
			return
		}
		e.mu.Lock()
		e.forget(h)
		e.mu.Unlock()
	}
	// Close listeners never run on the caller's stack.
	go h.fire(host.EventClose)
}

// forget drops h from the lookup tables. Callers hold e.mu.
func (e *Environment) forget(h *Handle) {
	if e.byID[h.nativeID] == h {
		delete(e.byID, h.nativeID)
	}
	if tag := h.options.Tag; tag != "" && e.byTag[tag] == h.nativeID {
		delete(e.byTag, tag)
	}
}

func normalizePermission(p string) string {
	switch p {
	case host.PermissionGranted, host.PermissionDenied:
		return p
	default:
		return host.PermissionDefault
	}
}

// ImageData is an RGBA image in the layout of the freedesktop image-data
// hint (iiibiiay).
type ImageData struct {
	Width         int32
	Height        int32
	RowStride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// Bounds returns the image size.
func (d *ImageData) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(d.Width), int(d.Height))
}
