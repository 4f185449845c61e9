//go:build js && wasm

package browser

import (
	"encoding/json"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/go-drift/notification/pkg/host"
)

// Environment wraps the global Notification constructor.
type Environment struct {
	ctor js.Value
}

// New returns an Environment for the page's Notification constructor.
func New() *Environment {
	return &Environment{ctor: js.Global().Get("Notification")}
}

// Install creates an Environment and installs a host bridge for it.
func Install() *host.Bridge {
	return host.Install(New())
}

// Supported implements host.Environment.
func (e *Environment) Supported() bool {
	return e.ctor.Type() == js.TypeFunction
}

// Permission implements host.Environment.
func (e *Environment) Permission() string {
	if !e.Supported() {
		return host.PermissionDefault
	}
	return e.ctor.Get("permission").String()
}

// RequestPermission implements host.Environment using the promise form of
// Notification.requestPermission.
func (e *Environment) RequestPermission(done func(string)) {
	if !e.Supported() {
		go done(host.PermissionDefault)
		return
	}

	var onResolve, onReject js.Func
	release := func() {
		onResolve.Release()
		onReject.Release()
	}
	onResolve = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		permission := host.PermissionDefault
		if len(args) > 0 && args[0].Type() == js.TypeString {
			permission = args[0].String()
		}
		done(permission)
		return nil
	})
	onReject = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		done(host.PermissionDefault)
		return nil
	})
	e.ctor.Call("requestPermission").Call("then", onResolve, onReject)
}

// Create implements host.Environment. A constructor exception becomes an
// error.
func (e *Environment) Create(title string, opts host.Options) (h host.Handle, err error) {
	if !e.Supported() {
		return nil, fmt.Errorf("browser: Notification is not available")
	}
	jsOpts, err := toJS(opts)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("browser: new Notification: %v", r)
		}
	}()
	obj := e.ctor.New(title, jsOpts)
	return &Handle{obj: obj}, nil
}

func toJS(opts host.Options) (js.Value, error) {
	m := map[string]any{
		"body":               opts.Body,
		"tag":                opts.Tag,
		"lang":               opts.Lang,
		"requireInteraction": opts.RequireInteraction,
		"silent":             opts.Silent,
	}
	if opts.Dir != "" {
		m["dir"] = opts.Dir
	}
	if opts.Icon != "" {
		m["icon"] = opts.Icon
	}
	if opts.Image != "" {
		m["image"] = opts.Image
	}
	v := js.ValueOf(m)
	if opts.Data != nil {
		data, err := json.Marshal(opts.Data)
		if err != nil {
			return js.Undefined(), fmt.Errorf("browser: encode data: %w", err)
		}
		v.Set("data", js.Global().Get("JSON").Call("parse", string(data)))
	}
	return v, nil
}

// Handle is a browser Notification object.
type Handle struct {
	obj js.Value

	mu    sync.Mutex
	funcs []js.Func
}

// Get implements host.Handle. The data property is read back as a string:
// string payloads as-is, anything else through JSON.stringify.
func (h *Handle) Get(property string) any {
	v := h.obj.Get(property)
	switch v.Type() {
	case js.TypeUndefined, js.TypeNull:
		if property == host.PropData {
			return ""
		}
		return nil
	case js.TypeString:
		return v.String()
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeNumber:
		return v.Float()
	default:
		return js.Global().Get("JSON").Call("stringify", v).String()
	}
}

// AddEventListener implements host.Handle. Callbacks are released after
// the close event.
func (h *Handle) AddEventListener(event string, listener func()) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		listener()
		if event == host.EventClose {
			h.release()
		}
		return nil
	})
	h.mu.Lock()
	h.funcs = append(h.funcs, fn)
	h.mu.Unlock()
	h.obj.Call("addEventListener", event, fn)
}

// Close implements host.Handle.
func (h *Handle) Close() {
	h.obj.Call("close")
}

func (h *Handle) release() {
	h.mu.Lock()
	funcs := h.funcs
	h.funcs = nil
	h.mu.Unlock()
	for _, fn := range funcs {
		fn.Release()
	}
}
