//go:build linux

package desktop

import (
	"fmt"
	"sync"
	"time"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"
)

// Hint names from the desktop notifications specification.
const (
	hintSuppressSound = "suppress-sound"
	hintImageData     = "image-data"
	hintUrgency       = "urgency"

	actionDefault = "default"
	urgencyNormal = byte(1)
)

// Expire timeouts understood by the server.
const (
	expireServerDefault = -1 * time.Millisecond
	expireNever         = time.Duration(0)
)

type dbusBackend struct {
	conn     *dbus.Conn
	notifier notify.Notifier

	mu   sync.Mutex
	sink func(id uint32, signal string)
}

// NewSystemBackend connects to the session bus. The returned backend reports
// itself unavailable when there is no bus or no notification server.
func NewSystemBackend(appName string) Backend {
	b, err := dialDBus()
	if err != nil {
		return unavailableBackend{err: err}
	}
	return b
}

func dialDBus() (*dbusBackend, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("authenticate session bus: %w", err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session bus hello: %w", err)
	}

	b := &dbusBackend{conn: conn}
	notifier, err := notify.New(conn,
		notify.WithOnAction(b.onAction),
		notify.WithOnClosed(b.onClosed),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notification server: %w", err)
	}
	if _, err := notifier.GetCapabilities(); err != nil {
		notifier.Close()
		conn.Close()
		return nil, fmt.Errorf("notification server: %w", err)
	}
	b.notifier = notifier
	return b, nil
}

func (b *dbusBackend) Available() bool {
	return b.notifier != nil
}

func (b *dbusBackend) Send(msg Message) (uint32, error) {
	hints := map[string]dbus.Variant{
		hintUrgency: dbus.MakeVariant(urgencyNormal),
	}
	if msg.Silent {
		hints[hintSuppressSound] = dbus.MakeVariant(true)
	}
	if msg.Image != nil {
		hints[hintImageData] = dbus.MakeVariant(*msg.Image)
	}
	timeout := expireServerDefault
	if msg.Persistent {
		timeout = expireNever
	}

	return b.notifier.SendNotification(notify.Notification{
		AppName:       msg.AppName,
		ReplacesID:    msg.ReplacesID,
		AppIcon:       msg.Icon,
		Summary:       msg.Title,
		Body:          msg.Body,
		Actions:       []notify.Action{{Key: actionDefault, Label: "Open"}},
		Hints:         hints,
		ExpireTimeout: timeout,
	})
}

func (b *dbusBackend) Dismiss(id uint32) error {
	_, err := b.notifier.CloseNotification(id)
	return err
}

func (b *dbusBackend) Subscribe(sink func(id uint32, signal string)) bool {
	b.mu.Lock()
	b.sink = sink
	b.mu.Unlock()
	return true
}

func (b *dbusBackend) Close() error {
	err := b.notifier.Close()
	if cerr := b.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *dbusBackend) emit(id uint32, signal string) {
	b.mu.Lock()
	sink := b.sink
	b.mu.Unlock()
	if sink != nil {
		sink(id, signal)
	}
}

func (b *dbusBackend) onAction(s *notify.ActionInvokedSignal) {
	if s.ActionKey == actionDefault {
		b.emit(s.ID, SignalClick)
	}
}

func (b *dbusBackend) onClosed(s *notify.NotificationClosedSignal) {
	b.emit(s.ID, SignalClose)
}
