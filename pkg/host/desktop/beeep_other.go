//go:build !linux && !windows

package desktop

import (
	"sync/atomic"

	"github.com/gen2brain/beeep"
)

// beeepBackend uses beeep, which shells out to the platform's notifier.
type beeepBackend struct {
	nextID atomic.Uint32
}

// NewSystemBackend returns the beeep backend.
func NewSystemBackend(appName string) Backend {
	return &beeepBackend{}
}

func (b *beeepBackend) Available() bool {
	return true
}

func (b *beeepBackend) Send(msg Message) (uint32, error) {
	var err error
	if msg.Silent {
		err = beeep.Notify(msg.Title, msg.Body, msg.Icon)
	} else {
		err = beeep.Alert(msg.Title, msg.Body, msg.Icon)
	}
	if err != nil {
		return 0, err
	}
	return b.nextID.Add(1), nil
}

func (b *beeepBackend) Dismiss(uint32) error {
	return nil
}

func (b *beeepBackend) Subscribe(func(uint32, string)) bool {
	return false
}

func (b *beeepBackend) Close() error {
	return nil
}
