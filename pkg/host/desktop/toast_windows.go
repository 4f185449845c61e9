//go:build windows

package desktop

import (
	"sync/atomic"

	"github.com/go-toast/toast"
)

// toastBackend shows Windows toast notifications. Toasts cannot be recalled
// and report no activation back to the process.
type toastBackend struct {
	appID  string
	nextID atomic.Uint32
}

// NewSystemBackend returns the toast backend.
func NewSystemBackend(appName string) Backend {
	return &toastBackend{appID: appName}
}

func (b *toastBackend) Available() bool {
	return true
}

func (b *toastBackend) Send(msg Message) (uint32, error) {
	n := toast.Notification{
		AppID:    b.appID,
		Title:    msg.Title,
		Message:  msg.Body,
		Icon:     msg.Icon,
		Audio:    toast.Default,
		Duration: toast.Short,
	}
	if msg.Silent {
		n.Audio = toast.Silent
	}
	if msg.Persistent {
		n.Duration = toast.Long
	}
	if err := n.Push(); err != nil {
		return 0, err
	}
	return b.nextID.Add(1), nil
}

func (b *toastBackend) Dismiss(uint32) error {
	return nil
}

func (b *toastBackend) Subscribe(func(uint32, string)) bool {
	return false
}

func (b *toastBackend) Close() error {
	return nil
}
