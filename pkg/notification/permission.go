package notification

import (
	"context"
	"sync"

	"github.com/go-drift/notification/pkg/errors"
	"github.com/go-drift/notification/pkg/platform"
)

// Permission is the user's consent to display notifications.
type Permission string

// Permission values.
const (
	// PermissionGranted means notifications may be displayed.
	PermissionGranted Permission = "granted"
	// PermissionDenied means the user refused notifications.
	PermissionDenied Permission = "denied"
	// PermissionDefault means the user has not decided; hosts treat it as denied.
	PermissionDefault Permission = "default"
)

// ParsePermission maps a raw host value to a Permission. Unknown values map
// to PermissionDefault.
func ParsePermission(raw string) Permission {
	switch Permission(raw) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// IsTerminal reports whether the user has made a choice.
func (p Permission) IsTerminal() bool {
	return p == PermissionGranted || p == PermissionDenied
}

func (p Permission) String() string {
	return string(p)
}

// PermissionCallback receives the outcome of a permission request.
type PermissionCallback func(Permission)

type permissionMessage struct {
	RequestID  int64
	Permission Permission
}

func parsePermissionMessage(data any) (permissionMessage, error) {
	m, ok := platform.AsMap(data)
	if !ok {
		return permissionMessage{}, &errors.ParseError{
			Channel:  permissionChannelName,
			DataType: "permissionMessage",
			Got:      data,
		}
	}
	id, ok := platform.AsInt64(m["requestId"])
	if !ok {
		return permissionMessage{}, &errors.ParseError{
			Channel:  permissionChannelName,
			DataType: "permissionMessage.requestId",
			Got:      m["requestId"],
		}
	}
	return permissionMessage{
		RequestID:  id,
		Permission: ParsePermission(platform.AsString(m["permission"])),
	}, nil
}

// CurrentPermission returns the host's current permission. Hosts that cannot
// be asked report PermissionDefault.
func CurrentPermission() Permission {
	p, err := currentPermission()
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:      "notification.permission",
			Kind:    errors.KindPlatform,
			Channel: methodChannelName,
			Err:     err,
		})
	}
	return p
}

func currentPermission() (Permission, error) {
	result, err := svc.channel.Invoke("permission", nil)
	if err != nil {
		return PermissionDefault, err
	}
	m, _ := platform.AsMap(result)
	return ParsePermission(platform.AsString(m["permission"])), nil
}

// RequestPermission asks the host to prompt the user. It returns at once;
// callback runs exactly once with the answer, after RequestPermission has
// returned, on the dispatch loop if one is registered. There is no timeout:
// if the user never answers, callback never runs. callback may be nil.
func RequestPermission(callback PermissionCallback) {
	id := svc.nextRequest.Add(1)
	returned := make(chan struct{})
	defer close(returned)

	var once sync.Once
	var unsubscribe func()
	unsubscribe = svc.permissions.Listen(func(msg permissionMessage) {
		if msg.RequestID != id {
			return
		}
		once.Do(func() {
			go func() {
				<-returned
				unsubscribe()
				if callback != nil {
					platform.DispatchOrRun(func() { callback(msg.Permission) })
				}
			}()
		})
	})

	if _, err := svc.channel.Invoke("requestPermission", map[string]any{"requestId": id}); err != nil {
		unsubscribe()
		errors.Report(&errors.BridgeError{
			Op:      "notification.requestPermission",
			Kind:    errors.KindPlatform,
			Channel: methodChannelName,
			Err:     err,
		})
	}
}

// RequestPermissionContext prompts the user and blocks until they answer,
// ctx ends or the host shuts down. If the user already granted or denied permission it returns that
// without prompting.
func RequestPermissionContext(ctx context.Context) (Permission, error) {
	current, err := currentPermission()
	if err != nil {
		return PermissionDefault, err
	}
	if current.IsTerminal() {
		return current, nil
	}

	id := svc.nextRequest.Add(1)

	// Subscribe before triggering the prompt so a fast answer is not missed.
	resultChan := make(chan Permission, 1)
	ended := make(chan struct{})
	unsubscribe := svc.permissions.ListenWithDone(func(msg permissionMessage) {
		if msg.RequestID != id {
			return
		}
		select {
		case resultChan <- msg.Permission:
		default:
		}
	}, func() { close(ended) })
	defer unsubscribe()

	if _, err := svc.channel.Invoke("requestPermission", map[string]any{"requestId": id}); err != nil {
		return PermissionDefault, err
	}

	select {
	case result := <-resultChan:
		return result, nil
	case <-ended:
		select {
		case result := <-resultChan:
			return result, nil
		default:
		}
		return PermissionDefault, ErrHostShutdown
	case <-ctx.Done():
		// Re-check in case the answer raced the deadline.
		if final, err := currentPermission(); err == nil && final.IsTerminal() {
			return final, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return PermissionDefault, ErrTimeout
		}
		return PermissionDefault, ErrCanceled
	}
}
