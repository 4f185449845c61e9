// Package notification exposes a host's native notification object through
// typed Go values.
//
// A program installs a host (see package host and its subpackages), probes
// for support, asks for permission and creates notifications:
//
//	if notification.IsSupported() {
//		notification.RequestPermission(func(p notification.Permission) {
//			log.Printf("permission: %s", p)
//		})
//	}
//
//	n := notification.CreateIfSupported("Build finished", notification.NewOptions().
//		WithBody("all 112 tests passed").
//		WithTag("ci"))
//	if n != nil {
//		n.OnClick(func(e notification.ClickEvent) {
//			log.Printf("clicked %q", e.Notification.Title())
//		})
//	}
//
// Creating a notification does not wait for permission. When permission has
// not been granted the host suppresses the display, yet the *Notification is
// still returned; callers that care check CurrentPermission first.
//
// Lifecycle handlers run synchronously, in registration order, on whatever
// goroutine delivers host events. Programs that want a single-threaded model
// install a platform.Loop.
package notification
