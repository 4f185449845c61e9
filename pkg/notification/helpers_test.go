package notification

import (
	"sync"
	"testing"

	"github.com/go-drift/notification/pkg/errors"
	"github.com/go-drift/notification/pkg/host"
	"github.com/go-drift/notification/pkg/host/hosttest"
	"github.com/go-drift/notification/pkg/platform"
)

// setupHost installs a simulated host with synchronous dispatch.
func setupHost(t *testing.T) (*hosttest.Environment, *host.Bridge) {
	t.Helper()
	env := hosttest.New()
	bridge := host.NewBridge(env)
	platform.SetupTestBridgeWith(bridge, t.Cleanup)
	return env, bridge
}

// reportCapture collects errors passed to errors.Report.
type reportCapture struct {
	mu     sync.Mutex
	errors []*errors.BridgeError
}

func captureReports(t *testing.T) *reportCapture {
	t.Helper()
	c := &reportCapture{}
	old := errors.DefaultHandler
	errors.SetHandler(c)
	t.Cleanup(func() { errors.SetHandler(old) })
	return c
}

func (c *reportCapture) HandleError(err *errors.BridgeError) {
	c.mu.Lock()
	c.errors = append(c.errors, err)
	c.mu.Unlock()
}

func (c *reportCapture) HandlePanic(*errors.PanicError) {}

func (c *reportCapture) ops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.errors {
		out = append(out, e.Op)
	}
	return out
}

func (c *reportCapture) last() *errors.BridgeError {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errors) == 0 {
		return nil
	}
	return c.errors[len(c.errors)-1]
}

// mustCreate creates a notification or fails the test.
func mustCreate(t *testing.T, title string, opts Options) *Notification {
	t.Helper()
	n, err := New(title, opts)
	if err != nil {
		t.Fatalf("New(%q): %v", title, err)
	}
	return n
}
