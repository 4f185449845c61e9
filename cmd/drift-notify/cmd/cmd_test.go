package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/notification/cmd/drift-notify/internal/config"
	"github.com/go-drift/notification/pkg/host"
	"github.com/go-drift/notification/pkg/host/hosttest"
)

// useTestHost replaces the desktop host with a simulated one and isolates
// configuration from the user's files.
func useTestHost(t *testing.T) *hosttest.Environment {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	env := hosttest.New()
	old := newEnvironment
	newEnvironment = func(*config.Config) (host.Environment, func() error, error) {
		return env, func() error { return nil }, nil
	}
	t.Cleanup(func() { newEnvironment = old })
	return env
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...)
	err = run(args, &out, &errOut)
	return out.String(), errOut.String(), err
}

// flushWhenWired delivers queued occurrences once the newest handle has
// its listeners attached.
func flushWhenWired(env *hosttest.Environment) {
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if h := env.Last(); h != nil && h.ListenerCount(host.EventError) > 0 {
				env.Flush()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "drift-notify version "+Version)
}

func TestSupported(t *testing.T) {
	env := useTestHost(t)

	out, _, err := execute(t, "supported")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	env.SetSupported(false)
	out, _, err = execute(t, "supported")
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
	assert.Equal(t, "false\n", out)
}

func TestPermission(t *testing.T) {
	env := useTestHost(t)
	env.SetPermission(host.PermissionDenied)

	out, _, err := execute(t, "permission")
	require.NoError(t, err)
	assert.Equal(t, "denied\n", out)
}

func TestRequest(t *testing.T) {
	env := useTestHost(t)
	go func() {
		for env.PendingPrompts() == 0 {
			time.Sleep(time.Millisecond)
		}
		env.ResolvePermission(host.PermissionGranted)
	}()

	out, _, err := execute(t, "request", "--timeout", "2s")
	require.NoError(t, err)
	assert.Equal(t, "granted\n", out)
}

func TestRequestTimeout(t *testing.T) {
	useTestHost(t)

	_, _, err := execute(t, "request", "--timeout", "20ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no answer within 20ms")
}

func TestSendShown(t *testing.T) {
	env := useTestHost(t)
	env.SetPermission(host.PermissionGranted)
	flushWhenWired(env)

	_, stderr, err := execute(t, "send", "Build finished", "--body", "ok", "--tag", "ci", "--data", `{"run":7}`)
	require.NoError(t, err)
	assert.Contains(t, stderr, `[notify] `)
	assert.Contains(t, stderr, `shown "Build finished"`)

	h := env.Last()
	require.NotNil(t, h)
	assert.Equal(t, "Build finished", h.Title())
	assert.Equal(t, "ok", h.Options().Body)
	assert.Equal(t, "ci", h.Options().Tag)
	assert.Equal(t, map[string]any{"run": float64(7)}, h.Options().Data)
}

func TestSendWithoutPermissionFails(t *testing.T) {
	env := useTestHost(t)
	flushWhenWired(env)

	_, stderr, err := execute(t, "send", "Hidden")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission: default")
	assert.Contains(t, stderr, `failed to show "Hidden"`)
}

func TestSendCloseAfter(t *testing.T) {
	env := useTestHost(t)
	env.SetPermission(host.PermissionGranted)
	flushWhenWired(env)

	// Flush again once the close is queued.
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if h := env.Last(); h != nil && h.Closed() {
				env.Flush()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	_, stderr, err := execute(t, "send", "Short lived", "--close-after", "10ms")
	require.NoError(t, err)
	assert.Contains(t, stderr, `closed "Short lived"`)
	assert.True(t, env.Last().Closed())
}

func TestSendWaitsForClick(t *testing.T) {
	env := useTestHost(t)
	env.SetPermission(host.PermissionGranted)
	flushWhenWired(env)

	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if h := env.Last(); h != nil && h.ListenerCount(host.EventClick) > 0 {
				h.Fire(host.EventClick)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	_, stderr, err := execute(t, "send", "Deploy?", "--wait", "5s")
	require.NoError(t, err)
	assert.Contains(t, stderr, `clicked "Deploy?"`)
}

func TestSendWaitTimesOut(t *testing.T) {
	env := useTestHost(t)
	env.SetPermission(host.PermissionGranted)
	flushWhenWired(env)

	_, stderr, err := execute(t, "send", "Ignored", "--wait", "20ms")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no interaction")
}

func TestSendInvalidDirection(t *testing.T) {
	env := useTestHost(t)

	_, _, err := execute(t, "send", "x", "--dir", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
	assert.Zero(t, env.CountCalls("create"))
}

func TestAppNameFlagOverridesConfig(t *testing.T) {
	useTestHost(t)
	var seen string
	newEnvironment = func(cfg *config.Config) (host.Environment, func() error, error) {
		seen = cfg.AppName
		return hosttest.New(), func() error { return nil }, nil
	}

	_, _, err := execute(t, "--app-name", "release-bot", "permission")
	require.NoError(t, err)
	assert.Equal(t, "release-bot", seen)
}

func TestPermissionStore(t *testing.T) {
	cfg := &config.Config{AppName: "a", AssumePermission: host.PermissionGranted}
	store, err := permissionStore(cfg)
	require.NoError(t, err)
	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, host.PermissionGranted, p)

	cfg = &config.Config{AppName: "a", PermissionFile: filepath.Join(t.TempDir(), "p.yaml")}
	store, err = permissionStore(cfg)
	require.NoError(t, err)
	p, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, host.PermissionDefault, p)
}
