package notification

import (
	"testing"

	"github.com/go-drift/notification/pkg/errors"
	"github.com/go-drift/notification/pkg/host"
	"github.com/go-drift/notification/pkg/platform"
)

func TestIsSupported(t *testing.T) {
	platform.ResetForTest()
	if IsSupported() {
		t.Error("IsSupported should be false without a host")
	}

	env, _ := setupHost(t)
	if !IsSupported() {
		t.Error("IsSupported should be true for a supporting host")
	}
	env.SetSupported(false)
	if IsSupported() {
		t.Error("IsSupported should follow the host capability")
	}
}

func TestCreateIfSupportedUnsupported(t *testing.T) {
	env, _ := setupHost(t)
	env.SetSupported(false)
	reports := captureReports(t)

	if n := CreateIfSupported("Hello", NewOptions()); n != nil {
		t.Fatalf("CreateIfSupported = %v, want nil", n)
	}
	if got := env.CountCalls("create"); got != 0 {
		t.Errorf("native constructor called %d times, want 0", got)
	}
	if ops := reports.ops(); len(ops) != 0 {
		t.Errorf("unsupported host should not be reported, got %v", ops)
	}
	if _, err := New("Hello", NewOptions()); err != ErrUnsupported {
		t.Errorf("New err = %v, want ErrUnsupported", err)
	}
}

func TestCreateIfSupportedInvalidOptions(t *testing.T) {
	env, _ := setupHost(t)
	reports := captureReports(t)

	n := CreateIfSupported("Hello", NewOptions().WithDir("sideways"))
	if n != nil {
		t.Fatal("invalid direction should not create a notification")
	}
	if got := env.CountCalls("create"); got != 0 {
		t.Errorf("native constructor called %d times, want 0", got)
	}
	last := reports.last()
	if last == nil || last.Kind != errors.KindValidation {
		t.Errorf("expected a validation report, got %+v", last)
	}
}

func TestCreateIfSupportedHostFailure(t *testing.T) {
	env, _ := setupHost(t)
	env.FailCreate(true)
	reports := captureReports(t)

	if n := CreateIfSupported("Hello", NewOptions()); n != nil {
		t.Fatal("failed construction should yield nil")
	}
	last := reports.last()
	if last == nil || last.Op != "notification.create" || last.Kind != errors.KindPlatform {
		t.Errorf("expected a platform report for notification.create, got %+v", last)
	}
}

func TestCreateWithoutPermissionStillReturnsNotification(t *testing.T) {
	env, _ := setupHost(t)

	n := CreateIfSupported("Hello", NewOptions())
	if n == nil {
		t.Fatal("expected a notification even without permission")
	}
	if got := env.CountCalls("create"); got != 1 {
		t.Errorf("native constructor called %d times, want 1", got)
	}

	var errorsSeen int
	n.OnError(func(ErrorEvent) { errorsSeen++ })
	env.Flush()
	if errorsSeen != 1 {
		t.Errorf("error events = %d, want 1", errorsSeen)
	}
}

func TestAccessorsReflectOptions(t *testing.T) {
	setupHost(t)

	opts := NewOptions().
		WithBody("body text").
		WithLang("en-US").
		WithTag("build").
		WithIcon("/usr/share/icons/ok.png").
		WithImage("https://example.com/a.png").
		WithDir(DirRTL).
		WithRequireInteraction(true).
		WithSilent(true).
		WithData(map[string]any{"job": 12})
	n := mustCreate(t, "Title", opts)

	if got := n.Title(); got != "Title" {
		t.Errorf("Title = %q", got)
	}
	if got := n.Body(); got != "body text" {
		t.Errorf("Body = %q", got)
	}
	if got := n.Lang(); got != "en-US" {
		t.Errorf("Lang = %q", got)
	}
	if got := n.Tag(); got != "build" {
		t.Errorf("Tag = %q", got)
	}
	if got := n.Icon(); got != "/usr/share/icons/ok.png" {
		t.Errorf("Icon = %q", got)
	}
	if got := n.Image(); got != "https://example.com/a.png" {
		t.Errorf("Image = %q", got)
	}
	if got := n.Dir(); got != DirRTL {
		t.Errorf("Dir = %q", got)
	}
	if !n.RequireInteraction() {
		t.Error("RequireInteraction = false")
	}
	if !n.Silent() {
		t.Error("Silent = false")
	}
	if got := n.Data(); got != `{"job":12}` {
		t.Errorf("Data = %q", got)
	}
}

func TestAccessorDefaults(t *testing.T) {
	setupHost(t)
	n := mustCreate(t, "Plain", NewOptions())

	if got := n.Dir(); got != DirAuto {
		t.Errorf("Dir = %q, want auto", got)
	}
	if got := n.Data(); got != "" {
		t.Errorf("Data = %q, want empty", got)
	}
	if n.Silent() || n.RequireInteraction() {
		t.Error("boolean options should default to false")
	}

	n2 := mustCreate(t, "Text data", NewOptions().WithData("raw"))
	if got := n2.Data(); got != "raw" {
		t.Errorf("Data = %q, want raw", got)
	}
}

func TestAccessorsAreLive(t *testing.T) {
	env, _ := setupHost(t)
	n := mustCreate(t, "Live", NewOptions())

	n.Title()
	n.Title()
	if got := env.CountCalls("get:" + host.PropTitle); got != 2 {
		t.Errorf("native title read %d times, want 2", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	env, bridge := setupHost(t)
	n := mustCreate(t, "Bye", NewOptions())

	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !env.Last().Closed() {
		t.Error("native notification not closed")
	}
	if bridge.Live() != 0 {
		t.Errorf("bridge still holds %d handles", bridge.Live())
	}
}

func TestAccessorAfterReleaseReports(t *testing.T) {
	setupHost(t)
	reports := captureReports(t)
	n := mustCreate(t, "Gone", NewOptions())
	n.Close()

	if got := n.Title(); got != "" {
		t.Errorf("Title after release = %q, want empty", got)
	}
	if last := reports.last(); last == nil || last.Op != "notification.getProperty" {
		t.Errorf("expected a getProperty report, got %+v", last)
	}
}
