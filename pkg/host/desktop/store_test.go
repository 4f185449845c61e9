package desktop

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/notification/pkg/host"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "permissions.yaml")
	a := NewFileStore(path, "app-a")
	b := NewFileStore(path, "app-b")

	if got, err := a.Load(); err != nil || got != host.PermissionDefault {
		t.Fatalf("Load on missing file = %q, %v", got, err)
	}
	if err := a.Save(host.PermissionGranted); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Save(host.PermissionDenied); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got, _ := a.Load(); got != host.PermissionGranted {
		t.Errorf("app-a = %q, want granted", got)
	}
	if got, _ := b.Load(); got != host.PermissionDenied {
		t.Errorf("app-b = %q, want denied", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "app-a: granted") {
		t.Errorf("file contents:\n%s", data)
	}
}

func TestFileStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.yaml")
	os.WriteFile(path, []byte("apps: [not, a, map"), 0o600)

	s := NewFileStore(path, "app")
	if _, err := s.Load(); err == nil {
		t.Error("malformed file should fail to load")
	}
	if err := s.Save(host.PermissionGranted); err == nil {
		t.Error("malformed file should not be overwritten")
	}
}

func TestTerminalPrompter(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"y\n", host.PermissionGranted},
		{"Yes\n", host.PermissionGranted},
		{"n\n", host.PermissionDenied},
		{"maybe\n", host.PermissionDefault},
		{"", host.PermissionDefault},
		{"y", host.PermissionGranted},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := &TerminalPrompter{In: strings.NewReader(tt.input), Out: &out}
		if got := p.Prompt("demo"); got != tt.want {
			t.Errorf("Prompt(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Allow demo to show notifications?") {
			t.Errorf("prompt text = %q", out.String())
		}
	}
}

func TestTerminalPrompterNonInteractive(t *testing.T) {
	var out bytes.Buffer
	p := &TerminalPrompter{
		In:          strings.NewReader("y\n"),
		Out:         &out,
		Interactive: func() bool { return false },
	}
	if got := p.Prompt("demo"); got != host.PermissionDefault {
		t.Errorf("Prompt = %q, want default", got)
	}
	if out.Len() != 0 {
		t.Errorf("non-interactive prompt wrote %q", out.String())
	}
}
