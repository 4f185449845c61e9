package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every source at an empty temp directory.
func isolate(t *testing.T) (dir string, opts Options) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, name := range []string{"APP_NAME", "ICON", "LANG", "DIR", "PERMISSION_FILE", "ASSUME_PERMISSION", "REQUEST_TIMEOUT", "WAIT"} {
		t.Setenv(EnvPrefix+name, "")
		os.Unsetenv(EnvPrefix + name)
	}
	return dir, Options{WorkDir: dir, EnvFile: filepath.Join(dir, ".env")}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	_, opts := isolate(t)

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, FallbackAppName, cfg.AppName)
	assert.Equal(t, "auto", cfg.Dir)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, time.Duration(0), cfg.Wait)
	assert.Empty(t, cfg.AssumePermission)
}

func TestLoad_AppNameFromGoMod(t *testing.T) {
	dir, opts := isolate(t)
	write(t, filepath.Join(dir, "go.mod"), "module github.com/acme/deploy-bot/v2\n\ngo 1.24\n")

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "deploy-bot", cfg.AppName)
}

func TestLoad_Precedence(t *testing.T) {
	dir, opts := isolate(t)

	write(t, GlobalPath(), "app_name: global\nicon: global.png\nlang: de\nwait: 5s\nrequest_timeout: 10s\n")
	local := filepath.Join(dir, "local.yaml")
	write(t, local, "icon: local.png\nlang: fr\nwait: 7s\n")
	write(t, opts.EnvFile, "DRIFT_NOTIFY_LANG=es\nDRIFT_NOTIFY_WAIT=9s\nUNRELATED=1\n")
	t.Setenv(EnvPrefix+"WAIT", "11s")
	opts.LocalPath = local

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "global", cfg.AppName, "global overrides defaults")
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout, "global overrides defaults")
	assert.Equal(t, "local.png", cfg.Icon, "local overrides global")
	assert.Equal(t, "es", cfg.Lang, ".env overrides local")
	assert.Equal(t, 11*time.Second, cfg.Wait, "environment overrides .env")
}

func TestLoad_MissingLocalFile(t *testing.T) {
	dir, opts := isolate(t)
	opts.LocalPath = filepath.Join(dir, "nope.yaml")

	_, err := Load(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, opts := isolate(t)
	opts.EnvFile = filepath.Join(t.TempDir(), "absent.env")

	_, err := Load(opts)
	require.NoError(t, err)
}

func TestLoad_Validation(t *testing.T) {
	tests := map[string]string{
		"bad dir":        "dir: diagonal\n",
		"bad lang":       "lang: \"not a tag\"\n",
		"bad permission": "assume_permission: maybe\n",
		"negative wait":  "wait: -1s\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir, opts := isolate(t)
			opts.LocalPath = filepath.Join(dir, "c.yaml")
			write(t, opts.LocalPath, content)

			_, err := Load(opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation")
		})
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	dir, opts := isolate(t)
	t.Setenv("HOME", dir)
	t.Setenv(EnvPrefix+"PERMISSION_FILE", "~/perms.yaml")

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "perms.yaml"), cfg.PermissionFile)
}

func TestDefaultAppName(t *testing.T) {
	tests := []struct {
		gomod string
		want  string
	}{
		{"module example.com/tools/notifier\n", "notifier"},
		{"module notifier\n", "notifier"},
		{"module example.com/svc/v3\n", "svc"},
		{"", FallbackAppName},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		if tt.gomod != "" {
			write(t, filepath.Join(dir, "go.mod"), tt.gomod)
		}
		assert.Equal(t, tt.want, DefaultAppName(dir), "go.mod %q", tt.gomod)
	}
}
