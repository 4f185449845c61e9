package desktop

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/notification/pkg/host"
)

// PermissionStore persists the user's answer.
type PermissionStore interface {
	Load() (string, error)
	Save(permission string) error
}

// MemoryStore keeps the permission in memory.
type MemoryStore struct {
	mu         sync.Mutex
	permission string
}

// NewMemoryStore returns a store holding permission.
func NewMemoryStore(permission string) *MemoryStore {
	return &MemoryStore{permission: permission}
}

// Load implements PermissionStore.
func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission, nil
}

// Save implements PermissionStore.
func (s *MemoryStore) Save(permission string) error {
	s.mu.Lock()
	s.permission = permission
	s.mu.Unlock()
	return nil
}

// FileStore keeps permissions in a YAML file shared by applications, keyed
// by application name:
//
//	apps:
//	  drift-notify: granted
type FileStore struct {
	Path string
	App  string

	mu sync.Mutex
}

type permissionFile struct {
	Apps map[string]string `yaml:"apps"`
}

// NewFileStore returns a store for app backed by path.
func NewFileStore(path, app string) *FileStore {
	return &FileStore{Path: path, App: app}
}

// DefaultPermissionPath returns the permission file under the user's
// config directory.
func DefaultPermissionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "drift-notify", "permissions.yaml"), nil
}

// Load implements PermissionStore. A missing file means no decision yet.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return host.PermissionDefault, err
	}
	if p, ok := f.Apps[s.App]; ok {
		return p, nil
	}
	return host.PermissionDefault, nil
}

// Save implements PermissionStore.
func (s *FileStore) Save(permission string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return err
	}
	if f.Apps == nil {
		f.Apps = make(map[string]string)
	}
	f.Apps[s.App] = permission

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create permissions dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write permissions: %w", err)
	}
	return nil
}

func (s *FileStore) read() (permissionFile, error) {
	var f permissionFile
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read permissions: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse permissions %s: %w", s.Path, err)
	}
	return f, nil
}
