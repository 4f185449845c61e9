package cmd

import (
	"fmt"

	"github.com/go-drift/notification/cmd/drift-notify/internal/config"
	"github.com/go-drift/notification/pkg/host"
	"github.com/go-drift/notification/pkg/host/desktop"
)

// newEnvironment builds the host for cfg. Tests replace it.
var newEnvironment = func(cfg *config.Config) (host.Environment, func() error, error) {
	store, err := permissionStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	env := desktop.New(desktop.Config{
		AppName: cfg.AppName,
		Store:   store,
	})
	return env, env.Close, nil
}

// permissionStore returns a fixed store when assume_permission is set and
// the permission file otherwise.
func permissionStore(cfg *config.Config) (desktop.PermissionStore, error) {
	if cfg.AssumePermission != "" {
		return desktop.NewMemoryStore(cfg.AssumePermission), nil
	}
	path := cfg.PermissionFile
	if path == "" {
		var err error
		if path, err = desktop.DefaultPermissionPath(); err != nil {
			return nil, fmt.Errorf("locate permission file: %w", err)
		}
	}
	return desktop.NewFileStore(path, cfg.AppName), nil
}
