// Package cmd implements the drift-notify CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/notification/cmd/drift-notify/internal/config"
	"github.com/go-drift/notification/pkg/errors"
	"github.com/go-drift/notification/pkg/host"
	"github.com/go-drift/notification/pkg/platform"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// ExitError carries a process exit code without an error message.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// app is the state shared by commands during one invocation.
type app struct {
	configPath string
	envFile    string
	appName    string
	verbose    bool

	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer

	shutdown func()
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	root, a := newRootCmd(stdout, stderr)
	defer a.teardown()
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "drift-notify",
		Short: "Show desktop notifications",
		Long: `drift-notify shows desktop notifications through the operating system's
notification service and reports what the user does with them.

Permission is asked for once and remembered in the permission file.`,
		Example: `  # Ask for permission, then notify
  drift-notify request
  drift-notify send "Build finished" --body "all tests passed"

  # Wait up to a minute for a click
  drift-notify send "Deploy?" --require-interaction --wait 1m`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "Path to a dotenv file")
	flags.StringVar(&a.appName, "app-name", "", "Application name shown by the notification service")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose error output")

	root.AddCommand(
		a.supportedCmd(),
		a.permissionCmd(),
		a.requestCmd(),
		a.sendCmd(),
		versionCmd(),
	)
	return root, a
}

// setup loads the configuration, installs the error handler and the host,
// and starts the dispatch loop. Commands that need no host skip it.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations["host"] == "none" {
		return nil
	}

	cfg, err := config.Load(config.Options{LocalPath: a.configPath, EnvFile: a.envFile})
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("app-name") {
		cfg.AppName = a.appName
	}
	a.cfg = cfg

	errors.SetHandler(&errors.LogHandler{Verbose: a.verbose, Out: a.stderr})

	env, closeEnv, err := newEnvironment(cfg)
	if err != nil {
		return err
	}
	bridge := host.Install(env)

	loop := platform.NewLoop()
	loop.Install()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	a.shutdown = func() {
		loop.Close()
		cancel()
		<-done
		platform.RegisterDispatch(nil)
		bridge.Shutdown()
		platform.SetNativeBridge(nil)
		if err := closeEnv(); err != nil && a.verbose {
			fmt.Fprintf(a.stderr, "closing host: %v\n", err)
		}
	}
	return nil
}

func (a *app) teardown() {
	if a.shutdown != nil {
		a.shutdown()
		a.shutdown = nil
	}
}
