package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/notification/pkg/notification"
)

func (a *app) supportedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supported",
		Short: "Report whether notifications can be shown",
		Long: `Print true when the notification service is reachable and false otherwise.
The exit status is 1 when notifications are not supported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			supported := notification.IsSupported()
			fmt.Fprintln(a.stdout, supported)
			if !supported {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

func (a *app) permissionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permission",
		Short: "Print the current permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, notification.CurrentPermission())
			return nil
		},
	}
}

func (a *app) requestCmd() *cobra.Command {
	var timeout time.Duration
	c := &cobra.Command{
		Use:   "request",
		Short: "Ask the user for permission",
		Long: `Ask the user whether notifications may be shown and print the answer.
A decision made earlier is printed without asking again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timeout") {
				timeout = a.cfg.RequestTimeout
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			p, err := notification.RequestPermissionContext(ctx)
			if err == notification.ErrTimeout {
				return fmt.Errorf("no answer within %s", timeout)
			}
			if err != nil {
				return fmt.Errorf("request permission: %w", err)
			}
			fmt.Fprintln(a.stdout, p)
			return nil
		},
	}
	c.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for an answer (default from config)")
	return c
}
