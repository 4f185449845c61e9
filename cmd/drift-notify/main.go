// Command drift-notify shows desktop notifications from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-drift/notification/cmd/drift-notify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exit *cmd.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
