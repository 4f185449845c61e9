package desktop

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/go-drift/notification/pkg/host"
)

// Prompter asks the user for consent and returns the raw answer.
type Prompter interface {
	Prompt(appName string) string
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(appName string) string

// Prompt implements Prompter.
func (f PrompterFunc) Prompt(appName string) string {
	return f(appName)
}

// TerminalPrompter asks on a terminal. When In is not a terminal the
// request resolves to "default" without asking.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
	// Interactive reports whether In is attached to a terminal.
	Interactive func() bool
}

// NewTerminalPrompter returns a prompter on stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		In:  os.Stdin,
		Out: os.Stderr,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Prompt implements Prompter: "y" grants, "n" denies, anything else leaves
// the decision open.
func (p *TerminalPrompter) Prompt(appName string) string {
	if p.Interactive != nil && !p.Interactive() {
		return host.PermissionDefault
	}
	fmt.Fprintf(p.Out, "Allow %s to show notifications? [y/n] ", appName)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return host.PermissionDefault
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return host.PermissionGranted
	case "n", "no":
		return host.PermissionDenied
	default:
		return host.PermissionDefault
	}
}
