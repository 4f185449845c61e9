package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/go-drift/notification/pkg/notification"
)

// outcomeTimeout bounds the wait for the show or error event.
const outcomeTimeout = 10 * time.Second

type sendOptions struct {
	body               string
	tag                string
	icon               string
	image              string
	lang               string
	dir                string
	data               string
	silent             bool
	requireInteraction bool
	wait               time.Duration
	closeAfter         time.Duration
}

func bindSendFlags(fs *pflag.FlagSet, o *sendOptions) {
	fs.StringVarP(&o.body, "body", "b", "", "Body text")
	fs.StringVarP(&o.tag, "tag", "t", "", "Tag; replaces an earlier notification with the same tag")
	fs.StringVar(&o.icon, "icon", "", "Icon name or path (default from config)")
	fs.StringVar(&o.image, "image", "", "Image file shown in the notification")
	fs.StringVar(&o.lang, "lang", "", "BCP 47 language tag (default from config)")
	fs.StringVar(&o.dir, "dir", "", "Text direction: auto, ltr or rtl (default from config)")
	fs.StringVar(&o.data, "data", "", "Data payload; JSON or plain text")
	fs.BoolVar(&o.silent, "silent", false, "Suppress sound")
	fs.BoolVar(&o.requireInteraction, "require-interaction", false, "Keep the notification until the user acts on it")
	fs.DurationVar(&o.wait, "wait", 0, "Wait this long for a click or close (default from config)")
	fs.DurationVar(&o.closeAfter, "close-after", 0, "Close the notification after this long")
}

func (a *app) sendCmd() *cobra.Command {
	var o sendOptions
	c := &cobra.Command{
		Use:   "send TITLE",
		Short: "Show a notification",
		Long: `Show a notification and log its lifecycle events.

Without --wait the command returns once the notification is shown. With
--wait it also waits for a click or close, up to the given duration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd.Flags(), args[0], o)
		},
	}
	bindSendFlags(c.Flags(), &o)
	return c
}

// options merges config defaults with the flags that were set.
func (a *app) options(fs *pflag.FlagSet, o sendOptions) notification.Options {
	opts := notification.NewOptions().
		WithIcon(a.cfg.Icon).
		WithLang(a.cfg.Lang).
		WithDir(notification.Direction(a.cfg.Dir)).
		WithBody(o.body).
		WithTag(o.tag).
		WithImage(o.image).
		WithSilent(o.silent).
		WithRequireInteraction(o.requireInteraction)
	if fs.Changed("icon") {
		opts = opts.WithIcon(o.icon)
	}
	if fs.Changed("lang") {
		opts = opts.WithLang(o.lang)
	}
	if fs.Changed("dir") {
		opts = opts.WithDir(notification.Direction(o.dir))
	}
	if o.data != "" {
		var payload any
		if err := json.Unmarshal([]byte(o.data), &payload); err != nil {
			payload = o.data
		}
		opts = opts.WithData(payload)
	}
	return opts
}

func (a *app) send(fs *pflag.FlagSet, title string, o sendOptions) error {
	logger := log.New(a.stderr, "[notify] ", log.LstdFlags)

	n, err := notification.New(title, a.options(fs, o))
	if err == notification.ErrUnsupported {
		return fmt.Errorf("notifications are not supported on this system")
	}
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	events := make(chan notification.EventKind, 8)
	post := func(kind notification.EventKind) {
		select {
		case events <- kind:
		default:
		}
	}
	n.OnShow(func(e notification.ShowEvent) {
		logger.Printf("shown %q (id %d)", title, e.Notification.ID())
		post(e.Kind)
	})
	n.OnClick(func(e notification.ClickEvent) {
		logger.Printf("clicked %q", title)
		post(e.Kind)
	})
	n.OnClose(func(e notification.CloseEvent) {
		logger.Printf("closed %q", title)
		post(e.Kind)
	})
	n.OnError(func(e notification.ErrorEvent) {
		logger.Printf("failed to show %q", title)
		post(e.Kind)
	})

	wait := a.cfg.Wait
	if fs.Changed("wait") {
		wait = o.wait
	}

	var closeTimer <-chan time.Time
	if o.closeAfter > 0 {
		closeTimer = time.After(o.closeAfter)
	}
	outcome := time.After(outcomeTimeout)
	var deadline <-chan time.Time
	stopSpinner := func() {}
	defer func() { stopSpinner() }()

	for {
		select {
		case kind := <-events:
			switch kind {
			case notification.EventShow:
				outcome = nil
				if wait <= 0 && closeTimer == nil {
					return nil
				}
				if wait > 0 {
					deadline = time.After(wait)
					stopSpinner = a.startSpinner("waiting for " + title)
				}
			case notification.EventError:
				return fmt.Errorf("notification was not shown (permission: %s)", notification.CurrentPermission())
			case notification.EventClick:
				return nil
			case notification.EventClose:
				return nil
			}
		case <-closeTimer:
			closeTimer = nil
			if err := n.Close(); err != nil {
				return fmt.Errorf("close notification: %w", err)
			}
		case <-deadline:
			logger.Printf("no interaction with %q within %s", title, wait)
			return nil
		case <-outcome:
			return fmt.Errorf("notification service did not respond within %s", outcomeTimeout)
		}
	}
}

// startSpinner shows a spinner on an interactive stderr and returns the
// function that stops it.
func (a *app) startSpinner(msg string) func() {
	f, ok := a.stderr.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = f
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}
