package main

import (
	"fmt"
	"io"
	"sort"

	"habitat_payments/internal/session"
)

// consoleLauncher prints URIs instead of opening them; a terminal has no
// dialer.
type consoleLauncher struct {
	out io.Writer
}

func (l consoleLauncher) Launch(uri string) error {
	_, err := fmt.Fprintf(l.out, "  open: %s\n", uri)
	return err
}

type printer struct {
	out      io.Writer
	launcher session.Launcher
}

func (p printer) onTransition(t session.Transition) {
	snap := t.Snapshot
	fmt.Fprintf(p.out, "[%s -> %s]\n", t.From, t.To)

	switch t.To {
	case session.StatePolling:
		if t.From != session.StateSubmitting {
			break
		}
		c := snap.Confirmation
		switch c.Kind {
		case session.ConfirmationUSSD:
			if c.Message != "" {
				fmt.Fprintf(p.out, "  %s\n", c.Message)
			}
			if c.RequiresConfirmation() {
				session.LaunchDialer(p.launcher, c)
			}
		case session.ConfirmationHosted:
			if c.AuthorizationURL != "" {
				_ = p.launcher.Launch(c.AuthorizationURL)
			}
		}
	case session.StateFailed, session.StateValidationError:
		fmt.Fprintf(p.out, "  %s\n", snap.FailureReason)
	}

	if snap.Disclosure != "" {
		fmt.Fprintf(p.out, "  %s\n", snap.Disclosure)
	}
}

func printFieldErrors(out io.Writer, errs session.FieldErrors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "  %s: %s\n", f, errs[f])
	}
}
