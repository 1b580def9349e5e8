// Package notify sends customer-facing email. Sends are best-effort:
// callers log failures and never fail the triggering operation.
package notify

import "context"

type Sender interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// Noop drops all mail; used when SMTP is not configured and in tests.
type Noop struct{}

func (Noop) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
