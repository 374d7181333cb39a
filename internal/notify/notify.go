// Package notify carries digest text out of the process. Delivery is
// fire-and-forget: a sink reports success or failure once and never
// retries, the caller decides what a failure means.
package notify

import "context"

// Sink delivers one message to one chat address.
type Sink interface {
	Deliver(ctx context.Context, chatID int64, text string) error
}
