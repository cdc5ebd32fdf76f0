// Package memory contains an in-process notifier for dry runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/content-relay/internal/relay"
)

var _ relay.Notifier = (*Notifier)(nil)

// Notifier stores delivered payloads for inspection.
type Notifier struct {
	mu       sync.RWMutex
	payloads []relay.NotificationPayload
	failWith error
}

// New returns a memory Notifier.
func New() *Notifier {
	return &Notifier{}
}

// FailWith makes subsequent Notify calls return err without recording. A nil
// err restores normal behavior.
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failWith = err
}

// Notify records the payload.
func (n *Notifier) Notify(_ context.Context, payload relay.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.payloads = append(n.payloads, payload)
	return nil
}

// Payloads returns the recorded payloads.
func (n *Notifier) Payloads() []relay.NotificationPayload {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]relay.NotificationPayload, len(n.payloads))
	copy(out, n.payloads)
	return out
}
