package notify

import (
	"context"
	"errors"

	"fulfillment/internal/core/ports"
)

// Fanout hands every event to all of its notifiers, even when one fails.
type Fanout []ports.Notifier

var _ ports.Notifier = Fanout(nil)

func (f Fanout) Notify(ctx context.Context, event ports.Event) error {
	var errList []error
	for _, n := range f {
		if err := n.Notify(ctx, event); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
