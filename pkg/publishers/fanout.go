package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout delivers one import event to every configured sink. Delivery is
// best-effort: a failing publisher never blocks the others, but a cancelled
// run stops the remaining deliveries.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a fanout over the given publishers, dropping nil entries.
func NewFanout(pubs []Publisher) *Fanout {
	active := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Fanout{publishers: active}
}

// Publish delivers the event to each publisher in turn and returns how many
// accepted it. Individual failures are aggregated; a context cancellation
// between deliveries aborts the rest.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	delivered := 0
	var errs []error
	for _, p := range f.publishers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("fanout aborted before %s publisher[%s]: %w", p.Type(), p.ID(), err))
			break
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}
