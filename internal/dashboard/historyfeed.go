package dashboard

import (
	"context"
	"sync"
)

// DefaultHistoryLimit is the feed size requested when the caller does not
// specify one.
const DefaultHistoryLimit = 20

// History returns a copy of the history-feed surface state.
func (d *Dashboard) History() HistoryView {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := d.feed
	view.Items = append([]FeedItem(nil), d.feed.Items...)
	return view
}

// LoadHistoryFeed fetches the server's recent audit trail. Each successful
// call fully replaces the previously loaded feed; there is no merging or
// pagination. Safe to call repeatedly.
func (d *Dashboard) LoadHistoryFeed(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	d.mu.Lock()
	d.feed.Phase = PhasePending
	d.mu.Unlock()

	items, err := d.api.RecentHistory(ctx, limit)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.feed.Phase = PhaseIdle

	if err != nil {
		d.feed.Err = asSurfaceError(err)
		return d.feed.Err
	}

	d.feed.Items = items
	d.feed.Err = nil
	return nil
}

// OpenAutomationPanel refreshes the schedule list and the history feed
// concurrently, the way the panel does on open. The two calls share no
// mutable state and may complete in either order; each writes only its own
// slot. Results (including errors) land in the respective surface views.
func (d *Dashboard) OpenAutomationPanel(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_ = d.RefreshSchedules(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = d.LoadHistoryFeed(ctx, DefaultHistoryLimit)
	}()

	wg.Wait()
}
