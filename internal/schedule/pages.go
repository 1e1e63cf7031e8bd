package schedule

import (
	"context"
)

// DefaultPageSize is the number of events requested per calendar view page.
const DefaultPageSize = 50

// SortByStart orders a calendar view by event start, ascending.
const SortByStart = "start/dateTime"

// Page is one page of a calendar view. A non-empty Cursor means more pages
// follow; it is opaque to everything except the remote adapter that issued it.
type Page struct {
	Events []CalendarEvent
	Cursor string
}

// HasMore reports whether another page follows this one.
func (p Page) HasMore() bool {
	return p.Cursor != ""
}

// PageFetcher retrieves the page a continuation cursor points at.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (Page, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, cursor string) (Page, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, cursor string) (Page, error) {
	return f(ctx, cursor)
}

// CollectAll drains a paged result set into one sequence, starting from an
// already fetched first page. Pages are fetched one at a time, one fetch per
// continuation cursor, and their events are appended in the order received.
// Nothing is reordered or deduplicated.
//
// If any fetch fails, no events are returned; the *PageFetchError records how
// far the collection got.
func CollectAll(ctx context.Context, first Page, next PageFetcher) ([]CalendarEvent, error) {
	events := make([]CalendarEvent, 0, len(first.Events))
	events = append(events, first.Events...)

	pages := 1
	page := first
	for page.HasMore() {
		if err := ctx.Err(); err != nil {
			return nil, &PageFetchError{Pages: pages, Events: len(events), Err: err}
		}

		nextPage, err := next.FetchPage(ctx, page.Cursor)
		if err != nil {
			return nil, &PageFetchError{Pages: pages, Events: len(events), Err: err}
		}

		events = append(events, nextPage.Events...)
		pages++
		page = nextPage
	}

	return events, nil
}
