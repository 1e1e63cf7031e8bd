package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func events(ids ...string) []CalendarEvent {
	out := make([]CalendarEvent, len(ids))
	for i, id := range ids {
		out[i] = CalendarEvent{ID: id}
	}
	return out
}

func ids(evs []CalendarEvent) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.ID
	}
	return out
}

// pageStore serves pages by cursor and records the cursors it was asked for.
type pageStore struct {
	pages   map[string]Page
	fail    map[string]error
	cursors []string
}

func (s *pageStore) FetchPage(_ context.Context, cursor string) (Page, error) {
	s.cursors = append(s.cursors, cursor)
	if err := s.fail[cursor]; err != nil {
		return Page{}, err
	}
	return s.pages[cursor], nil
}

func TestCollectAll_SinglePage(t *testing.T) {
	store := &pageStore{}

	got, err := CollectAll(context.Background(), Page{Events: events("a", "b")}, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
	assert.Empty(t, store.cursors)
}

func TestCollectAll_EmptyFirstPage(t *testing.T) {
	got, err := CollectAll(context.Background(), Page{}, &pageStore{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollectAll_FollowsCursorsInOrder(t *testing.T) {
	store := &pageStore{pages: map[string]Page{
		"p2": {Events: events("c", "a"), Cursor: "p3"},
		"p3": {Events: events("a")},
	}}

	got, err := CollectAll(context.Background(), Page{Events: events("b"), Cursor: "p2"}, store)
	require.NoError(t, err)

	// Received order, duplicates kept.
	assert.Equal(t, []string{"b", "c", "a", "a"}, ids(got))
	assert.Equal(t, []string{"p2", "p3"}, store.cursors)
}

func TestCollectAll_FetchFailure(t *testing.T) {
	boom := errors.New("503 service unavailable")
	store := &pageStore{
		pages: map[string]Page{"p2": {Events: events("b", "c"), Cursor: "p3"}},
		fail:  map[string]error{"p3": boom},
	}

	got, err := CollectAll(context.Background(), Page{Events: events("a"), Cursor: "p2"}, store)
	assert.Nil(t, got)
	require.ErrorIs(t, err, boom)

	var pageErr *PageFetchError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 2, pageErr.Pages)
	assert.Equal(t, 3, pageErr.Events)
	assert.Contains(t, err.Error(), "failed to fetch page 3")
}

func TestCollectAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &pageStore{pages: map[string]Page{"p2": {Events: events("b")}}}
	got, err := CollectAll(ctx, Page{Events: events("a"), Cursor: "p2"}, store)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.cursors)
}

func TestPageFetcherFunc(t *testing.T) {
	var seen string
	f := PageFetcherFunc(func(_ context.Context, cursor string) (Page, error) {
		seen = cursor
		return Page{}, nil
	})

	_, err := CollectAll(context.Background(), Page{Cursor: "next"}, f)
	require.NoError(t, err)
	assert.Equal(t, "next", seen)
}
