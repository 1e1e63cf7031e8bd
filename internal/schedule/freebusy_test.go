package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 6, hour, minute, 0, 0, time.UTC)
}

func span(startH, startM, endH, endM int) TimeWindow {
	return TimeWindow{Start: at(startH, startM), End: at(endH, endM)}
}

func TestLastBusyEndHeuristic(t *testing.T) {
	window := span(9, 0, 17, 0)

	tests := []struct {
		name         string
		availability []Availability
		want         time.Time
		wantNoSlot   bool
	}{
		{
			name: "no attendees",
			want: window.Start,
		},
		{
			name:         "no busy intervals",
			availability: []Availability{{Identity: "a@example.com"}},
			want:         window.Start,
		},
		{
			name: "after the last reported interval",
			availability: []Availability{{
				Identity: "a@example.com",
				Busy:     []TimeWindow{span(9, 0, 9, 30), span(10, 0, 10, 30)},
			}},
			want: at(10, 30),
		},
		{
			name: "last reported wins over latest",
			availability: []Availability{{
				Identity: "a@example.com",
				Busy:     []TimeWindow{span(13, 0, 14, 0), span(9, 0, 10, 0)},
			}},
			want: at(10, 0),
		},
		{
			name: "other attendees are ignored",
			availability: []Availability{
				{Identity: "a@example.com", Busy: []TimeWindow{span(9, 0, 10, 0)}},
				{Identity: "b@example.com", Busy: []TimeWindow{span(10, 0, 12, 0)}},
			},
			want: at(10, 0),
		},
		{
			name: "meeting may run past the window end",
			availability: []Availability{{
				Identity: "a@example.com",
				Busy:     []TimeWindow{span(9, 0, 16, 45)},
			}},
			want: at(16, 45),
		},
		{
			name: "busy until the window end",
			availability: []Availability{{
				Identity: "a@example.com",
				Busy:     []TimeWindow{span(9, 0, 17, 0)},
			}},
			wantNoSlot: true,
		},
		{
			name: "busy past the window end",
			availability: []Availability{{
				Identity: "a@example.com",
				Busy:     []TimeWindow{span(16, 0, 18, 0)},
			}},
			wantNoSlot: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LastBusyEndHeuristic{}.SelectStart(window, time.Hour, tt.availability)
			if tt.wantNoSlot {
				if !errors.Is(err, ErrNoSlotAvailable) {
					t.Errorf("SelectStart() error = %v, want ErrNoSlotAvailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectStart() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("SelectStart() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIntervalScanPolicy(t *testing.T) {
	window := span(9, 0, 17, 0)

	tests := []struct {
		name         string
		duration     time.Duration
		availability []Availability
		want         time.Time
		wantNoSlot   bool
	}{
		{
			name:     "empty calendar",
			duration: time.Hour,
			want:     window.Start,
		},
		{
			name:     "first gap that fits",
			duration: time.Hour,
			availability: []Availability{{Busy: []TimeWindow{
				span(9, 0, 10, 0),
				span(10, 30, 11, 0),
				span(13, 0, 14, 0),
			}}},
			want: at(11, 0),
		},
		{
			name:     "busy intervals of every attendee count",
			duration: 30 * time.Minute,
			availability: []Availability{
				{Busy: []TimeWindow{span(9, 0, 10, 0)}},
				{Busy: []TimeWindow{span(9, 45, 11, 15)}},
			},
			want: at(11, 15),
		},
		{
			name:     "unsorted input",
			duration: time.Hour,
			availability: []Availability{{Busy: []TimeWindow{
				span(10, 0, 12, 0),
				span(8, 0, 9, 30),
			}}},
			want: at(12, 0),
		},
		{
			name:     "back to back meeting fits exactly",
			duration: time.Hour,
			availability: []Availability{{Busy: []TimeWindow{
				span(9, 0, 10, 0),
				span(11, 0, 12, 0),
			}}},
			want: at(10, 0),
		},
		{
			name:     "must end inside the window",
			duration: time.Hour,
			availability: []Availability{{Busy: []TimeWindow{
				span(9, 0, 16, 30),
			}}},
			wantNoSlot: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntervalScanPolicy{}.SelectStart(window, tt.duration, tt.availability)
			if tt.wantNoSlot {
				if !errors.Is(err, ErrNoSlotAvailable) {
					t.Errorf("SelectStart() error = %v, want ErrNoSlotAvailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectStart() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("SelectStart() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMergeBusy(t *testing.T) {
	got := MergeBusy([]Availability{
		{Busy: []TimeWindow{span(13, 0, 14, 0), span(9, 0, 10, 0)}},
		{Busy: []TimeWindow{span(9, 30, 11, 0), span(11, 0, 11, 30), span(9, 45, 10, 15)}},
	})

	want := []TimeWindow{span(9, 0, 11, 30), span(13, 0, 14, 0)}
	assert.Equal(t, want, got)
	assert.Nil(t, MergeBusy(nil))
}

func TestPolicyByName(t *testing.T) {
	for name, want := range map[string]string{
		"":              "last-busy-end",
		"last-busy-end": "last-busy-end",
		"interval-scan": "interval-scan",
	} {
		p, err := PolicyByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, p.Name())
	}

	_, err := PolicyByName("first-fit")
	assert.Error(t, err)
}

// stubQuerier answers free/busy queries with fixed responses.
type stubQuerier struct {
	responses []ScheduleResponse
	err       error
	query     ScheduleQuery
	calls     int
}

func (s *stubQuerier) QueryFreeBusy(_ context.Context, q ScheduleQuery) ([]ScheduleResponse, error) {
	s.calls++
	s.query = q
	return s.responses, s.err
}

func berlinWindow(start, end string) ZonedWindow {
	return ZonedWindow{
		Start: ZonedDateTime{DateTime: start, TimeZone: "Europe/Berlin"},
		End:   ZonedDateTime{DateTime: end, TimeZone: "Europe/Berlin"},
	}
}

func busy(start, end, zone string) BusyInterval {
	return BusyInterval{
		Status: "busy",
		Start:  ZonedDateTime{DateTime: start, TimeZone: zone},
		End:    ZonedDateTime{DateTime: end, TimeZone: zone},
	}
}

func TestResolver_ResolveSlot(t *testing.T) {
	querier := &stubQuerier{responses: []ScheduleResponse{{
		Identity: "room@example.com",
		Items: []BusyInterval{
			busy("2024-05-06T09:00:00.0000000", "2024-05-06T10:00:00.0000000", "Europe/Berlin"),
			// Reported in UTC: 10:30 Berlin.
			busy("2024-05-06T08:00:00", "2024-05-06T08:30:00", "UTC"),
		},
	}}}

	r := NewResolver(querier)
	slot, err := r.ResolveSlot(context.Background(), []string{"room@example.com"},
		berlinWindow("2024-05-06T09:00:00", "2024-05-06T17:00:00"), 0, 45*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, SlotCandidate{
		Start:           ZonedDateTime{DateTime: "2024-05-06T10:30:00", TimeZone: "Europe/Berlin"},
		End:             ZonedDateTime{DateTime: "2024-05-06T11:15:00", TimeZone: "Europe/Berlin"},
		DurationMinutes: 45,
	}, slot)

	assert.Equal(t, DefaultGranularityMinutes, querier.query.GranularityMinutes)
	assert.Equal(t, "Europe/Berlin", querier.query.PreferredZone)
	assert.Equal(t, []string{"room@example.com"}, querier.query.Attendees)
}

func TestResolver_ResolveSlot_FallbackStartsAtWindowStart(t *testing.T) {
	tests := []struct {
		name      string
		window    ZonedWindow
		wantStart string
		wantEnd   string
	}{
		{
			name:      "minute precision",
			window:    berlinWindow("2024-05-06T09:00", "2024-05-06T17:00"),
			wantStart: "2024-05-06T09:00:00",
			wantEnd:   "2024-05-06T10:00:00",
		},
		{
			name: "start with a zone suffix",
			window: ZonedWindow{
				Start: ZonedDateTime{DateTime: "2024-03-11T08:00:00Z", TimeZone: "America/New_York"},
				End:   ZonedDateTime{DateTime: "2024-03-11T17:00:00", TimeZone: "America/New_York"},
			},
			wantStart: "2024-03-11T04:00:00",
			wantEnd:   "2024-03-11T05:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier := &stubQuerier{responses: []ScheduleResponse{{Identity: "room@example.com"}}}

			slot, err := NewResolver(querier).ResolveSlot(context.Background(), []string{"room@example.com"}, tt.window, 15, time.Hour)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStart, slot.Start.DateTime)
			assert.Equal(t, tt.wantEnd, slot.End.DateTime)
			assert.Equal(t, tt.window.Start.TimeZone, slot.Start.TimeZone)
			assert.Equal(t, 15, querier.query.GranularityMinutes)

			start, err := slot.Start.Time()
			require.NoError(t, err)
			end, err := slot.End.Time()
			require.NoError(t, err)
			assert.Equal(t, time.Hour, end.Sub(start))

			event := BuildCreateRequest("Sync", slot, slot.Start.TimeZone, "", "")
			assert.Equal(t, slot.Start, event.Start)
		})
	}
}

func TestResolver_ResolveSlot_IntervalScan(t *testing.T) {
	querier := &stubQuerier{responses: []ScheduleResponse{
		{Identity: "a@example.com", Items: []BusyInterval{busy("2024-05-06T13:00:00", "2024-05-06T14:00:00", "Europe/Berlin")}},
		{Identity: "b@example.com", Items: []BusyInterval{busy("2024-05-06T09:00:00", "2024-05-06T09:30:00", "Europe/Berlin")}},
	}}

	r := NewResolver(querier, WithPolicy(IntervalScanPolicy{}))
	assert.Equal(t, "interval-scan", r.Policy().Name())

	slot, err := r.ResolveSlot(context.Background(), []string{"a@example.com", "b@example.com"},
		berlinWindow("2024-05-06T09:00:00", "2024-05-06T17:00:00"), 30, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06T09:30:00", slot.Start.DateTime)
	assert.Equal(t, "2024-05-06T10:30:00", slot.End.DateTime)
}

func TestResolver_ResolveSlot_Errors(t *testing.T) {
	window := berlinWindow("2024-05-06T09:00:00", "2024-05-06T17:00:00")
	attendees := []string{"room@example.com"}

	t.Run("no slot", func(t *testing.T) {
		querier := &stubQuerier{responses: []ScheduleResponse{{
			Identity: "room@example.com",
			Items:    []BusyInterval{busy("2024-05-06T16:00:00", "2024-05-06T18:00:00", "Europe/Berlin")},
		}}}
		_, err := NewResolver(querier).ResolveSlot(context.Background(), attendees, window, 60, time.Hour)
		assert.True(t, IsNoSlot(err), "error = %v", err)
	})

	t.Run("remote failure", func(t *testing.T) {
		boom := errors.New("429 too many requests")
		_, err := NewResolver(&stubQuerier{err: boom}).ResolveSlot(context.Background(), attendees, window, 60, time.Hour)

		var queryErr *RemoteQueryError
		require.ErrorAs(t, err, &queryErr)
		assert.Equal(t, OpGetSchedule, queryErr.Op)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("malformed interval", func(t *testing.T) {
		querier := &stubQuerier{responses: []ScheduleResponse{{
			Identity: "room@example.com",
			Items:    []BusyInterval{busy("yesterday", "2024-05-06T10:00:00", "Europe/Berlin")},
		}}}
		_, err := NewResolver(querier).ResolveSlot(context.Background(), attendees, window, 60, time.Hour)

		var queryErr *RemoteQueryError
		require.ErrorAs(t, err, &queryErr)
		assert.NotContains(t, err.Error(), "room@example.com")
	})

	t.Run("unknown zone", func(t *testing.T) {
		querier := &stubQuerier{}
		bad := window
		bad.Start.TimeZone = "Atlantis"
		_, err := NewResolver(querier).ResolveSlot(context.Background(), attendees, bad, 60, time.Hour)
		assert.ErrorIs(t, err, ErrUnknownTimezone)
		assert.Zero(t, querier.calls)
	})

	t.Run("empty window", func(t *testing.T) {
		querier := &stubQuerier{}
		_, err := NewResolver(querier).ResolveSlot(context.Background(), attendees,
			berlinWindow("2024-05-06T17:00:00", "2024-05-06T09:00:00"), 60, time.Hour)
		assert.Error(t, err)
		assert.Zero(t, querier.calls)
	})

	t.Run("non-positive duration", func(t *testing.T) {
		_, err := NewResolver(&stubQuerier{}).ResolveSlot(context.Background(), attendees, window, 60, 0)
		assert.Error(t, err)
	})
}
