package calendar

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/weekplanner/internal/schedule"
)

type rewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.Host
	return t.Transport.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	hc := ts.Client()
	hc.Transport = &rewriteTransport{
		Transport: hc.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}

	client, err := NewClientFromHTTP(context.Background(), hc, opts...)
	require.NoError(t, err)
	return client
}

func weekQuery(t *testing.T) schedule.ViewQuery {
	t.Helper()
	window, err := schedule.ComputeUTCWeekWindow(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "Europe/Berlin")
	require.NoError(t, err)
	return schedule.ViewQuery{Window: window, Zone: "Europe/Berlin", PageSize: 2}
}

func TestFetchCalendarView_FollowsPageTokens(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendar/v3/calendars/primary/events", r.URL.Path)
		calls++

		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "2", q.Get("maxResults"))
		assert.Equal(t, "Europe/Berlin", q.Get("timeZone"))

		switch q.Get("pageToken") {
		case "":
			_, _ = w.Write([]byte(`{
				"nextPageToken": "page-2",
				"items": [
					{"id": "a", "summary": "Standup", "organizer": {"email": "lead@example.com"},
					 "start": {"dateTime": "2024-04-29T09:00:00+02:00"}, "end": {"dateTime": "2024-04-29T09:15:00+02:00"}},
					{"id": "b", "summary": "Offsite", "start": {"date": "2024-04-30"}, "end": {"date": "2024-05-01"}}
				]
			}`))
		case "page-2":
			_, _ = w.Write([]byte(`{"items": [
				{"id": "c", "summary": "Review", "htmlLink": "https://calendar.google.com/c",
				 "start": {"dateTime": "2024-05-02T07:00:00Z"}, "end": {"dateTime": "2024-05-02T08:00:00Z"}}
			]}`))
		default:
			t.Errorf("unexpected page token %q", q.Get("pageToken"))
		}
	})

	q := weekQuery(t)
	first, err := client.FetchCalendarView(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, first.HasMore())

	events, err := schedule.CollectAll(context.Background(), first, schedule.Pager(client, q))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 2, calls)

	assert.Equal(t, "lead@example.com", events[0].Organizer)
	assert.Equal(t, "2024-04-29T09:00:00", events[0].Start.DateTime)
	assert.Equal(t, "2024-04-30T00:00:00", events[1].Start.DateTime)
	assert.Equal(t, "2024-05-02T09:00:00", events[2].Start.DateTime)
	assert.Equal(t, "Europe/Berlin", events[2].Start.TimeZone)
	assert.Equal(t, "https://calendar.google.com/c", events[2].WebLink)
}

func TestFetchCalendarView_UnknownZone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	q := weekQuery(t)
	q.Zone = "Mars/Olympus"
	_, err := client.FetchCalendarView(context.Background(), q)
	assert.ErrorIs(t, err, schedule.ErrUnknownTimezone)
}

func TestFetchCalendarView_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "insufficient permissions"}}`))
	})

	_, err := client.FetchCalendarView(context.Background(), weekQuery(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient permissions")
}

func freeBusyHandler(t *testing.T, body string, seen *map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendar/v3/freeBusy", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		if seen != nil {
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, seen))
		}
		_, _ = w.Write([]byte(body))
	}
}

func TestQueryFreeBusy(t *testing.T) {
	var sent map[string]any
	client := newTestClient(t, freeBusyHandler(t, `{
		"calendars": {
			"bob@example.com": {"busy": [{"start": "2024-05-06T08:00:00Z", "end": "2024-05-06T09:00:00Z"}]},
			"Alice@Example.com": {"busy": [
				{"start": "2024-05-06T07:00:00Z", "end": "2024-05-06T07:30:00Z"},
				{"start": "2024-05-06T10:00:00Z", "end": "2024-05-06T11:00:00Z"}
			]},
			"room@example.com": {"errors": [{"domain": "calendar", "reason": "notFound"}]}
		}
	}`, &sent))

	resp, err := client.QueryFreeBusy(context.Background(), schedule.ScheduleQuery{
		Attendees: []string{"alice@example.com", "bob@example.com", "room@example.com", "ghost@example.com"},
		Window: schedule.ZonedWindow{
			Start: schedule.ZonedDateTime{DateTime: "2024-05-06T08:00:00", TimeZone: "Europe/Berlin"},
			End:   schedule.ZonedDateTime{DateTime: "2024-05-06T18:00:00", TimeZone: "Europe/Berlin"},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp, 4)

	assert.Equal(t, "2024-05-06T06:00:00Z", sent["timeMin"])
	assert.Equal(t, "Europe/Berlin", sent["timeZone"])

	assert.Equal(t, "alice@example.com", resp[0].Identity)
	require.Len(t, resp[0].Items, 2)
	assert.Equal(t, "2024-05-06T13:00:00", resp[0].Items[1].End.DateTime)
	assert.Equal(t, "busy", resp[0].Items[1].Status)

	assert.Equal(t, "bob@example.com", resp[1].Identity)
	assert.Len(t, resp[1].Items, 1)

	assert.Equal(t, "notFound", resp[2].Error)
	assert.Equal(t, "no schedule returned", resp[3].Error)
}

func TestQueryFreeBusy_ResolvesSlotWithHeuristic(t *testing.T) {
	client := newTestClient(t, freeBusyHandler(t, `{
		"calendars": {
			"alice@example.com": {"busy": [
				{"start": "2024-05-06T07:00:00Z", "end": "2024-05-06T07:30:00Z"},
				{"start": "2024-05-06T10:00:00Z", "end": "2024-05-06T11:00:00Z"}
			]}
		}
	}`, nil))

	resolver := schedule.NewResolver(client)
	slot, err := resolver.ResolveSlot(context.Background(), []string{"alice@example.com"}, schedule.ZonedWindow{
		Start: schedule.ZonedDateTime{DateTime: "2024-05-06T08:00:00", TimeZone: "Europe/Berlin"},
		End:   schedule.ZonedDateTime{DateTime: "2024-05-06T18:00:00", TimeZone: "Europe/Berlin"},
	}, 30, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06T13:00:00", slot.Start.DateTime)
	assert.Equal(t, "2024-05-06T14:00:00", slot.End.DateTime)
}

func TestCreateEvent(t *testing.T) {
	var sent map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendar/v3/calendars/team@example.com/events", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &sent))

		_, _ = w.Write([]byte(`{
			"id": "event-123",
			"summary": "Planning",
			"htmlLink": "https://calendar.google.com/event-123",
			"start": {"dateTime": "2024-05-06T13:00:00+02:00", "timeZone": "Europe/Berlin"},
			"end": {"dateTime": "2024-05-06T14:00:00+02:00", "timeZone": "Europe/Berlin"}
		}`))
	}, WithCalendarID("team@example.com"))

	event := schedule.BuildCreateRequest("Planning", schedule.SlotCandidate{
		Start: schedule.ZonedDateTime{DateTime: "2024-05-06T13:00:00"},
		End:   schedule.ZonedDateTime{DateTime: "2024-05-06T14:00:00"},
	}, "W. Europe Standard Time", "Agenda", "alice@example.com; bob@example.com")

	created, err := client.CreateEvent(context.Background(), event)
	require.NoError(t, err)

	start := sent["start"].(map[string]any)
	assert.Equal(t, "2024-05-06T13:00:00+02:00", start["dateTime"])
	assert.Equal(t, "Europe/Berlin", start["timeZone"])
	assert.Equal(t, "Agenda", sent["description"])
	assert.Len(t, sent["attendees"], 2)

	assert.Equal(t, "event-123", created.ID)
	assert.Equal(t, "2024-05-06T13:00:00", created.Start.DateTime)
	assert.Equal(t, "W. Europe Standard Time", created.Start.TimeZone)
	assert.Equal(t, "https://calendar.google.com/event-123", created.WebLink)
}

func suggestionRequest(percentage float64) schedule.SuggestionRequest {
	return schedule.BuildSuggestionRequest(
		[]string{"alice@example.com", "bob@example.com"},
		"Room 1",
		schedule.TimeSlot{
			Start: schedule.ZonedDateTime{DateTime: "2024-05-06T09:00:00", TimeZone: "UTC"},
			End:   schedule.ZonedDateTime{DateTime: "2024-05-06T12:00:00", TimeZone: "UTC"},
		},
		time.Hour,
		percentage,
	)
}

const suggestionBusy = `{
	"calendars": {
		"alice@example.com": {"busy": [{"start": "2024-05-06T09:00:00Z", "end": "2024-05-06T10:00:00Z"}]},
		"bob@example.com": {"busy": [{"start": "2024-05-06T10:00:00Z", "end": "2024-05-06T11:00:00Z"}]}
	}
}`

func TestFindMeetingTimes(t *testing.T) {
	client := newTestClient(t, freeBusyHandler(t, suggestionBusy, nil))

	result, err := client.FindMeetingTimes(context.Background(), suggestionRequest(100), "Europe/Berlin")
	require.NoError(t, err)

	require.Len(t, result.Suggestions, 1)
	s := result.Suggestions[0]
	assert.Equal(t, "2024-05-06T13:00:00", s.Slot.Start.DateTime)
	assert.Equal(t, "Europe/Berlin", s.Slot.Start.TimeZone)
	assert.Equal(t, 100.0, s.Confidence)
	assert.Equal(t, []string{"Room 1"}, s.Locations)
	assert.NotEmpty(t, s.Reason)
	assert.Equal(t, "Europe/Berlin", result.PreferredZone)
	assert.Empty(t, result.EmptyReason)
}

func TestFindMeetingTimes_PartialAttendance(t *testing.T) {
	client := newTestClient(t, freeBusyHandler(t, suggestionBusy, nil))

	result, err := client.FindMeetingTimes(context.Background(), suggestionRequest(50), "UTC")
	require.NoError(t, err)

	require.Len(t, result.Suggestions, 3)
	assert.Equal(t, "2024-05-06T11:00:00", result.Suggestions[0].Slot.Start.DateTime)
	assert.Equal(t, "2024-05-06T09:00:00", result.Suggestions[1].Slot.Start.DateTime)
	assert.Equal(t, 50.0, result.Suggestions[1].Confidence)
	assert.Equal(t, []schedule.AttendeeAvailability{
		{Email: "alice@example.com", Availability: "busy"},
		{Email: "bob@example.com", Availability: "free"},
	}, result.Suggestions[1].Attendees)
}

func TestFindMeetingTimes_NoneAvailable(t *testing.T) {
	client := newTestClient(t, freeBusyHandler(t, `{
		"calendars": {
			"alice@example.com": {"busy": [{"start": "2024-05-06T09:00:00Z", "end": "2024-05-06T12:00:00Z"}]},
			"bob@example.com": {"errors": [{"reason": "notFound"}]}
		}
	}`, nil))

	result, err := client.FindMeetingTimes(context.Background(), suggestionRequest(100), "UTC")
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Equal(t, "AttendeesUnavailable", result.EmptyReason)
}

func TestFindMeetingTimes_RequiresAttendees(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	req := suggestionRequest(100)
	req.Attendees = nil
	_, err := client.FindMeetingTimes(context.Background(), req, "UTC")
	assert.Error(t, err)
}

const allFree = `{
	"calendars": {
		"alice@example.com": {"busy": []},
		"bob@example.com": {"busy": []}
	}
}`

func utcSlot(start, end string) schedule.TimeSlot {
	return schedule.TimeSlot{
		Start: schedule.ZonedDateTime{DateTime: start, TimeZone: "UTC"},
		End:   schedule.ZonedDateTime{DateTime: end, TimeZone: "UTC"},
	}
}

func TestFindMeetingTimes_OrderedByStartAcrossSlots(t *testing.T) {
	client := newTestClient(t, freeBusyHandler(t, allFree, nil))

	req := suggestionRequest(100)
	req.TimeConstraint.TimeSlots = []schedule.TimeSlot{
		utcSlot("2024-05-07T14:00:00", "2024-05-07T15:00:00"),
		utcSlot("2024-05-06T10:00:00", "2024-05-06T11:00:00"),
	}

	result, err := client.FindMeetingTimes(context.Background(), req, "UTC")
	require.NoError(t, err)

	var starts []string
	for _, s := range result.Suggestions {
		starts = append(starts, s.Slot.Start.DateTime)
	}
	assert.Equal(t, []string{"2024-05-06T10:00:00", "2024-05-07T14:00:00"}, starts)
}

func TestFindMeetingTimes_WorkHours(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		slot   schedule.TimeSlot
		zone   string
		want   []string
	}{
		{
			name:   "early morning is skipped",
			domain: schedule.ActivityDomainWork,
			slot:   utcSlot("2024-05-06T06:00:00", "2024-05-06T10:00:00"),
			zone:   "UTC",
			want:   []string{"2024-05-06T08:00:00", "2024-05-06T09:00:00"},
		},
		{
			name:   "must end by five",
			domain: schedule.ActivityDomainWork,
			slot:   utcSlot("2024-05-06T15:00:00", "2024-05-06T19:00:00"),
			zone:   "UTC",
			want:   []string{"2024-05-06T15:00:00", "2024-05-06T16:00:00"},
		},
		{
			name:   "hours are read in the preferred zone",
			domain: schedule.ActivityDomainWork,
			slot:   utcSlot("2024-05-06T13:00:00", "2024-05-06T17:00:00"),
			zone:   "America/New_York",
			want:   []string{"2024-05-06T09:00:00", "2024-05-06T10:00:00", "2024-05-06T11:00:00", "2024-05-06T12:00:00"},
		},
		{
			name:   "weekend",
			domain: schedule.ActivityDomainWork,
			slot:   utcSlot("2024-05-04T09:00:00", "2024-05-04T12:00:00"),
			zone:   "UTC",
		},
		{
			name: "no activity domain",
			slot: utcSlot("2024-05-04T06:00:00", "2024-05-04T08:00:00"),
			zone: "UTC",
			want: []string{"2024-05-04T06:00:00", "2024-05-04T07:00:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, freeBusyHandler(t, allFree, nil))

			req := suggestionRequest(100)
			req.TimeConstraint.ActivityDomain = tt.domain
			req.TimeConstraint.TimeSlots = []schedule.TimeSlot{tt.slot}

			result, err := client.FindMeetingTimes(context.Background(), req, tt.zone)
			require.NoError(t, err)

			var starts []string
			for _, s := range result.Suggestions {
				starts = append(starts, s.Slot.Start.DateTime)
			}
			assert.Equal(t, tt.want, starts)
		})
	}
}
