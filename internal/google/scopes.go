package google

// CalendarScopes are the OAuth scopes a Google token needs for reading
// calendars, querying free/busy and creating events.
var CalendarScopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events",
}
