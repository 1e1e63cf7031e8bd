package schedule

import (
	"strings"
	"time"

	// Embedded so zone resolution does not depend on the host tz database.
	_ "time/tzdata"
)

// windowsZones maps Windows/Outlook zone names and a few common aliases to
// IANA identifiers. Outlook hands these out as mailbox zones, so they show
// up in user profiles and in remote responses.
var windowsZones = map[string]string{
	"eastern":                        "America/New_York",
	"central":                        "America/Chicago",
	"mountain":                       "America/Denver",
	"pacific":                        "America/Los_Angeles",
	"alaska":                         "America/Anchorage",
	"hawaii":                         "Pacific/Honolulu",
	"eastern standard time":          "America/New_York",
	"central standard time":          "America/Chicago",
	"mountain standard time":         "America/Denver",
	"us mountain standard time":      "America/Phoenix",
	"pacific standard time":          "America/Los_Angeles",
	"alaskan standard time":          "America/Anchorage",
	"hawaiian standard time":         "Pacific/Honolulu",
	"atlantic standard time":         "America/Halifax",
	"newfoundland standard time":     "America/St_Johns",
	"sa pacific standard time":       "America/Bogota",
	"e. south america standard time": "America/Sao_Paulo",
	"gmt standard time":              "Europe/London",
	"greenwich standard time":        "Atlantic/Reykjavik",
	"w. europe standard time":        "Europe/Berlin",
	"central europe standard time":   "Europe/Budapest",
	"central european standard time": "Europe/Warsaw",
	"romance standard time":          "Europe/Paris",
	"e. europe standard time":        "Europe/Chisinau",
	"gtb standard time":              "Europe/Bucharest",
	"fle standard time":              "Europe/Kiev",
	"russian standard time":          "Europe/Moscow",
	"south africa standard time":     "Africa/Johannesburg",
	"israel standard time":           "Asia/Jerusalem",
	"arabian standard time":          "Asia/Dubai",
	"iran standard time":             "Asia/Tehran",
	"afghanistan standard time":      "Asia/Kabul",
	"pakistan standard time":         "Asia/Karachi",
	"india standard time":            "Asia/Kolkata",
	"nepal standard time":            "Asia/Kathmandu",
	"myanmar standard time":          "Asia/Yangon",
	"se asia standard time":          "Asia/Bangkok",
	"china standard time":            "Asia/Shanghai",
	"singapore standard time":        "Asia/Singapore",
	"tokyo standard time":            "Asia/Tokyo",
	"korea standard time":            "Asia/Seoul",
	"cen. australia standard time":   "Australia/Adelaide",
	"aus central standard time":      "Australia/Darwin",
	"aus eastern standard time":      "Australia/Sydney",
	"e. australia standard time":     "Australia/Brisbane",
	"w. australia standard time":     "Australia/Perth",
	"lord howe standard time":        "Australia/Lord_Howe",
	"chatham islands standard time":  "Pacific/Chatham",
	"new zealand standard time":      "Pacific/Auckland",
	"utc":                            "UTC",
	"coordinated universal time":     "UTC",
}

// LoadZone resolves an IANA identifier or a Windows zone name.
// Unresolvable identifiers yield an *UnknownTimezoneError.
func LoadZone(zone string) (*time.Location, error) {
	name := strings.TrimSpace(zone)
	if name == "" {
		return nil, &UnknownTimezoneError{Zone: zone}
	}

	// time.LoadLocation treats "Local" as the host zone; a user profile
	// never means that.
	if name != "Local" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc, nil
		}
	}

	iana, ok := windowsZones[strings.ToLower(name)]
	if !ok {
		return nil, &UnknownTimezoneError{Zone: zone}
	}
	loc, err := time.LoadLocation(iana)
	if err != nil {
		return nil, &UnknownTimezoneError{Zone: zone, Err: err}
	}
	return loc, nil
}

// IANAName returns the IANA identifier for zone, translating Windows names.
// Unknown names are returned unchanged.
func IANAName(zone string) string {
	if iana, ok := windowsZones[strings.ToLower(strings.TrimSpace(zone))]; ok {
		return iana
	}
	return zone
}
