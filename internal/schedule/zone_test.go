package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestLoadZone(t *testing.T) {
	tests := []struct {
		zone    string
		want    string
		wantErr bool
	}{
		{zone: "Europe/Berlin", want: "Europe/Berlin"},
		{zone: "  Asia/Tokyo ", want: "Asia/Tokyo"},
		{zone: "UTC", want: "UTC"},
		{zone: "Eastern", want: "America/New_York"},
		{zone: "Eastern Standard Time", want: "America/New_York"},
		{zone: "pacific standard time", want: "America/Los_Angeles"},
		{zone: "W. Europe Standard Time", want: "Europe/Berlin"},
		{zone: "India Standard Time", want: "Asia/Kolkata"},
		{zone: "", wantErr: true},
		{zone: "Local", wantErr: true},
		{zone: "Not/AZone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			loc, err := LoadZone(tt.zone)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownTimezone) {
					t.Errorf("LoadZone(%q) error = %v, want ErrUnknownTimezone", tt.zone, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadZone(%q) error = %v", tt.zone, err)
			}
			if loc.String() != tt.want {
				t.Errorf("LoadZone(%q) = %s, want %s", tt.zone, loc, tt.want)
			}
		})
	}
}

func TestIANAName(t *testing.T) {
	if got := IANAName("Romance Standard Time"); got != "Europe/Paris" {
		t.Errorf("IANAName() = %q, want Europe/Paris", got)
	}
	if got := IANAName("Europe/Paris"); got != "Europe/Paris" {
		t.Errorf("IANAName() = %q, want the input unchanged", got)
	}
}

func TestZonedDateTime_Time(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 5, 6, 9, 30, 0, 0, berlin)

	for _, raw := range []string{
		"2024-05-06T09:30:00",
		"2024-05-06T09:30:00.0000000",
		"2024-05-06T09:30",
		"2024-05-06T07:30:00Z",
	} {
		t.Run(raw, func(t *testing.T) {
			got, err := ZonedDateTime{DateTime: raw, TimeZone: "W. Europe Standard Time"}.Time()
			if err != nil {
				t.Fatalf("Time() error = %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("Time() = %s, want %s", got, want)
			}
		})
	}

	if _, err := (ZonedDateTime{DateTime: "next tuesday", TimeZone: "UTC"}).Time(); err == nil {
		t.Error("expected error for an unparseable timestamp")
	}
	if _, err := (ZonedDateTime{DateTime: "2024-05-06T09:30:00", TimeZone: "Nowhere"}).Time(); !errors.Is(err, ErrUnknownTimezone) {
		t.Errorf("Time() error = %v, want ErrUnknownTimezone", err)
	}
}

func TestNewZonedDateTime(t *testing.T) {
	loc, err := LoadZone("Tokyo Standard Time")
	if err != nil {
		t.Fatal(err)
	}

	got := NewZonedDateTime(time.Date(2024, 5, 6, 0, 15, 0, 0, time.UTC), loc, "Tokyo Standard Time")
	want := ZonedDateTime{DateTime: "2024-05-06T09:15:00", TimeZone: "Tokyo Standard Time"}
	if got != want {
		t.Errorf("NewZonedDateTime() = %+v, want %+v", got, want)
	}
}
