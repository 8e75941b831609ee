package model

import (
	"testing"
	"time"
)

func TestRoles_EnumOrder(t *testing.T) {
	want := []Role{"Anonymous", "Guest", "User", "Moderator", "Admin"}
	got := Roles()
	if len(got) != len(want) {
		t.Fatalf("len(Roles()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Roles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseCreatedOn_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	got, err := ParseCreatedOn("09/23/15 08:56 AM", loc)
	if err != nil {
		t.Fatalf("ParseCreatedOn returned error: %v", err)
	}

	want := time.Date(2015, time.September, 23, 8, 56, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ParseCreatedOn = %v, want %v", got, want)
	}
}

func TestParseCreatedOn_PM(t *testing.T) {
	got, err := ParseCreatedOn("05/01/17 01:03 PM", time.UTC)
	if err != nil {
		t.Fatalf("ParseCreatedOn returned error: %v", err)
	}
	if got.Hour() != 13 || got.Minute() != 3 {
		t.Errorf("time = %02d:%02d, want 13:03", got.Hour(), got.Minute())
	}
}

func TestParseCreatedOn_Invalid(t *testing.T) {
	if _, err := ParseCreatedOn("2015-09-23 08:56", time.UTC); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestParseBirthdate(t *testing.T) {
	got, err := ParseBirthdate("1995-08-29")
	if err != nil {
		t.Fatalf("ParseBirthdate returned error: %v", err)
	}
	if got.Year() != 1995 || got.Month() != time.August || got.Day() != 29 {
		t.Errorf("ParseBirthdate = %v, want 1995-08-29", got)
	}
}
