package entity

import (
	"testing"
	"time"
)

func clinicWithHours(hours WorkingHours) *Clinic {
	return &Clinic{Status: ClinicStatusActive, Hours: hours}
}

func TestClinicIsOpenAt(t *testing.T) {
	c := clinicWithHours(WorkingHours{
		"MONDAY": {Open: "09:00", Close: "18:00", BreakStart: "13:00", BreakEnd: "14:00"},
		"SUNDAY": {Closed: true},
	})

	// 2026-09-07 is a Monday.
	monday := func(hour, min int) time.Time {
		return time.Date(2026, 9, 7, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"mid morning", monday(10, 0), true},
		{"opening time inclusive", monday(9, 0), true},
		{"closing time exclusive", monday(18, 0), false},
		{"before open", monday(8, 59), false},
		{"break start exclusive", monday(13, 0), false},
		{"inside break", monday(13, 30), false},
		{"break end inclusive", monday(14, 0), true},
		{"closed day", time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC), false},
		{"day without hours", time.Date(2026, 9, 8, 10, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsOpenAt(tt.at); got != tt.want {
				t.Fatalf("IsOpenAt(%s) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestClinicOpenWindowsOn(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	t.Run("split around break", func(t *testing.T) {
		c := clinicWithHours(WorkingHours{
			"MONDAY": {Open: "09:00", Close: "18:00", BreakStart: "13:00", BreakEnd: "14:00"},
		})
		got := c.OpenWindowsOn(monday)
		want := []TimeWindow{{Start: "09:00", End: "13:00"}, {Start: "14:00", End: "18:00"}}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("OpenWindowsOn = %v, want %v", got, want)
		}
	})

	t.Run("no break", func(t *testing.T) {
		c := clinicWithHours(WorkingHours{
			"MONDAY": {Open: "09:00", Close: "18:00"},
		})
		got := c.OpenWindowsOn(monday)
		if len(got) != 1 || got[0] != (TimeWindow{Start: "09:00", End: "18:00"}) {
			t.Fatalf("OpenWindowsOn = %v", got)
		}
	})

	t.Run("closed day", func(t *testing.T) {
		c := clinicWithHours(WorkingHours{"MONDAY": {Closed: true}})
		if got := c.OpenWindowsOn(monday); got != nil {
			t.Fatalf("OpenWindowsOn = %v, want nil", got)
		}
	})
}

func TestClinicIsOperational(t *testing.T) {
	for status, want := range map[ClinicStatus]bool{
		ClinicStatusActive:              true,
		ClinicStatusInactive:            false,
		ClinicStatusPendingVerification: false,
		ClinicStatusSuspended:           false,
	} {
		c := &Clinic{Status: status}
		if got := c.IsOperational(); got != want {
			t.Fatalf("IsOperational with %s = %v, want %v", status, got, want)
		}
	}
}
