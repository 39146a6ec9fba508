package entity

import (
	"testing"
	"time"
)

func TestDoctorIsBookable(t *testing.T) {
	tests := []struct {
		name      string
		status    DoctorStatus
		accepting bool
		want      bool
	}{
		{"verified accepting", DoctorStatusVerified, true, true},
		{"verified not accepting", DoctorStatusVerified, false, false},
		{"pending verification", DoctorStatusPendingVerification, true, false},
		{"suspended", DoctorStatusSuspended, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Doctor{Status: tt.status, AcceptingBookings: tt.accepting}
			if got := d.IsBookable(); got != tt.want {
				t.Fatalf("IsBookable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDoctorSupportsType(t *testing.T) {
	tests := []struct {
		mode ConsultationType
		appt AppointmentType
		want bool
	}{
		{ConsultationTypeBoth, AppointmentTypeOnline, true},
		{ConsultationTypeBoth, AppointmentTypeOffline, true},
		{ConsultationTypeOnline, AppointmentTypeOnline, true},
		{ConsultationTypeOnline, AppointmentTypeOffline, false},
		{ConsultationTypeOffline, AppointmentTypeOffline, true},
		{ConsultationTypeOffline, AppointmentTypeOnline, false},
	}
	for _, tt := range tests {
		d := &Doctor{ConsultationType: tt.mode}
		if got := d.SupportsType(tt.appt); got != tt.want {
			t.Fatalf("%s doctor SupportsType(%s) = %v, want %v", tt.mode, tt.appt, got, tt.want)
		}
	}
}

func TestDoctorIsAvailableAt(t *testing.T) {
	d := &Doctor{
		Availability: WeeklyAvailability{
			"MONDAY": {{Start: "09:00", End: "12:00"}, {Start: "14:00", End: "17:00"}},
		},
	}

	// 2026-09-07 is a Monday.
	monday := func(hour, min int) time.Time {
		return time.Date(2026, 9, 7, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"morning window", monday(10, 30), true},
		{"window start inclusive", monday(9, 0), true},
		{"window end exclusive", monday(12, 0), false},
		{"lunch gap", monday(13, 0), false},
		{"afternoon window", monday(15, 0), true},
		{"after hours", monday(18, 0), false},
		{"day without windows", time.Date(2026, 9, 8, 10, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.IsAvailableAt(tt.at); got != tt.want {
				t.Fatalf("IsAvailableAt(%s) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestWeeklyAvailabilityWindowsOn(t *testing.T) {
	w := WeeklyAvailability{
		"MONDAY": {{Start: "09:00", End: "12:00"}},
	}
	monday := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	if got := w.WindowsOn(monday); len(got) != 1 || got[0].Start != "09:00" {
		t.Fatalf("WindowsOn(monday) = %v", got)
	}
	tuesday := monday.Add(24 * time.Hour)
	if got := w.WindowsOn(tuesday); got != nil {
		t.Fatalf("WindowsOn(tuesday) = %v, want nil", got)
	}
}
