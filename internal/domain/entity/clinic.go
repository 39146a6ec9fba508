package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClinicStatus gates whether a clinic accepts bookings
type ClinicStatus string

const (
	ClinicStatusActive              ClinicStatus = "ACTIVE"
	ClinicStatusInactive            ClinicStatus = "INACTIVE"
	ClinicStatusPendingVerification ClinicStatus = "PENDING_VERIFICATION"
	ClinicStatusSuspended           ClinicStatus = "SUSPENDED"
)

// DayHours is a single day's opening schedule. Times are HH:MM; break
// windows model the lunch closure.
type DayHours struct {
	Open       string `json:"open"`
	Close      string `json:"close"`
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
	Closed     bool   `json:"closed,omitempty"`
}

// WorkingHours maps upper-case weekday names to that day's schedule. Stored
// as a JSONB column.
type WorkingHours map[string]DayHours

func (w WorkingHours) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	b, err := json.Marshal(w)
	return string(b), err
}

func (w *WorkingHours) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	case nil:
		*w = WorkingHours{}
		return nil
	}
	return fmt.Errorf("unsupported type for WorkingHours: %T", value)
}

// Clinic is consumed by the booking engine for offline visits: the clinic
// must be ACTIVE and open (outside break windows) at the requested time.
type Clinic struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name               string       `gorm:"type:varchar(255);not null" json:"name"`
	RegistrationNumber string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"registration_number"`
	Status             ClinicStatus `gorm:"type:varchar(30);not null;default:'PENDING_VERIFICATION';index" json:"status"`

	AddressLine string `gorm:"type:varchar(255)" json:"address_line,omitempty"`
	City        string `gorm:"type:varchar(100);index" json:"city"`
	Phone       string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email       string `gorm:"type:varchar(255)" json:"email,omitempty"`

	Hours WorkingHours `gorm:"type:jsonb" json:"working_hours"`

	OwnerID uuid.UUID `gorm:"type:uuid;not null" json:"owner_id"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Clinic) TableName() string {
	return "clinics"
}

func (c *Clinic) IsOperational() bool {
	return c.Status == ClinicStatusActive
}

// IsOpenAt reports whether the clinic is open at t (UTC), excluding the
// day's break window.
func (c *Clinic) IsOpenAt(t time.Time) bool {
	day, ok := c.Hours[strings.ToUpper(t.UTC().Weekday().String())]
	if !ok || day.Closed {
		return false
	}
	hm := t.UTC().Format("15:04")
	if hm < day.Open || hm >= day.Close {
		return false
	}
	if day.BreakStart != "" && day.BreakEnd != "" && hm >= day.BreakStart && hm < day.BreakEnd {
		return false
	}
	return true
}

// OpenWindowsOn returns the open intervals for the weekday of t, split
// around the break window. Used by availability computation.
func (c *Clinic) OpenWindowsOn(t time.Time) []TimeWindow {
	day, ok := c.Hours[strings.ToUpper(t.UTC().Weekday().String())]
	if !ok || day.Closed {
		return nil
	}
	if day.BreakStart != "" && day.BreakEnd != "" && day.BreakStart > day.Open && day.BreakEnd < day.Close {
		return []TimeWindow{
			{Start: day.Open, End: day.BreakStart},
			{Start: day.BreakEnd, End: day.Close},
		}
	}
	return []TimeWindow{{Start: day.Open, End: day.Close}}
}
