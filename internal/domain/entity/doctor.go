package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DoctorStatus represents the verification state of a doctor. Only VERIFIED
// doctors can be booked.
type DoctorStatus string

const (
	DoctorStatusPendingVerification DoctorStatus = "PENDING_VERIFICATION"
	DoctorStatusVerified            DoctorStatus = "VERIFIED"
	DoctorStatusSuspended           DoctorStatus = "SUSPENDED"
	DoctorStatusInactive            DoctorStatus = "INACTIVE"
)

// ConsultationType is the set of consult modes a doctor supports
type ConsultationType string

const (
	ConsultationTypeOnline  ConsultationType = "ONLINE"
	ConsultationTypeOffline ConsultationType = "OFFLINE"
	ConsultationTypeBoth    ConsultationType = "BOTH"
)

// TimeWindow is an HH:MM open interval within a day
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyAvailability maps upper-case weekday names (MONDAY..SUNDAY) to the
// windows a doctor consults in. Stored as a JSONB column.
type WeeklyAvailability map[string][]TimeWindow

func (w WeeklyAvailability) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	b, err := json.Marshal(w)
	return string(b), err
}

func (w *WeeklyAvailability) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	case nil:
		*w = WeeklyAvailability{}
		return nil
	}
	return fmt.Errorf("unsupported type for WeeklyAvailability: %T", value)
}

// WindowsOn returns the availability windows for the weekday of t (UTC).
func (w WeeklyAvailability) WindowsOn(t time.Time) []TimeWindow {
	return w[strings.ToUpper(t.UTC().Weekday().String())]
}

// Doctor is the bookable practitioner aggregate, referenced by the booking
// engine by id.
type Doctor struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	MedicalLicense      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"medical_license"`
	Specialization      string    `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Qualification       string    `gorm:"type:varchar(255)" json:"qualification,omitempty"`
	YearsOfExperience   int       `json:"years_of_experience"`
	Bio                 string    `gorm:"type:text" json:"bio,omitempty"`
	City                string    `gorm:"type:varchar(100);index" json:"city"`

	Status            DoctorStatus `gorm:"type:varchar(30);not null;default:'PENDING_VERIFICATION';index" json:"status"`
	AcceptingBookings bool         `gorm:"default:true" json:"accepting_bookings"`
	EmergencyAvailable bool        `gorm:"default:false;index" json:"emergency_available"`

	ConsultationFee             decimal.Decimal    `gorm:"type:numeric(10,2);not null" json:"consultation_fee"`
	ConsultationDurationMinutes int                `gorm:"not null;default:30" json:"consultation_duration_minutes"`
	ConsultationType            ConsultationType   `gorm:"type:varchar(10);not null;default:'BOTH'" json:"consultation_type"`
	Availability                WeeklyAvailability `gorm:"type:jsonb" json:"availability"`

	ClinicID *uuid.UUID `gorm:"type:uuid;index" json:"clinic_id,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Clinic *Clinic `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d *Doctor) IsVerified() bool {
	return d.Status == DoctorStatusVerified
}

// IsBookable is the full gate the booking engine applies before any slot math.
func (d *Doctor) IsBookable() bool {
	return d.IsVerified() && d.AcceptingBookings
}

// SupportsType reports whether the doctor offers the requested consult mode.
func (d *Doctor) SupportsType(t AppointmentType) bool {
	switch d.ConsultationType {
	case ConsultationTypeBoth:
		return true
	case ConsultationTypeOnline:
		return t == AppointmentTypeOnline
	case ConsultationTypeOffline:
		return t == AppointmentTypeOffline
	}
	return false
}

// ConsultationDuration returns the slot length for this doctor.
func (d *Doctor) ConsultationDuration() time.Duration {
	return time.Duration(d.ConsultationDurationMinutes) * time.Minute
}

// IsAvailableAt reports whether t falls inside one of the doctor's weekly
// availability windows.
func (d *Doctor) IsAvailableAt(t time.Time) bool {
	hm := t.UTC().Format("15:04")
	for _, w := range d.Availability.WindowsOn(t) {
		if hm >= w.Start && hm < w.End {
			return true
		}
	}
	return false
}
