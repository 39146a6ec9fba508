package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Medication is one line item of a prescription
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
	Notes     string `json:"notes,omitempty"`
}

// Medications is a JSONB list column
type Medications []Medication

func (m Medications) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *Medications) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = Medications{}
		return nil
	}
	return fmt.Errorf("unsupported type for Medications: %T", value)
}

// Prescription is written by a doctor for a completed appointment and linked
// back to it via Appointment.PrescriptionID.
type Prescription struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	DoctorID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"doctor_id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	Diagnosis     string      `gorm:"type:text" json:"diagnosis"`
	Medications   Medications `gorm:"type:jsonb" json:"medications"`
	Advice        string      `gorm:"type:text" json:"advice,omitempty"`
	FollowUpDate  *time.Time  `json:"follow_up_date,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
