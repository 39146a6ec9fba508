package dto

import (
	"time"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID          `json:"appointment_id" validate:"required"`
	Diagnosis     string             `json:"diagnosis" validate:"required,max=4000"`
	Medications   entity.Medications `json:"medications" validate:"required,min=1,dive"`
	Advice        string             `json:"advice,omitempty" validate:"max=4000"`
	FollowUpDate  *time.Time         `json:"follow_up_date,omitempty"`
}

type PrescriptionResponse struct {
	ID            uuid.UUID          `json:"id"`
	AppointmentID uuid.UUID          `json:"appointment_id"`
	DoctorID      uuid.UUID          `json:"doctor_id"`
	UserID        uuid.UUID          `json:"user_id"`
	Diagnosis     string             `json:"diagnosis"`
	Medications   entity.Medications `json:"medications"`
	Advice        string             `json:"advice,omitempty"`
	FollowUpDate  *time.Time         `json:"follow_up_date,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}
