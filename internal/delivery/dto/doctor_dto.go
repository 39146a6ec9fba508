package dto

import (
	"time"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	UserID                      uuid.UUID                 `json:"user_id" validate:"required"`
	MedicalLicense              string                    `json:"medical_license" validate:"required,max=50"`
	Specialization              string                    `json:"specialization" validate:"required,max=100"`
	Qualification               string                    `json:"qualification,omitempty" validate:"max=255"`
	YearsOfExperience           int                       `json:"years_of_experience" validate:"gte=0,lte=80"`
	City                        string                    `json:"city" validate:"required,max=100"`
	ConsultationFee             decimal.Decimal           `json:"consultation_fee" validate:"required"`
	ConsultationDurationMinutes int                       `json:"consultation_duration_minutes" validate:"required,gte=15,lte=240"`
	ConsultationType            string                    `json:"consultation_type" validate:"required,oneof=ONLINE OFFLINE BOTH"`
	Availability                entity.WeeklyAvailability `json:"availability"`
	ClinicID                    *uuid.UUID                `json:"clinic_id,omitempty"`
	EmergencyAvailable          bool                      `json:"emergency_available"`
}

type UpdateDoctorRequest struct {
	Specialization              *string                    `json:"specialization,omitempty" validate:"omitempty,max=100"`
	Bio                         *string                    `json:"bio,omitempty" validate:"omitempty,max=4000"`
	City                        *string                    `json:"city,omitempty" validate:"omitempty,max=100"`
	ConsultationFee             *decimal.Decimal           `json:"consultation_fee,omitempty"`
	ConsultationDurationMinutes *int                       `json:"consultation_duration_minutes,omitempty" validate:"omitempty,gte=15,lte=240"`
	ConsultationType            *string                    `json:"consultation_type,omitempty" validate:"omitempty,oneof=ONLINE OFFLINE BOTH"`
	Availability                *entity.WeeklyAvailability `json:"availability,omitempty"`
	AcceptingBookings           *bool                      `json:"accepting_bookings,omitempty"`
	EmergencyAvailable          *bool                      `json:"emergency_available,omitempty"`
}

type SearchDoctorsRequest struct {
	Specialization string `json:"specialization,omitempty"`
	City           string `json:"city,omitempty"`
	Type           string `json:"type,omitempty"`
}

// Response DTOs

type DoctorResponse struct {
	ID                          uuid.UUID                 `json:"id"`
	UserID                      uuid.UUID                 `json:"user_id"`
	FullName                    string                    `json:"full_name,omitempty"`
	Specialization              string                    `json:"specialization"`
	Qualification               string                    `json:"qualification,omitempty"`
	YearsOfExperience           int                       `json:"years_of_experience"`
	City                        string                    `json:"city"`
	Status                      string                    `json:"status"`
	AcceptingBookings           bool                      `json:"accepting_bookings"`
	EmergencyAvailable          bool                      `json:"emergency_available"`
	ConsultationFee             decimal.Decimal           `json:"consultation_fee"`
	ConsultationDurationMinutes int                       `json:"consultation_duration_minutes"`
	ConsultationType            string                    `json:"consultation_type"`
	Availability                entity.WeeklyAvailability `json:"availability,omitempty"`
	ClinicID                    *uuid.UUID                `json:"clinic_id,omitempty"`
	CreatedAt                   time.Time                 `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
