package dto

import (
	"time"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

type CreateClinicRequest struct {
	Name               string              `json:"name" validate:"required,max=255"`
	RegistrationNumber string              `json:"registration_number" validate:"required,max=100"`
	AddressLine        string              `json:"address_line,omitempty" validate:"max=255"`
	City               string              `json:"city" validate:"required,max=100"`
	Phone              string              `json:"phone,omitempty" validate:"max=20"`
	Email              string              `json:"email,omitempty" validate:"omitempty,email"`
	WorkingHours       entity.WorkingHours `json:"working_hours"`
}

type UpdateClinicRequest struct {
	Name         *string              `json:"name,omitempty" validate:"omitempty,max=255"`
	AddressLine  *string              `json:"address_line,omitempty" validate:"omitempty,max=255"`
	City         *string              `json:"city,omitempty" validate:"omitempty,max=100"`
	Phone        *string              `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email        *string              `json:"email,omitempty" validate:"omitempty,email"`
	Status       *string              `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
	WorkingHours *entity.WorkingHours `json:"working_hours,omitempty"`
}

type ClinicResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	RegistrationNumber string              `json:"registration_number"`
	Status             string              `json:"status"`
	AddressLine        string              `json:"address_line,omitempty"`
	City               string              `json:"city"`
	Phone              string              `json:"phone,omitempty"`
	Email              string              `json:"email,omitempty"`
	WorkingHours       entity.WorkingHours `json:"working_hours"`
	CreatedAt          time.Time           `json:"created_at"`
}

type ClinicListResponse struct {
	Clinics []ClinicResponse `json:"clinics"`
	Total   int              `json:"total"`
}
