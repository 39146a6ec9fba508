package converter

import (
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
)

// ClinicToResponse converts a Clinic entity to ClinicResponse DTO
func ClinicToResponse(clinic *entity.Clinic) *dto.ClinicResponse {
	if clinic == nil {
		return nil
	}

	return &dto.ClinicResponse{
		ID:                 clinic.ID,
		Name:               clinic.Name,
		RegistrationNumber: clinic.RegistrationNumber,
		Status:             string(clinic.Status),
		AddressLine:        clinic.AddressLine,
		City:               clinic.City,
		Phone:              clinic.Phone,
		Email:              clinic.Email,
		WorkingHours:       clinic.Hours,
		CreatedAt:          clinic.CreatedAt,
	}
}

// ClinicsToResponses converts a slice of Clinic entities to slice of ClinicResponse DTOs
func ClinicsToResponses(clinics []entity.Clinic) []dto.ClinicResponse {
	responses := make([]dto.ClinicResponse, len(clinics))
	for i := range clinics {
		resp := ClinicToResponse(&clinics[i])
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
