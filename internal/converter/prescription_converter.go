package converter

import (
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
)

// PrescriptionToResponse converts a Prescription entity to PrescriptionResponse DTO
func PrescriptionToResponse(p *entity.Prescription) *dto.PrescriptionResponse {
	if p == nil {
		return nil
	}

	return &dto.PrescriptionResponse{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		DoctorID:      p.DoctorID,
		UserID:        p.UserID,
		Diagnosis:     p.Diagnosis,
		Medications:   p.Medications,
		Advice:        p.Advice,
		FollowUpDate:  p.FollowUpDate,
		CreatedAt:     p.CreatedAt,
	}
}

// PrescriptionsToResponses converts a slice of Prescription entities to slice of PrescriptionResponse DTOs
func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i := range prescriptions {
		resp := PrescriptionToResponse(&prescriptions[i])
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
