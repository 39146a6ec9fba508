package converter

import (
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	response := &dto.DoctorResponse{
		ID:                          doctor.ID,
		UserID:                      doctor.UserID,
		Specialization:              doctor.Specialization,
		Qualification:               doctor.Qualification,
		YearsOfExperience:           doctor.YearsOfExperience,
		City:                        doctor.City,
		Status:                      string(doctor.Status),
		AcceptingBookings:           doctor.AcceptingBookings,
		EmergencyAvailable:          doctor.EmergencyAvailable,
		ConsultationFee:             doctor.ConsultationFee,
		ConsultationDurationMinutes: doctor.ConsultationDurationMinutes,
		ConsultationType:            string(doctor.ConsultationType),
		Availability:                doctor.Availability,
		ClinicID:                    doctor.ClinicID,
		CreatedAt:                   doctor.CreatedAt,
	}

	if doctor.User != nil {
		response.FullName = doctor.User.FullName
	}

	return response
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		resp := DoctorToResponse(&doctors[i])
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
