package converter

import (
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/usecase"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appt *entity.Appointment) *dto.AppointmentResponse {
	if appt == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:               appt.ID,
		UserID:           appt.UserID,
		DoctorID:         appt.DoctorID,
		ClinicID:         appt.ClinicID,
		StartTime:        appt.StartTime,
		EndTime:          appt.EndTime,
		Type:             string(appt.Type),
		Status:           string(appt.Status),
		IsEmergency:      appt.IsEmergency,
		ConsultationFee:  appt.ConsultationFee,
		ConfirmationCode: appt.ConfirmationCode,
		BookedAt:         appt.BookedAt,
		ConfirmedAt:      appt.ConfirmedAt,
		PrescriptionID:   appt.PrescriptionID,
		FollowUpDate:     appt.FollowUpDate,
		CreatedAt:        appt.CreatedAt,
		UpdatedAt:        appt.UpdatedAt,
	}

	response.Payment = &dto.PaymentInfoResponse{
		PaymentID: appt.PaymentInfo.PaymentID,
		OrderID:   appt.PaymentInfo.OrderID,
		Amount:    appt.PaymentInfo.Amount,
		Currency:  appt.PaymentInfo.Currency,
		Status:    string(appt.PaymentInfo.Status),
		Method:    appt.PaymentInfo.Method,
		PaidAt:    appt.PaymentInfo.PaidAt,
	}

	if appt.IsCancelled() {
		response.Cancellation = &dto.CancellationInfoResponse{
			Reason:          string(appt.CancellationInfo.Reason),
			Description:     appt.CancellationInfo.Description,
			CancelledAt:     appt.CancellationInfo.CancelledAt,
			RefundAmount:    appt.CancellationInfo.RefundAmount,
			RefundID:        appt.CancellationInfo.RefundID,
			RefundProcessed: appt.CancellationInfo.RefundProcessed,
		}
	}

	if appt.IsOnline() && appt.ConsultationInfo.Link != "" {
		response.Consultation = &dto.ConsultationInfoResponse{
			MeetingID:       appt.ConsultationInfo.MeetingID,
			Link:            appt.ConsultationInfo.Link,
			CallStartedAt:   appt.ConsultationInfo.CallStartedAt,
			CallEndedAt:     appt.ConsultationInfo.CallEndedAt,
			DurationMinutes: appt.ConsultationInfo.DurationMinutes,
		}
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appts []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appts))
	for i := range appts {
		resp := AppointmentToResponse(&appts[i])
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// BookingResultToResponse converts a booking outcome to BookingResponse DTO
func BookingResultToResponse(result *usecase.BookingResult) *dto.BookingResponse {
	if result == nil {
		return nil
	}
	return &dto.BookingResponse{
		Appointment: AppointmentToResponse(result.Appointment),
		PaymentURL:  result.PaymentURL,
	}
}

// SlotsToResponses converts availability slots to DTOs
func SlotsToResponses(slots []usecase.AvailabilitySlot) []dto.AvailabilitySlotResponse {
	responses := make([]dto.AvailabilitySlotResponse, len(slots))
	for i, slot := range slots {
		responses[i] = dto.AvailabilitySlotResponse{
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Fee:       slot.Fee,
		}
	}
	return responses
}
