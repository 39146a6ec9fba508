package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"healthcare-booking-api/internal/converter"
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/delivery/http/middleware"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/usecase"
	"healthcare-booking-api/pkg/response"
	"healthcare-booking-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingUsecase *usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase *usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// actor resolves the authenticated caller; a nil pointer means the response
// has already been written.
func (h *BookingHandler) actor(w http.ResponseWriter, r *http.Request) *usecase.Actor {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return nil
	}
	role, _ := middleware.GetRoleFromContext(r.Context())

	actor, err := h.bookingUsecase.Actor(r.Context(), userID, role)
	if err != nil {
		response.InternalServerError(w, "Failed to resolve caller")
		return nil
	}
	return &actor
}

// writeResult maps a booking outcome onto the response envelope.
func writeResult(w http.ResponseWriter, result *usecase.BookingResult, successStatus int, successMessage string) {
	if !result.OK() {
		body := map[string]interface{}{"code": string(result.Error)}
		if result.Appointment != nil {
			body["appointment"] = converter.AppointmentToResponse(result.Appointment)
		}
		response.Error(w, result.Error.HTTPStatus(), result.Message, body)
		return
	}

	message := successMessage
	if result.Message != "" {
		message = result.Message
	}
	response.Success(w, successStatus, message, converter.BookingResultToResponse(result))
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result := h.bookingUsecase.BookAppointment(r.Context(), *actor, &req)
	writeResult(w, result, http.StatusCreated, "Appointment booked")
}

func (h *BookingHandler) BookEmergency(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	var req dto.EmergencyBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result := h.bookingUsecase.BookEmergencyAppointment(r.Context(), *actor, &req)
	writeResult(w, result, http.StatusCreated, "Emergency appointment booked")
}

func (h *BookingHandler) BookFollowUp(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	parentID, ok := appointmentID(w, r)
	if !ok {
		return
	}

	var req dto.FollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result := h.bookingUsecase.BookFollowUp(r.Context(), *actor, parentID, &req)
	writeResult(w, result, http.StatusCreated, "Follow-up appointment booked")
}

func (h *BookingHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	result := h.bookingUsecase.GetAppointment(r.Context(), *actor, id)
	writeResult(w, result, http.StatusOK, "Appointment retrieved")
}

func (h *BookingHandler) GetByConfirmationCode(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	code := mux.Vars(r)["code"]
	result := h.bookingUsecase.GetByConfirmationCode(r.Context(), *actor, code)
	writeResult(w, result, http.StatusOK, "Appointment retrieved")
}

func (h *BookingHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	status := entity.AppointmentStatus(r.URL.Query().Get("status"))
	appts, err := h.bookingUsecase.GetUserAppointments(r.Context(), userID, status)
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	})
}

func (h *BookingHandler) GetDoctorSchedule(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	if !actor.IsAdmin() && !actor.IsDoctor() {
		response.Forbidden(w, "Doctor schedule is not visible to patients")
		return
	}

	doctorID := actor.DoctorID
	if actor.IsAdmin() {
		id, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			response.BadRequest(w, "Invalid doctor ID")
			return
		}
		doctorID = id
	}

	from, to := scheduleRange(r)
	appts, err := h.bookingUsecase.GetDoctorSchedule(r.Context(), doctorID, from, to)
	if err != nil {
		response.InternalServerError(w, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	})
}

// scheduleRange parses optional from/to query params, defaulting to the next
// seven days.
func scheduleRange(r *http.Request) (time.Time, time.Time) {
	now := time.Now().UTC()
	from, to := now.Truncate(24*time.Hour), now.Truncate(24*time.Hour).Add(7*24*time.Hour)
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.Add(24 * time.Hour)
		}
	}
	return from, to
}

func (h *BookingHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	var req dto.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result := h.bookingUsecase.RescheduleAppointment(r.Context(), *actor, id, &req)
	writeResult(w, result, http.StatusOK, "Appointment rescheduled")
}

func (h *BookingHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	var req dto.CancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result := h.bookingUsecase.CancelAppointment(r.Context(), *actor, id, &req)
	writeResult(w, result, http.StatusOK, "Appointment cancelled")
}

func (h *BookingHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	var req dto.PaymentVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result := h.bookingUsecase.VerifyPayment(r.Context(), *actor, id, &req)
	writeResult(w, result, http.StatusOK, "Payment verified")
}

func (h *BookingHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.bookingUsecase.ConfirmAppointment)
}

func (h *BookingHandler) StartConsultation(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.bookingUsecase.StartConsultation)
}

func (h *BookingHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.bookingUsecase.CompleteAppointment)
}

func (h *BookingHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.bookingUsecase.MarkNoShow)
}

func (h *BookingHandler) simpleTransition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor usecase.Actor, id uuid.UUID) *usecase.BookingResult) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	result := op(r.Context(), *actor, id)
	writeResult(w, result, http.StatusOK, "Appointment updated")
}

func (h *BookingHandler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	position, result := h.bookingUsecase.QueueStatus(r.Context(), *actor, id)
	if result != nil && !result.OK() {
		response.Error(w, result.Error.HTTPStatus(), result.Message, map[string]interface{}{"code": string(result.Error)})
		return
	}

	response.Success(w, http.StatusOK, "Queue status retrieved", dto.QueueStatusResponse{
		Position:             position.Position,
		EstimatedWaitMinutes: position.EstimatedWaitMinutes,
	})
}
