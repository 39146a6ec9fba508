package handler

import (
	"encoding/json"
	"net/http"

	"healthcare-booking-api/internal/converter"
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/delivery/http/middleware"
	"healthcare-booking-api/internal/usecase"
	"healthcare-booking-api/pkg/response"
	"healthcare-booking-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PrescriptionHandler struct {
	prescriptionUsecase usecase.PrescriptionUsecase
	bookingUsecase      *usecase.BookingUsecase
	validator           *validator.CustomValidator
}

func NewPrescriptionHandler(prescriptionUsecase usecase.PrescriptionUsecase, bookingUsecase *usecase.BookingUsecase, validator *validator.CustomValidator) *PrescriptionHandler {
	return &PrescriptionHandler{
		prescriptionUsecase: prescriptionUsecase,
		bookingUsecase:      bookingUsecase,
		validator:           validator,
	}
}

func (h *PrescriptionHandler) actor(w http.ResponseWriter, r *http.Request) *usecase.Actor {
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

func (h *PrescriptionHandler) IssuePrescription(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	var req dto.CreatePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	prescription, err := h.prescriptionUsecase.Issue(r.Context(), *actor, &req)
	if err != nil {
		switch err {
		case usecase.ErrNotAppointmentsDoctor:
			response.Forbidden(w, "Only the appointment's doctor can issue a prescription")
		case usecase.ErrAppointmentNotCompleted:
			response.UnprocessableEntity(w, "Prescriptions can only be issued for completed appointments")
		case usecase.ErrPrescriptionExists:
			response.Conflict(w, "Appointment already has a prescription")
		default:
			response.InternalServerError(w, "Failed to issue prescription")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Prescription issued successfully", converter.PrescriptionToResponse(prescription))
}

func (h *PrescriptionHandler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid prescription ID")
		return
	}

	prescription, err := h.prescriptionUsecase.GetByID(r.Context(), *actor, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Prescription retrieved successfully", converter.PrescriptionToResponse(prescription))
}

func (h *PrescriptionHandler) GetForAppointment(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	prescription, err := h.prescriptionUsecase.GetForAppointment(r.Context(), *actor, appointmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Prescription retrieved successfully", converter.PrescriptionToResponse(prescription))
}

func (h *PrescriptionHandler) GetMyPrescriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	prescriptions, err := h.prescriptionUsecase.ListForUser(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to list prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Total:         len(prescriptions),
	})
}

func (h *PrescriptionHandler) writeError(w http.ResponseWriter, err error) {
	switch err {
	case usecase.ErrPrescriptionNotFound:
		response.NotFound(w, "Prescription not found")
	case usecase.ErrPrescriptionAccessDenied:
		response.Forbidden(w, "You do not have access to this prescription")
	default:
		response.InternalServerError(w, "Failed to get prescription")
	}
}
