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

type ClinicHandler struct {
	clinicUsecase  usecase.ClinicUsecase
	bookingUsecase *usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewClinicHandler(clinicUsecase usecase.ClinicUsecase, bookingUsecase *usecase.BookingUsecase, validator *validator.CustomValidator) *ClinicHandler {
	return &ClinicHandler{
		clinicUsecase:  clinicUsecase,
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *ClinicHandler) actor(w http.ResponseWriter, r *http.Request) *usecase.Actor {
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

func (h *ClinicHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	var req dto.CreateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	clinic, err := h.clinicUsecase.Create(r.Context(), *actor, &req)
	if err != nil {
		switch err {
		case usecase.ErrClinicRegistrationTaken:
			response.Conflict(w, "Registration number already in use")
		default:
			response.InternalServerError(w, "Failed to create clinic")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Clinic created successfully", converter.ClinicToResponse(clinic))
}

func (h *ClinicHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid clinic ID")
		return
	}

	var req dto.UpdateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	clinic, err := h.clinicUsecase.Update(r.Context(), *actor, id, &req)
	if err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		case usecase.ErrClinicNotOwned:
			response.Forbidden(w, "Clinic is owned by another user")
		default:
			response.InternalServerError(w, "Failed to update clinic")
		}
		return
	}

	response.Success(w, http.StatusOK, "Clinic updated successfully", converter.ClinicToResponse(clinic))
}

func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid clinic ID")
		return
	}

	clinic, err := h.clinicUsecase.GetByID(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrClinicNotFound:
			response.NotFound(w, "Clinic not found")
		default:
			response.InternalServerError(w, "Failed to get clinic")
		}
		return
	}

	response.Success(w, http.StatusOK, "Clinic retrieved successfully", converter.ClinicToResponse(clinic))
}

func (h *ClinicHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		response.BadRequest(w, "city query parameter is required")
		return
	}

	clinics, err := h.clinicUsecase.ListByCity(r.Context(), city)
	if err != nil {
		response.InternalServerError(w, "Failed to list clinics")
		return
	}

	response.Success(w, http.StatusOK, "Clinics retrieved successfully", dto.ClinicListResponse{
		Clinics: converter.ClinicsToResponses(clinics),
		Total:   len(clinics),
	})
}
