package handler

import (
	"context"
	"encoding/json"
	"net/http"

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

type DoctorHandler struct {
	doctorUsecase  usecase.DoctorUsecase
	bookingUsecase *usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, bookingUsecase *usecase.BookingUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase:  doctorUsecase,
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := h.doctorUsecase.GetByID(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to get doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", converter.DoctorToResponse(doctor))
}

func (h *DoctorHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	req := dto.SearchDoctorsRequest{
		Specialization: r.URL.Query().Get("specialization"),
		City:           r.URL.Query().Get("city"),
		Type:           r.URL.Query().Get("type"),
	}

	doctors, err := h.doctorUsecase.Search(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to search doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	})
}

func (h *DoctorHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	userID, okUser := middleware.GetUserIDFromContext(r.Context())
	if !okUser {
		response.Unauthorized(w, "Invalid token")
		return
	}
	role, _ := middleware.GetRoleFromContext(r.Context())

	actor, err := h.bookingUsecase.Actor(r.Context(), userID, role)
	if err != nil {
		response.InternalServerError(w, "Failed to resolve caller")
		return
	}

	var req dto.UpdateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.UpdateProfile(r.Context(), actor, id, &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.Forbidden(w, err.Error())
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor updated successfully", converter.DoctorToResponse(doctor))
}

func (h *DoctorHandler) VerifyDoctor(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.doctorUsecase.Verify, "Doctor verified successfully")
}

func (h *DoctorHandler) SuspendDoctor(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.doctorUsecase.Suspend, "Doctor suspended")
}

func (h *DoctorHandler) setStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) (*entity.Doctor, error), message string) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := op(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to update doctor status")
		}
		return
	}

	response.Success(w, http.StatusOK, message, converter.DoctorToResponse(doctor))
}
