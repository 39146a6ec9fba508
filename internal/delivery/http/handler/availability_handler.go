package handler

import (
	"net/http"
	"strconv"
	"time"

	"healthcare-booking-api/internal/converter"
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/usecase"
	"healthcare-booking-api/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AvailabilityHandler struct {
	availabilityUsecase *usecase.AvailabilityUsecase
}

func NewAvailabilityHandler(availabilityUsecase *usecase.AvailabilityUsecase) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityUsecase: availabilityUsecase}
}

// GetDoctorAvailability returns free slots over a date range
// (?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD). start_date defaults to
// today, end_date to start_date.
func (h *AvailabilityHandler) GetDoctorAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	startDate := time.Now().UTC()
	if v := r.URL.Query().Get("start_date"); v != "" {
		startDate, err = time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid start_date, use YYYY-MM-DD")
			return
		}
	}

	endDate := startDate
	if v := r.URL.Query().Get("end_date"); v != "" {
		endDate, err = time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid end_date, use YYYY-MM-DD")
			return
		}
	}
	if endDate.Before(startDate) {
		response.BadRequest(w, "end_date must not be before start_date")
		return
	}

	slots, result := h.availabilityUsecase.GetDoctorAvailabilityRange(r.Context(), doctorID, startDate, endDate)
	if result != nil && !result.OK() {
		response.Error(w, result.Error.HTTPStatus(), result.Message, map[string]interface{}{"code": string(result.Error)})
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", dto.DoctorAvailabilityResponse{
		DoctorID:  doctorID,
		StartDate: startDate.UTC().Truncate(24 * time.Hour),
		EndDate:   endDate.UTC().Truncate(24 * time.Hour),
		Slots:     converter.SlotsToResponses(slots),
		Total:     len(slots),
	})
}

// GetNextAvailableSlots returns the next free slots (?limit=N, default 5).
func (h *AvailabilityHandler) GetNextAvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	slots, result := h.availabilityUsecase.GetNextAvailableSlots(r.Context(), doctorID, limit)
	if result != nil && !result.OK() {
		response.Error(w, result.Error.HTTPStatus(), result.Message, map[string]interface{}{"code": string(result.Error)})
		return
	}

	response.Success(w, http.StatusOK, "Next available slots retrieved", converter.SlotsToResponses(slots))
}
