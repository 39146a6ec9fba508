package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AvailabilitySlotResponse struct {
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Fee       decimal.Decimal `json:"fee"`
}

type DoctorAvailabilityResponse struct {
	DoctorID  uuid.UUID                  `json:"doctor_id"`
	StartDate time.Time                  `json:"start_date"`
	EndDate   time.Time                  `json:"end_date"`
	Slots     []AvailabilitySlotResponse `json:"slots"`
	Total     int                        `json:"total"`
}
