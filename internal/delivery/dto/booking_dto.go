package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID  uuid.UUID  `json:"doctor_id" validate:"required"`
	ClinicID  *uuid.UUID `json:"clinic_id,omitempty"`
	StartTime time.Time  `json:"start_time" validate:"required"`
	Type      string     `json:"type" validate:"required,oneof=ONLINE OFFLINE"`
	Symptoms  string     `json:"symptoms,omitempty" validate:"max=2000"`
	Notes     string     `json:"notes,omitempty" validate:"max=2000"`
}

type EmergencyBookingRequest struct {
	DoctorID *uuid.UUID `json:"doctor_id,omitempty"`
	City     string     `json:"city" validate:"required_without=DoctorID,max=100"`
	Symptoms string     `json:"symptoms,omitempty" validate:"max=2000"`
}

type FollowUpRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	Notes     string    `json:"notes,omitempty" validate:"max=2000"`
}

type RescheduleRequest struct {
	NewStartTime time.Time `json:"new_start_time" validate:"required"`
	Reason       string    `json:"reason,omitempty" validate:"max=500"`
}

type CancellationRequest struct {
	Reason      string `json:"reason" validate:"required,oneof=PATIENT_REQUEST DOCTOR_UNAVAILABLE EMERGENCY TECHNICAL_ISSUE OTHER"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

type PaymentVerificationRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	Method    string `json:"method,omitempty" validate:"max=30"`
}

// Response DTOs

type PaymentInfoResponse struct {
	PaymentID string          `json:"payment_id,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency,omitempty"`
	Status    string          `json:"status"`
	Method    string          `json:"method,omitempty"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

type CancellationInfoResponse struct {
	Reason          string          `json:"reason,omitempty"`
	Description     string          `json:"description,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	RefundID        string          `json:"refund_id,omitempty"`
	RefundProcessed bool            `json:"refund_processed"`
}

type ConsultationInfoResponse struct {
	MeetingID       string     `json:"meeting_id,omitempty"`
	Link            string     `json:"link,omitempty"`
	CallStartedAt   *time.Time `json:"call_started_at,omitempty"`
	CallEndedAt     *time.Time `json:"call_ended_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
}

type AppointmentResponse struct {
	ID               uuid.UUID                 `json:"id"`
	UserID           uuid.UUID                 `json:"user_id"`
	DoctorID         uuid.UUID                 `json:"doctor_id"`
	ClinicID         *uuid.UUID                `json:"clinic_id,omitempty"`
	StartTime        time.Time                 `json:"start_time"`
	EndTime          time.Time                 `json:"end_time"`
	Type             string                    `json:"type"`
	Status           string                    `json:"status"`
	IsEmergency      bool                      `json:"is_emergency"`
	ConsultationFee  decimal.Decimal           `json:"consultation_fee"`
	ConfirmationCode string                    `json:"confirmation_code"`
	BookedAt         time.Time                 `json:"booked_at"`
	ConfirmedAt      *time.Time                `json:"confirmed_at,omitempty"`
	Payment          *PaymentInfoResponse      `json:"payment,omitempty"`
	Cancellation     *CancellationInfoResponse `json:"cancellation,omitempty"`
	Consultation     *ConsultationInfoResponse `json:"consultation,omitempty"`
	PrescriptionID   *uuid.UUID                `json:"prescription_id,omitempty"`
	FollowUpDate     *time.Time                `json:"follow_up_date,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

type BookingResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
	PaymentURL  string               `json:"payment_url,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type QueueStatusResponse struct {
	Position             int `json:"position"`
	EstimatedWaitMinutes int `json:"estimated_wait_minutes"`
}
