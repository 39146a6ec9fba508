package entity

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed   AppointmentStatus = "CONFIRMED"
	AppointmentStatusInProgress  AppointmentStatus = "IN_PROGRESS"
	AppointmentStatusCompleted   AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled   AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow      AppointmentStatus = "NO_SHOW"
	AppointmentStatusRescheduled AppointmentStatus = "RESCHEDULED"
)

// AppointmentType distinguishes video consults from clinic visits
type AppointmentType string

const (
	AppointmentTypeOnline  AppointmentType = "ONLINE"
	AppointmentTypeOffline AppointmentType = "OFFLINE"
)

// PaymentStatus tracks the payment attached to an appointment
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusPaid              PaymentStatus = "PAID"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

type CancellationReason string

const (
	CancellationReasonPatientRequest    CancellationReason = "PATIENT_REQUEST"
	CancellationReasonDoctorUnavailable CancellationReason = "DOCTOR_UNAVAILABLE"
	CancellationReasonEmergency         CancellationReason = "EMERGENCY"
	CancellationReasonTechnicalIssue    CancellationReason = "TECHNICAL_ISSUE"
	CancellationReasonOther             CancellationReason = "OTHER"
)

// InvalidTransitionError is returned when a state-machine operation is
// attempted from a state it is not legal in. The entity is left unchanged.
type InvalidTransitionError struct {
	Operation string
	Current   AppointmentStatus
	Allowed   []AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("cannot %s appointment in status %s (allowed from: %s)",
		e.Operation, e.Current, strings.Join(allowed, ", "))
}

// PaymentInfo is the payment value embedded in an appointment
type PaymentInfo struct {
	PaymentID string          `gorm:"type:varchar(100)" json:"payment_id,omitempty"`
	OrderID   string          `gorm:"type:varchar(100)" json:"order_id,omitempty"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	Currency  string          `gorm:"type:varchar(8)" json:"currency,omitempty"`
	Status    PaymentStatus   `gorm:"type:varchar(30);default:'PENDING'" json:"status"`
	Method    string          `gorm:"type:varchar(30)" json:"method,omitempty"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

// CancellationInfo is populated only when the appointment is cancelled
type CancellationInfo struct {
	Reason          CancellationReason `gorm:"type:varchar(30)" json:"reason,omitempty"`
	Description     string             `gorm:"type:text" json:"description,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CancelledBy     *uuid.UUID         `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	RefundAmount    decimal.Decimal    `gorm:"type:numeric(10,2)" json:"refund_amount"`
	RefundID        string             `gorm:"type:varchar(100)" json:"refund_id,omitempty"`
	RefundProcessed bool               `gorm:"default:false" json:"refund_processed"`
}

// ConsultationInfo holds video-call details for online appointments
type ConsultationInfo struct {
	MeetingID       string     `gorm:"type:varchar(64)" json:"meeting_id,omitempty"`
	Link            string     `gorm:"type:text" json:"link,omitempty"`
	CallStartedAt   *time.Time `json:"call_started_at,omitempty"`
	CallEndedAt     *time.Time `json:"call_ended_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
}

// Appointment is the central aggregate of the booking engine. All temporal
// fields are UTC instants; the slot is the half-open interval
// [StartTime, EndTime). Status is mutated exclusively through the named
// transition methods below.
type Appointment struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	DoctorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ClinicID *uuid.UUID `gorm:"type:uuid;index" json:"clinic_id,omitempty"`

	AppointmentDate time.Time `gorm:"type:date;not null;index" json:"appointment_date"`
	StartTime       time.Time `gorm:"not null;index" json:"start_time"`
	EndTime         time.Time `gorm:"not null" json:"end_time"`

	Type   AppointmentType   `gorm:"type:varchar(10);not null" json:"type"`
	Status AppointmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	Symptoms    string `gorm:"type:text" json:"symptoms,omitempty"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`
	IsEmergency bool   `gorm:"default:false" json:"is_emergency"`

	ConsultationFee  decimal.Decimal  `gorm:"type:numeric(10,2)" json:"consultation_fee"`
	PaymentInfo      PaymentInfo      `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info"`
	CancellationInfo CancellationInfo `gorm:"embedded;embeddedPrefix:cancellation_" json:"cancellation_info"`
	ConsultationInfo ConsultationInfo `gorm:"embedded;embeddedPrefix:consultation_" json:"consultation_info"`

	ConfirmationCode string     `gorm:"type:varchar(12);uniqueIndex;not null" json:"confirmation_code"`
	BookedAt         time.Time  `gorm:"not null" json:"booked_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`

	PrescriptionID      *uuid.UUID `gorm:"type:uuid" json:"prescription_id,omitempty"`
	FollowUpDate        *time.Time `json:"follow_up_date,omitempty"`
	ParentAppointmentID *uuid.UUID `gorm:"type:uuid" json:"parent_appointment_id,omitempty"`

	// Version guards concurrent status updates (optimistic concurrency).
	Version   int            `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// NewAppointment builds a pending appointment with a fresh confirmation code.
func NewAppointment(userID, doctorID uuid.UUID, clinicID *uuid.UUID, start, end time.Time, apptType AppointmentType) *Appointment {
	return &Appointment{
		ID:               uuid.New(),
		UserID:           userID,
		DoctorID:         doctorID,
		ClinicID:         clinicID,
		AppointmentDate:  start.UTC().Truncate(24 * time.Hour),
		StartTime:        start.UTC(),
		EndTime:          end.UTC(),
		Type:             apptType,
		Status:           AppointmentStatusPending,
		ConfirmationCode: GenerateConfirmationCode(),
		BookedAt:         time.Now().UTC(),
		PaymentInfo:      PaymentInfo{Status: PaymentStatusPending, Currency: "INR"},
		Version:          1,
	}
}

// Status predicates

func (a *Appointment) IsPending() bool    { return a.Status == AppointmentStatusPending }
func (a *Appointment) IsConfirmed() bool  { return a.Status == AppointmentStatusConfirmed }
func (a *Appointment) IsCompleted() bool  { return a.Status == AppointmentStatusCompleted }
func (a *Appointment) IsCancelled() bool  { return a.Status == AppointmentStatusCancelled }
func (a *Appointment) IsOnline() bool     { return a.Type == AppointmentTypeOnline }
func (a *Appointment) IsPaymentPaid() bool {
	return a.PaymentInfo.Status == PaymentStatusPaid
}

func (a *Appointment) isTerminal() bool {
	switch a.Status {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// activeLike reports whether the status behaves like a confirmed booking.
// RESCHEDULED keeps the confirmed semantics with changed times.
func (a *Appointment) activeLike() bool {
	return a.Status == AppointmentStatusConfirmed || a.Status == AppointmentStatusRescheduled
}

// Confirm moves PENDING -> CONFIRMED and records the confirmation instant.
func (a *Appointment) Confirm() error {
	if a.Status != AppointmentStatusPending {
		return &InvalidTransitionError{
			Operation: "confirm",
			Current:   a.Status,
			Allowed:   []AppointmentStatus{AppointmentStatusPending},
		}
	}
	now := time.Now().UTC()
	a.Status = AppointmentStatusConfirmed
	a.ConfirmedAt = &now
	return nil
}

// StartConsultation moves CONFIRMED/RESCHEDULED -> IN_PROGRESS and records
// the call start for online consults.
func (a *Appointment) StartConsultation() error {
	if !a.activeLike() {
		return &InvalidTransitionError{
			Operation: "start",
			Current:   a.Status,
			Allowed:   []AppointmentStatus{AppointmentStatusConfirmed, AppointmentStatusRescheduled},
		}
	}
	now := time.Now().UTC()
	a.Status = AppointmentStatusInProgress
	a.ConsultationInfo.CallStartedAt = &now
	return nil
}

// Complete moves IN_PROGRESS -> COMPLETED. Offline visits have no tracked
// "start", so CONFIRMED/RESCHEDULED offline appointments complete directly.
func (a *Appointment) Complete() error {
	legal := a.Status == AppointmentStatusInProgress ||
		(a.Type == AppointmentTypeOffline && a.activeLike())
	if !legal {
		allowed := []AppointmentStatus{AppointmentStatusInProgress}
		if a.Type == AppointmentTypeOffline {
			allowed = append(allowed, AppointmentStatusConfirmed, AppointmentStatusRescheduled)
		}
		return &InvalidTransitionError{Operation: "complete", Current: a.Status, Allowed: allowed}
	}
	now := time.Now().UTC()
	a.Status = AppointmentStatusCompleted
	if a.ConsultationInfo.CallStartedAt != nil {
		a.ConsultationInfo.CallEndedAt = &now
		a.ConsultationInfo.DurationMinutes = int(now.Sub(*a.ConsultationInfo.CallStartedAt).Minutes())
	}
	return nil
}

// CanBeCancelled is true iff the appointment is not terminal and has not
// started yet.
func (a *Appointment) CanBeCancelled() bool {
	if a.isTerminal() {
		return false
	}
	return a.StartTime.After(time.Now().UTC())
}

// Cancel moves a cancellable appointment to CANCELLED and records who
// cancelled it and why. Refund processing is a separate step, see
// RequiresRefund and ProcessRefund.
func (a *Appointment) Cancel(reason CancellationReason, description string, cancelledBy uuid.UUID) error {
	if !a.CanBeCancelled() {
		return &InvalidTransitionError{
			Operation: "cancel",
			Current:   a.Status,
			Allowed: []AppointmentStatus{
				AppointmentStatusPending, AppointmentStatusConfirmed,
				AppointmentStatusRescheduled, AppointmentStatusInProgress,
			},
		}
	}
	now := time.Now().UTC()
	a.Status = AppointmentStatusCancelled
	a.CancellationInfo.Reason = reason
	a.CancellationInfo.Description = description
	a.CancellationInfo.CancelledAt = &now
	a.CancellationInfo.CancelledBy = &cancelledBy
	return nil
}

// MarkNoShow is legal once the start time has passed while the appointment
// was still waiting to happen.
func (a *Appointment) MarkNoShow() error {
	waiting := a.Status == AppointmentStatusPending || a.activeLike()
	if !waiting || a.StartTime.After(time.Now().UTC()) {
		return &InvalidTransitionError{
			Operation: "mark no-show",
			Current:   a.Status,
			Allowed:   []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusRescheduled},
		}
	}
	a.Status = AppointmentStatusNoShow
	return nil
}

// CanBeRescheduled requires a non-terminal, not-in-progress appointment with
// at least the given notice remaining before its current start time.
func (a *Appointment) CanBeRescheduled(notice time.Duration) bool {
	if a.isTerminal() || a.Status == AppointmentStatusInProgress {
		return false
	}
	return time.Until(a.StartTime) >= notice
}

// Reschedule shifts the appointment to a new start, preserving the original
// duration exactly.
func (a *Appointment) Reschedule(newStart time.Time, notice time.Duration) error {
	if !a.CanBeRescheduled(notice) {
		return &InvalidTransitionError{
			Operation: "reschedule",
			Current:   a.Status,
			Allowed:   []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusRescheduled},
		}
	}
	duration := a.EndTime.Sub(a.StartTime)
	a.StartTime = newStart.UTC()
	a.EndTime = newStart.UTC().Add(duration)
	a.AppointmentDate = newStart.UTC().Truncate(24 * time.Hour)
	a.Status = AppointmentStatusRescheduled
	return nil
}

// Payment operations

// MarkPaid records a successful gateway payment.
func (a *Appointment) MarkPaid(paymentID, method string) {
	now := time.Now().UTC()
	a.PaymentInfo.PaymentID = paymentID
	a.PaymentInfo.Method = method
	a.PaymentInfo.Status = PaymentStatusPaid
	a.PaymentInfo.PaidAt = &now
}

func (a *Appointment) MarkPaymentFailed() {
	a.PaymentInfo.Status = PaymentStatusFailed
}

// RequiresRefund is true for a cancelled, paid appointment whose refund has
// not been processed yet.
func (a *Appointment) RequiresRefund() bool {
	return a.Status == AppointmentStatusCancelled &&
		a.PaymentInfo.Status == PaymentStatusPaid &&
		!a.CancellationInfo.RefundProcessed
}

var ErrRefundAlreadyProcessed = fmt.Errorf("refund already processed")
var ErrRefundNotRequired = fmt.Errorf("appointment does not require a refund")

// ProcessRefund records the refund outcome. It is idempotent: a second call
// fails without changing payment state.
func (a *Appointment) ProcessRefund(amount decimal.Decimal, refundID string) error {
	if a.CancellationInfo.RefundProcessed {
		return ErrRefundAlreadyProcessed
	}
	if !a.RequiresRefund() {
		return ErrRefundNotRequired
	}
	a.CancellationInfo.RefundAmount = amount
	a.CancellationInfo.RefundID = refundID
	a.CancellationInfo.RefundProcessed = true
	if amount.LessThan(a.PaymentInfo.Amount) {
		a.PaymentInfo.Status = PaymentStatusPartiallyRefunded
	} else {
		a.PaymentInfo.Status = PaymentStatusRefunded
	}
	return nil
}

// Consultation helpers

// GenerateMeetingLink provisions the video room for online appointments.
func (a *Appointment) GenerateMeetingLink() {
	if a.Type != AppointmentTypeOnline {
		return
	}
	a.ConsultationInfo.MeetingID = uuid.NewString()
	a.ConsultationInfo.Link = "https://meet.healthcare.local/room/" + a.ConsultationInfo.MeetingID
}

// Temporal helpers

func (a *Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime).Minutes())
}

// IsValidTimeSlot checks the basic slot invariant: start before end and at
// least the minimum duration.
func (a *Appointment) IsValidTimeSlot(minDuration time.Duration) bool {
	return a.StartTime.Before(a.EndTime) && a.EndTime.Sub(a.StartTime) >= minDuration
}

func (a *Appointment) IsUpcoming() bool {
	return a.StartTime.After(time.Now().UTC()) &&
		(a.Status == AppointmentStatusPending || a.activeLike())
}

func (a *Appointment) IsPast() bool {
	return a.EndTime.Before(time.Now().UTC())
}

// Overlaps reports whether the half-open intervals [a.Start, a.End) and
// [start, end) intersect. Back-to-back slots do not overlap.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// GenerateConfirmationCode returns a short human-shareable code: "APT" plus
// six hex characters.
func GenerateConfirmationCode() string {
	b := make([]byte, 3)
	rand.Read(b)
	return fmt.Sprintf("APT%06X", b)
}
