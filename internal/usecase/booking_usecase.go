package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthcare-booking-api/config"
	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/domain/repository"
	"healthcare-booking-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Actor is the authenticated caller of a booking operation as resolved from
// JWT claims. DoctorID is uuid.Nil unless the caller holds the doctor role.
type Actor struct {
	UserID   uuid.UUID
	Role     string
	DoctorID uuid.UUID
}

func (a Actor) IsAdmin() bool  { return a.Role == entity.RoleAdmin }
func (a Actor) IsDoctor() bool { return a.Role == entity.RoleDoctor }

// CanAccessAppointment implements the ownership rule: patients see their own
// appointments, doctors see appointments booked with them, admins see all.
func CanAccessAppointment(actor Actor, appt *entity.Appointment) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsDoctor() {
		return actor.DoctorID != uuid.Nil && appt.DoctorID == actor.DoctorID
	}
	return appt.UserID == actor.UserID
}

// ResolveActor attaches the doctor record id for doctor-role callers so the
// ownership check can compare against Appointment.DoctorID.
func ResolveActor(ctx context.Context, doctorRepo repository.DoctorRepository, userID uuid.UUID, role string) (Actor, error) {
	actor := Actor{UserID: userID, Role: role}
	if role != entity.RoleDoctor {
		return actor, nil
	}
	doctor, err := doctorRepo.FindByUserID(ctx, userID)
	if err != nil {
		return actor, err
	}
	if doctor != nil {
		actor.DoctorID = doctor.ID
	}
	return actor, nil
}

// Actor resolves the caller against the doctor table using the usecase's
// own repository; convenience for the HTTP layer.
func (u *BookingUsecase) Actor(ctx context.Context, userID uuid.UUID, role string) (Actor, error) {
	return ResolveActor(ctx, u.doctors, userID, role)
}

// QueuePosition is the live-queue answer for an appointment.
type QueuePosition struct {
	Position             int
	EstimatedWaitMinutes int
}

// BookingResult is the uniform outcome of every booking operation: an empty
// Error means success. Appointment is attached whenever one exists, including
// on PAYMENT_FAILED, where the reserved slot is returned so the client can
// retry payment or cancel.
type BookingResult struct {
	Error       BookingError
	Message     string
	Appointment *entity.Appointment
	PaymentURL  string
}

func (r *BookingResult) OK() bool { return r.Error == BookingErrorNone }

func okResult(message string, appt *entity.Appointment) *BookingResult {
	return &BookingResult{Message: message, Appointment: appt}
}

func failResult(code BookingError, message string) *BookingResult {
	return &BookingResult{Error: code, Message: message}
}

// BookingUsecase is the core booking engine. It owns the workflow rules;
// atomicity of the conflict-check+insert pair lives in the appointment
// repository, and the per-doctor Redis lock keeps concurrent requests for
// the same doctor from hammering that transaction.
type BookingUsecase struct {
	appointments  repository.AppointmentRepository
	doctors       repository.DoctorRepository
	clinics       repository.ClinicRepository
	locks         service.SlotLocker
	payments      service.PaymentService
	notifications service.NotificationService
	cache         EntityCache
	log           *logrus.Logger
	cfg           config.BookingConfig
}

func NewBookingUsecase(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	clinics repository.ClinicRepository,
	locks service.SlotLocker,
	payments service.PaymentService,
	notifications service.NotificationService,
	cache EntityCache,
	log *logrus.Logger,
	cfg config.BookingConfig,
) *BookingUsecase {
	return &BookingUsecase{
		appointments:  appointments,
		doctors:       doctors,
		clinics:       clinics,
		locks:         locks,
		payments:      payments,
		notifications: notifications,
		cache:         cache,
		log:           log,
		cfg:           cfg,
	}
}

// BookAppointment runs the standard booking workflow: validate the doctor,
// the clinic (offline only) and the slot, reserve the slot atomically under
// the doctor lock, then create the payment order.
func (u *BookingUsecase) BookAppointment(ctx context.Context, actor Actor, req *dto.BookAppointmentRequest) *BookingResult {
	start := req.StartTime.UTC()
	apptType := entity.AppointmentType(req.Type)

	doctor, res := u.loadDoctor(ctx, req.DoctorID)
	if res != nil {
		return res
	}
	if res := u.checkDoctorBookable(doctor, apptType); res != nil {
		return res
	}

	end := start.Add(doctor.ConsultationDuration())
	if res := u.checkSlotTiming(start, end); res != nil {
		return res
	}
	if !doctor.IsAvailableAt(start) {
		return failResult(BookingErrorDoctorNotAvailable, "doctor is not available at the requested time")
	}

	var clinicID *uuid.UUID
	if apptType == entity.AppointmentTypeOffline {
		clinic, res := u.resolveClinic(ctx, req.ClinicID, doctor, start, end)
		if res != nil {
			return res
		}
		clinicID = &clinic.ID
	}

	appt := entity.NewAppointment(actor.UserID, doctor.ID, clinicID, start, end, apptType)
	appt.Symptoms = req.Symptoms
	appt.Notes = req.Notes
	appt.ConsultationFee = doctor.ConsultationFee
	appt.PaymentInfo.Amount = doctor.ConsultationFee

	if res := u.reserveSlot(ctx, doctor.ID, appt); res != nil {
		return res
	}

	return u.finalizeBooking(ctx, doctor, appt)
}

// BookEmergencyAppointment bypasses the weekly availability pattern and the
// advance window: the slot starts a few minutes from now with whichever
// emergency-available doctor can take it.
func (u *BookingUsecase) BookEmergencyAppointment(ctx context.Context, actor Actor, req *dto.EmergencyBookingRequest) *BookingResult {
	candidates, res := u.emergencyCandidates(ctx, req)
	if res != nil {
		return res
	}

	start := time.Now().UTC().Truncate(time.Minute).Add(5 * time.Minute)

	for i := range candidates {
		doctor := &candidates[i]
		if !doctor.IsVerified() || !doctor.EmergencyAvailable {
			continue
		}

		end := start.Add(doctor.ConsultationDuration())
		appt := entity.NewAppointment(actor.UserID, doctor.ID, nil, start, end, entity.AppointmentTypeOnline)
		appt.Symptoms = req.Symptoms
		appt.IsEmergency = true
		appt.ConsultationFee = doctor.ConsultationFee
		appt.PaymentInfo.Amount = doctor.ConsultationFee

		if res := u.reserveSlot(ctx, doctor.ID, appt); res != nil {
			// Losers of the race move on to the next candidate.
			if res.Error == BookingErrorTimeSlotOccupied || res.Error == BookingErrorConflict {
				continue
			}
			return res
		}

		return u.finalizeBooking(ctx, doctor, appt)
	}

	return failResult(BookingErrorEmergencyFailed, "no emergency doctor could take the appointment right now")
}

// BookFollowUp books a new appointment with the same doctor, linked to a
// completed parent appointment of the same patient.
func (u *BookingUsecase) BookFollowUp(ctx context.Context, actor Actor, parentID uuid.UUID, req *dto.FollowUpRequest) *BookingResult {
	parent, res := u.loadAppointment(ctx, actor, parentID)
	if res != nil {
		return res
	}
	if !parent.IsCompleted() {
		return failResult(BookingErrorFollowUpNotAllowed, "follow-ups can only be booked for completed appointments")
	}
	if parent.UserID != actor.UserID && !actor.IsAdmin() {
		return failResult(BookingErrorUnauthorizedAccess, "only the original patient can book a follow-up")
	}

	doctor, res := u.loadDoctor(ctx, parent.DoctorID)
	if res != nil {
		return res
	}
	if res := u.checkDoctorBookable(doctor, parent.Type); res != nil {
		return res
	}

	start := req.StartTime.UTC()
	end := start.Add(doctor.ConsultationDuration())
	if res := u.checkSlotTiming(start, end); res != nil {
		return res
	}
	if !doctor.IsAvailableAt(start) {
		return failResult(BookingErrorDoctorNotAvailable, "doctor is not available at the requested time")
	}

	appt := entity.NewAppointment(parent.UserID, doctor.ID, parent.ClinicID, start, end, parent.Type)
	appt.Notes = req.Notes
	appt.ParentAppointmentID = &parent.ID
	appt.ConsultationFee = doctor.ConsultationFee
	appt.PaymentInfo.Amount = doctor.ConsultationFee

	if res := u.reserveSlot(ctx, doctor.ID, appt); res != nil {
		return res
	}

	return u.finalizeBooking(ctx, doctor, appt)
}

// RescheduleAppointment moves an appointment to a new start, preserving its
// duration. The new slot is conflict-checked against everything except the
// appointment itself.
func (u *BookingUsecase) RescheduleAppointment(ctx context.Context, actor Actor, id uuid.UUID, req *dto.RescheduleRequest) *BookingResult {
	appt, res := u.loadAppointment(ctx, actor, id)
	if res != nil {
		return res
	}
	if !appt.CanBeRescheduled(u.cfg.RescheduleNotice) {
		return failResult(BookingErrorCannotReschedule,
			fmt.Sprintf("appointment can no longer be rescheduled (requires %s notice)", u.cfg.RescheduleNotice))
	}

	newStart := req.NewStartTime.UTC()
	newEnd := newStart.Add(appt.EndTime.Sub(appt.StartTime))
	if res := u.checkSlotTiming(newStart, newEnd); res != nil {
		return res
	}

	conflicts, err := u.appointments.FindConflicting(ctx, appt.DoctorID, newStart, newEnd, appt.ID)
	if err != nil {
		u.log.Errorf("Failed to check conflicts for reschedule of %s: %+v", id, err)
		return failResult(BookingErrorDatabase, "failed to check the new slot")
	}
	if len(conflicts) > 0 {
		return failResult(BookingErrorTimeSlotOccupied, "the new time slot is already taken")
	}

	if err := appt.Reschedule(newStart, u.cfg.RescheduleNotice); err != nil {
		return failResult(BookingErrorCannotReschedule, err.Error())
	}
	if req.Reason != "" {
		appt.Notes = req.Reason
	}

	if res := u.persist(ctx, appt); res != nil {
		return res
	}

	u.notifyParties(ctx, service.EventBookingRescheduled, appt)
	return okResult("appointment rescheduled", appt)
}

// CancelAppointment cancels first, then processes the refund. The
// cancellation is persisted before the gateway call so it sticks even when
// the refund fails; an unprocessed refund is visible on the appointment and
// picked up by support tooling.
func (u *BookingUsecase) CancelAppointment(ctx context.Context, actor Actor, id uuid.UUID, req *dto.CancellationRequest) *BookingResult {
	appt, res := u.loadAppointment(ctx, actor, id)
	if res != nil {
		return res
	}

	if err := appt.Cancel(entity.CancellationReason(req.Reason), req.Description, actor.UserID); err != nil {
		return failResult(BookingErrorCannotCancel, err.Error())
	}
	if res := u.persist(ctx, appt); res != nil {
		return res
	}
	u.notifyParties(ctx, service.EventBookingCancelled, appt)

	if !appt.RequiresRefund() {
		return okResult("appointment cancelled", appt)
	}

	amount := u.refundAmount(appt)
	refund, err := u.payments.Refund(ctx, appt.PaymentInfo.PaymentID, amount, string(appt.CancellationInfo.Reason))
	if err != nil {
		u.log.Errorf("Refund failed for appointment %s (payment %s): %+v", appt.ID, appt.PaymentInfo.PaymentID, err)
		return &BookingResult{
			Error:       BookingErrorRefundFailed,
			Message:     "appointment cancelled, but the refund could not be processed",
			Appointment: appt,
		}
	}

	if err := appt.ProcessRefund(amount, refund.RefundID); err != nil {
		u.log.Warnf("Refund %s for appointment %s not recorded: %+v", refund.RefundID, appt.ID, err)
		return okResult("appointment cancelled", appt)
	}
	if res := u.persist(ctx, appt); res != nil {
		return res
	}

	u.notifyParties(ctx, service.EventRefundProcessed, appt)
	return okResult("appointment cancelled and refund processed", appt)
}

// VerifyPayment confirms the appointment once the gateway callback checks
// out. Replayed callbacks for an already-paid appointment are answered
// idempotently.
func (u *BookingUsecase) VerifyPayment(ctx context.Context, actor Actor, id uuid.UUID, req *dto.PaymentVerificationRequest) *BookingResult {
	appt, res := u.loadAppointment(ctx, actor, id)
	if res != nil {
		return res
	}
	if appt.IsPaymentPaid() {
		return okResult("payment already verified", appt)
	}
	if appt.PaymentInfo.OrderID != req.OrderID {
		return failResult(BookingErrorValidation, "order does not belong to this appointment")
	}
	if !u.payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return failResult(BookingErrorValidation, "invalid payment signature")
	}

	appt.MarkPaid(req.PaymentID, req.Method)
	if appt.IsPending() {
		if err := appt.Confirm(); err != nil {
			return failResult(BookingErrorConflict, err.Error())
		}
	}
	if res := u.persist(ctx, appt); res != nil {
		return res
	}

	u.notifyParties(ctx, service.EventBookingConfirmed, appt)
	return okResult("payment verified, appointment confirmed", appt)
}

// ConfirmAppointment moves a pending appointment to CONFIRMED without a
// payment callback, for pay-at-clinic visits confirmed by the doctor.
func (u *BookingUsecase) ConfirmAppointment(ctx context.Context, actor Actor, id uuid.UUID) *BookingResult {
	return u.transition(ctx, actor, id, func(appt *entity.Appointment) error {
		return appt.Confirm()
	}, "appointment confirmed", service.EventBookingConfirmed)
}

// StartConsultation is a doctor/admin operation moving the appointment into
// IN_PROGRESS.
func (u *BookingUsecase) StartConsultation(ctx context.Context, actor Actor, id uuid.UUID) *BookingResult {
	return u.transition(ctx, actor, id, func(appt *entity.Appointment) error {
		return appt.StartConsultation()
	}, "consultation started", "")
}

// CompleteAppointment is a doctor/admin operation closing the consultation.
func (u *BookingUsecase) CompleteAppointment(ctx context.Context, actor Actor, id uuid.UUID) *BookingResult {
	return u.transition(ctx, actor, id, func(appt *entity.Appointment) error {
		return appt.Complete()
	}, "appointment completed", service.EventBookingCompleted)
}

// MarkNoShow is a doctor/admin operation for a patient who never turned up.
func (u *BookingUsecase) MarkNoShow(ctx context.Context, actor Actor, id uuid.UUID) *BookingResult {
	return u.transition(ctx, actor, id, func(appt *entity.Appointment) error {
		return appt.MarkNoShow()
	}, "appointment marked as no-show", service.EventBookingNoShow)
}

func (u *BookingUsecase) transition(ctx context.Context, actor Actor, id uuid.UUID, apply func(*entity.Appointment) error, message, event string) *BookingResult {
	appt, res := u.loadAppointment(ctx, actor, id)
	if res != nil {
		return res
	}
	if !actor.IsAdmin() && !actor.IsDoctor() {
		return failResult(BookingErrorUnauthorizedAccess, "only the doctor can perform this operation")
	}

	if err := apply(appt); err != nil {
		var transitionErr *entity.InvalidTransitionError
		if errors.As(err, &transitionErr) {
			return failResult(BookingErrorValidation, transitionErr.Error())
		}
		return failResult(BookingErrorDatabase, err.Error())
	}
	if res := u.persist(ctx, appt); res != nil {
		return res
	}

	if event != "" {
		u.notifyParties(ctx, event, appt)
	}
	return okResult(message, appt)
}

// SweepNoShows flips appointments whose start has long passed while still
// waiting. Version conflicts mean another writer beat the sweep; those are
// skipped, not retried.
func (u *BookingUsecase) SweepNoShows(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-u.cfg.MinSlotDuration)
	due, err := u.appointments.FindDueForNoShow(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find appointments due for no-show: %w", err)
	}

	swept := 0
	for i := range due {
		appt := &due[i]
		if err := appt.MarkNoShow(); err != nil {
			continue
		}
		if err := u.appointments.Update(ctx, appt); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			u.log.Errorf("No-show sweep failed to update appointment %s: %+v", appt.ID, err)
			continue
		}
		u.notifyParties(ctx, service.EventBookingNoShow, appt)
		swept++
	}
	return swept, nil
}

// GetAppointment enforces the ownership rule before returning.
func (u *BookingUsecase) GetAppointment(ctx context.Context, actor Actor, id uuid.UUID) *BookingResult {
	appt, res := u.loadAppointment(ctx, actor, id)
	if res != nil {
		return res
	}
	return okResult("", appt)
}

// GetByConfirmationCode looks an appointment up by its shareable code.
func (u *BookingUsecase) GetByConfirmationCode(ctx context.Context, actor Actor, code string) *BookingResult {
	appt, err := u.appointments.FindByConfirmationCode(ctx, code)
	if err != nil {
		u.log.Errorf("Failed to look up confirmation code %s: %+v", code, err)
		return failResult(BookingErrorDatabase, "failed to load appointment")
	}
	if appt == nil {
		return failResult(BookingErrorAppointmentNotFound, "appointment not found")
	}
	if !CanAccessAppointment(actor, appt) {
		return failResult(BookingErrorUnauthorizedAccess, "you do not have access to this appointment")
	}
	return okResult("", appt)
}

// GetUserAppointments lists a patient's own appointments, optionally
// filtered by status.
func (u *BookingUsecase) GetUserAppointments(ctx context.Context, userID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	appts, err := u.appointments.FindByUser(ctx, userID, status)
	if err != nil {
		u.log.Errorf("Failed to list appointments for user %s: %+v", userID, err)
		return nil, err
	}
	return appts, nil
}

// GetDoctorSchedule lists a doctor's appointments in a time range.
func (u *BookingUsecase) GetDoctorSchedule(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	appts, err := u.appointments.FindByDoctorAndRange(ctx, doctorID, from.UTC(), to.UTC())
	if err != nil {
		u.log.Errorf("Failed to list schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return appts, nil
}

// QueueStatus reports how many patients are ahead of the appointment with
// the same doctor today, with a naive wait estimate.
func (u *BookingUsecase) QueueStatus(ctx context.Context, actor Actor, id uuid.UUID) (*QueuePosition, *BookingResult) {
	appt, res := u.loadAppointment(ctx, actor, id)
	if res != nil {
		return nil, res
	}

	ahead, err := u.appointments.CountAheadInQueue(ctx, appt)
	if err != nil {
		u.log.Errorf("Failed to count queue for appointment %s: %+v", id, err)
		return nil, failResult(BookingErrorDatabase, "failed to compute queue position")
	}

	return &QueuePosition{
		Position:             int(ahead),
		EstimatedWaitMinutes: int(ahead) * appt.DurationMinutes(),
	}, nil
}

// Internal helpers

func (u *BookingUsecase) loadDoctor(ctx context.Context, id uuid.UUID) (*entity.Doctor, *BookingResult) {
	if doctor := u.cache.GetDoctor(ctx, id); doctor != nil {
		return doctor, nil
	}
	doctor, err := u.doctors.FindByID(ctx, id)
	if err != nil {
		u.log.Errorf("Failed to load doctor %s: %+v", id, err)
		return nil, failResult(BookingErrorDatabase, "failed to load doctor")
	}
	if doctor == nil {
		return nil, failResult(BookingErrorDoctorNotFound, "doctor not found")
	}
	u.cache.SetDoctor(ctx, doctor)
	return doctor, nil
}

func (u *BookingUsecase) loadClinic(ctx context.Context, id uuid.UUID) (*entity.Clinic, *BookingResult) {
	if clinic := u.cache.GetClinic(ctx, id); clinic != nil {
		return clinic, nil
	}
	clinic, err := u.clinics.FindByID(ctx, id)
	if err != nil {
		u.log.Errorf("Failed to load clinic %s: %+v", id, err)
		return nil, failResult(BookingErrorDatabase, "failed to load clinic")
	}
	if clinic == nil {
		return nil, failResult(BookingErrorClinicNotFound, "clinic not found")
	}
	u.cache.SetClinic(ctx, clinic)
	return clinic, nil
}

func (u *BookingUsecase) loadAppointment(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Appointment, *BookingResult) {
	appt, err := u.appointments.FindByID(ctx, id)
	if err != nil {
		u.log.Errorf("Failed to load appointment %s: %+v", id, err)
		return nil, failResult(BookingErrorDatabase, "failed to load appointment")
	}
	if appt == nil {
		return nil, failResult(BookingErrorAppointmentNotFound, "appointment not found")
	}
	if !CanAccessAppointment(actor, appt) {
		return nil, failResult(BookingErrorUnauthorizedAccess, "you do not have access to this appointment")
	}
	return appt, nil
}

func (u *BookingUsecase) checkDoctorBookable(doctor *entity.Doctor, apptType entity.AppointmentType) *BookingResult {
	if !doctor.IsVerified() {
		return failResult(BookingErrorDoctorNotVerified, "doctor has not been verified yet")
	}
	if !doctor.AcceptingBookings {
		return failResult(BookingErrorDoctorNotAvailable, "doctor is not accepting bookings")
	}
	if !doctor.SupportsType(apptType) {
		return failResult(BookingErrorDoctorNotAvailable,
			fmt.Sprintf("doctor does not offer %s consultations", apptType))
	}
	return nil
}

// checkSlotTiming validates the basic temporal invariants shared by booking,
// follow-ups and reschedules: future start, minimum duration, inside the
// advance window.
func (u *BookingUsecase) checkSlotTiming(start, end time.Time) *BookingResult {
	now := time.Now().UTC()
	if !start.After(now) {
		return failResult(BookingErrorInvalidTimeSlot, "start time must be in the future")
	}
	if !start.Before(end) || end.Sub(start) < u.cfg.MinSlotDuration {
		return failResult(BookingErrorInvalidTimeSlot,
			fmt.Sprintf("slot must be at least %s long", u.cfg.MinSlotDuration))
	}
	if start.After(now.Add(u.cfg.AdvanceBookingWindow)) {
		return failResult(BookingErrorInvalidTimeSlot,
			fmt.Sprintf("appointments can be booked at most %d days ahead", int(u.cfg.AdvanceBookingWindow.Hours()/24)))
	}
	return nil
}

func (u *BookingUsecase) resolveClinic(ctx context.Context, requested *uuid.UUID, doctor *entity.Doctor, start, end time.Time) (*entity.Clinic, *BookingResult) {
	clinicID := requested
	if clinicID == nil {
		clinicID = doctor.ClinicID
	}
	if clinicID == nil {
		return nil, failResult(BookingErrorValidation, "offline appointments require a clinic")
	}

	clinic, res := u.loadClinic(ctx, *clinicID)
	if res != nil {
		return nil, res
	}
	if !clinic.IsOperational() {
		return nil, failResult(BookingErrorClinicClosed, "clinic is not active")
	}
	// The whole visit must fit inside opening hours; the slot is half-open,
	// so the last covered minute is end-1m.
	if !clinic.IsOpenAt(start) || !clinic.IsOpenAt(end.Add(-time.Minute)) {
		return nil, failResult(BookingErrorClinicClosed, "clinic is closed at the requested time")
	}
	return clinic, nil
}

// reserveSlot runs the atomic conflict-check+insert under the per-doctor
// lock and folds the failure modes into booking errors.
func (u *BookingUsecase) reserveSlot(ctx context.Context, doctorID uuid.UUID, appt *entity.Appointment) *BookingResult {
	err := u.locks.WithDoctorLock(ctx, doctorID, func(ctx context.Context) error {
		return u.appointments.CreateIfSlotFree(ctx, appt)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSlotTaken):
		return failResult(BookingErrorTimeSlotOccupied, "time slot is already taken")
	case errors.Is(err, service.ErrDoctorBusy):
		return failResult(BookingErrorConflict, "another booking for this doctor is in progress, please retry")
	default:
		u.log.Errorf("Failed to reserve slot with doctor %s: %+v", doctorID, err)
		return failResult(BookingErrorDatabase, "failed to reserve the slot")
	}
}

// finalizeBooking creates the payment order for a freshly reserved slot. A
// gateway failure leaves the appointment in place with payment FAILED so the
// client can retry; it does not release the slot.
func (u *BookingUsecase) finalizeBooking(ctx context.Context, doctor *entity.Doctor, appt *entity.Appointment) *BookingResult {
	order, err := u.payments.CreateOrder(ctx, appt.PaymentInfo.Amount, appt.PaymentInfo.Currency, appt.ID)
	if err != nil {
		u.log.Errorf("Payment order creation failed for appointment %s: %+v", appt.ID, err)
		appt.MarkPaymentFailed()
		if res := u.persist(ctx, appt); res != nil {
			return res
		}
		return &BookingResult{
			Error:       BookingErrorPaymentFailed,
			Message:     "slot reserved, but the payment order could not be created",
			Appointment: appt,
		}
	}

	appt.PaymentInfo.OrderID = order.OrderID
	appt.GenerateMeetingLink()
	if res := u.persist(ctx, appt); res != nil {
		return res
	}

	u.notifyParties(ctx, service.EventBookingCreated, appt)
	u.log.Infof("Appointment %s booked with doctor %s (%s)", appt.ConfirmationCode, doctor.ID, appt.StartTime.Format(time.RFC3339))

	return &BookingResult{
		Message:     "appointment booked, awaiting payment",
		Appointment: appt,
		PaymentURL:  order.PaymentURL,
	}
}

func (u *BookingUsecase) persist(ctx context.Context, appt *entity.Appointment) *BookingResult {
	if err := u.appointments.Update(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return failResult(BookingErrorConflict, "appointment was modified concurrently, please retry")
		}
		u.log.Errorf("Failed to persist appointment %s: %+v", appt.ID, err)
		return failResult(BookingErrorDatabase, "failed to save appointment")
	}
	return nil
}

func (u *BookingUsecase) emergencyCandidates(ctx context.Context, req *dto.EmergencyBookingRequest) ([]entity.Doctor, *BookingResult) {
	if req.DoctorID != nil {
		doctor, res := u.loadDoctor(ctx, *req.DoctorID)
		if res != nil {
			return nil, res
		}
		return []entity.Doctor{*doctor}, nil
	}

	candidates, err := u.doctors.FindEmergencyAvailable(ctx, req.City)
	if err != nil {
		u.log.Errorf("Failed to find emergency doctors in %s: %+v", req.City, err)
		return nil, failResult(BookingErrorDatabase, "failed to find emergency doctors")
	}
	if len(candidates) == 0 {
		return nil, failResult(BookingErrorEmergencyFailed, "no emergency doctors available in "+req.City)
	}
	return candidates, nil
}

// refundAmount applies the cancellation policy: full refund with enough
// notice, a configured percentage inside the window.
func (u *BookingUsecase) refundAmount(appt *entity.Appointment) decimal.Decimal {
	paid := appt.PaymentInfo.Amount
	if appt.CancellationInfo.CancelledAt != nil &&
		appt.StartTime.Sub(*appt.CancellationInfo.CancelledAt) >= u.cfg.FullRefundWindow {
		return paid
	}
	return paid.Mul(decimal.NewFromInt(int64(u.cfg.PartialRefundPercent))).Div(decimal.NewFromInt(100))
}

// notifyParties tells both the patient and the doctor's user account.
func (u *BookingUsecase) notifyParties(ctx context.Context, event string, appt *entity.Appointment) {
	u.notifications.Notify(ctx, event, appt.ID, appt.UserID)
	doctor, res := u.loadDoctor(ctx, appt.DoctorID)
	if res != nil {
		return
	}
	u.notifications.Notify(ctx, event, appt.ID, doctor.UserID)
}
