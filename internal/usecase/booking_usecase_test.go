package usecase

import (
	"context"
	"testing"
	"time"

	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// allWeek is an availability pattern covering every minute of every day, so
// relative test times never fall outside a window.
func allWeek() entity.WeeklyAvailability {
	w := entity.WeeklyAvailability{}
	for _, day := range []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"} {
		w[day] = []entity.TimeWindow{{Start: "00:00", End: "24:00"}}
	}
	return w
}

func verifiedDoctor() *entity.Doctor {
	return &entity.Doctor{
		ID:                          uuid.New(),
		UserID:                      uuid.New(),
		Status:                      entity.DoctorStatusVerified,
		AcceptingBookings:           true,
		ConsultationType:            entity.ConsultationTypeBoth,
		ConsultationDurationMinutes: 30,
		ConsultationFee:             decimal.NewFromInt(500),
		Availability:                allWeek(),
	}
}

type bookingFixture struct {
	usecase  *BookingUsecase
	appts    *fakeAppointmentRepo
	doctors  *fakeDoctorRepo
	clinics  *fakeClinicRepo
	locker   *fakeSlotLocker
	payments *fakePaymentService
	notifier *fakeNotificationService
}

func newBookingFixture(doctors ...*entity.Doctor) *bookingFixture {
	f := &bookingFixture{
		appts:    newFakeAppointmentRepo(),
		doctors:  newFakeDoctorRepo(doctors...),
		clinics:  newFakeClinicRepo(),
		locker:   &fakeSlotLocker{},
		payments: &fakePaymentService{},
		notifier: &fakeNotificationService{},
	}
	f.usecase = NewBookingUsecase(
		f.appts, f.doctors, f.clinics,
		f.locker, f.payments, f.notifier,
		fakeEntityCache{}, testLogger(), testBookingConfig(),
	)
	return f
}

func patientActor() Actor {
	return Actor{UserID: uuid.New(), Role: entity.RolePatient}
}

func tomorrowAt() time.Time {
	return time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
}

func TestBookAppointmentOnline(t *testing.T) {
	doctor := verifiedDoctor()
	f := newBookingFixture(doctor)
	actor := patientActor()

	res := f.usecase.BookAppointment(context.Background(), actor, &dto.BookAppointmentRequest{
		DoctorID:  doctor.ID,
		StartTime: tomorrowAt(),
		Type:      string(entity.AppointmentTypeOnline),
		Symptoms:  "persistent cough",
	})
	if !res.OK() {
		t.Fatalf("booking failed: %s %s", res.Error, res.Message)
	}
	if res.PaymentURL == "" {
		t.Fatal("missing payment URL")
	}

	appt := res.Appointment
	if appt.Status != entity.AppointmentStatusPending {
		t.Fatalf("status = %s, want PENDING", appt.Status)
	}
	if appt.PaymentInfo.OrderID != "order_test" {
		t.Fatalf("order id = %q", appt.PaymentInfo.OrderID)
	}
	if appt.ConsultationInfo.Link == "" {
		t.Fatal("online appointment should get a meeting link")
	}
	if got := appt.EndTime.Sub(appt.StartTime); got != 30*time.Minute {
		t.Fatalf("slot duration = %s, want doctor's 30m", got)
	}
	if f.appts.stored(appt.ID) == nil {
		t.Fatal("appointment not persisted")
	}
	if !f.notifier.has(service.EventBookingCreated) {
		t.Fatal("booking notification not emitted")
	}
}

func TestBookAppointmentSlotOccupied(t *testing.T) {
	doctor := verifiedDoctor()
	f := newBookingFixture(doctor)
	start := tomorrowAt()

	existing := entity.NewAppointment(uuid.New(), doctor.ID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
	existing.Status = entity.AppointmentStatusConfirmed
	f.appts.put(existing)

	res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
		DoctorID:  doctor.ID,
		StartTime: start.Add(15 * time.Minute), // overlaps the existing slot
		Type:      string(entity.AppointmentTypeOnline),
	})
	if res.Error != BookingErrorTimeSlotOccupied {
		t.Fatalf("error = %s, want TIME_SLOT_OCCUPIED", res.Error)
	}
}

func TestBookAppointmentDoctorChecks(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newBookingFixture()
		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  uuid.New(),
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOnline),
		})
		if res.Error != BookingErrorDoctorNotFound {
			t.Fatalf("error = %s, want DOCTOR_NOT_FOUND", res.Error)
		}
	})

	t.Run("unverified", func(t *testing.T) {
		doctor := verifiedDoctor()
		doctor.Status = entity.DoctorStatusPendingVerification
		f := newBookingFixture(doctor)
		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  doctor.ID,
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOnline),
		})
		if res.Error != BookingErrorDoctorNotVerified {
			t.Fatalf("error = %s, want DOCTOR_NOT_VERIFIED", res.Error)
		}
	})

	t.Run("not accepting bookings", func(t *testing.T) {
		doctor := verifiedDoctor()
		doctor.AcceptingBookings = false
		f := newBookingFixture(doctor)
		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  doctor.ID,
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOnline),
		})
		if res.Error != BookingErrorDoctorNotAvailable {
			t.Fatalf("error = %s, want DOCTOR_NOT_AVAILABLE", res.Error)
		}
	})

	t.Run("unsupported consult type", func(t *testing.T) {
		doctor := verifiedDoctor()
		doctor.ConsultationType = entity.ConsultationTypeOnline
		f := newBookingFixture(doctor)
		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  doctor.ID,
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOffline),
		})
		if res.Error != BookingErrorDoctorNotAvailable {
			t.Fatalf("error = %s, want DOCTOR_NOT_AVAILABLE", res.Error)
		}
	})

	t.Run("outside weekly availability", func(t *testing.T) {
		doctor := verifiedDoctor()
		doctor.Availability = entity.WeeklyAvailability{}
		f := newBookingFixture(doctor)
		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  doctor.ID,
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOnline),
		})
		if res.Error != BookingErrorDoctorNotAvailable {
			t.Fatalf("error = %s, want DOCTOR_NOT_AVAILABLE", res.Error)
		}
	})
}

func TestBookAppointmentSlotTiming(t *testing.T) {
	doctor := verifiedDoctor()
	f := newBookingFixture(doctor)
	cfg := testBookingConfig()

	tests := []struct {
		name  string
		start time.Time
	}{
		{"past start", time.Now().UTC().Add(-time.Hour)},
		{"beyond advance window", time.Now().UTC().Add(cfg.AdvanceBookingWindow + 48*time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
				DoctorID:  doctor.ID,
				StartTime: tt.start,
				Type:      string(entity.AppointmentTypeOnline),
			})
			if res.Error != BookingErrorInvalidTimeSlot {
				t.Fatalf("error = %s, want INVALID_TIME_SLOT", res.Error)
			}
		})
	}
}

func TestBookAppointmentOffline(t *testing.T) {
	openAllWeek := entity.WorkingHours{}
	for _, day := range []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"} {
		openAllWeek[day] = entity.DayHours{Open: "00:00", Close: "24:00"}
	}

	newClinic := func(status entity.ClinicStatus) *entity.Clinic {
		return &entity.Clinic{ID: uuid.New(), Status: status, Hours: openAllWeek}
	}

	t.Run("books at the doctor's clinic", func(t *testing.T) {
		clinic := newClinic(entity.ClinicStatusActive)
		doctor := verifiedDoctor()
		doctor.ClinicID = &clinic.ID
		f := newBookingFixture(doctor)
		f.clinics.byID[clinic.ID] = clinic

		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  doctor.ID,
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOffline),
		})
		if !res.OK() {
			t.Fatalf("booking failed: %s %s", res.Error, res.Message)
		}
		if res.Appointment.ClinicID == nil || *res.Appointment.ClinicID != clinic.ID {
			t.Fatal("appointment not attached to the doctor's clinic")
		}
		if res.Appointment.ConsultationInfo.Link != "" {
			t.Fatal("offline appointment should not get a meeting link")
		}
	})

	t.Run("inactive clinic", func(t *testing.T) {
		clinic := newClinic(entity.ClinicStatusSuspended)
		doctor := verifiedDoctor()
		doctor.ClinicID = &clinic.ID
		f := newBookingFixture(doctor)
		f.clinics.byID[clinic.ID] = clinic

		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  doctor.ID,
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOffline),
		})
		if res.Error != BookingErrorClinicClosed {
			t.Fatalf("error = %s, want CLINIC_CLOSED", res.Error)
		}
	})

	t.Run("no clinic anywhere", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
			DoctorID:  doctor.ID,
			StartTime: tomorrowAt(),
			Type:      string(entity.AppointmentTypeOffline),
		})
		if res.Error != BookingErrorValidation {
			t.Fatalf("error = %s, want VALIDATION_ERROR", res.Error)
		}
	})
}

func TestBookAppointmentPaymentFailure(t *testing.T) {
	doctor := verifiedDoctor()
	f := newBookingFixture(doctor)
	f.payments.createErr = service.ErrPaymentGateway

	res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
		DoctorID:  doctor.ID,
		StartTime: tomorrowAt(),
		Type:      string(entity.AppointmentTypeOnline),
	})
	if res.Error != BookingErrorPaymentFailed {
		t.Fatalf("error = %s, want PAYMENT_FAILED", res.Error)
	}
	if res.Appointment == nil {
		t.Fatal("reserved appointment should be attached on payment failure")
	}

	// The slot stays reserved with payment FAILED so the client can retry.
	stored := f.appts.stored(res.Appointment.ID)
	if stored == nil {
		t.Fatal("appointment released on payment failure")
	}
	if stored.PaymentInfo.Status != entity.PaymentStatusFailed {
		t.Fatalf("payment status = %s, want FAILED", stored.PaymentInfo.Status)
	}
}

func TestBookAppointmentDoctorBusy(t *testing.T) {
	doctor := verifiedDoctor()
	f := newBookingFixture(doctor)
	f.locker.busy = true

	res := f.usecase.BookAppointment(context.Background(), patientActor(), &dto.BookAppointmentRequest{
		DoctorID:  doctor.ID,
		StartTime: tomorrowAt(),
		Type:      string(entity.AppointmentTypeOnline),
	})
	if res.Error != BookingErrorConflict {
		t.Fatalf("error = %s, want BOOKING_CONFLICT", res.Error)
	}
}

func paidAppointment(f *bookingFixture, doctor *entity.Doctor, userID uuid.UUID, start time.Time) *entity.Appointment {
	appt := entity.NewAppointment(userID, doctor.ID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
	appt.Status = entity.AppointmentStatusConfirmed
	appt.ConsultationFee = doctor.ConsultationFee
	appt.PaymentInfo.Amount = doctor.ConsultationFee
	appt.MarkPaid("pay_test", "upi")
	f.appts.put(appt)
	return appt
}

func TestCancelAppointment(t *testing.T) {
	reason := &dto.CancellationRequest{Reason: string(entity.CancellationReasonPatientRequest)}

	t.Run("full refund outside the window", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := paidAppointment(f, doctor, actor.UserID, time.Now().UTC().Add(48*time.Hour))

		res := f.usecase.CancelAppointment(context.Background(), actor, appt.ID, reason)
		if !res.OK() {
			t.Fatalf("cancel failed: %s %s", res.Error, res.Message)
		}
		if len(f.payments.refunds) != 1 || !f.payments.refunds[0].Equal(decimal.NewFromInt(500)) {
			t.Fatalf("refunds = %v, want one full refund of 500", f.payments.refunds)
		}
		stored := f.appts.stored(appt.ID)
		if stored.PaymentInfo.Status != entity.PaymentStatusRefunded {
			t.Fatalf("payment status = %s, want REFUNDED", stored.PaymentInfo.Status)
		}
		if !f.notifier.has(service.EventRefundProcessed) {
			t.Fatal("refund notification not emitted")
		}
	})

	t.Run("partial refund inside the window", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := paidAppointment(f, doctor, actor.UserID, time.Now().UTC().Add(3*time.Hour))

		res := f.usecase.CancelAppointment(context.Background(), actor, appt.ID, reason)
		if !res.OK() {
			t.Fatalf("cancel failed: %s %s", res.Error, res.Message)
		}
		if len(f.payments.refunds) != 1 || !f.payments.refunds[0].Equal(decimal.NewFromInt(250)) {
			t.Fatalf("refunds = %v, want one 50%% refund of 250", f.payments.refunds)
		}
		if got := f.appts.stored(appt.ID).PaymentInfo.Status; got != entity.PaymentStatusPartiallyRefunded {
			t.Fatalf("payment status = %s, want PARTIALLY_REFUNDED", got)
		}
	})

	t.Run("refund gateway failure keeps the cancellation", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		f.payments.refundErr = service.ErrRefundFailed
		actor := patientActor()
		appt := paidAppointment(f, doctor, actor.UserID, time.Now().UTC().Add(48*time.Hour))

		res := f.usecase.CancelAppointment(context.Background(), actor, appt.ID, reason)
		if res.Error != BookingErrorRefundFailed {
			t.Fatalf("error = %s, want REFUND_FAILED", res.Error)
		}
		if res.Appointment == nil {
			t.Fatal("cancelled appointment should be attached")
		}
		stored := f.appts.stored(appt.ID)
		if stored.Status != entity.AppointmentStatusCancelled {
			t.Fatalf("status = %s, cancellation should stick despite the failed refund", stored.Status)
		}
		if stored.CancellationInfo.RefundProcessed {
			t.Fatal("refund must stay unprocessed after a gateway failure")
		}
	})

	t.Run("unpaid appointment needs no refund", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		start := time.Now().UTC().Add(48 * time.Hour)
		appt := entity.NewAppointment(actor.UserID, doctor.ID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
		f.appts.put(appt)

		res := f.usecase.CancelAppointment(context.Background(), actor, appt.ID, reason)
		if !res.OK() {
			t.Fatalf("cancel failed: %s %s", res.Error, res.Message)
		}
		if len(f.payments.refunds) != 0 {
			t.Fatalf("unexpected refunds: %v", f.payments.refunds)
		}
	})

	t.Run("someone else's appointment", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		appt := paidAppointment(f, doctor, uuid.New(), time.Now().UTC().Add(48*time.Hour))

		res := f.usecase.CancelAppointment(context.Background(), patientActor(), appt.ID, reason)
		if res.Error != BookingErrorUnauthorizedAccess {
			t.Fatalf("error = %s, want UNAUTHORIZED_ACCESS", res.Error)
		}
	})

	t.Run("already cancelled", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := paidAppointment(f, doctor, actor.UserID, time.Now().UTC().Add(48*time.Hour))
		appt.Status = entity.AppointmentStatusCancelled
		f.appts.put(appt)

		res := f.usecase.CancelAppointment(context.Background(), actor, appt.ID, reason)
		if res.Error != BookingErrorCannotCancel {
			t.Fatalf("error = %s, want CANNOT_CANCEL", res.Error)
		}
	})
}

func TestVerifyPayment(t *testing.T) {
	pendingAppointment := func(f *bookingFixture, doctor *entity.Doctor, userID uuid.UUID) *entity.Appointment {
		start := time.Now().UTC().Add(24 * time.Hour)
		appt := entity.NewAppointment(userID, doctor.ID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
		appt.PaymentInfo.Amount = doctor.ConsultationFee
		appt.PaymentInfo.OrderID = "order_test"
		f.appts.put(appt)
		return appt
	}

	req := &dto.PaymentVerificationRequest{
		OrderID:   "order_test",
		PaymentID: "pay_test",
		Signature: "sig",
		Method:    "upi",
	}

	t.Run("confirms on valid callback", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := pendingAppointment(f, doctor, actor.UserID)

		res := f.usecase.VerifyPayment(context.Background(), actor, appt.ID, req)
		if !res.OK() {
			t.Fatalf("verify failed: %s %s", res.Error, res.Message)
		}
		stored := f.appts.stored(appt.ID)
		if stored.Status != entity.AppointmentStatusConfirmed {
			t.Fatalf("status = %s, want CONFIRMED", stored.Status)
		}
		if stored.PaymentInfo.Status != entity.PaymentStatusPaid {
			t.Fatalf("payment status = %s, want PAID", stored.PaymentInfo.Status)
		}
		if !f.notifier.has(service.EventBookingConfirmed) {
			t.Fatal("confirmation notification not emitted")
		}
	})

	t.Run("replayed callback is idempotent", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := pendingAppointment(f, doctor, actor.UserID)

		if res := f.usecase.VerifyPayment(context.Background(), actor, appt.ID, req); !res.OK() {
			t.Fatalf("first verify failed: %s", res.Error)
		}
		events := len(f.notifier.events)
		res := f.usecase.VerifyPayment(context.Background(), actor, appt.ID, req)
		if !res.OK() {
			t.Fatalf("replay failed: %s", res.Error)
		}
		if len(f.notifier.events) != events {
			t.Fatal("replayed callback must not re-notify")
		}
	})

	t.Run("order mismatch", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := pendingAppointment(f, doctor, actor.UserID)

		bad := *req
		bad.OrderID = "order_other"
		if res := f.usecase.VerifyPayment(context.Background(), actor, appt.ID, &bad); res.Error != BookingErrorValidation {
			t.Fatalf("error = %s, want VALIDATION_ERROR", res.Error)
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		f.payments.badSignature = true
		actor := patientActor()
		appt := pendingAppointment(f, doctor, actor.UserID)

		if res := f.usecase.VerifyPayment(context.Background(), actor, appt.ID, req); res.Error != BookingErrorValidation {
			t.Fatalf("error = %s, want VALIDATION_ERROR", res.Error)
		}
	})
}

func TestRescheduleAppointment(t *testing.T) {
	t.Run("moves the slot preserving duration", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := paidAppointment(f, doctor, actor.UserID, time.Now().UTC().Add(24*time.Hour).Truncate(time.Minute))

		newStart := appt.StartTime.Add(48 * time.Hour)
		res := f.usecase.RescheduleAppointment(context.Background(), actor, appt.ID, &dto.RescheduleRequest{
			NewStartTime: newStart,
			Reason:       "travel",
		})
		if !res.OK() {
			t.Fatalf("reschedule failed: %s %s", res.Error, res.Message)
		}
		stored := f.appts.stored(appt.ID)
		if stored.Status != entity.AppointmentStatusRescheduled {
			t.Fatalf("status = %s, want RESCHEDULED", stored.Status)
		}
		if !stored.StartTime.Equal(newStart) {
			t.Fatalf("start = %s, want %s", stored.StartTime, newStart)
		}
		if got := stored.EndTime.Sub(stored.StartTime); got != 30*time.Minute {
			t.Fatalf("duration = %s, want 30m", got)
		}
		if !f.notifier.has(service.EventBookingRescheduled) {
			t.Fatal("reschedule notification not emitted")
		}
	})

	t.Run("new slot already taken", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := paidAppointment(f, doctor, actor.UserID, time.Now().UTC().Add(24*time.Hour).Truncate(time.Minute))

		newStart := appt.StartTime.Add(48 * time.Hour)
		blocker := entity.NewAppointment(uuid.New(), doctor.ID, nil, newStart, newStart.Add(30*time.Minute), entity.AppointmentTypeOnline)
		blocker.Status = entity.AppointmentStatusConfirmed
		f.appts.put(blocker)

		res := f.usecase.RescheduleAppointment(context.Background(), actor, appt.ID, &dto.RescheduleRequest{NewStartTime: newStart})
		if res.Error != BookingErrorTimeSlotOccupied {
			t.Fatalf("error = %s, want TIME_SLOT_OCCUPIED", res.Error)
		}
	})

	t.Run("insufficient notice", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := paidAppointment(f, doctor, actor.UserID, time.Now().UTC().Add(30*time.Minute))

		res := f.usecase.RescheduleAppointment(context.Background(), actor, appt.ID, &dto.RescheduleRequest{
			NewStartTime: time.Now().UTC().Add(48 * time.Hour),
		})
		if res.Error != BookingErrorCannotReschedule {
			t.Fatalf("error = %s, want CANNOT_RESCHEDULE", res.Error)
		}
	})
}

func TestBookFollowUp(t *testing.T) {
	completedParent := func(f *bookingFixture, doctor *entity.Doctor, userID uuid.UUID) *entity.Appointment {
		start := time.Now().UTC().Add(-72 * time.Hour)
		parent := entity.NewAppointment(userID, doctor.ID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
		parent.Status = entity.AppointmentStatusCompleted
		f.appts.put(parent)
		return parent
	}

	t.Run("links to the completed parent", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		parent := completedParent(f, doctor, actor.UserID)

		res := f.usecase.BookFollowUp(context.Background(), actor, parent.ID, &dto.FollowUpRequest{
			StartTime: tomorrowAt(),
		})
		if !res.OK() {
			t.Fatalf("follow-up failed: %s %s", res.Error, res.Message)
		}
		appt := res.Appointment
		if appt.ParentAppointmentID == nil || *appt.ParentAppointmentID != parent.ID {
			t.Fatal("follow-up not linked to its parent")
		}
		if appt.DoctorID != doctor.ID || appt.Type != parent.Type {
			t.Fatal("follow-up must keep the parent's doctor and consult type")
		}
	})

	t.Run("parent not completed", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		actor := patientActor()
		parent := completedParent(f, doctor, actor.UserID)
		parent.Status = entity.AppointmentStatusConfirmed
		f.appts.put(parent)

		res := f.usecase.BookFollowUp(context.Background(), actor, parent.ID, &dto.FollowUpRequest{StartTime: tomorrowAt()})
		if res.Error != BookingErrorFollowUpNotAllowed {
			t.Fatalf("error = %s, want FOLLOW_UP_NOT_ALLOWED", res.Error)
		}
	})

	t.Run("someone else's parent", func(t *testing.T) {
		doctor := verifiedDoctor()
		f := newBookingFixture(doctor)
		parent := completedParent(f, doctor, uuid.New())

		res := f.usecase.BookFollowUp(context.Background(), patientActor(), parent.ID, &dto.FollowUpRequest{StartTime: tomorrowAt()})
		if res.Error != BookingErrorUnauthorizedAccess {
			t.Fatalf("error = %s, want UNAUTHORIZED_ACCESS", res.Error)
		}
	})
}

func TestBookEmergencyAppointment(t *testing.T) {
	emergencyDoctor := func() *entity.Doctor {
		d := verifiedDoctor()
		d.EmergencyAvailable = true
		return d
	}

	t.Run("books the first free candidate", func(t *testing.T) {
		doctor := emergencyDoctor()
		f := newBookingFixture(doctor)
		f.doctors.emergency = []entity.Doctor{*doctor}

		res := f.usecase.BookEmergencyAppointment(context.Background(), patientActor(), &dto.EmergencyBookingRequest{
			City:     "Mumbai",
			Symptoms: "chest pain",
		})
		if !res.OK() {
			t.Fatalf("emergency booking failed: %s %s", res.Error, res.Message)
		}
		appt := res.Appointment
		if !appt.IsEmergency {
			t.Fatal("appointment not flagged as emergency")
		}
		if appt.Type != entity.AppointmentTypeOnline {
			t.Fatalf("type = %s, emergencies are online", appt.Type)
		}
		if wait := time.Until(appt.StartTime); wait <= 0 || wait > 6*time.Minute {
			t.Fatalf("emergency start %s not a few minutes out", appt.StartTime)
		}
	})

	t.Run("falls through to the next candidate", func(t *testing.T) {
		busy := emergencyDoctor()
		free := emergencyDoctor()
		f := newBookingFixture(busy, free)
		f.doctors.emergency = []entity.Doctor{*busy, *free}

		// Occupy the busy doctor around the emergency start time.
		now := time.Now().UTC()
		blocker := entity.NewAppointment(uuid.New(), busy.ID, nil, now.Add(-time.Hour), now.Add(time.Hour), entity.AppointmentTypeOnline)
		blocker.Status = entity.AppointmentStatusConfirmed
		f.appts.put(blocker)

		res := f.usecase.BookEmergencyAppointment(context.Background(), patientActor(), &dto.EmergencyBookingRequest{City: "Mumbai"})
		if !res.OK() {
			t.Fatalf("emergency booking failed: %s %s", res.Error, res.Message)
		}
		if res.Appointment.DoctorID != free.ID {
			t.Fatal("booking should have fallen through to the free doctor")
		}
	})

	t.Run("no doctors available", func(t *testing.T) {
		f := newBookingFixture()
		res := f.usecase.BookEmergencyAppointment(context.Background(), patientActor(), &dto.EmergencyBookingRequest{City: "Mumbai"})
		if res.Error != BookingErrorEmergencyFailed {
			t.Fatalf("error = %s, want EMERGENCY_BOOKING_FAILED", res.Error)
		}
	})
}

func TestConsultationTransitions(t *testing.T) {
	doctor := verifiedDoctor()
	doctorActor := Actor{UserID: doctor.UserID, Role: entity.RoleDoctor, DoctorID: doctor.ID}

	confirmed := func(f *bookingFixture, userID uuid.UUID) *entity.Appointment {
		start := time.Now().UTC().Add(-10 * time.Minute)
		appt := entity.NewAppointment(userID, doctor.ID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
		appt.Status = entity.AppointmentStatusConfirmed
		f.appts.put(appt)
		return appt
	}

	t.Run("confirm pending", func(t *testing.T) {
		f := newBookingFixture(doctor)
		start := time.Now().UTC().Add(3 * time.Hour)
		appt := entity.NewAppointment(uuid.New(), doctor.ID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
		f.appts.put(appt)

		if res := f.usecase.ConfirmAppointment(context.Background(), doctorActor, appt.ID); !res.OK() {
			t.Fatalf("confirm failed: %s %s", res.Error, res.Message)
		}
		if got := f.appts.stored(appt.ID).Status; got != entity.AppointmentStatusConfirmed {
			t.Fatalf("status = %s, want CONFIRMED", got)
		}
		if !f.notifier.has(service.EventBookingConfirmed) {
			t.Fatal("expected booking confirmed notification")
		}
	})

	t.Run("start then complete", func(t *testing.T) {
		f := newBookingFixture(doctor)
		appt := confirmed(f, uuid.New())

		if res := f.usecase.StartConsultation(context.Background(), doctorActor, appt.ID); !res.OK() {
			t.Fatalf("start failed: %s %s", res.Error, res.Message)
		}
		if got := f.appts.stored(appt.ID).Status; got != entity.AppointmentStatusInProgress {
			t.Fatalf("status = %s, want IN_PROGRESS", got)
		}
		if res := f.usecase.CompleteAppointment(context.Background(), doctorActor, appt.ID); !res.OK() {
			t.Fatalf("complete failed: %s %s", res.Error, res.Message)
		}
		if got := f.appts.stored(appt.ID).Status; got != entity.AppointmentStatusCompleted {
			t.Fatalf("status = %s, want COMPLETED", got)
		}
	})

	t.Run("patient cannot start", func(t *testing.T) {
		f := newBookingFixture(doctor)
		actor := patientActor()
		appt := confirmed(f, actor.UserID)

		res := f.usecase.StartConsultation(context.Background(), actor, appt.ID)
		if res.Error != BookingErrorUnauthorizedAccess {
			t.Fatalf("error = %s, want UNAUTHORIZED_ACCESS", res.Error)
		}
	})

	t.Run("illegal transition maps to validation", func(t *testing.T) {
		f := newBookingFixture(doctor)
		appt := confirmed(f, uuid.New())
		appt.Status = entity.AppointmentStatusCompleted
		f.appts.put(appt)

		res := f.usecase.StartConsultation(context.Background(), doctorActor, appt.ID)
		if res.Error != BookingErrorValidation {
			t.Fatalf("error = %s, want VALIDATION_ERROR", res.Error)
		}
	})

	t.Run("mark no-show", func(t *testing.T) {
		f := newBookingFixture(doctor)
		appt := confirmed(f, uuid.New())

		if res := f.usecase.MarkNoShow(context.Background(), doctorActor, appt.ID); !res.OK() {
			t.Fatalf("no-show failed: %s %s", res.Error, res.Message)
		}
		if got := f.appts.stored(appt.ID).Status; got != entity.AppointmentStatusNoShow {
			t.Fatalf("status = %s, want NO_SHOW", got)
		}
	})
}

func TestSweepNoShows(t *testing.T) {
	doctor := verifiedDoctor()
	f := newBookingFixture(doctor)

	stale := entity.NewAppointment(uuid.New(), doctor.ID, nil,
		time.Now().UTC().Add(-2*time.Hour), time.Now().UTC().Add(-90*time.Minute), entity.AppointmentTypeOnline)
	stale.Status = entity.AppointmentStatusConfirmed
	f.appts.put(stale)

	upcoming := entity.NewAppointment(uuid.New(), doctor.ID, nil,
		time.Now().UTC().Add(2*time.Hour), time.Now().UTC().Add(150*time.Minute), entity.AppointmentTypeOnline)
	upcoming.Status = entity.AppointmentStatusConfirmed
	f.appts.put(upcoming)

	swept, err := f.usecase.SweepNoShows(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
	if got := f.appts.stored(stale.ID).Status; got != entity.AppointmentStatusNoShow {
		t.Fatalf("stale status = %s, want NO_SHOW", got)
	}
	if got := f.appts.stored(upcoming.ID).Status; got != entity.AppointmentStatusConfirmed {
		t.Fatalf("upcoming status = %s, sweep must not touch future appointments", got)
	}
}

func TestQueueStatus(t *testing.T) {
	doctor := verifiedDoctor()
	f := newBookingFixture(doctor)
	actor := patientActor()

	day := time.Now().UTC().Add(24 * time.Hour).Truncate(24 * time.Hour)
	mine := entity.NewAppointment(actor.UserID, doctor.ID, nil,
		day.Add(11*time.Hour), day.Add(11*time.Hour+30*time.Minute), entity.AppointmentTypeOffline)
	mine.Status = entity.AppointmentStatusConfirmed
	f.appts.put(mine)

	for _, hour := range []int{9, 10} {
		ahead := entity.NewAppointment(uuid.New(), doctor.ID, nil,
			day.Add(time.Duration(hour)*time.Hour), day.Add(time.Duration(hour)*time.Hour+30*time.Minute), entity.AppointmentTypeOffline)
		ahead.Status = entity.AppointmentStatusConfirmed
		f.appts.put(ahead)
	}

	pos, res := f.usecase.QueueStatus(context.Background(), actor, mine.ID)
	if res != nil {
		t.Fatalf("queue status failed: %s %s", res.Error, res.Message)
	}
	if pos.Position != 2 {
		t.Fatalf("position = %d, want 2", pos.Position)
	}
	if pos.EstimatedWaitMinutes != 60 {
		t.Fatalf("estimated wait = %d, want 60", pos.EstimatedWaitMinutes)
	}
}

func TestCanAccessAppointment(t *testing.T) {
	patientID := uuid.New()
	doctorID := uuid.New()
	appt := &entity.Appointment{UserID: patientID, DoctorID: doctorID}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owning patient", Actor{UserID: patientID, Role: entity.RolePatient}, true},
		{"other patient", Actor{UserID: uuid.New(), Role: entity.RolePatient}, false},
		{"appointment's doctor", Actor{UserID: uuid.New(), Role: entity.RoleDoctor, DoctorID: doctorID}, true},
		{"other doctor", Actor{UserID: uuid.New(), Role: entity.RoleDoctor, DoctorID: uuid.New()}, false},
		{"doctor without record", Actor{UserID: uuid.New(), Role: entity.RoleDoctor}, false},
		{"admin", Actor{UserID: uuid.New(), Role: entity.RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessAppointment(tt.actor, appt); got != tt.want {
				t.Fatalf("CanAccessAppointment = %v, want %v", got, tt.want)
			}
		})
	}
}
