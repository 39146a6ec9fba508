package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"healthcare-booking-api/config"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/domain/repository"
	"healthcare-booking-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// In-memory collaborators shared by the usecase tests. They mirror the
// concurrency contract of the real implementations: CreateIfSlotFree rejects
// overlapping slots, Update checks the version counter.

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		MinSlotDuration:      15 * time.Minute,
		RescheduleNotice:     2 * time.Hour,
		AdvanceBookingWindow: 30 * 24 * time.Hour,
		FullRefundWindow:     24 * time.Hour,
		PartialRefundPercent: 50,
		SlotLockTTL:          10 * time.Second,
		NoShowSweepInterval:  time.Minute,
		RateLimitPerMinute:   60,
	}
}

type fakeAppointmentRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*entity.Appointment
	createErr error
	updateErr error
	findErr   error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: map[uuid.UUID]*entity.Appointment{}}
}

func (r *fakeAppointmentRepo) put(appt *entity.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *appt
	r.byID[appt.ID] = &cp
}

func (r *fakeAppointmentRepo) stored(id uuid.UUID) *entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

func (r *fakeAppointmentRepo) CreateIfSlotFree(ctx context.Context, appt *entity.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.DoctorID != appt.DoctorID || existing.IsCancelled() {
			continue
		}
		if existing.Overlaps(appt.StartTime, appt.EndTime) {
			return repository.ErrSlotTaken
		}
	}
	cp := *appt
	r.byID[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) FindConflicting(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.byID {
		if a.ID == excludeID || a.DoctorID != doctorID || a.IsCancelled() {
			continue
		}
		if a.Overlaps(start, end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, appt *entity.Appointment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[appt.ID]
	if !ok {
		return repository.ErrVersionConflict
	}
	if current.Version != appt.Version {
		return repository.ErrVersionConflict
	}
	appt.Version++
	cp := *appt
	r.byID[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) FindByConfirmationCode(ctx context.Context, code string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.ConfirmationCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindByUser(ctx context.Context, userID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.byID {
		if a.UserID != userID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.byID {
		if a.DoctorID != doctorID {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindByClinicAndDay(ctx context.Context, clinicID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dayStart := day.UTC().Truncate(24 * time.Hour)
	var out []entity.Appointment
	for _, a := range r.byID {
		if a.ClinicID == nil || *a.ClinicID != clinicID {
			continue
		}
		if a.AppointmentDate.Equal(dayStart) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountAheadInQueue(ctx context.Context, appt *entity.Appointment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.byID {
		if a.ID == appt.ID || a.DoctorID != appt.DoctorID {
			continue
		}
		if !a.AppointmentDate.Equal(appt.AppointmentDate) || !a.StartTime.Before(appt.StartTime) {
			continue
		}
		switch a.Status {
		case entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed, entity.AppointmentStatusInProgress:
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) FindDueForNoShow(ctx context.Context, olderThan time.Time) ([]entity.Appointment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.byID {
		switch a.Status {
		case entity.AppointmentStatusPending, entity.AppointmentStatusConfirmed, entity.AppointmentStatusRescheduled:
		default:
			continue
		}
		if a.StartTime.Before(olderThan) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeDoctorRepo struct {
	byID      map[uuid.UUID]*entity.Doctor
	emergency []entity.Doctor
	findErr   error
}

func newFakeDoctorRepo(doctors ...*entity.Doctor) *fakeDoctorRepo {
	r := &fakeDoctorRepo{byID: map[uuid.UUID]*entity.Doctor{}}
	for _, d := range doctors {
		r.byID[d.ID] = d
	}
	return r
}

func (r *fakeDoctorRepo) Create(ctx context.Context, doctor *entity.Doctor) error {
	r.byID[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) Update(ctx context.Context, doctor *entity.Doctor) error {
	r.byID[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	d, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDoctorRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Doctor, error) {
	for _, d := range r.byID {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDoctorRepo) Search(ctx context.Context, filter repository.DoctorFilter) ([]entity.Doctor, error) {
	var out []entity.Doctor
	for _, d := range r.byID {
		if filter.VerifiedOnly && !d.IsVerified() {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDoctorRepo) FindEmergencyAvailable(ctx context.Context, city string) ([]entity.Doctor, error) {
	return r.emergency, nil
}

type fakeClinicRepo struct {
	byID map[uuid.UUID]*entity.Clinic
}

func newFakeClinicRepo(clinics ...*entity.Clinic) *fakeClinicRepo {
	r := &fakeClinicRepo{byID: map[uuid.UUID]*entity.Clinic{}}
	for _, c := range clinics {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeClinicRepo) Create(ctx context.Context, clinic *entity.Clinic) error {
	r.byID[clinic.ID] = clinic
	return nil
}

func (r *fakeClinicRepo) Update(ctx context.Context, clinic *entity.Clinic) error {
	r.byID[clinic.ID] = clinic
	return nil
}

func (r *fakeClinicRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeClinicRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Clinic, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClinicRepo) FindByCity(ctx context.Context, city string) ([]entity.Clinic, error) {
	var out []entity.Clinic
	for _, c := range r.byID {
		if c.City == city {
			out = append(out, *c)
		}
	}
	return out, nil
}

// fakeSlotLocker runs the callback inline; busy simulates a held lock.
type fakeSlotLocker struct {
	busy bool
}

func (l *fakeSlotLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	if l.busy {
		return service.ErrDoctorBusy
	}
	return fn(ctx)
}

type fakePaymentService struct {
	createErr    error
	refundErr    error
	orders       int
	refunds      []decimal.Decimal
	badSignature bool
}

func (p *fakePaymentService) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string, appointmentID uuid.UUID) (*service.PaymentOrder, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.orders++
	return &service.PaymentOrder{OrderID: "order_test", PaymentURL: "https://pay.test/order_test"}, nil
}

func (p *fakePaymentService) Refund(ctx context.Context, paymentID string, amount decimal.Decimal, reason string) (*service.RefundResult, error) {
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	p.refunds = append(p.refunds, amount)
	return &service.RefundResult{RefundID: "rf_test", Status: "processed"}, nil
}

func (p *fakePaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	return !p.badSignature
}

type fakeNotificationService struct {
	events []string
}

func (n *fakeNotificationService) Notify(ctx context.Context, event string, appointmentID, recipientID uuid.UUID) {
	n.events = append(n.events, event)
}

func (n *fakeNotificationService) has(event string) bool {
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

// fakeEntityCache misses on every read and drops writes.
type fakeEntityCache struct{}

func (fakeEntityCache) GetDoctor(ctx context.Context, id uuid.UUID) *entity.Doctor  { return nil }
func (fakeEntityCache) SetDoctor(ctx context.Context, doctor *entity.Doctor)       {}
func (fakeEntityCache) InvalidateDoctor(ctx context.Context, id uuid.UUID)         {}
func (fakeEntityCache) GetClinic(ctx context.Context, id uuid.UUID) *entity.Clinic { return nil }
func (fakeEntityCache) SetClinic(ctx context.Context, clinic *entity.Clinic)       {}
func (fakeEntityCache) InvalidateClinic(ctx context.Context, id uuid.UUID)         {}
