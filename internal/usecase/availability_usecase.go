package usecase

import (
	"context"
	"sort"
	"time"

	"healthcare-booking-api/config"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AvailabilitySlot is one bookable interval offered to the client.
type AvailabilitySlot struct {
	StartTime time.Time
	EndTime   time.Time
	Fee       decimal.Decimal
}

// AvailabilityUsecase computes free slots: the doctor's weekly pattern,
// narrowed to clinic opening hours for offline-only doctors, minus existing
// bookings, stepped by the doctor's consultation duration.
type AvailabilityUsecase struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	clinics      repository.ClinicRepository
	cache        EntityCache
	log          *logrus.Logger
	cfg          config.BookingConfig
}

func NewAvailabilityUsecase(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	clinics repository.ClinicRepository,
	cache EntityCache,
	log *logrus.Logger,
	cfg config.BookingConfig,
) *AvailabilityUsecase {
	return &AvailabilityUsecase{
		appointments: appointments,
		doctors:      doctors,
		clinics:      clinics,
		cache:        cache,
		log:          log,
		cfg:          cfg,
	}
}

// GetDoctorAvailability returns the free slots of a doctor for one calendar
// day (UTC), in chronological order. Past slots of the current day are
// excluded.
func (u *AvailabilityUsecase) GetDoctorAvailability(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]AvailabilitySlot, *BookingResult) {
	doctor, res := u.loadDoctor(ctx, doctorID)
	if res != nil {
		return nil, res
	}
	if !doctor.IsBookable() {
		return nil, failResult(BookingErrorDoctorNotAvailable, "doctor is not accepting bookings")
	}

	dayStart := day.UTC().Truncate(24 * time.Hour)
	booked, err := u.appointments.FindByDoctorAndRange(ctx, doctorID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		u.log.Errorf("Failed to load bookings for doctor %s on %s: %+v", doctorID, dayStart.Format("2006-01-02"), err)
		return nil, failResult(BookingErrorDatabase, "failed to load existing bookings")
	}

	windows, res := u.dayWindows(ctx, doctor, dayStart)
	if res != nil {
		return nil, res
	}

	return u.sliceIntoSlots(doctor, dayStart, windows, booked), nil
}

// GetDoctorAvailabilityRange concatenates the daily availability over the
// inclusive [startDate, endDate] calendar range, capped to the advance
// booking window.
func (u *AvailabilityUsecase) GetDoctorAvailabilityRange(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) ([]AvailabilitySlot, *BookingResult) {
	day := startDate.UTC().Truncate(24 * time.Hour)
	last := endDate.UTC().Truncate(24 * time.Hour)
	if horizon := time.Now().UTC().Truncate(24 * time.Hour).Add(u.cfg.AdvanceBookingWindow); last.After(horizon) {
		last = horizon
	}

	var slots []AvailabilitySlot
	for !day.After(last) {
		daySlots, res := u.GetDoctorAvailability(ctx, doctorID, day)
		if res != nil {
			return nil, res
		}
		slots = append(slots, daySlots...)
		day = day.Add(24 * time.Hour)
	}
	return slots, nil
}

// GetNextAvailableSlots scans forward day by day, up to the advance booking
// window, until it has collected limit slots.
func (u *AvailabilityUsecase) GetNextAvailableSlots(ctx context.Context, doctorID uuid.UUID, limit int) ([]AvailabilitySlot, *BookingResult) {
	if limit <= 0 {
		limit = 5
	}

	var slots []AvailabilitySlot
	day := time.Now().UTC().Truncate(24 * time.Hour)
	lastDay := day.Add(u.cfg.AdvanceBookingWindow)

	for !day.After(lastDay) && len(slots) < limit {
		daySlots, res := u.GetDoctorAvailability(ctx, doctorID, day)
		if res != nil {
			return nil, res
		}
		slots = append(slots, daySlots...)
		day = day.Add(24 * time.Hour)
	}

	if len(slots) > limit {
		slots = slots[:limit]
	}
	return slots, nil
}

// dayWindows resolves the doctor's availability windows for the day. An
// offline-only doctor is constrained to the clinic's opening hours.
func (u *AvailabilityUsecase) dayWindows(ctx context.Context, doctor *entity.Doctor, day time.Time) ([]entity.TimeWindow, *BookingResult) {
	windows := doctor.Availability.WindowsOn(day)
	if len(windows) == 0 {
		return nil, nil
	}

	if doctor.ConsultationType == entity.ConsultationTypeOffline && doctor.ClinicID != nil {
		clinic, res := u.loadClinic(ctx, *doctor.ClinicID)
		if res != nil {
			return nil, res
		}
		if !clinic.IsOperational() {
			return nil, nil
		}
		windows = intersectWindows(windows, clinic.OpenWindowsOn(day))
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
	return windows, nil
}

// sliceIntoSlots steps through each window by the doctor's consultation
// duration, dropping slots that are in the past or collide with a booked
// half-open interval.
func (u *AvailabilityUsecase) sliceIntoSlots(doctor *entity.Doctor, day time.Time, windows []entity.TimeWindow, booked []entity.Appointment) []AvailabilitySlot {
	duration := doctor.ConsultationDuration()
	now := time.Now().UTC()

	var slots []AvailabilitySlot
	for _, w := range windows {
		start, okStart := clockOn(day, w.Start)
		end, okEnd := clockOn(day, w.End)
		if !okStart || !okEnd {
			continue
		}
		for cursor := start; !cursor.Add(duration).After(end); cursor = cursor.Add(duration) {
			if !cursor.After(now) {
				continue
			}
			if overlapsAny(cursor, cursor.Add(duration), booked) {
				continue
			}
			slots = append(slots, AvailabilitySlot{
				StartTime: cursor,
				EndTime:   cursor.Add(duration),
				Fee:       doctor.ConsultationFee,
			})
		}
	}
	return slots
}

func (u *AvailabilityUsecase) loadDoctor(ctx context.Context, id uuid.UUID) (*entity.Doctor, *BookingResult) {
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

func (u *AvailabilityUsecase) loadClinic(ctx context.Context, id uuid.UUID) (*entity.Clinic, *BookingResult) {
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

// clockOn lifts an HH:MM wall-clock string onto a concrete UTC day.
func clockOn(day time.Time, hm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), true
}

// overlapsAny checks the candidate half-open interval against booked
// appointments, ignoring cancelled and no-show ones.
func overlapsAny(start, end time.Time, booked []entity.Appointment) bool {
	for i := range booked {
		a := &booked[i]
		if a.Status == entity.AppointmentStatusCancelled || a.Status == entity.AppointmentStatusNoShow {
			continue
		}
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// intersectWindows intersects two sets of HH:MM windows. String comparison
// is safe because the format is fixed-width 24h.
func intersectWindows(a, b []entity.TimeWindow) []entity.TimeWindow {
	var out []entity.TimeWindow
	for _, x := range a {
		for _, y := range b {
			start := maxClock(x.Start, y.Start)
			end := minClock(x.End, y.End)
			if start < end {
				out = append(out, entity.TimeWindow{Start: start, End: end})
			}
		}
	}
	return out
}

func maxClock(a, b string) string {
	if a > b {
		return a
	}
	return b
}

func minClock(a, b string) string {
	if a < b {
		return a
	}
	return b
}
