package repository

import (
	"context"
	"errors"
	"time"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrSlotTaken is returned when the conflict-check+insert pair finds an
	// overlapping non-cancelled appointment for the same doctor.
	ErrSlotTaken = errors.New("time slot already taken")

	// ErrVersionConflict is returned when an optimistic update lost a race
	// against a concurrent modification of the same appointment.
	ErrVersionConflict = errors.New("appointment was modified concurrently")
)

// AppointmentRepository exposes only the query shapes the booking engine
// needs. Implementations must make CreateIfSlotFree atomic with respect to
// concurrent bookings for the same doctor.
type AppointmentRepository interface {
	// CreateIfSlotFree checks for conflicting appointments and inserts in a
	// single atomic unit. Returns ErrSlotTaken when the slot overlaps an
	// existing non-cancelled booking for the doctor.
	CreateIfSlotFree(ctx context.Context, appt *entity.Appointment) error

	// FindConflicting returns non-cancelled appointments for the doctor whose
	// [start, end) interval overlaps the given half-open range, excluding
	// excludeID (uuid.Nil for none).
	FindConflicting(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error)

	// Update persists the full appointment guarded by its version; returns
	// ErrVersionConflict if another writer got there first.
	Update(ctx context.Context, appt *entity.Appointment) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByConfirmationCode(ctx context.Context, code string) (*entity.Appointment, error)
	FindByUser(ctx context.Context, userID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error)
	FindByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error)
	FindByClinicAndDay(ctx context.Context, clinicID uuid.UUID, day time.Time) ([]entity.Appointment, error)

	// CountAheadInQueue counts non-cancelled appointments for the same doctor
	// on the same day starting strictly before the given appointment, with
	// status in PENDING/CONFIRMED/IN_PROGRESS.
	CountAheadInQueue(ctx context.Context, appt *entity.Appointment) (int64, error)

	// FindDueForNoShow returns appointments whose start time has passed while
	// still waiting (PENDING/CONFIRMED/RESCHEDULED), for the no-show sweep.
	FindDueForNoShow(ctx context.Context, olderThan time.Time) ([]entity.Appointment, error)
}
