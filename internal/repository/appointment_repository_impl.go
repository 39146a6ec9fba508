package repository

import (
	"context"
	"errors"
	"time"

	"healthcare-booking-api/internal/domain/entity"
	domainRepo "healthcare-booking-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

// queueStatuses are the statuses that occupy a doctor's day
var queueStatuses = []entity.AppointmentStatus{
	entity.AppointmentStatusPending,
	entity.AppointmentStatusConfirmed,
	entity.AppointmentStatusInProgress,
}

// CreateIfSlotFree runs the conflict check and the insert inside one
// transaction, serialized per doctor by a row lock. A partial unique index
// on (doctor_id, start_time) backs this up at the storage level; either path
// surfaces as ErrSlotTaken.
func (r *appointmentRepository) CreateIfSlotFree(ctx context.Context, appt *entity.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor entity.Doctor
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", appt.DoctorID).
			First(&doctor).Error
		if err != nil {
			return err
		}

		var count int64
		err = tx.Model(&entity.Appointment{}).
			Where("doctor_id = ? AND status <> ?", appt.DoctorID, entity.AppointmentStatusCancelled).
			Where("start_time < ? AND end_time > ?", appt.EndTime, appt.StartTime).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return domainRepo.ErrSlotTaken
		}

		if err := tx.Create(appt).Error; err != nil {
			if isUniqueViolation(err) {
				return domainRepo.ErrSlotTaken
			}
			return err
		}
		return nil
	})
}

func (r *appointmentRepository) FindConflicting(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status <> ?", doctorID, entity.AppointmentStatusCancelled).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Order("start_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Update writes the full appointment guarded by its current version. Losers
// of the race get ErrVersionConflict and should reload before retrying.
func (r *appointmentRepository) Update(ctx context.Context, appt *entity.Appointment) error {
	expected := appt.Version
	appt.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("id = ? AND version = ?", appt.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(appt)
	if result.Error != nil {
		appt.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		appt.Version = expected
		return domainRepo.ErrVersionConflict
	}
	return nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindByConfirmationCode(ctx context.Context, code string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := r.db.WithContext(ctx).Where("confirmation_code = ?", code).First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindByUser(ctx context.Context, userID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("start_time DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND start_time >= ? AND start_time < ?", doctorID, start, end).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByClinicAndDay(ctx context.Context, clinicID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND start_time >= ? AND start_time < ?", clinicID, dayStart, dayStart.Add(24*time.Hour)).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountAheadInQueue(ctx context.Context, appt *entity.Appointment) (int64, error) {
	dayStart := appt.StartTime.UTC().Truncate(24 * time.Hour)
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND id <> ?", appt.DoctorID, appt.ID).
		Where("start_time >= ? AND start_time < ?", dayStart, appt.StartTime).
		Where("status IN ?", queueStatuses).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) FindDueForNoShow(ctx context.Context, olderThan time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("start_time < ?", olderThan).
		Where("status IN ?", []entity.AppointmentStatus{
			entity.AppointmentStatusPending,
			entity.AppointmentStatusConfirmed,
			entity.AppointmentStatusRescheduled,
		}).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// isUniqueViolation reports SQLSTATE 23505 (unique_violation)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
