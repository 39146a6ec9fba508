package repository

import (
	"context"
	"errors"

	"healthcare-booking-api/internal/domain/entity"
	domainRepo "healthcare-booking-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) domainRepo.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *entity.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

func (r *doctorRepository) Update(ctx context.Context, doctor *entity.Doctor) error {
	return r.db.WithContext(ctx).Save(doctor).Error
}

func (r *doctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) Search(ctx context.Context, filter domainRepo.DoctorFilter) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	query := r.db.WithContext(ctx).Model(&entity.Doctor{})

	if filter.Specialization != "" {
		query = query.Where("specialization ILIKE ?", "%"+filter.Specialization+"%")
	}
	if filter.City != "" {
		query = query.Where("city ILIKE ?", filter.City)
	}
	if filter.Type != "" && filter.Type != entity.ConsultationTypeBoth {
		query = query.Where("consultation_type IN ?", []entity.ConsultationType{filter.Type, entity.ConsultationTypeBoth})
	}
	if filter.VerifiedOnly {
		query = query.Where("status = ?", entity.DoctorStatusVerified)
	}

	err := query.Preload("User").Order("years_of_experience DESC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) FindEmergencyAvailable(ctx context.Context, city string) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	query := r.db.WithContext(ctx).
		Where("status = ? AND accepting_bookings = ? AND emergency_available = ?",
			entity.DoctorStatusVerified, true, true)
	if city != "" {
		query = query.Where("city ILIKE ?", city)
	}
	err := query.Order("consultation_duration_minutes ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}
