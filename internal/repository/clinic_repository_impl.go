package repository

import (
	"context"
	"errors"

	"healthcare-booking-api/internal/domain/entity"
	domainRepo "healthcare-booking-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clinicRepository struct {
	db *gorm.DB
}

func NewClinicRepository(db *gorm.DB) domainRepo.ClinicRepository {
	return &clinicRepository{db: db}
}

func (r *clinicRepository) Create(ctx context.Context, clinic *entity.Clinic) error {
	return r.db.WithContext(ctx).Create(clinic).Error
}

func (r *clinicRepository) Update(ctx context.Context, clinic *entity.Clinic) error {
	return r.db.WithContext(ctx).Save(clinic).Error
}

func (r *clinicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Clinic{}, "id = ?", id).Error
}

func (r *clinicRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Clinic, error) {
	var clinic entity.Clinic
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&clinic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clinic, nil
}

func (r *clinicRepository) FindByCity(ctx context.Context, city string) ([]entity.Clinic, error) {
	var clinics []entity.Clinic
	err := r.db.WithContext(ctx).
		Where("city ILIKE ? AND status = ?", city, entity.ClinicStatusActive).
		Order("name ASC").
		Find(&clinics).Error
	if err != nil {
		return nil, err
	}
	return clinics, nil
}
