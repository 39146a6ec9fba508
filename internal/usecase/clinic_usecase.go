package usecase

import (
	"context"
	"errors"

	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrClinicNotFound          = errors.New("clinic not found")
	ErrClinicRegistrationTaken = errors.New("registration number already in use")
	ErrClinicNotOwned          = errors.New("clinic is owned by another user")
)

type ClinicUsecase interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateClinicRequest) (*entity.Clinic, error)
	Update(ctx context.Context, actor Actor, clinicID uuid.UUID, req *dto.UpdateClinicRequest) (*entity.Clinic, error)
	GetByID(ctx context.Context, clinicID uuid.UUID) (*entity.Clinic, error)
	ListByCity(ctx context.Context, city string) ([]entity.Clinic, error)
}

type clinicUsecase struct {
	log        *logrus.Logger
	clinicRepo repository.ClinicRepository
	cache      EntityCache
}

func NewClinicUsecase(log *logrus.Logger, clinicRepo repository.ClinicRepository, cache EntityCache) ClinicUsecase {
	return &clinicUsecase{log: log, clinicRepo: clinicRepo, cache: cache}
}

func (u *clinicUsecase) Create(ctx context.Context, actor Actor, req *dto.CreateClinicRequest) (*entity.Clinic, error) {
	clinic := &entity.Clinic{
		ID:                 uuid.New(),
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		Status:             entity.ClinicStatusPendingVerification,
		AddressLine:        req.AddressLine,
		City:               req.City,
		Phone:              req.Phone,
		Email:              req.Email,
		Hours:              req.WorkingHours,
		OwnerID:            actor.UserID,
	}
	if actor.IsAdmin() {
		clinic.Status = entity.ClinicStatusActive
	}

	if err := u.clinicRepo.Create(ctx, clinic); err != nil {
		if isDuplicateKeyError(err, "registration_number") {
			return nil, ErrClinicRegistrationTaken
		}
		u.log.Warnf("Failed to create clinic: %+v", err)
		return nil, err
	}
	return clinic, nil
}

func (u *clinicUsecase) Update(ctx context.Context, actor Actor, clinicID uuid.UUID, req *dto.UpdateClinicRequest) (*entity.Clinic, error) {
	clinic, err := u.clinicRepo.FindByID(ctx, clinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %s: %+v", clinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}
	if !actor.IsAdmin() && clinic.OwnerID != actor.UserID {
		return nil, ErrClinicNotOwned
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.AddressLine != nil {
		clinic.AddressLine = *req.AddressLine
	}
	if req.City != nil {
		clinic.City = *req.City
	}
	if req.Phone != nil {
		clinic.Phone = *req.Phone
	}
	if req.Email != nil {
		clinic.Email = *req.Email
	}
	if req.WorkingHours != nil {
		clinic.Hours = *req.WorkingHours
	}
	// Status changes are admin-only.
	if req.Status != nil && actor.IsAdmin() {
		clinic.Status = entity.ClinicStatus(*req.Status)
	}

	if err := u.clinicRepo.Update(ctx, clinic); err != nil {
		u.log.Warnf("Failed to update clinic %s: %+v", clinicID, err)
		return nil, err
	}
	u.cache.InvalidateClinic(ctx, clinic.ID)
	return clinic, nil
}

func (u *clinicUsecase) GetByID(ctx context.Context, clinicID uuid.UUID) (*entity.Clinic, error) {
	if clinic := u.cache.GetClinic(ctx, clinicID); clinic != nil {
		return clinic, nil
	}
	clinic, err := u.clinicRepo.FindByID(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}
	u.cache.SetClinic(ctx, clinic)
	return clinic, nil
}

func (u *clinicUsecase) ListByCity(ctx context.Context, city string) ([]entity.Clinic, error) {
	clinics, err := u.clinicRepo.FindByCity(ctx, city)
	if err != nil {
		u.log.Warnf("Failed to list clinics in %s: %+v", city, err)
		return nil, err
	}
	return clinics, nil
}
