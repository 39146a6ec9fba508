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

var ErrDoctorNotFound = errors.New("doctor not found")

type DoctorUsecase interface {
	UpdateProfile(ctx context.Context, actor Actor, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*entity.Doctor, error)
	Verify(ctx context.Context, doctorID uuid.UUID) (*entity.Doctor, error)
	Suspend(ctx context.Context, doctorID uuid.UUID) (*entity.Doctor, error)
	GetByID(ctx context.Context, doctorID uuid.UUID) (*entity.Doctor, error)
	Search(ctx context.Context, req *dto.SearchDoctorsRequest) ([]entity.Doctor, error)
}

type doctorUsecase struct {
	log        *logrus.Logger
	doctorRepo repository.DoctorRepository
	clinicRepo repository.ClinicRepository
	cache      EntityCache
}

func NewDoctorUsecase(
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	clinicRepo repository.ClinicRepository,
	cache EntityCache,
) DoctorUsecase {
	return &doctorUsecase{
		log:        log,
		doctorRepo: doctorRepo,
		clinicRepo: clinicRepo,
		cache:      cache,
	}
}

// UpdateProfile applies partial updates. Doctors may only update their own
// record; admins may update any.
func (u *doctorUsecase) UpdateProfile(ctx context.Context, actor Actor, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*entity.Doctor, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !actor.IsAdmin() && actor.DoctorID != doctor.ID {
		return nil, errors.New("cannot update another doctor's profile")
	}

	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Bio != nil {
		doctor.Bio = *req.Bio
	}
	if req.City != nil {
		doctor.City = *req.City
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.ConsultationDurationMinutes != nil {
		doctor.ConsultationDurationMinutes = *req.ConsultationDurationMinutes
	}
	if req.ConsultationType != nil {
		doctor.ConsultationType = entity.ConsultationType(*req.ConsultationType)
	}
	if req.Availability != nil {
		doctor.Availability = *req.Availability
	}
	if req.AcceptingBookings != nil {
		doctor.AcceptingBookings = *req.AcceptingBookings
	}
	if req.EmergencyAvailable != nil {
		doctor.EmergencyAvailable = *req.EmergencyAvailable
	}

	if err := u.doctorRepo.Update(ctx, doctor); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", doctorID, err)
		return nil, err
	}
	u.cache.InvalidateDoctor(ctx, doctor.ID)
	return doctor, nil
}

// Verify is the admin operation that makes a doctor bookable.
func (u *doctorUsecase) Verify(ctx context.Context, doctorID uuid.UUID) (*entity.Doctor, error) {
	return u.setStatus(ctx, doctorID, entity.DoctorStatusVerified)
}

func (u *doctorUsecase) Suspend(ctx context.Context, doctorID uuid.UUID) (*entity.Doctor, error) {
	return u.setStatus(ctx, doctorID, entity.DoctorStatusSuspended)
}

func (u *doctorUsecase) setStatus(ctx context.Context, doctorID uuid.UUID, status entity.DoctorStatus) (*entity.Doctor, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	doctor.Status = status
	if err := u.doctorRepo.Update(ctx, doctor); err != nil {
		u.log.Warnf("Failed to set doctor %s status to %s: %+v", doctorID, status, err)
		return nil, err
	}
	u.cache.InvalidateDoctor(ctx, doctor.ID)
	return doctor, nil
}

func (u *doctorUsecase) GetByID(ctx context.Context, doctorID uuid.UUID) (*entity.Doctor, error) {
	if doctor := u.cache.GetDoctor(ctx, doctorID); doctor != nil {
		return doctor, nil
	}
	doctor, err := u.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	u.cache.SetDoctor(ctx, doctor)
	return doctor, nil
}

func (u *doctorUsecase) Search(ctx context.Context, req *dto.SearchDoctorsRequest) ([]entity.Doctor, error) {
	filter := repository.DoctorFilter{
		Specialization: req.Specialization,
		City:           req.City,
		Type:           entity.ConsultationType(req.Type),
		VerifiedOnly:   true,
	}
	doctors, err := u.doctorRepo.Search(ctx, filter)
	if err != nil {
		u.log.Warnf("Doctor search failed: %+v", err)
		return nil, err
	}
	return doctors, nil
}
