package usecase

import (
	"context"
	"errors"

	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/domain/repository"
	"healthcare-booking-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrPrescriptionNotFound     = errors.New("prescription not found")
	ErrPrescriptionExists       = errors.New("appointment already has a prescription")
	ErrAppointmentNotCompleted  = errors.New("prescriptions can only be issued for completed appointments")
	ErrNotAppointmentsDoctor    = errors.New("only the appointment's doctor can issue a prescription")
	ErrPrescriptionAccessDenied = errors.New("you do not have access to this prescription")
)

type PrescriptionUsecase interface {
	Issue(ctx context.Context, actor Actor, req *dto.CreatePrescriptionRequest) (*entity.Prescription, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Prescription, error)
	GetForAppointment(ctx context.Context, actor Actor, appointmentID uuid.UUID) (*entity.Prescription, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Prescription, error)
}

type prescriptionUsecase struct {
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	appointmentRepo  repository.AppointmentRepository
	notifications    service.NotificationService
}

func NewPrescriptionUsecase(
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	appointmentRepo repository.AppointmentRepository,
	notifications service.NotificationService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		log:              log,
		prescriptionRepo: prescriptionRepo,
		appointmentRepo:  appointmentRepo,
		notifications:    notifications,
	}
}

// Issue writes a prescription for a completed appointment and links it back.
func (u *prescriptionUsecase) Issue(ctx context.Context, actor Actor, req *dto.CreatePrescriptionRequest) (*entity.Prescription, error) {
	appt, err := u.appointmentRepo.FindByID(ctx, req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to load appointment %s: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appt == nil {
		return nil, errors.New("appointment not found")
	}
	if !actor.IsAdmin() && appt.DoctorID != actor.DoctorID {
		return nil, ErrNotAppointmentsDoctor
	}
	if !appt.IsCompleted() {
		return nil, ErrAppointmentNotCompleted
	}

	existing, err := u.prescriptionRepo.FindByAppointment(ctx, appt.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPrescriptionExists
	}

	prescription := &entity.Prescription{
		ID:            uuid.New(),
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		UserID:        appt.UserID,
		Diagnosis:     req.Diagnosis,
		Medications:   req.Medications,
		Advice:        req.Advice,
		FollowUpDate:  req.FollowUpDate,
	}
	if err := u.prescriptionRepo.Create(ctx, prescription); err != nil {
		if isDuplicateKeyError(err, "appointment") {
			return nil, ErrPrescriptionExists
		}
		u.log.Warnf("Failed to create prescription for appointment %s: %+v", appt.ID, err)
		return nil, err
	}

	appt.PrescriptionID = &prescription.ID
	appt.FollowUpDate = req.FollowUpDate
	if err := u.appointmentRepo.Update(ctx, appt); err != nil {
		// The prescription exists; the back-link is retryable.
		u.log.Errorf("Failed to link prescription %s to appointment %s: %+v", prescription.ID, appt.ID, err)
	}

	u.notifications.Notify(ctx, service.EventPrescriptionIssued, appt.ID, appt.UserID)
	return prescription, nil
}

func (u *prescriptionUsecase) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Prescription, error) {
	prescription, err := u.prescriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}
	if err := u.authorize(actor, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

func (u *prescriptionUsecase) GetForAppointment(ctx context.Context, actor Actor, appointmentID uuid.UUID) (*entity.Prescription, error) {
	prescription, err := u.prescriptionRepo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}
	if err := u.authorize(actor, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

func (u *prescriptionUsecase) ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Prescription, error) {
	prescriptions, err := u.prescriptionRepo.FindByUser(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to list prescriptions for user %s: %+v", userID, err)
		return nil, err
	}
	return prescriptions, nil
}

func (u *prescriptionUsecase) authorize(actor Actor, p *entity.Prescription) error {
	if actor.IsAdmin() || p.UserID == actor.UserID || (actor.DoctorID != uuid.Nil && p.DoctorID == actor.DoctorID) {
		return nil
	}
	return ErrPrescriptionAccessDenied
}
