package repository

import (
	"context"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *entity.Prescription) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Prescription, error)
	FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Prescription, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Prescription, error)
}
