package repository

import (
	"context"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

type ClinicRepository interface {
	Create(ctx context.Context, clinic *entity.Clinic) error
	Update(ctx context.Context, clinic *entity.Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Clinic, error)
	FindByCity(ctx context.Context, city string) ([]entity.Clinic, error)
}
