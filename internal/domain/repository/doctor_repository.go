package repository

import (
	"context"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

// DoctorFilter narrows doctor search results
type DoctorFilter struct {
	Specialization string
	City           string
	Type           entity.ConsultationType
	VerifiedOnly   bool
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *entity.Doctor) error
	Update(ctx context.Context, doctor *entity.Doctor) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Doctor, error)
	Search(ctx context.Context, filter DoctorFilter) ([]entity.Doctor, error)
	FindEmergencyAvailable(ctx context.Context, city string) ([]entity.Doctor, error)
}
