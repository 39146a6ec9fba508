package usecase

import (
	"context"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

// EntityCache is the read-through cache the usecases consult before hitting
// the doctor and clinic repositories. Implementations return nil on miss and
// must never fail a request; the Redis-backed one lives in the service
// package.
type EntityCache interface {
	GetDoctor(ctx context.Context, id uuid.UUID) *entity.Doctor
	SetDoctor(ctx context.Context, doctor *entity.Doctor)
	InvalidateDoctor(ctx context.Context, id uuid.UUID)

	GetClinic(ctx context.Context, id uuid.UUID) *entity.Clinic
	SetClinic(ctx context.Context, clinic *entity.Clinic)
	InvalidateClinic(ctx context.Context, id uuid.UUID)
}
