package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"healthcare-booking-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	doctorCacheKeyPrefix = "cache:doctor:"
	clinicCacheKeyPrefix = "cache:clinic:"
	entityCacheTTL       = 10 * time.Minute
)

// DoctorCacheService is a read-through Redis cache for Doctor and Clinic
// lookups on the hot booking path. Cache misses and Redis failures fall back
// to the caller's repository read; writes invalidate.
type DoctorCacheService struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewDoctorCacheService(client *redis.Client, log *logrus.Logger) *DoctorCacheService {
	return &DoctorCacheService{client: client, log: log}
}

// GetDoctor returns the cached doctor or nil on miss.
func (s *DoctorCacheService) GetDoctor(ctx context.Context, id uuid.UUID) *entity.Doctor {
	var doctor entity.Doctor
	if !s.get(ctx, doctorCacheKeyPrefix+id.String(), &doctor) {
		return nil
	}
	return &doctor
}

func (s *DoctorCacheService) SetDoctor(ctx context.Context, doctor *entity.Doctor) {
	s.set(ctx, doctorCacheKeyPrefix+doctor.ID.String(), doctor)
}

func (s *DoctorCacheService) InvalidateDoctor(ctx context.Context, id uuid.UUID) {
	s.invalidate(ctx, doctorCacheKeyPrefix+id.String())
}

// GetClinic returns the cached clinic or nil on miss.
func (s *DoctorCacheService) GetClinic(ctx context.Context, id uuid.UUID) *entity.Clinic {
	var clinic entity.Clinic
	if !s.get(ctx, clinicCacheKeyPrefix+id.String(), &clinic) {
		return nil
	}
	return &clinic
}

func (s *DoctorCacheService) SetClinic(ctx context.Context, clinic *entity.Clinic) {
	s.set(ctx, clinicCacheKeyPrefix+clinic.ID.String(), clinic)
}

func (s *DoctorCacheService) InvalidateClinic(ctx context.Context, id uuid.UUID) {
	s.invalidate(ctx, clinicCacheKeyPrefix+id.String())
}

func (s *DoctorCacheService) get(ctx context.Context, key string, out interface{}) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Debugf("Cache read failed for %s (non-fatal): %+v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warnf("Corrupt cache entry %s, dropping: %+v", key, err)
		s.invalidate(ctx, key)
		return false
	}
	return true
}

func (s *DoctorCacheService) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warnf("Failed to marshal cache entry %s: %+v", key, err)
		return
	}
	if err := s.client.Set(ctx, key, data, entityCacheTTL).Err(); err != nil {
		s.log.Debugf("Cache write failed for %s (non-fatal): %+v", key, err)
	}
}

func (s *DoctorCacheService) invalidate(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Debugf("Cache invalidation failed for %s (non-fatal): %+v", key, err)
	}
}
