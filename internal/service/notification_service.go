package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Notification events emitted by the booking engine
const (
	EventBookingCreated   = "BOOKING_CREATED"
	EventBookingConfirmed = "BOOKING_CONFIRMED"
	EventBookingCancelled = "BOOKING_CANCELLED"
	EventBookingRescheduled = "BOOKING_RESCHEDULED"
	EventBookingCompleted = "BOOKING_COMPLETED"
	EventBookingNoShow    = "BOOKING_NO_SHOW"
	EventRefundProcessed  = "REFUND_PROCESSED"
	EventPrescriptionIssued = "PRESCRIPTION_ISSUED"
)

// NotificationChannel is the Redis pub/sub channel delivery workers consume
const NotificationChannel = "notifications:appointments"

// NotificationService is fire-and-forget: failures are logged, never
// propagated, and never block the booking transaction.
type NotificationService interface {
	Notify(ctx context.Context, event string, appointmentID, recipientID uuid.UUID)
}

type redisNotificationService struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewNotificationService(client *redis.Client, log *logrus.Logger) NotificationService {
	return &redisNotificationService{client: client, log: log}
}

type notificationEvent struct {
	Event         string    `json:"event"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	EmittedAt     time.Time `json:"emitted_at"`
}

func (s *redisNotificationService) Notify(ctx context.Context, event string, appointmentID, recipientID uuid.UUID) {
	payload, err := json.Marshal(notificationEvent{
		Event:         event,
		AppointmentID: appointmentID,
		RecipientID:   recipientID,
		EmittedAt:     time.Now().UTC(),
	})
	if err != nil {
		s.log.Warnf("Failed to marshal notification %s for appointment %s: %+v", event, appointmentID, err)
		return
	}

	// Publish with a short detached timeout so a slow Redis never holds up
	// the request that triggered the notification.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := s.client.Publish(pubCtx, NotificationChannel, payload).Err(); err != nil {
		s.log.Warnf("Failed to publish notification %s for appointment %s (non-fatal): %+v", event, appointmentID, err)
	}
}
