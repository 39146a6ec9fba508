package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"healthcare-booking-api/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrPaymentGateway = errors.New("payment gateway request failed")
	ErrRefundFailed   = errors.New("refund request failed")
)

// PaymentOrder is the gateway's answer to a new order
type PaymentOrder struct {
	OrderID    string
	PaymentURL string
}

// RefundResult is the gateway's answer to a refund request
type RefundResult struct {
	RefundID string
	Status   string
}

// PaymentService is the opaque payment collaborator of the booking engine.
// Failures map to PAYMENT_FAILED / REFUND_FAILED booking errors; retries
// are the caller's business.
type PaymentService interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string, appointmentID uuid.UUID) (*PaymentOrder, error)
	Refund(ctx context.Context, paymentID string, amount decimal.Decimal, reason string) (*RefundResult, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// razorpayService talks to a Razorpay-compatible gateway over HTTP
type razorpayService struct {
	cfg    config.PaymentConfig
	client *http.Client
	log    *logrus.Logger
}

func NewPaymentService(cfg config.PaymentConfig, log *logrus.Logger) PaymentService {
	return &razorpayService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

func (s *razorpayService) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string, appointmentID uuid.UUID) (*PaymentOrder, error) {
	payload := map[string]interface{}{
		// Gateway expects the amount in minor units
		"amount":   amount.Shift(2).IntPart(),
		"currency": currency,
		"receipt":  appointmentID.String(),
		"notes": map[string]string{
			"appointment_id": appointmentID.String(),
		},
	}

	var out struct {
		ID       string `json:"id"`
		ShortURL string `json:"short_url"`
	}
	if err := s.post(ctx, "/v1/orders", payload, &out); err != nil {
		s.log.Errorf("Payment order creation failed for appointment %s: %+v", appointmentID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	return &PaymentOrder{
		OrderID:    out.ID,
		PaymentURL: out.ShortURL,
	}, nil
}

func (s *razorpayService) Refund(ctx context.Context, paymentID string, amount decimal.Decimal, reason string) (*RefundResult, error) {
	payload := map[string]interface{}{
		"amount": amount.Shift(2).IntPart(),
		"notes": map[string]string{
			"reason": reason,
		},
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/v1/payments/%s/refund", paymentID)
	if err := s.post(ctx, path, payload, &out); err != nil {
		s.log.Errorf("Refund failed for payment %s: %+v", paymentID, err)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	return &RefundResult{RefundID: out.ID, Status: out.Status}, nil
}

// VerifySignature checks the HMAC-SHA256 signature the gateway attaches to
// payment callbacks.
func (s *razorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *razorpayService) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.cfg.KeyID, s.cfg.KeySecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// noopPaymentService is used when no gateway is configured (development).
type noopPaymentService struct {
	log *logrus.Logger
}

func NewNoopPaymentService(log *logrus.Logger) PaymentService {
	return &noopPaymentService{log: log}
}

func (s *noopPaymentService) CreateOrder(_ context.Context, amount decimal.Decimal, currency string, appointmentID uuid.UUID) (*PaymentOrder, error) {
	orderID := "order_" + uuid.NewString()
	s.log.Debugf("noop payment order %s: %s %s for appointment %s", orderID, amount, currency, appointmentID)
	return &PaymentOrder{OrderID: orderID, PaymentURL: "https://pay.healthcare.local/" + orderID}, nil
}

func (s *noopPaymentService) Refund(_ context.Context, paymentID string, amount decimal.Decimal, _ string) (*RefundResult, error) {
	refundID := "rfnd_" + uuid.NewString()
	s.log.Debugf("noop refund %s: %s for payment %s", refundID, amount, paymentID)
	return &RefundResult{RefundID: refundID, Status: "processed"}, nil
}

func (s *noopPaymentService) VerifySignature(string, string, string) bool {
	return true
}
