// Package payment orchestrates the order/payment lifecycle against the
// gateway: opening intents, applying the confirmation/failure/refund
// transitions, and routing verified webhook events. Success transitions are
// idempotent; the client confirm call and the processor webhook may race and
// whichever applies first wins.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"freshcart/internal/domain"
	"freshcart/internal/gateway"
)

type Service struct {
	orders   ordersRepo
	gateway  gateway.PaymentGateway
	verifier webhookVerifier
	currency string
	logger   *log.Logger
}

type ordersRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.Order, error)
	SetPaymentIntent(ctx context.Context, orderID, intentID string) error
	MarkPaid(ctx context.Context, intentID, transactionID string) (*domain.Order, error)
	MarkFailed(ctx context.Context, intentID string) error
	MarkRefunded(ctx context.Context, orderID string) (*domain.Order, error)
}

type webhookVerifier interface {
	Verify(payload []byte, sigHeader string) (*gateway.Event, error)
}

func New(orders ordersRepo, gw gateway.PaymentGateway, verifier webhookVerifier, currency string, logger *log.Logger) *Service {
	return &Service{
		orders:   orders,
		gateway:  gw,
		verifier: verifier,
		currency: currency,
		logger:   logger,
	}
}

type IntentOutput struct {
	IntentID     string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

// OpenIntent asks the gateway for a payment intent covering the order total
// and stores the intent id on the order. A fresh intent replaces any earlier
// unpaid one; a paid order cannot open another intent.
func (s *Service) OpenIntent(ctx context.Context, userID, orderID string) (*IntentOutput, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if order.Payment.Status == domain.PaymentPaid {
		return nil, domain.ErrAlreadyPaid
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentInput{
		AmountCents:  order.Pricing.TotalCents,
		Currency:     s.currency,
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		UserID:       userID,
		ReceiptEmail: order.ShippingAddress.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	// If this fails the order keeps its pending payment state and the call
	// is safely retryable.
	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, err
	}
	return &IntentOutput{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// Confirm applies the client-driven success transition. The gateway is the
// source of truth for the intent status; confirming an already-paid order is
// a no-op success.
func (s *Service) Confirm(ctx context.Context, userID, intentID string) (*domain.Order, error) {
	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	if intent.Status != gateway.IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment not successful", domain.ErrValidation)
	}

	order, err := s.orders.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}

	return s.orders.MarkPaid(ctx, intentID, intent.ID)
}

// Status reports the payment and order status to the owner or an admin.
func (s *Service) Status(ctx context.Context, userID string, isAdmin bool, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

type RefundInput struct {
	OrderID     string
	AmountCents int64
	Reason      string
}

type RefundOutput struct {
	RefundID    string
	AmountCents int64
	Status      string
}

// Refund reverses a paid order through the gateway, then marks the order
// refunded and cancelled. An unpaid order is rejected before any gateway
// call. Amount defaults to the full order total.
func (s *Service) Refund(ctx context.Context, in RefundInput) (*RefundOutput, error) {
	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Payment.Status != domain.PaymentPaid {
		return nil, domain.ErrNotPaid
	}

	amount := in.AmountCents
	if amount <= 0 {
		amount = order.Pricing.TotalCents
	}
	reason := in.Reason
	if reason == "" {
		reason = "requested_by_customer"
	}

	refund, err := s.gateway.CreateRefund(ctx, gateway.CreateRefundInput{
		IntentID:    order.Payment.IntentID,
		AmountCents: amount,
		Reason:      reason,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	if _, err := s.orders.MarkRefunded(ctx, in.OrderID); err != nil {
		return nil, err
	}
	return &RefundOutput{RefundID: refund.ID, AmountCents: refund.AmountCents, Status: refund.Status}, nil
}

// HandleWebhook verifies an inbound processor notification and applies the
// matching transition. Events for unknown intents are acknowledged without
// effect, matching the processor's at-least-once delivery.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		return err
	}

	switch event.Type {
	case gateway.EventPaymentSucceeded:
		_, err := s.orders.MarkPaid(ctx, event.IntentID, event.IntentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrRefunded) {
				s.logger.Printf("webhook: success event for intent %s ignored: %v", event.IntentID, err)
				return nil
			}
			return err
		}
		s.logger.Printf("webhook: intent %s succeeded", event.IntentID)
	case gateway.EventPaymentFailed:
		if err := s.orders.MarkFailed(ctx, event.IntentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("webhook: failure event for unknown intent %s ignored", event.IntentID)
				return nil
			}
			return err
		}
		s.logger.Printf("webhook: intent %s failed", event.IntentID)
	default:
		s.logger.Printf("webhook: unhandled event type %s", event.Type)
	}
	return nil
}
