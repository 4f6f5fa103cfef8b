package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/types"
)

// ErrPaymentsDisabled is returned when no payment processor is configured.
var ErrPaymentsDisabled = errors.New("payments are not configured")

// PaymentProcessor creates payment intents with an external provider.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amountMinor int64) (string, error)
}

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment types.Payment) (types.Payment, error)
}

// MembershipUsers is the slice of the user store a purchase touches.
type MembershipUsers interface {
	UpgradeMembership(ctx context.Context, email string, bonus int, badge string) error
}

// PaymentService handles membership purchases.
type PaymentService struct {
	processor PaymentProcessor
	payments  PaymentRepository
	users     MembershipUsers
	events    Publisher
	log       logging.Logger
	now       func() time.Time
}

// NewPaymentService builds the service. processor and events may be nil.
func NewPaymentService(processor PaymentProcessor, payments PaymentRepository, users MembershipUsers, events Publisher, log logging.Logger) *PaymentService {
	if log == nil {
		log = logging.Nop()
	}
	return &PaymentService{
		processor: processor,
		payments:  payments,
		users:     users,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// CreateIntent converts price from major units to minor units and returns
// the provider's client secret.
func (s *PaymentService) CreateIntent(ctx context.Context, price float64) (string, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return "", invalid("price", "must be positive")
	}
	if s.processor == nil {
		return "", ErrPaymentsDisabled
	}
	secret, err := s.processor.CreateIntent(ctx, int64(math.Round(price*100)))
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return secret, nil
}

// RecordMembership stores the payment and upgrades the payer to member,
// adding the post bonus and the Gold badge.
func (s *PaymentService) RecordMembership(ctx context.Context, payment types.Payment) (types.Payment, error) {
	if strings.TrimSpace(payment.Email) == "" {
		return types.Payment{}, invalid("email", "is required")
	}
	if strings.TrimSpace(payment.TransactionID) == "" {
		return types.Payment{}, invalid("transactionId", "is required")
	}

	payment.CreatedAt = s.now()
	created, err := s.payments.Create(ctx, payment)
	if err != nil {
		return types.Payment{}, fmt.Errorf("record payment: %w", err)
	}
	if err := s.users.UpgradeMembership(ctx, payment.Email, types.MembershipPostBonus, types.BadgeGold); err != nil {
		return created, fmt.Errorf("upgrade membership: %w", err)
	}

	publishEvent(ctx, s.events, s.log, MembershipChannel, Event{
		Type:  "membership.upgraded",
		Email: payment.Email,
		At:    created.CreatedAt,
	})
	return created, nil
}
