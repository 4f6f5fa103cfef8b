// Package payments creates card payment intents with Stripe.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const defaultCurrency = "usd"

type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProcessor creates PaymentIntents for card payments.
type StripeProcessor struct {
	intents  intentCreator
	currency string
}

// NewStripeProcessor returns a processor bound to the given secret key.
func NewStripeProcessor(secretKey, currency string) (*StripeProcessor, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe secret key is required")
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return newProcessor(sc.PaymentIntents, currency), nil
}

func newProcessor(intents intentCreator, currency string) *StripeProcessor {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return &StripeProcessor{intents: intents, currency: currency}
}

// CreateIntent creates a card PaymentIntent for amountMinor units of the
// configured currency and returns its client secret.
func (p *StripeProcessor) CreateIntent(ctx context.Context, amountMinor int64) (string, error) {
	if amountMinor <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", amountMinor)
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(p.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := p.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", fmt.Errorf("stripe %s: %s", stripeErr.Type, stripeErr.Msg)
		}
		return "", err
	}
	return intent.ClientSecret, nil
}
