package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProcessor creates card PaymentIntents. The card itself is charged
// by the client using the returned secret; no card data reaches us.
type StripeProcessor struct {
	api *client.API
}

// NewStripeProcessor talks to the live Stripe API.
func NewStripeProcessor(secretKey string) *StripeProcessor {
	return NewStripeProcessorWithURL(secretKey, "")
}

// NewStripeProcessorWithURL talks to baseURL instead of api.stripe.com,
// e.g. stripe-mock. An empty baseURL means the default.
func NewStripeProcessorWithURL(secretKey, baseURL string) *StripeProcessor {
	backendConfig := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if baseURL != "" {
		backendConfig.URL = stripe.String(baseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig)

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return &StripeProcessor{api: api}
}

// CreateChargeIntent opens a USD, card-only PaymentIntent for amountInCents
// and returns its client secret.
func (p *StripeProcessor) CreateChargeIntent(ctx context.Context, amountInCents int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("%s", ErrorMessage(err))
	}
	if intent.ClientSecret == "" {
		return "", errors.New("payment intent has no client secret")
	}
	return intent.ClientSecret, nil
}

// ErrorMessage returns the human readable part of a Stripe error.
func ErrorMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
