// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeVerifier checks a Stripe PaymentIntent before an attempt is
// marked paid. The provider reference is the PaymentIntent id.
type StripeVerifier struct {
	client paymentintent.Client
}

// NewStripeVerifier creates a verifier using secretKey. An empty baseURL
// uses the live Stripe API.
func NewStripeVerifier(secretKey, baseURL string) *StripeVerifier {
	var backend stripe.Backend
	if baseURL != "" {
		backend = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(baseURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
	} else {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeVerifier{client: paymentintent.Client{B: backend, Key: secretKey}}
}

// Verify fetches the PaymentIntent and checks it succeeded for the
// attempt's amount and currency.
func (v *StripeVerifier) Verify(ctx context.Context, a *Attempt, providerRef string) error {
	if providerRef == "" {
		return fmt.Errorf("%w: missing payment intent", ErrNotPaid)
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := v.client.Get(providerRef, params)
	if err != nil {
		return fmt.Errorf("stripe get payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: status %s", ErrNotPaid, pi.Status)
	}
	if pi.Amount != a.Amount || !strings.EqualFold(string(pi.Currency), a.Currency) {
		return fmt.Errorf("%w: amount %d %s does not match", ErrNotPaid, pi.Amount, pi.Currency)
	}
	if ref, ok := pi.Metadata["reference"]; ok && ref != a.Reference {
		return fmt.Errorf("%w: reference mismatch", ErrNotPaid)
	}
	return nil
}
