package service

import (
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
	"github.com/stripe/stripe-go/v78/refund"
)

// StripeService creates a PaymentIntent per booking; the client secret is
// returned to the mobile client, which completes payment out of band.
type StripeService struct {
	Currency string
}

func NewStripeService(currency string) *StripeService {
	if currency == "" {
		currency = "usd"
	}
	return &StripeService{Currency: currency}
}

func (s *StripeService) CreatePaymentIntent(amountCents int64, bookingID, receiptEmail string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(s.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	params.AddMetadata("booking_id", bookingID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("error creating payment intent: %w", err)
	}
	return pi.ClientSecret, pi.ID, nil
}

func (s *StripeService) RefundPaymentIntent(paymentIntentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("error refunding payment intent %s: %w", paymentIntentID, err)
	}
	return nil
}
