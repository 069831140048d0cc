package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"arrive/internal/service"
)

type StripeWebhookHandler struct {
	WebhookSecret  string
	bookingService *service.BookingService
}

func NewStripeWebhookHandler(webhookSecret string, bookingService *service.BookingService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret:  webhookSecret,
		bookingService: bookingService,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Printf("Error parsing payment_intent: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.bookingService.MarkPaymentSucceeded(r.Context(), pi.ID); err != nil {
			log.Printf("Failed to record payment for intent %s: %v", pi.ID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		log.Printf("Ignoring Stripe event type %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
