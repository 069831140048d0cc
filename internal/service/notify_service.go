package service

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"arrive/internal/entities"
)

// NotifyService delivers booking status updates over email (SendGrid) and
// SMS (Twilio). Sends run asynchronously; delivery failures are logged,
// never surfaced to the request path.
type NotifyService struct{}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

func (s *NotifyService) BookingStatusChanged(data entities.BookingEmailData, email, phone string) {
	subject := fmt.Sprintf("Your Arrive booking is %s - %s", strings.ToLower(data.Status), data.BookingID)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour parking booking is %s.\n\n"+
			"Booking Details:\n"+
			"Booking ID: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n\n"+
			"Thank you for choosing Arrive.",
		data.RenterName, strings.ToLower(data.Status), data.BookingID,
		data.StartTimeFormatted, data.EndTimeFormatted,
	)
	sms := fmt.Sprintf("Arrive: Booking %s is %s. Check-in: %s. Details in your email.",
		data.BookingID, strings.ToLower(data.Status), data.StartTimeFormatted)

	go func() {
		if err := sendEmailWithSendGrid(email, data.RenterName, subject, body); err != nil {
			log.Printf("Email delivery failed for booking %s: %v", data.BookingID, err)
		}
	}()
	go func() {
		if err := sendSMS(phone, sms); err != nil {
			log.Printf("SMS delivery failed for booking %s: %v", data.BookingID, err)
		}
	}()
}

func sendEmailWithSendGrid(toEmailAddress, toName, subject, plainTextContent string) error {
	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY not set")
	}
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL not set")
	}
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Arrive"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmailAddress)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, "")

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	log.Printf("Email sent to %s (subject: %s)", toEmailAddress, subject)
	return nil
}

func sendSMS(toNumber, messageBody string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")
	if accountSid == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("twilio credentials not fully configured")
	}
	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("Destination number %q is not E.164; SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSid,
		Password:   authToken,
		AccountSid: accountSid,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(messageBody)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("SMS sent to %s (SID %s)", toNumber, *resp.Sid)
	}
	return nil
}
