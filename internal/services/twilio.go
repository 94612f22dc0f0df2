package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// messageCreator is the part of the Twilio REST API the bot uses
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioService sends outbound WhatsApp messages
type TwilioService struct {
	api  messageCreator
	from string // Format: "whatsapp:+14155238886"
}

// NewTwilioService creates a Twilio service from account credentials
func NewTwilioService(accountSid, authToken, from string) (*TwilioService, error) {
	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		api:  client.Api,
		from: whatsappAddress(from),
	}, nil
}

// whatsappAddress adds the "whatsapp:" channel prefix if it is missing
func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio
func (t *TwilioService) SendWhatsAppMessage(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(whatsappAddress(to))
	params.SetBody(message)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	if resp.Sid != nil {
		log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	}
	return nil
}

// StaffNotifier alerts the café staff on WhatsApp about incoming orders
type StaffNotifier struct {
	twilio *TwilioService
	to     string
}

// NewStaffNotifier sends alerts to the staff number to
func NewStaffNotifier(twilio *TwilioService, to string) *StaffNotifier {
	return &StaffNotifier{twilio: twilio, to: to}
}

func (n *StaffNotifier) OrderSaved(ctx context.Context, record models.OrderRecord) error {
	return n.send(ctx, staffOrderSavedMessage(record))
}

func (n *StaffNotifier) OrderNotSaved(ctx context.Context, record models.OrderRecord, cause error) error {
	return n.send(ctx, staffOrderNotSavedMessage(record, cause))
}

// send skips the alert once ctx is done; the Twilio client takes no context
func (n *StaffNotifier) send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("staff alert not sent: %w", err)
	}
	return n.twilio.SendWhatsAppMessage(n.to, message)
}
