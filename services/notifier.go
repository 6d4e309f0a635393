package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"trinix-backend/analytics"
	"trinix-backend/store"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers a short text message to a phone number.
type Notifier interface {
	Send(to, body string) error
}

type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioNotifier(accountSid, authToken, from string) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: from,
	}
}

func (n *TwilioNotifier) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", to, *resp.Sid)
	} else {
		log.Printf("Message sent to %s, but no SID returned", to)
	}
	return nil
}

// LogNotifier writes messages to the log instead of sending them. Used when
// Twilio is not configured.
type LogNotifier struct{}

func (LogNotifier) Send(to, body string) error {
	log.Printf("[SMS] to %s: %s", to, body)
	return nil
}

// NewNotifier returns a Twilio notifier when all credentials are present.
func NewNotifier(accountSid, authToken, from string) Notifier {
	if accountSid == "" || authToken == "" || from == "" {
		log.Println("Twilio not configured, messages will be logged only")
		return LogNotifier{}
	}
	return NewTwilioNotifier(accountSid, authToken, from)
}

// InternationalPhone turns a local 10-digit number such as 0712345678 into
// E.164 using countryCode (+254712345678). Numbers already starting with '+'
// are returned unchanged.
func InternationalPhone(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return countryCode + strings.TrimPrefix(phone, "0")
}

func VisitMessage(lounge, name string, points, totalPoints int) string {
	return fmt.Sprintf("Hi %s, thanks for visiting %s! You earned %d points today. Total points: %d.",
		name, lounge, points, totalPoints)
}

func ShiftMessage(lounge, currency string, s analytics.ShiftSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s shift %s: %d customers, sales %s %s (gaming %s, snacks %s).",
		lounge, s.Date, s.TotalCustomers,
		currency, s.TotalSales.StringFixed(2),
		s.TotalGaming.StringFixed(2), s.TotalSnacks.StringFixed(2))

	for _, m := range sortedKeys(s.PaymentMethods) {
		fmt.Fprintf(&sb, " %s: %d/%s", m, s.PaymentMethods[m].Count, s.PaymentMethods[m].Amount.StringFixed(2))
	}
	return sb.String()
}

// VisitNotifier texts a customer their points after a check-in.
type VisitNotifier struct {
	store       store.RecordStore
	notifier    Notifier
	lounge      string
	countryCode string
}

func NewVisitNotifier(rs store.RecordStore, n Notifier, lounge, countryCode string) *VisitNotifier {
	return &VisitNotifier{store: rs, notifier: n, lounge: lounge, countryCode: countryCode}
}

// Notify sends the points message for a new visit. Walk-in records without
// a real phone number are skipped.
func (v *VisitNotifier) Notify(ctx context.Context, customerID, points int) error {
	customer, err := v.store.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil || customer.Phone == "" || customer.Phone == WalkInPhone {
		return nil
	}

	visits, err := v.store.GetVisitsByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	total := analytics.CustomerPoints(visits)[customerID]

	to := InternationalPhone(customer.Phone, v.countryCode)
	return v.notifier.Send(to, VisitMessage(v.lounge, customer.Name, points, total))
}
