// Package sms abstracts the outbound text-message provider.
package sms

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

// LogSender writes messages to the server log instead of sending them.
// Used in development so verification codes show up in the console.
type LogSender struct{}

// Send logs the message.
func (LogSender) Send(_ context.Context, phone, body string) error {
	log.Printf("[SMS] to=%s body=%q", phone, body)
	return nil
}

// HTTPSender posts messages to a Twilio-style REST endpoint.
type HTTPSender struct {
	AccountSID string
	AuthToken  string
	FromNumber string

	client *http.Client
}

// NewHTTPSender creates a sender with the given provider credentials.
func NewHTTPSender(accountSID, authToken, fromNumber string) *HTTPSender {
	return &HTTPSender{
		AccountSID: accountSID,
		AuthToken:  authToken,
		FromNumber: fromNumber,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers the message via the provider's messages endpoint.
func (s *HTTPSender) Send(ctx context.Context, phone, body string) error {
	apiURL := "https://api.twilio.com/2010-04-01/Accounts/" + s.AccountSID + "/Messages.json"

	v := url.Values{}
	v.Set("To", phone)
	v.Set("From", s.FromNumber)
	v.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(v.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read sms provider error: %w", err)
		}
		return fmt.Errorf("sms provider returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
