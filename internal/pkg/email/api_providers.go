// internal/pkg/email/api_providers.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ResendEmailRequest represents Resend API request
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendGridEmailRequest represents SendGrid v3 mail/send request
type SendGridEmailRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// sendResendEmail sends email using Resend API
func (s *EmailService) sendResendEmail(ctx context.Context, email *Email) error {
	return s.postJSON(ctx, "Resend", s.endpoints.resend, ResendEmailRequest{
		From:    s.fromAddress(),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		ReplyTo: s.config.ReplyTo,
	}, http.StatusOK)
}

// sendSendGridEmail sends email using SendGrid API
func (s *EmailService) sendSendGridEmail(ctx context.Context, email *Email) error {
	to := make([]sendGridAddress, 0, len(email.To))
	for _, addr := range email.To {
		to = append(to, sendGridAddress{Email: addr})
	}

	req := SendGridEmailRequest{
		Personalizations: []sendGridPersonalization{{To: to}},
		From:             sendGridAddress{Email: s.config.FromEmail, Name: s.config.FromName},
		Subject:          email.Subject,
		Content:          []sendGridContent{{Type: "text/html", Value: email.HTMLContent}},
	}
	if s.config.ReplyTo != "" {
		req.ReplyTo = &sendGridAddress{Email: s.config.ReplyTo}
	}

	return s.postJSON(ctx, "SendGrid", s.endpoints.sendgrid, req, http.StatusAccepted)
}

func (s *EmailService) postJSON(ctx context.Context, provider, url string, body interface{}, want int) error {
	if s.config.APIKey == "" {
		return fmt.Errorf("%s API key not configured", provider)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", provider, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, string(respBody))
	}
	return nil
}
