package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

var ErrNotConfigured = errors.New("email service not configured")

// EmailService handles sending emails via Resend API
type EmailService struct {
	apiKey    string
	fromEmail string
	endpoint  string
	client    *http.Client
}

// NewEmailService creates a new email service instance
func NewEmailService(apiKey, fromEmail string) *EmailService {
	return &EmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		endpoint:  resendEndpoint,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// IsConfigured checks if the email service is properly configured
func (s *EmailService) IsConfigured() bool {
	return s.apiKey != "" && s.fromEmail != ""
}

type attachment struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"` // base64 via encoding/json
}

type sendEmailRequest struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []attachment `json:"attachments,omitempty"`
}

// SendEmail sends an email using Resend API
func (s *EmailService) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	return s.send(ctx, sendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	})
}

// SendOrderReceipt mails the rendered order document, with the PDF attached when one is given
func (s *EmailService) SendOrderReceipt(ctx context.Context, to, storeName, orderNumber, html string, pdf []byte) error {
	req := sendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: fmt.Sprintf("%s - Pedido %s", storeName, orderNumber),
		HTML:    html,
	}
	if len(pdf) > 0 {
		req.Attachments = []attachment{{Filename: "pedido-" + orderNumber + ".pdf", Content: pdf}}
	}
	return s.send(ctx, req)
}

func (s *EmailService) send(ctx context.Context, payload sendEmailRequest) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}

	return nil
}
