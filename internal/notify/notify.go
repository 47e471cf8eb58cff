package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Mailer delivers summary emails through the AhaSend transactional email
// API.
type Mailer struct {
	client      *http.Client
	apiURL      string
	apiKey      string
	senderName  string
	senderEmail string
}

func New(apiURL, apiKey, senderName, senderEmail string, timeout time.Duration) *Mailer {
	return &Mailer{
		client:      &http.Client{Timeout: timeout},
		apiURL:      apiURL,
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
	}
}

type address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type content struct {
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body"`
}

type message struct {
	From       address   `json:"from"`
	Recipients []address `json:"recipients"`
	Content    content   `json:"content"`
}

// Deliver sends one email to recipient. Any transport error or non-2xx
// response is a failure; the caller decides what that means for the episode.
func (m *Mailer) Deliver(ctx context.Context, subject, textBody, htmlBody, recipient string) error {
	msg := message{
		From:       address{Name: m.senderName, Email: m.senderEmail},
		Recipients: []address{{Name: "Podcast Listener", Email: recipient}},
		Content:    content{Subject: subject, TextBody: textBody, HTMLBody: htmlBody},
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode, string(respBody))
	}

	log.Printf("Email sent to %s: %s", recipient, subject)
	return nil
}
