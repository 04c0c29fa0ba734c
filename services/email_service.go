package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/logger"
	"github.com/summitworks/training-api/middleware"
	"github.com/summitworks/training-api/utils"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename string
	Path     string
}

// EmailMessage is one outgoing email.
type EmailMessage struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// EmailInterface defines the interface for sending transactional email.
// Send returns true when the provider accepted the message; it never
// returns an error, so a misconfigured or failing provider can only
// produce a logged warning, not a failed request.
type EmailInterface interface {
	Send(msg EmailMessage) bool
}

var emailInstance EmailInterface

// InitEmailSender builds the sender for the provider resolved at config
// load time. The provider choice is injected here once; senders never
// inspect the environment per call.
func InitEmailSender(cfg *config.Config) EmailInterface {
	var sender EmailInterface
	switch cfg.EmailProvider {
	case config.ProviderBrevo:
		sender = &brevoSender{apiKey: cfg.BrevoAPIKey, from: cfg.EmailFrom, fromName: cfg.CompanyName, httpClient: newProviderClient()}
	case config.ProviderResend:
		sender = &resendSender{apiKey: cfg.ResendAPIKey, from: cfg.EmailFrom, httpClient: newProviderClient()}
	case config.ProviderSMTP:
		sender = &smtpSender{host: cfg.SMTPHost, port: cfg.SMTPPort, user: cfg.SMTPUser, password: cfg.SMTPPassword, from: cfg.EmailFrom}
	default:
		sender = &noopSender{}
	}
	emailInstance = sender
	return sender
}

// GetEmailSender returns the initialized email sender instance
func GetEmailSender() EmailInterface {
	return emailInstance
}

// SetEmailSender sets the email sender instance (primarily for testing)
func SetEmailSender(s EmailInterface) {
	emailInstance = s
}

func newProviderClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// recordOutcome updates metrics and logs for one send attempt.
func recordOutcome(provider string, msg EmailMessage, err error) bool {
	if err != nil {
		middleware.RecordEmailSent("failed")
		logger.Warn("email send failed", "provider", provider, "to", msg.To, "subject", msg.Subject, "error", err)
		return false
	}
	middleware.RecordEmailSent("ok")
	logger.Info("email sent", "provider", provider, "to", msg.To, "subject", msg.Subject)
	return true
}

// encodeAttachments reads attachment files and base64-encodes them for
// the REST providers. Unreadable attachments are skipped with a warning
// rather than failing the whole send.
func encodeAttachments(msg EmailMessage) []map[string]string {
	var out []map[string]string
	for _, a := range msg.Attachments {
		if !utils.FileExists(a.Path) {
			logger.Warn("skipping missing attachment", "path", a.Path)
			continue
		}
		content, err := os.ReadFile(a.Path)
		if err != nil {
			logger.Warn("skipping unreadable attachment", "path", a.Path, "error", err)
			continue
		}
		out = append(out, map[string]string{
			"name":    a.Filename,
			"content": base64.StdEncoding.EncodeToString(content),
		})
	}
	return out
}

// postJSON sends a JSON payload to a provider endpoint and returns an
// error on transport failure or a non-2xx response.
func postJSON(client *http.Client, url string, headers map[string]string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call provider: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// brevoSender delivers through the Brevo transactional email API.
type brevoSender struct {
	apiKey     string
	from       string
	fromName   string
	httpClient *http.Client
	// endpoint override for testing
	endpoint string
}

func (s *brevoSender) Send(msg EmailMessage) bool {
	url := s.endpoint
	if url == "" {
		url = "https://api.brevo.com/v3/smtp/email"
	}

	payload := map[string]interface{}{
		"sender":      map[string]string{"email": s.from, "name": s.fromName},
		"to":          []map[string]string{{"email": msg.To}},
		"subject":     msg.Subject,
		"htmlContent": msg.HTML,
	}
	if msg.Text != "" {
		payload["textContent"] = msg.Text
	}
	if atts := encodeAttachments(msg); len(atts) > 0 {
		payload["attachment"] = atts
	}

	err := postJSON(s.httpClient, url, map[string]string{"api-key": s.apiKey}, payload)
	return recordOutcome("brevo", msg, err)
}

// resendSender delivers through the Resend API.
type resendSender struct {
	apiKey     string
	from       string
	httpClient *http.Client
	// endpoint override for testing
	endpoint string
}

func (s *resendSender) Send(msg EmailMessage) bool {
	url := s.endpoint
	if url == "" {
		url = "https://api.resend.com/emails"
	}

	payload := map[string]interface{}{
		"from":    s.from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	if msg.Text != "" {
		payload["text"] = msg.Text
	}
	if atts := encodeAttachments(msg); len(atts) > 0 {
		resendAtts := make([]map[string]string, 0, len(atts))
		for _, a := range atts {
			resendAtts = append(resendAtts, map[string]string{
				"filename": a["name"],
				"content":  a["content"],
			})
		}
		payload["attachments"] = resendAtts
	}

	err := postJSON(s.httpClient, url, map[string]string{"Authorization": "Bearer " + s.apiKey}, payload)
	return recordOutcome("resend", msg, err)
}

// smtpSender delivers through a plain SMTP relay.
type smtpSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func (s *smtpSender) Send(msg EmailMessage) bool {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	for _, a := range msg.Attachments {
		if !utils.FileExists(a.Path) {
			logger.Warn("skipping missing attachment", "path", a.Path)
			continue
		}
		m.Attach(a.Path, gomail.Rename(a.Filename))
	}

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	err := d.DialAndSend(m)
	return recordOutcome("smtp", msg, err)
}

// noopSender is used when no provider credentials are configured.
type noopSender struct{}

func (s *noopSender) Send(msg EmailMessage) bool {
	return recordOutcome("none", msg, fmt.Errorf("no email provider configured"))
}
