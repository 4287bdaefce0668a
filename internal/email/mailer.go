package email

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"suedpfote-storefront/internal/domain"
)

const defaultAPIBase = "https://api.mailgun.net"

// Mailer posts messages to a Mailgun-compatible API.
type Mailer struct {
	apiBase    string
	apiKey     string
	domain     string
	from       string
	httpClient *http.Client
	logger     *log.Logger
}

// New builds a Mailer. apiBase is overridable for tests.
func New(apiKey, mailDomain, from, apiBase string, httpClient *http.Client, logger *log.Logger) *Mailer {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Mailer{
		apiBase:    strings.TrimRight(apiBase, "/"),
		apiKey:     apiKey,
		domain:     mailDomain,
		from:       from,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Send transmits the message. A non-2xx API response is returned as an
// upstream error so outbox retries can tell it apart from local failures.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("html", msg.HTML)
	if msg.Text != "" {
		form.Set("text", msg.Text)
	}

	endpoint := fmt.Sprintf("%s/v3/%s/messages", m.apiBase, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.UpstreamError{System: "mailgun", Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	m.logger.Printf("email sent to %s: %s", msg.To, msg.Subject)
	return nil
}

// SendWelcome sends the account-provisioning email carrying the generated
// password.
func (m *Mailer) SendWelcome(ctx context.Context, to, password, firstName string) error {
	html, text := welcomeBody(to, password, firstName)
	return m.Send(ctx, Message{
		To:      to,
		Subject: "Willkommen bei Südpfote – Deine Zugangsdaten",
		HTML:    html,
		Text:    text,
	})
}

// SendOrderConfirmation sends the order confirmation email.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to, orderID, firstName string) error {
	html, text := confirmationBody(orderID, firstName)
	return m.Send(ctx, Message{
		To:      to,
		Subject: fmt.Sprintf("Deine Bestellung %s bei Südpfote", orderID),
		HTML:    html,
		Text:    text,
	})
}
