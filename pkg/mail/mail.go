// Package mail provides a fluent SMTP mailer.
//
// Usage:
//
//	mail.To("user@example.com").
//	    Subject("Your invoice").
//	    Body("<h1>Thanks!</h1>").
//	    Attach("invoice_123.pdf", pdfBytes, "application/pdf").
//	    Send()
package mail

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"sync"

	"github.com/shashiranjanraj/motomart/config"
)

// SMTP holds connection credentials (populated from env/config).
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func defaultSMTP() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "no-reply@motomart.app"),
		FromName: config.Get("MAIL_FROM_NAME", "Motomart"),
	}
}

// ── Transport ────────────────────────────────────────────────────────────────

// Transport delivers a built message. The default transport speaks SMTP;
// tests swap in a capturing implementation via SetTransport.
type Transport interface {
	Deliver(cfg SMTP, from string, to []string, raw []byte) error
}

var (
	transportMu sync.RWMutex
	transport   Transport = smtpTransport{}
)

// SetTransport replaces the delivery mechanism and returns the previous one.
func SetTransport(t Transport) Transport {
	transportMu.Lock()
	defer transportMu.Unlock()
	prev := transport
	transport = t
	return prev
}

func currentTransport() Transport {
	transportMu.RLock()
	defer transportMu.RUnlock()
	return transport
}

// ── Message ──────────────────────────────────────────────────────────────────

// Message is a fluent builder for an email.
type Message struct {
	to          []string
	subject     string
	body        string
	isHTML      bool
	attachments []Attachment
	smtpCfg     SMTP
}

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Name     string
	Content  []byte
	MIMEType string
}

// To sets the primary recipients and starts a new message.
func To(addresses ...string) *Message {
	return &Message{
		to:      addresses,
		isHTML:  true,
		smtpCfg: defaultSMTP(),
	}
}

// Subject sets the email subject.
func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets the email body (HTML by default).
func (m *Message) Body(html string) *Message {
	m.body = html
	m.isHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

// Attach adds an in-memory file attachment.
func (m *Message) Attach(name string, content []byte, mimeType string) *Message {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	m.attachments = append(m.attachments, Attachment{Name: name, Content: content, MIMEType: mimeType})
	return m
}

// UseConfig overrides the SMTP settings for this message.
func (m *Message) UseConfig(cfg SMTP) *Message {
	m.smtpCfg = cfg
	return m
}

// Send builds the MIME payload and hands it to the configured transport.
func (m *Message) Send() error {
	cfg := m.smtpCfg
	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	raw := m.BuildRaw(from)
	return currentTransport().Deliver(cfg, cfg.From, m.to, raw)
}

// BuildRaw assembles the full RFC 2045 message. Attachments are carried in a
// multipart/mixed payload with base64 content-transfer-encoding.
func (m *Message) BuildRaw(from string) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("UTF-8", m.subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(m.attachments) == 0 {
		b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
		b.WriteString("\r\n")
		b.WriteString(m.body)
		return []byte(b.String())
	}

	const boundary = "motomart-mixed-boundary"
	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	b.WriteString("\r\n")

	// Body part.
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.body)
	b.WriteString("\r\n")

	// Attachment parts.
	for _, a := range m.attachments {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(fmt.Sprintf("Content-Type: %s; name=%q\r\n", a.MIMEType, a.Name))
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", a.Name))
		b.WriteString("\r\n")
		b.WriteString(wrap76(base64.StdEncoding.EncodeToString(a.Content)))
		b.WriteString("\r\n")
	}

	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// wrap76 folds base64 output at the 76-character line limit SMTP expects.
func wrap76(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteString("\r\n")
		s = s[76:]
	}
	b.WriteString(s)
	return b.String()
}

// ── SMTP transport ───────────────────────────────────────────────────────────

type smtpTransport struct{}

func (smtpTransport) Deliver(cfg SMTP, from string, to []string, raw []byte) error {
	if cfg.Username == "" {
		return fmt.Errorf("mail: MAIL_USERNAME not configured")
	}

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	// Implicit TLS on 465, STARTTLS for 587/25.
	if cfg.Port == "465" {
		return sendTLS(addr, auth, from, to, raw, cfg.Host)
	}
	return smtp.SendMail(addr, auth, from, to, raw)
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	tlsCfg := &tls.Config{ServerName: host}
	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(raw)
	return err
}
