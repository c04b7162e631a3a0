// Package email implements an SMTP-based email notifier
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/quantfold/odte/internal/core"
	"github.com/quantfold/odte/internal/notifier"
)

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
}

// New creates a new Email notifier
func New(host string, port int, username, password, from string, to []string) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Init(cfg notifier.Config) error {
	if host, ok := cfg.Params["host"].(string); ok {
		e.host = host
	}
	if port, ok := cfg.Params["port"].(int); ok {
		e.port = port
	}
	if username, ok := cfg.Params["username"].(string); ok {
		e.username = username
	}
	if password, ok := cfg.Params["password"].(string); ok {
		e.password = password
	}
	if from, ok := cfg.Params["from"].(string); ok {
		e.from = from
	}
	if to, ok := cfg.Params["to"].([]string); ok {
		e.to = to
	}

	if e.host == "" || e.from == "" || len(e.to) == 0 {
		return fmt.Errorf("email: host, from, and to are required")
	}
	return nil
}

func (e *Email) Send(decision core.TradeDecision) error {
	subject := e.subject(decision)
	body := notifier.FormatDecision(decision)
	return e.sendEmail(subject, body)
}

func (e *Email) subject(d core.TradeDecision) string {
	switch d.Outcome {
	case core.OutcomeApproved:
		return fmt.Sprintf("Trade approved: %s x%d", d.Candidate.Kind, d.Contracts)
	case core.OutcomeRejected:
		return fmt.Sprintf("Trade rejected: %s", d.Reason)
	default:
		return fmt.Sprintf("No trade: %s", d.Outcome)
	}
}

func (e *Email) sendEmail(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		e.from,
		strings.Join(e.to, ","),
		subject,
		body,
	)

	return smtp.SendMail(addr, auth, e.from, e.to, []byte(msg))
}
