package email

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/labstack/echo/v4"
)

// SMTPServer describes how to reach the outbound relay. ImplicitTLS wraps
// the connection from the first byte (SMTPS), StartTLS upgrades after the
// greeting; at most one should be set.
type SMTPServer struct {
	HostPort    string
	User        string
	Password    string
	ImplicitTLS bool
	StartTLS    bool
}

// SMTPClient implements Notifier over a plain SMTP relay for deployments
// without a Resend account.
type SMTPClient struct {
	server        SMTPServer
	defaultSender string
	logger        echo.Logger
}

var _ Notifier = (*SMTPClient)(nil)

// NewSMTPClient creates a new SMTPClient
func NewSMTPClient(server SMTPServer, defaultSender string, logger echo.Logger) *SMTPClient {
	return &SMTPClient{
		server:        server,
		defaultSender: defaultSender,
		logger:        logger,
	}
}

// Send delivers one email over a fresh SMTP session and reports the outcome
func (c *SMTPClient) Send(toEmail, subject, htmlBody string) error {
	return c.deliver(Message{
		From:     c.defaultSender,
		To:       []string{toEmail},
		Subject:  subject,
		HTMLBody: htmlBody,
	})
}

// SendFeedbackInvitation sends the redemption link to an invitee. Unlike the
// generic Send it carries a plain-text part alongside the HTML template for
// text-only mail readers.
func (c *SMTPClient) SendFeedbackInvitation(toEmail, feedbackURL string) error {
	return c.deliver(Message{
		From:      c.defaultSender,
		To:        []string{toEmail},
		Subject:   invitationSubject,
		PlainBody: invitationPlainText(feedbackURL),
		HTMLBody:  invitationBody(feedbackURL),
	})
}

func (c *SMTPClient) deliver(msg Message) error {
	if c == nil || c.server.HostPort == "" {
		return errors.New("smtp server not configured")
	}

	if c.defaultSender == "" {
		return errors.New("smtp default sender not configured")
	}

	toEmail := strings.Join(msg.To, ", ")
	if err := send(c.server, msg); err != nil {
		c.logger.Errorf("Failed to send email to %s (Subject: %s): %v", toEmail, msg.Subject, err)
		return err
	}

	c.logger.Infof("Email sent successfully to %s (Subject: %s)", toEmail, msg.Subject)
	return nil
}

func dial(server SMTPServer) (*smtp.Client, error) {
	var client *smtp.Client
	var err error

	switch {
	case server.ImplicitTLS:
		client, err = smtp.DialTLS(server.HostPort, nil)
	case server.StartTLS:
		client, err = smtp.DialStartTLS(server.HostPort, nil)
	default:
		client, err = smtp.Dial(server.HostPort)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to smtp server: %w", err)
	}

	if server.User != "" || server.Password != "" {
		if err := client.Auth(sasl.NewLoginClient(server.User, server.Password)); err != nil {
			client.Close()
			return nil, fmt.Errorf("AUTH failed: %w", err)
		}
	}

	return client, nil
}

func send(server SMTPServer, msg Message) error {
	client, err := dial(server)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(msg.From, nil); err != nil {
		return fmt.Errorf("smtp server rejected mail from '%s': %w", msg.From, err)
	}

	for _, address := range msg.To {
		if err := client.Rcpt(address, nil); err != nil {
			return fmt.Errorf("smtp server rejected mail to '%s': %w", address, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp server rejected request to send mail data: %w", err)
	}

	if err := msg.Write(writer); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	if err := client.Quit(); err != nil {
		smtpError := &smtp.SMTPError{}
		if errors.As(err, &smtpError) {
			// Some SMTP servers answer QUIT with 250 instead of 221
			if smtpError.Code == 250 {
				return nil
			}
		}
		return err
	}
	return nil
}
