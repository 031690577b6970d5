package email

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	resend "github.com/resend/resend-go/v2"
)

// Notifier is an interface for delivering transactional mail. Sends are
// synchronous on purpose: invite batches report delivery failures per
// address, so the outcome has to be known before the response is built.
type Notifier interface {
	Send(toEmail, subject, htmlBody string) error
	SendFeedbackInvitation(toEmail, feedbackURL string) error
}

const invitationSubject = "Feedback Invitation"

func invitationPlainText(feedbackURL string) string {
	return fmt.Sprintf("Click the following link to provide anonymous feedback: %s", feedbackURL)
}

// invitationBody loads the invitation email template and fills in the
// redemption link. Falls back to the plain sentence when the template is not
// deployed so invites still go out.
func invitationBody(feedbackURL string) string {
	templateBytes, err := os.ReadFile("web/emails/feedback-invitation.html")
	if err != nil {
		return invitationPlainText(feedbackURL)
	}
	return strings.ReplaceAll(string(templateBytes), "{feedback_url}", feedbackURL)
}

// ResendClient implements Notifier using the Resend service
type ResendClient struct {
	client        *resend.Client
	defaultSender string
	logger        echo.Logger
}

var _ Notifier = (*ResendClient)(nil)

// NewResendClient creates a new ResendClient
func NewResendClient(client *resend.Client, defaultSender string, logger echo.Logger) *ResendClient {
	return &ResendClient{
		client:        client,
		defaultSender: defaultSender,
		logger:        logger,
	}
}

// Send delivers one email and reports the outcome
func (c *ResendClient) Send(toEmail, subject, htmlBody string) error {
	if c == nil || c.client == nil {
		return errors.New("resend client not initialized")
	}

	if c.defaultSender == "" {
		return errors.New("resend default sender not configured")
	}

	params := &resend.SendEmailRequest{
		From:    c.defaultSender,
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlBody,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		c.logger.Errorf("Failed to send email to %s (Subject: %s): %v", toEmail, subject, err)
		return err
	}

	c.logger.Infof("Email sent successfully to %s (Subject: %s)", toEmail, subject)
	return nil
}

// SendFeedbackInvitation sends the redemption link to an invitee
func (c *ResendClient) SendFeedbackInvitation(toEmail, feedbackURL string) error {
	return c.Send(toEmail, invitationSubject, invitationBody(feedbackURL))
}
