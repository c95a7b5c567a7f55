// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/advent-go/pkg/config"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendWinNotification(prize calendar.Prize, identity string) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}
	if config.OrganizerEmail == "" {
		return nil, fmt.Errorf("ORGANIZER_EMAIL environment variable is required")
	}

	return &ResendClient{
		client:    resend.NewClient(config.ResendAPIKey),
		fromEmail: config.EmailFrom,
		toEmail:   config.OrganizerEmail,
	}, nil
}

// SendWinNotification composes and sends the organizer win notification.
func (c *ResendClient) SendWinNotification(prize calendar.Prize, identity string) error {
	subject := fmt.Sprintf("Advent calendar: day %d prize won (%s)", prize.Day, prize.TierName)

	content := templates.GetWinNotificationContent(templates.WinNotificationProps{
		Day:      prize.Day,
		TierName: prize.TierName,
		Code:     prize.Code,
		Identity: identity,
		DrawnAt:  prize.DrawnAt.UTC().Format("2006-01-02 15:04:05 UTC"),
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Advent Calendar <%s>", c.fromEmail),
		To:      []string{c.toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send win notification via Resend: %w", err)
	}

	return nil
}
