package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Mailer is the out-of-band delivery channel for reset tokens
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// AWSSESMailer sends email using AWS SES
type AWSSESMailer struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESMailer creates a new AWS SES mailer
func NewAWSSESMailer(region, fromAddress string, logger *slog.Logger) (*AWSSESMailer, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESMailer{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// Send delivers a single message via SES
func (m *AWSSESMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(m.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := m.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent", slog.String("message_id", *result.MessageId))
	return nil
}

// resetEmailBodies renders the password reset message around the reset URL.
func resetEmailBodies(resetURL string, ttl time.Duration) (htmlBody, textBody string) {
	minutes := int(ttl.Minutes())

	htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Password Reset Request</h1>
        <p>We received a request to reset the password for your account. Click the link below to choose a new password:</p>
        <p><a href="%s" class="button">Reset Password</a></p>
        <p>Or copy and paste this link in your browser:<br>
        <code>%s</code></p>
        <p>This link will expire in %d minutes.</p>
        <p><strong>Didn't request this?</strong><br>
        If you didn't ask to reset your password, you can ignore this email and your password will stay unchanged.</p>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, resetURL, resetURL, minutes)

	textBody = fmt.Sprintf(`Password Reset Request

We received a request to reset the password for your account. Open the link below to choose a new password:

%s

This link will expire in %d minutes.

Didn't request this?
If you didn't ask to reset your password, you can ignore this email and your password will stay unchanged.

This is an automated message. Please do not reply to this email.
`, resetURL, minutes)

	return htmlBody, textBody
}
