package mail

import (
	"context"
	"fmt"
)

// Notifier sends outbound notification email.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// OTPEmail renders the subject and HTML body for an OTP message.
func OTPEmail(purpose, code string, expiryMinutes int) (string, string) {
	subject := "Your Gambit OTP Code"
	var intro, warning string
	switch purpose {
	case "signup":
		intro = "Thank you for signing up. To complete your registration, please use the following OTP:"
		warning = "If you did not request this code, please ignore this email."
	case "reset", "change":
		intro = "You requested to change your password. Please use the following OTP to verify your request:"
		warning = "If you did not request this code, please secure your account immediately."
	default:
		intro = "You requested a verification code. Please use the following OTP:"
		warning = "If you did not request this code, please ignore this email."
	}
	body := fmt.Sprintf(`<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2 style="color: #5c2d91;">Welcome to Gambit!</h2>
    <p>%s</p>
    <div style="background-color: #f5f5f5; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">%s</div>
    <p>This code will expire in %d minutes.</p>
    <p>%s</p>
    <p>Best regards,<br>The Gambit Team</p>
  </body>
</html>`, intro, code, expiryMinutes, warning)
	return subject, body
}
