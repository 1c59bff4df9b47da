package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/techfix-ai/techfix-backend/internal/models"
	"github.com/techfix-ai/techfix-backend/internal/storage"
)

const emailFrom = "TechFix AI <onboarding@resend.dev>"

// ResendService sends transactional email through the Resend API.
// Delivery is best-effort: callers fire and forget, outcomes are
// logged and recorded as Notification rows, never reported back.
type ResendService struct {
	apiKey          string
	technicianEmail string
	store           storage.Store
	client          *http.Client
}

// NewResendService creates a new Resend email service
func NewResendService(apiKey, technicianEmail string, store storage.Store) *ResendService {
	return &ResendService{
		apiKey:          apiKey,
		technicianEmail: technicianEmail,
		store:           store,
		client:          &http.Client{Timeout: 10 * time.Second},
	}
}

type resendEmailReq struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one email synchronously.
func (r *ResendService) Send(to, subject, html string) error {
	log.Printf("📧 [EMAIL] Sending to %s", to)

	b, err := json.Marshal(resendEmailReq{
		From:    emailFrom,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("❌ [EMAIL ERROR] %v", err)
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ [EMAIL FAILED] Resend error: %d", resp.StatusCode)
		return fmt.Errorf("resend error: status %d", resp.StatusCode)
	}

	log.Printf("✅ [EMAIL SUCCESS] Email sent to %s", to)
	return nil
}

// SendAsync delivers the email on a detached goroutine. The HTTP
// response never waits on mail transport; failures are visible only in
// logs and the notifications table.
func (r *ResendService) SendAsync(notificationType, to, subject, html string) {
	go func() {
		err := r.Send(to, subject, html)

		status := "sent"
		var sentAt *time.Time
		if err != nil {
			status = "failed"
		} else {
			now := time.Now().UTC()
			sentAt = &now
		}

		if r.store != nil {
			if dbErr := r.store.CreateNotification(&models.Notification{
				Type:      notificationType,
				Recipient: to,
				Subject:   subject,
				Status:    status,
				SentAt:    sentAt,
			}); dbErr != nil {
				log.Printf("⚠️  Failed to record notification: %v", dbErr)
			}
		}
	}()
	log.Printf("📧 [ASYNC] Email background send started for %s", to)
}

// SendHelpRequest emails the technician about a remote-help request.
func (r *ResendService) SendHelpRequest(token, userEmail, issue, rdpCode string) {
	log.Printf("🚀 [HELP REQUEST] Initiating email to technician (token %s)", token)

	subject := fmt.Sprintf("🆘 Help Request - Token: %s", token)
	r.SendAsync("help_request", r.technicianEmail, subject, helpRequestHTML(token, userEmail, issue, rdpCode))
}

// SendTokenDelivery emails a freshly minted paid session token to the
// end user.
func (r *ResendService) SendTokenDelivery(to, token string, expiresAt time.Time) {
	subject := "Your TechFix AI service token"
	r.SendAsync("token_delivery", to, subject, tokenDeliveryHTML(token, expiresAt))
}

func helpRequestHTML(token, userEmail, issue, rdpCode string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4CAF50; color: white; padding: 20px; border-radius: 5px 5px 0 0; }
        .content { background: #f9f9f9; padding: 20px; border: 1px solid #ddd; }
        .info-row { margin: 10px 0; }
        .label { font-weight: bold; color: #555; }
        .button {
            display: inline-block;
            background: #4CAF50;
            color: white;
            padding: 12px 24px;
            text-decoration: none;
            border-radius: 5px;
            margin-top: 15px;
        }
        .footer { margin-top: 20px; padding: 10px; text-align: center; color: #777; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>🆘 Help Request Received</h2>
        </div>
        <div class="content">
            <div class="info-row">
                <span class="label">Service Token:</span> %s
            </div>
            <div class="info-row">
                <span class="label">User Email:</span> %s
            </div>
            <div class="info-row">
                <span class="label">Issue:</span> %s
            </div>
            <div class="info-row">
                <span class="label">Chrome Remote Desktop Code:</span> <code style="background: #fff; padding: 5px 10px; border-radius: 3px;">%s</code>
            </div>

            <a href="https://remotedesktop.google.com/access" class="button">
                🖥️ Connect via Chrome Remote Desktop
            </a>

            <p style="margin-top: 20px; color: #666; font-size: 14px;">
                ⏱️ Session expires in 15 minutes. Please connect as soon as possible.
            </p>
        </div>
        <div class="footer">
            TechFix AI - Automated Tech Support
        </div>
    </div>
</body>
</html>
`, token, userEmail, issue, rdpCode)
}

func tokenDeliveryHTML(token string, expiresAt time.Time) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Your service token is ready</h2>
        <p>Enter this token in the TechFix app to start your repair session:</p>
        <p style="font-size: 24px; letter-spacing: 2px;"><code>%s</code></p>
        <p style="color: #666;">⏱️ Valid until %s.</p>
        <p style="margin-top: 20px; color: #777; font-size: 12px;">TechFix AI - Automated Tech Support</p>
    </div>
</body>
</html>
`, token, expiresAt.Format(time.RFC1123))
}
