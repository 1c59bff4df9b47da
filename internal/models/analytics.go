package models

import (
	"time"

	"gorm.io/gorm"
)

// DownloadEvent records a repair-agent download for the analytics
// dashboard.
type DownloadEvent struct {
	gorm.Model
	Token    string `json:"token"`
	Email    string `json:"email"`
	Platform string `json:"platform"`
	ClientIP string `json:"client_ip"`
}

// Notification records one outbound email attempt. Delivery is
// best-effort; these rows are the only place failures are visible.
type Notification struct {
	gorm.Model
	Type      string     `json:"type"` // "help_request" or "token_delivery"
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Status    string     `json:"status"` // "sent" or "failed"
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// AnalyticsSummary is the key-gated dashboard payload.
type AnalyticsSummary struct {
	TotalSessions      int64    `json:"total_sessions"`
	ActiveSessions     int64    `json:"active_sessions"`
	TotalDownloads     int64    `json:"total_downloads"`
	TotalNotifications int64    `json:"total_notifications"`
	CollectedEmails    []string `json:"collected_emails"`
}
