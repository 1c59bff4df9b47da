package storage

import (
	"github.com/techfix-ai/techfix-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations. Lookups report
// failure as (nil, error); callers treat any failure as "not there"
// without distinguishing transport trouble from genuine absence.
type Store interface {
	// Session operations
	CreateSession(session *models.Session) (*models.Session, error)
	GetSessionByToken(token string) (*models.Session, error)
	UpdateSessionPlan(token string, planJSON string) error
	DeactivateSessionsByEmail(email string) error
	DeleteExpiredSessions() (int64, error)

	// Analytics operations
	CreateDownloadEvent(event *models.DownloadEvent) error
	CreateNotification(notification *models.Notification) error
	GetRecentNotifications(limit int) ([]*models.Notification, error)
	GetAnalyticsSummary() (*models.AnalyticsSummary, error)
}
