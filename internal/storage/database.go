package storage

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/techfix-ai/techfix-backend/internal/models"
)

// DatabaseStore persists everything through gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Session operations

func (d *DatabaseStore) CreateSession(session *models.Session) (*models.Session, error) {
	if err := d.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}
	return session, nil
}

func (d *DatabaseStore) GetSessionByToken(token string) (*models.Session, error) {
	var session models.Session
	if err := d.db.Where("token = ?", token).First(&session).Error; err != nil {
		return nil, fmt.Errorf("session not found: %v", err)
	}
	// Expired sessions are reported as absent.
	if session.Expired() {
		return nil, fmt.Errorf("session expired")
	}
	return &session, nil
}

func (d *DatabaseStore) UpdateSessionPlan(token string, planJSON string) error {
	result := d.db.Model(&models.Session{}).
		Where("token = ?", token).
		Update("plan", planJSON)
	if result.Error != nil {
		return fmt.Errorf("failed to update session plan: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

func (d *DatabaseStore) DeactivateSessionsByEmail(email string) error {
	return d.db.Model(&models.Session{}).
		Where("email = ? AND active = ?", email, true).
		Update("active", false).Error
}

func (d *DatabaseStore) DeleteExpiredSessions() (int64, error) {
	result := d.db.Where("expires_at < ? AND active = ?", time.Now().UTC(), false).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// Analytics operations

func (d *DatabaseStore) CreateDownloadEvent(event *models.DownloadEvent) error {
	return d.db.Create(event).Error
}

func (d *DatabaseStore) CreateNotification(notification *models.Notification) error {
	return d.db.Create(notification).Error
}

func (d *DatabaseStore) GetRecentNotifications(limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := d.db.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %v", err)
	}
	return notifications, nil
}

func (d *DatabaseStore) GetAnalyticsSummary() (*models.AnalyticsSummary, error) {
	summary := &models.AnalyticsSummary{}

	if err := d.db.Model(&models.Session{}).Count(&summary.TotalSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count sessions: %v", err)
	}
	d.db.Model(&models.Session{}).
		Where("active = ? AND expires_at > ?", true, time.Now().UTC()).
		Count(&summary.ActiveSessions)
	d.db.Model(&models.DownloadEvent{}).Count(&summary.TotalDownloads)
	d.db.Model(&models.Notification{}).Count(&summary.TotalNotifications)

	d.db.Model(&models.Session{}).
		Distinct("email").
		Where("email <> ''").
		Order("email").
		Pluck("email", &summary.CollectedEmails)

	return summary, nil
}
