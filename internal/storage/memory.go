package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/techfix-ai/techfix-backend/internal/models"
)

// MemoryStore holds all data in memory for local development and tests
type MemoryStore struct {
	sessions      map[string]*models.Session // keyed by token
	downloads     []*models.DownloadEvent
	notifications []*models.Notification

	sessionMu      sync.RWMutex
	downloadMu     sync.RWMutex
	notificationMu sync.RWMutex

	// Per-entity counters; each is only touched under its own mutex.
	sessionID      uint
	downloadID     uint
	notificationID uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
	}
}

// Session operations

func (m *MemoryStore) CreateSession(session *models.Session) (*models.Session, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if _, exists := m.sessions[session.Token]; exists {
		return nil, fmt.Errorf("session token already exists")
	}

	m.sessionID++
	session.ID = m.sessionID
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt

	m.sessions[session.Token] = session
	return session, nil
}

func (m *MemoryStore) GetSessionByToken(token string) (*models.Session, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	session, exists := m.sessions[token]
	if !exists {
		return nil, fmt.Errorf("session not found")
	}
	// Expired sessions are reported as absent.
	if session.Expired() {
		return nil, fmt.Errorf("session expired")
	}
	return session, nil
}

func (m *MemoryStore) UpdateSessionPlan(token string, planJSON string) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	session, exists := m.sessions[token]
	if !exists {
		return fmt.Errorf("session not found")
	}
	session.Plan = planJSON
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) DeactivateSessionsByEmail(email string) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	for _, session := range m.sessions {
		if session.Email == email && session.Active {
			session.Active = false
			session.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (m *MemoryStore) DeleteExpiredSessions() (int64, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	var deleted int64
	for token, session := range m.sessions {
		if session.Expired() && !session.Active {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// Analytics operations

func (m *MemoryStore) CreateDownloadEvent(event *models.DownloadEvent) error {
	m.downloadMu.Lock()
	defer m.downloadMu.Unlock()

	m.downloadID++
	event.ID = m.downloadID
	event.CreatedAt = time.Now().UTC()
	m.downloads = append(m.downloads, event)
	return nil
}

func (m *MemoryStore) CreateNotification(notification *models.Notification) error {
	m.notificationMu.Lock()
	defer m.notificationMu.Unlock()

	m.notificationID++
	notification.ID = m.notificationID
	notification.CreatedAt = time.Now().UTC()
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *MemoryStore) GetRecentNotifications(limit int) ([]*models.Notification, error) {
	m.notificationMu.RLock()
	defer m.notificationMu.RUnlock()

	start := len(m.notifications) - limit
	if start < 0 {
		start = 0
	}
	recent := m.notifications[start:]

	// Newest first
	out := make([]*models.Notification, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, recent[i])
	}
	return out, nil
}

func (m *MemoryStore) GetAnalyticsSummary() (*models.AnalyticsSummary, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()
	m.downloadMu.RLock()
	defer m.downloadMu.RUnlock()
	m.notificationMu.RLock()
	defer m.notificationMu.RUnlock()

	summary := &models.AnalyticsSummary{
		TotalSessions:      int64(len(m.sessions)),
		TotalDownloads:     int64(len(m.downloads)),
		TotalNotifications: int64(len(m.notifications)),
	}

	seen := make(map[string]bool)
	for _, session := range m.sessions {
		if session.Active && !session.Expired() {
			summary.ActiveSessions++
		}
		if session.Email != "" && !seen[session.Email] {
			seen[session.Email] = true
			summary.CollectedEmails = append(summary.CollectedEmails, session.Email)
		}
	}
	sort.Strings(summary.CollectedEmails)

	return summary, nil
}
