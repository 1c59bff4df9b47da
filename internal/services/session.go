package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/techfix-ai/techfix-backend/internal/models"
	"github.com/techfix-ai/techfix-backend/internal/plan"
	"github.com/techfix-ai/techfix-backend/internal/storage"
	"github.com/techfix-ai/techfix-backend/internal/utils"
)

// DefaultSessionMinutes is the session length when the caller names
// neither a duration nor a plan tier.
const DefaultSessionMinutes = 30

// SessionManager owns session lifecycle: minting tokens, validating
// them, attaching plans, and housekeeping.
type SessionManager struct {
	store storage.Store
}

// NewSessionManager creates a new session manager
func NewSessionManager(store storage.Store) *SessionManager {
	return &SessionManager{store: store}
}

// CreateSession mints a new active session with a fresh service token.
func (sm *SessionManager) CreateSession(email, issue string, minutes int) (*models.Session, error) {
	if minutes <= 0 {
		minutes = DefaultSessionMinutes
	}

	session := &models.Session{
		Token:     utils.GenerateServiceToken(),
		Email:     email,
		Issue:     issue,
		ExpiresAt: time.Now().UTC().Add(time.Duration(minutes) * time.Minute),
		Active:    true,
	}

	created, err := sm.store.CreateSession(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}

	log.Printf("✅ Session created for %s (expires %s)", email, session.ExpiresAt.Format(time.RFC3339))
	return created, nil
}

// ValidateToken returns the session for a token, or nil when the token
// is unknown, inactive or expired. Store-level failures also read as
// nil; callers cannot tell transport trouble from absence.
func (sm *SessionManager) ValidateToken(token string) *models.Session {
	if token == "" {
		return nil
	}
	session, err := sm.store.GetSessionByToken(token)
	if err != nil || session == nil || !session.Active {
		return nil
	}
	return session
}

// AttachPlan persists a sanitized plan onto the session. A later
// generate-plan call replaces the whole plan.
func (sm *SessionManager) AttachPlan(token string, p plan.RepairPlan) error {
	encoded, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return sm.store.UpdateSessionPlan(token, string(encoded))
}

// MintPaidSession deactivates the buyer's prior sessions, then mints a
// fresh one with the purchased duration.
func (sm *SessionManager) MintPaidSession(email string, minutes int) (*models.Session, error) {
	if err := sm.store.DeactivateSessionsByEmail(email); err != nil {
		log.Printf("⚠️  Failed to deactivate prior sessions for %s: %v", email, err)
	}
	return sm.CreateSession(email, "Paid session", minutes)
}

// CleanupExpired deletes inactive, expired sessions.
func (sm *SessionManager) CleanupExpired() (int64, error) {
	deleted, err := sm.store.DeleteExpiredSessions()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("🧹 Cleaned up %d expired sessions", deleted)
	}
	return deleted, nil
}
