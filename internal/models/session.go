package models

import (
	"time"

	"gorm.io/gorm"
)

// Session is a time-boxed service session identified by an opaque
// token. The attached repair plan is stored as a JSON string, the same
// way the frontend receives it.
type Session struct {
	gorm.Model
	Token     string    `json:"token" gorm:"uniqueIndex"`
	Email     string    `json:"email" gorm:"index"`
	Issue     string    `json:"issue"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
	Plan      string    `json:"plan,omitempty"` // serialized plan.RepairPlan, empty until generated
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}
