package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/techfix-ai/techfix-backend/internal/models"
)

// SupabaseStore talks to a hosted Supabase project over its PostgREST
// interface. Every call carries the project key and a short timeout;
// failures never propagate beyond a logged error and a sentinel return.
type SupabaseStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSupabaseStore creates a store backed by the Supabase REST API
func NewSupabaseStore(baseURL, apiKey string) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// supabaseSession is the sessions row shape on the wire. The plan
// column is a JSON document; it is carried opaquely.
type supabaseSession struct {
	Token     string          `json:"token"`
	Email     string          `json:"email"`
	Issue     string          `json:"issue"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Active    bool            `json:"active"`
	Plan      json.RawMessage `json:"plan,omitempty"`
}

func (s *SupabaseStore) do(method, path string, query url.Values, body any, prefer string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	endpoint := s.baseURL + "/rest/v1/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	return s.client.Do(req)
}

// Session operations

func (s *SupabaseStore) CreateSession(session *models.Session) (*models.Session, error) {
	row := supabaseSession{
		Token:     session.Token,
		Email:     session.Email,
		Issue:     session.Issue,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: session.ExpiresAt,
		Active:    session.Active,
	}

	resp, err := s.do(http.MethodPost, "sessions", nil, row, "")
	if err != nil {
		log.Printf("❌ Supabase INSERT error: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("supabase insert failed: status %d", resp.StatusCode)
	}
	return session, nil
}

func (s *SupabaseStore) GetSessionByToken(token string) (*models.Session, error) {
	query := url.Values{}
	query.Set("token", "eq."+token)
	query.Set("select", "token,email,issue,created_at,expires_at,active,plan")

	resp, err := s.do(http.MethodGet, "sessions", query, nil, "")
	if err != nil {
		log.Printf("❌ Supabase GET error: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase get failed: status %d", resp.StatusCode)
	}

	var rows []supabaseSession
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("session not found")
	}

	row := rows[0]
	session := &models.Session{
		Token:     row.Token,
		Email:     row.Email,
		Issue:     row.Issue,
		ExpiresAt: row.ExpiresAt,
		Active:    row.Active,
		Plan:      string(row.Plan),
	}
	// Expired sessions are reported as absent.
	if session.Expired() {
		return nil, fmt.Errorf("session expired")
	}
	return session, nil
}

func (s *SupabaseStore) UpdateSessionPlan(token string, planJSON string) error {
	query := url.Values{}
	query.Set("token", "eq."+token)

	body := map[string]json.RawMessage{"plan": json.RawMessage(planJSON)}
	resp, err := s.do(http.MethodPatch, "sessions", query, body, "")
	if err != nil {
		log.Printf("❌ Supabase UPDATE error: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("supabase update failed: status %d", resp.StatusCode)
	}
	return nil
}

func (s *SupabaseStore) DeactivateSessionsByEmail(email string) error {
	query := url.Values{}
	query.Set("email", "eq."+email)
	query.Set("active", "eq.true")

	resp, err := s.do(http.MethodPatch, "sessions", query, map[string]bool{"active": false}, "")
	if err != nil {
		log.Printf("❌ Supabase UPDATE error: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("supabase deactivate failed: status %d", resp.StatusCode)
	}
	return nil
}

func (s *SupabaseStore) DeleteExpiredSessions() (int64, error) {
	query := url.Values{}
	query.Set("expires_at", "lt."+time.Now().UTC().Format(time.RFC3339))
	query.Set("active", "eq.false")

	resp, err := s.do(http.MethodDelete, "sessions", query, nil, "count=exact")
	if err != nil {
		log.Printf("❌ Supabase DELETE error: %v", err)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return 0, fmt.Errorf("supabase delete failed: status %d", resp.StatusCode)
	}
	return parseContentRangeCount(resp.Header.Get("Content-Range")), nil
}

// parseContentRangeCount extracts the total from a PostgREST
// Content-Range header such as "0-4/5" or "*/12".
func parseContentRangeCount(header string) int64 {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return 0
	}
	var count int64
	if _, err := fmt.Sscanf(header[idx+1:], "%d", &count); err != nil {
		return 0
	}
	return count
}

// Analytics operations

func (s *SupabaseStore) CreateDownloadEvent(event *models.DownloadEvent) error {
	row := map[string]any{
		"token":      event.Token,
		"email":      event.Email,
		"platform":   event.Platform,
		"client_ip":  event.ClientIP,
		"created_at": time.Now().UTC(),
	}
	resp, err := s.do(http.MethodPost, "downloads", nil, row, "")
	if err != nil {
		log.Printf("❌ Supabase INSERT error: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("supabase insert failed: status %d", resp.StatusCode)
	}
	return nil
}

func (s *SupabaseStore) CreateNotification(notification *models.Notification) error {
	row := map[string]any{
		"type":       notification.Type,
		"recipient":  notification.Recipient,
		"subject":    notification.Subject,
		"status":     notification.Status,
		"sent_at":    notification.SentAt,
		"created_at": time.Now().UTC(),
	}
	resp, err := s.do(http.MethodPost, "notifications", nil, row, "")
	if err != nil {
		log.Printf("❌ Supabase INSERT error: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("supabase insert failed: status %d", resp.StatusCode)
	}
	return nil
}

func (s *SupabaseStore) GetRecentNotifications(limit int) ([]*models.Notification, error) {
	query := url.Values{}
	query.Set("order", "created_at.desc")
	query.Set("limit", fmt.Sprintf("%d", limit))

	resp, err := s.do(http.MethodGet, "notifications", query, nil, "")
	if err != nil {
		log.Printf("❌ Supabase GET error: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase get failed: status %d", resp.StatusCode)
	}

	var notifications []*models.Notification
	if err := json.NewDecoder(resp.Body).Decode(&notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *SupabaseStore) GetAnalyticsSummary() (*models.AnalyticsSummary, error) {
	summary := &models.AnalyticsSummary{}

	var err error
	summary.TotalSessions, err = s.countRows("sessions", nil)
	if err != nil {
		return nil, err
	}

	activeQuery := url.Values{}
	activeQuery.Set("active", "eq.true")
	activeQuery.Set("expires_at", "gt."+time.Now().UTC().Format(time.RFC3339))
	summary.ActiveSessions, _ = s.countRows("sessions", activeQuery)
	summary.TotalDownloads, _ = s.countRows("downloads", nil)
	summary.TotalNotifications, _ = s.countRows("notifications", nil)

	emailQuery := url.Values{}
	emailQuery.Set("select", "email")
	resp, err := s.do(http.MethodGet, "sessions", emailQuery, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rows []struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		if row.Email != "" && !seen[row.Email] {
			seen[row.Email] = true
			summary.CollectedEmails = append(summary.CollectedEmails, row.Email)
		}
	}

	return summary, nil
}

func (s *SupabaseStore) countRows(table string, query url.Values) (int64, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("select", "*")
	query.Set("limit", "1")

	resp, err := s.do(http.MethodGet, table, query, nil, "count=exact")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("supabase count failed: status %d", resp.StatusCode)
	}
	return parseContentRangeCount(resp.Header.Get("Content-Range")), nil
}
