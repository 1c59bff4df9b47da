package storage

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseStoreCreateSession(t *testing.T) {
	var gotRow supabaseSession

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/sessions", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRow))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key")
	created, err := store.CreateSession(newSession("AAAA-1111", "user@example.com", time.Hour, true))
	require.NoError(t, err)
	assert.Equal(t, "AAAA-1111", created.Token)
	assert.Equal(t, "AAAA-1111", gotRow.Token)
	assert.Equal(t, "user@example.com", gotRow.Email)
	assert.True(t, gotRow.Active)
}

func TestSupabaseStoreGetSessionByToken(t *testing.T) {
	expires := time.Now().UTC().Add(time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.AAAA-1111", r.URL.Query().Get("token"))
		rows := []supabaseSession{{
			Token:     "AAAA-1111",
			Email:     "user@example.com",
			Issue:     "wifi keeps dropping",
			ExpiresAt: expires,
			Active:    true,
			Plan:      json.RawMessage(`{"issue":"wifi keeps dropping"}`),
		}}
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key")
	session, err := store.GetSessionByToken("AAAA-1111")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", session.Email)
	assert.Equal(t, `{"issue":"wifi keeps dropping"}`, session.Plan)
}

func TestSupabaseStoreGetSessionEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key")
	_, err := store.GetSessionByToken("ZZZZ-9999")
	assert.Error(t, err)
}

func TestSupabaseStoreGetSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows := []supabaseSession{{
			Token:     "AAAA-1111",
			Email:     "user@example.com",
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
			Active:    true,
		}}
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key")
	_, err := store.GetSessionByToken("AAAA-1111")
	assert.Error(t, err)
}

func TestSupabaseStoreUpdateSessionPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.AAAA-1111", r.URL.Query().Get("token"))

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `{"issue":"x","steps":[]}`, string(body["plan"]))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key")
	err := store.UpdateSessionPlan("AAAA-1111", `{"issue":"x","steps":[]}`)
	assert.NoError(t, err)
}

func TestSupabaseStoreDeleteExpiredSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.false", r.URL.Query().Get("active"))
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "*/3")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key")
	deleted, err := store.DeleteExpiredSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestSupabaseStoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "test-key")
	_, err := store.CreateSession(newSession("AAAA-1111", "user@example.com", time.Hour, true))
	assert.Error(t, err)
	assert.Error(t, store.UpdateSessionPlan("AAAA-1111", "{}"))
}

func TestParseContentRangeCount(t *testing.T) {
	assert.Equal(t, int64(5), parseContentRangeCount("0-4/5"))
	assert.Equal(t, int64(12), parseContentRangeCount("*/12"))
	assert.Equal(t, int64(0), parseContentRangeCount(""))
	assert.Equal(t, int64(0), parseContentRangeCount("garbage"))
}
