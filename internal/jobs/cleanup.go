package jobs

import (
	"log"
	"time"

	"github.com/techfix-ai/techfix-backend/internal/storage"
)

// CleanupJob periodically deletes expired, inactive sessions.
type CleanupJob struct {
	store    storage.Store
	interval time.Duration
	stop     chan struct{}
	running  bool
}

// NewCleanupJob creates a new session cleanup job
func NewCleanupJob(store storage.Store, interval time.Duration) *CleanupJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupJob{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduled cleanup loop
func (j *CleanupJob) Start() {
	if j.running {
		log.Println("Cleanup job already running")
		return
	}
	j.running = true
	log.Printf("Starting session cleanup job (every %v)...", j.interval)

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				deleted, err := j.store.DeleteExpiredSessions()
				if err != nil {
					log.Printf("❌ Session cleanup failed: %v", err)
					continue
				}
				if deleted > 0 {
					log.Printf("🧹 Session cleanup removed %d sessions", deleted)
				}
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the cleanup loop
func (j *CleanupJob) Stop() {
	if !j.running {
		return
	}
	j.running = false
	close(j.stop)
	log.Println("Stopping session cleanup job...")
}
