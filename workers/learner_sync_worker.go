// workers/learner_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileFromSyncService matches the JSON response from the profile service.
type ProfileFromSyncService struct {
	ID            string    `json:"id"`
	ExternalID    string    `json:"external_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AccountStatus string    `json:"account_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the sync response.
type GetProfileChangesResponse struct {
	Users []ProfileFromSyncService `json:"users"`
}

// LearnerSyncWorker keeps the local LearnerProfile mirror current. The mirror
// is what leaderboard eligibility reads, so a stale mirror only delays a
// learner's appearance on a board, never corrupts scores.
type LearnerSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewLearnerSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *LearnerSyncWorker {
	return &LearnerSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *LearnerSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Learner Sync Worker (profile-service → learner_profiles)…")
	go w.run(ctx)
}

func (w *LearnerSyncWorker) run(ctx context.Context) {
	// Initial sync (backfill if needed) - sync from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial learner sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lastSyncTime := w.getLastSyncTime()
			if err := w.syncBatch(ctx, lastSyncTime); err != nil {
				log.Printf("❌ Learner sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Learner Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local mirror.
func (w *LearnerSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM learner_profiles").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches profile changes and upserts the local mirror.
func (w *LearnerSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		// Always drain & close to prevent connection leaks
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}

	if len(response.Users) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d profile(s)…", len(response.Users))

	var upsertCount, errorCount int
	for _, remote := range response.Users {
		role := remote.Role
		if role == "" {
			role = models.RoleLearner
		}
		local := models.LearnerProfile{
			ID:             uuid.NewString(),
			ExternalUserID: remote.ExternalID,
			Username:       remote.Username,
			Email:          remote.Email,
			Role:           role,
			IsActive:       remote.AccountStatus == "" || remote.AccountStatus == "active",
			CreatedAt:      remote.CreatedAt,
			UpdatedAt:      remote.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "email", "role", "is_active", "updated_at",
			}),
		}).Create(&local).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert learner_profile (external_id=%q, username=%q): %v",
				remote.ExternalID, remote.Username, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d profiles (%d upserted, %d errors)", len(response.Users), upsertCount, errorCount)
	return nil
}
