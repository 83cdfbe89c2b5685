// workers/result_sync_worker.go
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

	"arena-score-system/models"
	"arena-score-system/utils"

	"gorm.io/gorm"
)

// FightResultFromFeed matches the JSON the external results service returns for
// one decided bout. The engine treats each item as a read-only fact.
type FightResultFromFeed struct {
	ExternalID  string    `json:"external_id"`
	Winner      string    `json:"winner"`
	Method      string    `json:"method"`
	EndingRound int       `json:"ending_round"`
	DecidedAt   time.Time `json:"decided_at"`
}

// GetFightResultsResponse is the top-level structure of the results feed response.
type GetFightResultsResponse struct {
	Results []FightResultFromFeed `json:"results"`
}

// ResultSyncWorker polls the external results service and applies finished-fight
// facts to local fights. Re-delivery is expected and harmless: a fight that is
// already finished is never rewritten.
type ResultSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g. "http://localhost:8600"
	endpointPath string // e.g. "/api/v1/public/results"
	serviceToken string
	httpClient   *http.Client
}

func NewResultSyncWorker(db *gorm.DB, resultsServiceBaseURL, endpointPath, serviceToken string) *ResultSyncWorker {
	return &ResultSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      resultsServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *ResultSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Fight Result Sync Worker (results feed → fights)…")
	go w.run(ctx)
}

func (w *ResultSyncWorker) run(ctx context.Context) {
	// Initial sync backfills anything decided while we were down
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial result sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Result sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Fight Result Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent update among finished fights; the feed
// is queried for anything decided after that.
func (w *ResultSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM fights WHERE status = ? AND deleted_at IS NULL",
		models.FightStatusFinished).Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *ResultSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid results service URL '%s': %w", w.baseURL, err)
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
		return fmt.Errorf("HTTP request to results service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("results service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetFightResultsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode results feed response: %w", err)
	}
	if len(response.Results) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d fight result(s) from feed…", len(response.Results))

	var applied, skipped, errorCount int
	for _, result := range response.Results {
		switch err := w.applyResult(&result); {
		case err == nil:
			applied++
		case err == errAlreadyFinished || err == errUnknownFight:
			skipped++
		default:
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to apply result for %q: %v", result.ExternalID, err)
		}
	}

	log.Printf("[SYNC] ✅ Results synced: %d applied, %d skipped, %d errors", applied, skipped, errorCount)
	return nil
}

var (
	errAlreadyFinished = fmt.Errorf("fight already finished")
	errUnknownFight    = fmt.Errorf("no local fight for external id")
)

func (w *ResultSyncWorker) applyResult(result *FightResultFromFeed) error {
	var fight models.Fight
	err := w.db.Where("external_id = ?", result.ExternalID).First(&fight).Error
	if err == gorm.ErrRecordNotFound {
		return errUnknownFight // ingestion has not created this bout yet
	}
	if err != nil {
		return err
	}
	if fight.Status == models.FightStatusFinished {
		return errAlreadyFinished
	}
	if result.Winner != fight.Fighter1 && result.Winner != fight.Fighter2 {
		return fmt.Errorf("winner %q is not a participant", result.Winner)
	}

	// Status guard makes the transition one-way under concurrent deliveries.
	res := w.db.Model(&models.Fight{}).
		Where("id = ? AND status = ?", fight.ID, models.FightStatusScheduled).
		Updates(map[string]interface{}{
			"status":       models.FightStatusFinished,
			"winner":       result.Winner,
			"method":       result.Method,
			"ending_round": result.EndingRound,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errAlreadyFinished
	}
	return nil
}
