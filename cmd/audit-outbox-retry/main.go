// audit-outbox-retry requeues stuck audit outbox rows so the dispatcher
// picks them up again. It targets rows that are DEAD, or that have been
// sitting in PROCESSING longer than the stale threshold (a crashed
// dispatcher instance never released them).
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//     OUTBOX_RETRY_STATUSES=DEAD,PROCESSING OUTBOX_RETRY_STALE_MINUTES=30 \
//     go run ./cmd/audit-outbox-retry
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/models"
	"github.com/mmdatafocus/lottery_backend/utils"
)

type retryConfig struct {
	Statuses     []string
	StaleMinutes int
	BatchLimit   int
	DryRun       bool
}

func getRetryConfig() retryConfig {
	cfg := retryConfig{
		Statuses:     []string{string(models.OutboxPublishStatusDead)},
		StaleMinutes: 30,
		BatchLimit:   500,
	}
	if v := os.Getenv("OUTBOX_RETRY_STATUSES"); v != "" {
		cfg.Statuses = nil
		for _, s := range strings.Split(v, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				cfg.Statuses = append(cfg.Statuses, s)
			}
		}
	}
	if v := os.Getenv("OUTBOX_RETRY_STALE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StaleMinutes = n
		}
	}
	if v := os.Getenv("OUTBOX_RETRY_BATCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchLimit = n
		}
	}
	if v := os.Getenv("OUTBOX_RETRY_DRY_RUN"); v == "1" || strings.EqualFold(v, "true") {
		cfg.DryRun = true
	}
	return cfg
}

func main() {
	cfg := getRetryConfig()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	staleBefore := time.Now().UTC().Add(-time.Duration(cfg.StaleMinutes) * time.Minute)

	query := db.WithContext(ctx).Model(&models.AuditEvent{}).
		Where("publish_status IN ?", cfg.Statuses)
	for _, s := range cfg.Statuses {
		// PROCESSING rows are only stuck when their lock has gone stale.
		if s == string(models.OutboxPublishStatusProcessing) {
			query = db.WithContext(ctx).Model(&models.AuditEvent{}).
				Where("(publish_status IN ? AND publish_status <> ?) OR (publish_status = ? AND locked_at < ?)",
					cfg.Statuses, models.OutboxPublishStatusProcessing, models.OutboxPublishStatusProcessing, staleBefore)
			break
		}
	}

	var candidates []models.AuditEvent
	if err := query.Order("id asc").Limit(cfg.BatchLimit).Find(&candidates).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to query audit outbox: %v\n", err)
		os.Exit(1)
	}
	if len(candidates) == 0 {
		fmt.Println("No matching audit outbox rows found. Nothing to do.")
		return
	}

	fmt.Printf("Found %d audit outbox row(s) matching statuses %v\n", len(candidates), cfg.Statuses)
	if cfg.DryRun {
		for _, ev := range candidates {
			fmt.Printf("  would requeue id=%d store=%s type=%s status=%s attempts=%d\n",
				ev.ID, ev.StoreId, ev.EventType, ev.PublishStatus, ev.PublishAttempts)
		}
		fmt.Println("Dry run. No rows modified.")
		return
	}

	ids := make([]int, 0, len(candidates))
	for _, ev := range candidates {
		ids = append(ids, ev.ID)
	}

	now := time.Now().UTC()
	result := db.WithContext(ctx).Model(&models.AuditEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"publish_status":  models.OutboxPublishStatusFailed,
			"next_attempt_at": now,
			"locked_at":       nil,
			"locked_by":       nil,
		})
	if result.Error != nil {
		fmt.Fprintf(os.Stderr, "failed to requeue audit outbox rows: %v\n", result.Error)
		os.Exit(1)
	}
	fmt.Printf("Requeued %d audit outbox row(s) as FAILED (next attempt immediately).\n", result.RowsAffected)
}
