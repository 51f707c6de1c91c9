package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// AuditEvent is a transactional-outbox row. The sync handlers insert
// PENDING rows and the workflow dispatcher publishes them to Pub/Sub.
type AuditEvent struct {
	ID                int            `gorm:"primary_key;autoIncrement" json:"id"`
	StoreId           string         `gorm:"size:36;index" json:"store_id"`
	CredentialId      *string        `gorm:"size:36" json:"credential_id"`
	EventType         AuditEventType `gorm:"size:50;not null;index" json:"event_type"`
	Channel           string         `gorm:"size:30;not null" json:"channel"`
	SourceAddress     *string        `gorm:"size:50" json:"source_address"`
	DeviceFingerprint *string        `gorm:"size:100" json:"device_fingerprint"`
	Details           *string        `gorm:"type:text" json:"details"`
	CorrelationId     *string        `gorm:"size:50" json:"correlation_id"`
	OccurredAt        time.Time      `gorm:"not null" json:"occurred_at"`

	PublishStatus    string     `gorm:"size:20;not null;default:PENDING;index" json:"publish_status"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	LastPublishError *string    `gorm:"size:500" json:"last_publish_error"`
	NextAttemptAt    *time.Time `json:"next_attempt_at"`
	PublishedAt      *time.Time `json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:50" json:"pub_sub_message_id"`
	LockedAt         *time.Time `json:"locked_at"`
	LockedBy         *string    `gorm:"size:36" json:"locked_by"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const AuditChannelSyncApi = "SYNC_API"

// RecordAuditEvent stages an audit row without blocking or failing the
// primary operation. Write failures go to the structured log only.
func RecordAuditEvent(ctx context.Context, eventType AuditEventType, details map[string]interface{}) {
	storeId, _ := utils.GetStoreIdFromContext(ctx)
	credentialId, _ := utils.GetCredentialIdFromContext(ctx)
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	sourceAddress, _ := utils.GetSourceAddressFromContext(ctx)
	fingerprint, _ := utils.GetDeviceFingerprintFromContext(ctx)

	go func() {
		logger := config.GetLogger()
		db := config.GetDB()
		if db == nil {
			config.LogError(logger, "models", "RecordAuditEvent", "database not ready", string(eventType), nil)
			return
		}

		event := AuditEvent{
			StoreId:       storeId,
			EventType:     eventType,
			Channel:       AuditChannelSyncApi,
			OccurredAt:    time.Now().UTC(),
			PublishStatus: OutboxPublishStatusPending,
		}
		if credentialId != "" {
			event.CredentialId = &credentialId
		}
		if correlationId != "" {
			event.CorrelationId = &correlationId
		}
		if sourceAddress != "" {
			event.SourceAddress = &sourceAddress
		}
		if fingerprint != "" {
			event.DeviceFingerprint = &fingerprint
		}
		if details != nil {
			if payload, err := utils.MarshalToJSON(details); err == nil {
				event.Details = &payload
			}
		}
		if !config.AuditPublishEnabled() {
			// Keep the row for the ledger but never hand it to the dispatcher.
			event.PublishStatus = OutboxPublishStatusPublished
			now := time.Now().UTC()
			event.PublishedAt = &now
		}

		// The request context may already be done; audit writes outlive it.
		writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.WithContext(writeCtx).Create(&event).Error; err != nil {
			config.LogError(logger, "models", "RecordAuditEvent", "failed to persist audit event", string(eventType), err)
		}
	}()
}
