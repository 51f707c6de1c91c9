package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// MaxSessionAge is the hard ceiling on a sync session's lifetime. A session
// past this age is invalid regardless of its stored status.
const MaxSessionAge = 24 * time.Hour

// SyncSession is a device's sync window, created at device login. The sync
// core treats it as read-only except for the lazy EXPIRED flip.
type SyncSession struct {
	ID           string        `gorm:"primary_key;size:36" json:"id"`
	CredentialId string        `gorm:"size:36;index;not null" json:"credential_id"`
	StoreId      string        `gorm:"size:36;index;not null" json:"store_id"`
	Status       SessionStatus `gorm:"type:enum('ACTIVE','COMPLETED','EXPIRED');default:ACTIVE" json:"status"`
	DeviceFingerprint string   `gorm:"size:255" json:"device_fingerprint"`
	StartedAt    time.Time     `gorm:"not null" json:"started_at"`
	EndedAt      *time.Time    `json:"ended_at"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// SessionIdentity is what a successful validation yields: the tenant scope
// every subsequent query runs under.
type SessionIdentity struct {
	SessionId         string
	CredentialId      string
	StoreId           string
	JurisdictionId    string
	DeviceFingerprint string
}

// CheckUsable is the pure validity rule: ACTIVE, owned by the credential and
// within MaxSessionAge as of now.
func (s *SyncSession) CheckUsable(credentialId string, now time.Time) error {
	if s.CredentialId != credentialId {
		return UnauthorizedError(CodeInvalidSession, "session does not belong to credential")
	}
	if s.Status != SessionStatusActive {
		return UnauthorizedError(CodeInvalidSession, "session is %s", s.Status)
	}
	if now.Sub(s.StartedAt) > MaxSessionAge {
		return UnauthorizedError(CodeInvalidSession, "session is older than %s", MaxSessionAge)
	}
	return nil
}

// CreateSyncSession performs a device login: the credential secret is
// verified and a fresh ACTIVE session is minted.
func CreateSyncSession(ctx context.Context, credentialId string, secret string, deviceFingerprint string) (*SyncSession, error) {
	cred, err := VerifyApiCredential(ctx, credentialId, secret)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	now := time.Now().UTC()

	if config.StrictSessionSingleUse() {
		// Retire any previous ACTIVE session for this credential.
		if err := db.WithContext(ctx).Model(&SyncSession{}).
			Where("credential_id = ? AND status = ?", credentialId, SessionStatusActive).
			Updates(map[string]interface{}{"status": SessionStatusCompleted, "ended_at": &now}).Error; err != nil {
			return nil, err
		}
	}

	session := SyncSession{
		ID:                uuid.NewString(),
		CredentialId:      cred.ID,
		StoreId:           cred.StoreId,
		Status:            SessionStatusActive,
		DeviceFingerprint: deviceFingerprint,
		StartedAt:         now,
	}
	if err := db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&ApiCredential{}).
		Where("id = ?", cred.ID).
		Update("last_login_at", &now).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// CompleteSyncSession marks a session COMPLETED. Completing an already
// completed or expired session is a no-op success.
func CompleteSyncSession(ctx context.Context, sessionId string, credentialId string) error {
	db := config.GetDB()
	var session SyncSession
	if err := db.WithContext(ctx).Where("id = ?", sessionId).First(&session).Error; err != nil {
		return UnauthorizedError(CodeInvalidSession, "session not found")
	}
	if session.CredentialId != credentialId {
		return UnauthorizedError(CodeInvalidSession, "session does not belong to credential")
	}
	if session.Status != SessionStatusActive {
		return nil
	}
	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(&SyncSession{}).
		Where("id = ?", sessionId).
		Updates(map[string]interface{}{"status": SessionStatusCompleted, "ended_at": &now}).Error; err != nil {
		return err
	}
	_ = utils.RemoveRedisItem[SyncSession](sessionId)
	return nil
}

// ValidateSession gates every PULL/PUSH operation. All failure shapes map to
// the single INVALID_SESSION family so a probing client learns nothing about
// which part failed. No side effects beyond the lazy EXPIRED flip.
func ValidateSession(ctx context.Context, sessionId string, credentialId string) (*SessionIdentity, error) {
	if sessionId == "" || credentialId == "" {
		return nil, UnauthorizedError(CodeInvalidSession, "session id and credential id are required")
	}

	session, err := utils.RetrieveRedis[SyncSession](sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		db := config.GetDB()
		var s SyncSession
		if err := db.WithContext(ctx).Where("id = ?", sessionId).First(&s).Error; err != nil {
			return nil, UnauthorizedError(CodeInvalidSession, "session not found")
		}
		session = &s
		if err := utils.StoreRedis[SyncSession](session, sessionId); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := session.CheckUsable(credentialId, now); err != nil {
		// Write-behind expiry: flag sessions that aged out so later lookups
		// short-circuit. Failure to flag is not fatal for the caller.
		if session.Status == SessionStatusActive && now.Sub(session.StartedAt) > MaxSessionAge {
			db := config.GetDB()
			if updErr := db.WithContext(ctx).Model(&SyncSession{}).
				Where("id = ? AND status = ?", sessionId, SessionStatusActive).
				Update("status", SessionStatusExpired).Error; updErr != nil {
				config.LogError(config.GetLogger(), "syncSession.go", "ValidateSession", "lazy expire", sessionId, updErr)
			}
			_ = utils.RemoveRedisItem[SyncSession](sessionId)
		}
		return nil, err
	}

	store, err := GetStoreById(ctx, session.StoreId)
	if err != nil {
		return nil, UnauthorizedError(CodeInvalidSession, "session store not found")
	}

	return &SessionIdentity{
		SessionId:         session.ID,
		CredentialId:      session.CredentialId,
		StoreId:           session.StoreId,
		JurisdictionId:    store.JurisdictionId,
		DeviceFingerprint: session.DeviceFingerprint,
	}, nil
}

// RequireStore is the second, independent tenant check layered on top of
// session ownership: the validated session's store must match the store the
// credential is bound to.
func RequireStore(identity *SessionIdentity, boundStoreId string) error {
	if identity == nil {
		return UnauthorizedError(CodeInvalidSession, "session not validated")
	}
	if boundStoreId != "" && identity.StoreId != boundStoreId {
		return UnauthorizedError(CodeStoreMismatch, "session store does not match credential store")
	}
	return nil
}
