package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// ApiCredential is the per-terminal API key a device authenticates with.
// The secret is stored bcrypt-hashed; the plaintext is returned exactly once
// at creation time.
type ApiCredential struct {
	ID          string    `gorm:"primary_key;size:36" json:"id"`
	StoreId     string    `gorm:"size:36;index;not null" json:"store_id"`
	Label       string    `gorm:"size:100" json:"label"`
	SecretHash  string    `gorm:"size:255;not null" json:"-"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewApiCredential struct {
	StoreId string `json:"store_id" binding:"required"`
	Label   string `json:"label"`
}

// CreateApiCredential mints a credential and returns it with the plaintext
// secret (not persisted).
func CreateApiCredential(ctx context.Context, input *NewApiCredential) (*ApiCredential, string, error) {
	secret := uuid.NewString()
	hash, err := utils.HashSecret(secret)
	if err != nil {
		return nil, "", err
	}

	cred := ApiCredential{
		ID:         uuid.NewString(),
		StoreId:    input.StoreId,
		Label:      input.Label,
		SecretHash: string(hash),
		IsActive:   utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&cred).Error; err != nil {
		return nil, "", err
	}
	return &cred, secret, nil
}

// VerifySessionStoreBinding is the STORE_MISMATCH guard: independent of
// session ownership, the store the session claims must be the store the
// credential is bound to. Defends against session/credential cross-wiring.
func VerifySessionStoreBinding(ctx context.Context, identity *SessionIdentity) error {
	if identity == nil {
		return UnauthorizedError(CodeInvalidSession, "session not validated")
	}
	db := config.GetDB()
	var cred ApiCredential
	if err := db.WithContext(ctx).Where("id = ?", identity.CredentialId).First(&cred).Error; err != nil {
		return UnauthorizedError(CodeInvalidSession, "credential not found")
	}
	return RequireStore(identity, cred.StoreId)
}

// VerifyApiCredential checks the secret against an active credential.
// Returns an INVALID_SESSION-family error so callers can't distinguish a
// missing credential from a bad secret.
func VerifyApiCredential(ctx context.Context, credentialId string, secret string) (*ApiCredential, error) {
	db := config.GetDB()
	var cred ApiCredential
	if err := db.WithContext(ctx).Where("id = ?", credentialId).First(&cred).Error; err != nil {
		return nil, UnauthorizedError(CodeInvalidSession, "invalid credential")
	}
	if cred.IsActive == nil || !*cred.IsActive {
		return nil, UnauthorizedError(CodeInvalidSession, "invalid credential")
	}
	if err := utils.CompareSecret(cred.SecretHash, secret); err != nil {
		return nil, UnauthorizedError(CodeInvalidSession, "invalid credential")
	}
	return &cred, nil
}
