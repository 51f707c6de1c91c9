package syncapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/lottery_backend/models"
	"github.com/mmdatafocus/lottery_backend/utils"
)

const (
	headerSessionId    = "X-Sync-Session"
	headerCredentialId = "X-Sync-Credential"
)

func StartSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "credential_id and secret are required", err)
			return
		}

		fingerprint := ""
		if req.DeviceFingerprint != nil {
			fingerprint = *req.DeviceFingerprint
		}
		session, err := models.CreateSyncSession(c.Request.Context(), req.CredentialId, req.Secret, fingerprint)
		if err != nil {
			respondError(c, err)
			return
		}

		store, err := models.GetStoreById(c.Request.Context(), session.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}

		ctx := utils.SetStoreIdInContext(c.Request.Context(), session.StoreId)
		ctx = utils.SetCredentialIdInContext(ctx, session.CredentialId)
		ctx = utils.SetSourceAddressInContext(ctx, c.ClientIP())
		if session.DeviceFingerprint != "" {
			ctx = utils.SetDeviceFingerprintInContext(ctx, session.DeviceFingerprint)
		}
		models.RecordAuditEvent(ctx, models.AuditEventSessionStarted, map[string]interface{}{
			"session_id": session.ID,
		})

		respondOK(c, StartSessionResponse{
			SessionId:      session.ID,
			StoreId:        session.StoreId,
			JurisdictionId: store.JurisdictionId,
			StartedAt:      session.StartedAt,
			ExpiresAt:      session.StartedAt.Add(models.MaxSessionAge),
		})
	}
}

func CompleteSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompleteSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "session_id and credential_id are required", err)
			return
		}
		if err := models.CompleteSyncSession(c.Request.Context(), req.SessionId, req.CredentialId); err != nil {
			respondError(c, err)
			return
		}

		ctx := utils.SetCredentialIdInContext(c.Request.Context(), req.CredentialId)
		ctx = utils.SetSourceAddressInContext(ctx, c.ClientIP())
		models.RecordAuditEvent(ctx, models.AuditEventSessionCompleted, map[string]interface{}{
			"session_id": req.SessionId,
		})
		respondOK(c, gin.H{"completed": true})
	}
}

// authenticate validates the session headers, runs the independent
// store-binding check, and returns a context scoped to the session's
// store so the tenant guard and audit sink pick it up.
func authenticate(c *gin.Context) (context.Context, *models.SessionIdentity, error) {
	sessionId := c.GetHeader(headerSessionId)
	credentialId := c.GetHeader(headerCredentialId)
	if sessionId == "" {
		sessionId = c.Query("session_id")
	}
	if credentialId == "" {
		credentialId = c.Query("credential_id")
	}

	identity, err := models.ValidateSession(c.Request.Context(), sessionId, credentialId)
	if err != nil {
		return nil, nil, err
	}
	if err := models.VerifySessionStoreBinding(c.Request.Context(), identity); err != nil {
		return nil, nil, err
	}

	ctx := utils.SetStoreIdInContext(c.Request.Context(), identity.StoreId)
	ctx = utils.SetJurisdictionIdInContext(ctx, identity.JurisdictionId)
	ctx = utils.SetSessionIdInContext(ctx, identity.SessionId)
	ctx = utils.SetCredentialIdInContext(ctx, identity.CredentialId)
	ctx = utils.SetSourceAddressInContext(ctx, c.ClientIP())
	if identity.DeviceFingerprint != "" {
		ctx = utils.SetDeviceFingerprintInContext(ctx, identity.DeviceFingerprint)
	}
	return ctx, identity, nil
}
