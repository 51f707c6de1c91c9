package syncapi

import (
	"time"

	"github.com/mmdatafocus/lottery_backend/models"
)

// Every response uses one envelope so devices can branch on a single
// success flag. Error bodies never carry internals, only taxonomy codes.
type SuccessEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string                 `json:"code"`
	Reason  string                 `json:"reason,omitempty"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type StartSessionRequest struct {
	CredentialId      string  `json:"credential_id" binding:"required,uuid"`
	Secret            string  `json:"secret" binding:"required"`
	DeviceFingerprint *string `json:"device_fingerprint"`
}

type StartSessionResponse struct {
	SessionId      string    `json:"session_id"`
	StoreId        string    `json:"store_id"`
	JurisdictionId string    `json:"jurisdiction_id"`
	StartedAt      time.Time `json:"started_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type CompleteSessionRequest struct {
	SessionId    string `json:"session_id" binding:"required,uuid"`
	CredentialId string `json:"credential_id" binding:"required,uuid"`
}

// PullResponse is the delta page envelope. CurrentSequence/NextCursor are
// request-relative counters, an opaque cursor for the next pull rather
// than a durable global version.
type PullResponse struct {
	Records         interface{} `json:"records"`
	TotalCount      int         `json:"totalCount"`
	CurrentSequence int64       `json:"currentSequence"`
	HasMore         bool        `json:"hasMore"`
	ServerTime      time.Time   `json:"serverTime"`
	NextCursor      *int64      `json:"nextCursor,omitempty"`
	NextTimestamp   *time.Time  `json:"nextTimestamp,omitempty"`
	NextRecordId    *string     `json:"nextRecordId,omitempty"`
}

func buildPullResponse[T any](result *models.PullResult[T], sinceSequence int64) PullResponse {
	resp := PullResponse{
		Records:         result.Records,
		TotalCount:      len(result.Records),
		CurrentSequence: sinceSequence,
		HasMore:         result.HasMore,
		ServerTime:      result.ServerTime,
	}
	if len(result.Records) > 0 {
		resp.CurrentSequence = result.Records[len(result.Records)-1].Sequence
		next := result.NextSeq
		resp.NextCursor = &next
		ts := result.NextSince
		resp.NextTimestamp = &ts
		if result.NextSinceId != "" {
			id := result.NextSinceId
			resp.NextRecordId = &id
		}
	}
	return resp
}

type PushPackResponse struct {
	Pack       *models.Pack `json:"pack"`
	Idempotent bool         `json:"idempotent,omitempty"`
}

type ShiftOpeningsRequest struct {
	ShiftId  string                  `json:"shift_id" binding:"required,uuid"`
	Openings []models.OpeningReading `json:"openings" binding:"required,dive"`
}

type ShiftOpenResponse struct {
	Shift *models.Shift `json:"shift"`
}

type ShiftCloseResponse struct {
	Shift     *models.Shift     `json:"shift"`
	Variances []models.Variance `json:"variances"`
}

type DayPrepareResponse struct {
	Day       *models.BusinessDay `json:"day"`
	ExpiresAt time.Time           `json:"expires_at"`
}

type DayCommitResponse struct {
	Day      *models.BusinessDay `json:"day"`
	DayPacks []models.DayPack    `json:"day_packs"`
}
