package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultCloseExpireMinutes = 60
	MinCloseExpireMinutes     = 5
	MaxCloseExpireMinutes     = 120
)

// BusinessDay is a store's accounting day. Closing is two-phase: Prepare
// stages the candidate closings with an expiration, Commit materializes
// them into DayPack rows, Cancel reverts to OPEN.
type BusinessDay struct {
	ID                 string            `gorm:"primary_key;size:36" json:"id"`
	StoreId            string            `gorm:"size:36;not null;index:uniq_store_business_date,unique" json:"store_id"`
	BusinessDate       string            `gorm:"size:10;not null;index:uniq_store_business_date,unique" json:"business_date"`
	Status             BusinessDayStatus `gorm:"size:20;not null;index" json:"status"`
	PendingClosings    *string           `gorm:"type:text" json:"-"`
	PendingInitiatedBy *string           `gorm:"size:36" json:"pending_initiated_by"`
	PendingStartedAt   *time.Time        `json:"pending_started_at"`
	PendingExpiresAt   *time.Time        `json:"pending_expires_at"`
	ClosedAt           *time.Time        `json:"closed_at"`
	ClosedBy           *string           `gorm:"size:36" json:"closed_by"`
	TotalTicketsSold   int               `gorm:"not null;default:0" json:"total_tickets_sold"`
	TotalSalesAmount   decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"total_sales_amount"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// StagedClosing is one candidate per-pack closing line, validated at
// Prepare time and replayed at Commit time.
type StagedClosing struct {
	PackId       string  `json:"pack_id" binding:"required,uuid"`
	EndingSerial string  `json:"ending_serial" binding:"required"`
	BinId        *string `json:"bin_id"`
	ShiftId      *string `json:"shift_id"`
}

// ClampCloseExpireMinutes normalizes the Prepare expiration window.
func ClampCloseExpireMinutes(minutes int) int {
	if minutes == 0 {
		return DefaultCloseExpireMinutes
	}
	if minutes < MinCloseExpireMinutes {
		return MinCloseExpireMinutes
	}
	if minutes > MaxCloseExpireMinutes {
		return MaxCloseExpireMinutes
	}
	return minutes
}

// OpenBusinessDay creates today's OPEN day row if absent and returns it.
func OpenBusinessDay(ctx context.Context, storeId string, businessDate string) (*BusinessDay, error) {
	db := config.GetDB()
	var day BusinessDay
	err := db.WithContext(ctx).
		Where("store_id = ? AND business_date = ?", storeId, businessDate).
		First(&day).Error
	if err == nil {
		return &day, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	day = BusinessDay{
		ID:               uuid.NewString(),
		StoreId:          storeId,
		BusinessDate:     businessDate,
		Status:           BusinessDayStatusOpen,
		TotalSalesAmount: decimal.Zero,
	}
	if err := db.WithContext(ctx).Create(&day).Error; err != nil {
		if isDuplicateKeyErr(err) {
			// Another terminal opened the same day first.
			if err := db.WithContext(ctx).
				Where("store_id = ? AND business_date = ?", storeId, businessDate).
				First(&day).Error; err != nil {
				return nil, err
			}
			return &day, nil
		}
		return nil, err
	}
	return &day, nil
}

func getBusinessDay(ctx context.Context, db *gorm.DB, storeId string, dayId string) (*BusinessDay, error) {
	var day BusinessDay
	if err := db.WithContext(ctx).
		Where("id = ? AND store_id = ?", dayId, storeId).
		First(&day).Error; err != nil {
		return nil, NotFoundError(CodeDayNotFound, "business day %s not found", dayId)
	}
	return &day, nil
}

type PrepareDayCloseInput struct {
	DayId         string          `json:"day_id" binding:"required,uuid"`
	Closings      []StagedClosing `json:"closings" binding:"required,dive"`
	InitiatorId   *string         `json:"initiator_id"`
	ExpireMinutes int             `json:"expire_minutes"`
}

// PrepareDayClose stages the candidate closings and arms the expiration.
// The payload is validated here so Commit never parses junk.
func PrepareDayClose(ctx context.Context, identity *SessionIdentity, input *PrepareDayCloseInput) (*BusinessDay, time.Time, error) {
	db := config.GetDB()
	day, err := getBusinessDay(ctx, db, identity.StoreId, input.DayId)
	if err != nil {
		return nil, time.Time{}, err
	}
	if day.Status != BusinessDayStatusOpen {
		return nil, time.Time{}, PreconditionError(CodeInvalidStatus, "business day %s is %s, expected OPEN", day.ID, day.Status).
			WithMeta("status", string(day.Status))
	}

	for _, c := range input.Closings {
		var count int64
		if err := db.WithContext(ctx).Model(&Pack{}).
			Where("id = ? AND store_id = ?", c.PackId, identity.StoreId).
			Count(&count).Error; err != nil {
			return nil, time.Time{}, err
		}
		if count == 0 {
			return nil, time.Time{}, NotFoundError(CodePackNotFound, "pack %s not found", c.PackId)
		}
		if _, err := ParseSerial(c.EndingSerial); err != nil {
			return nil, time.Time{}, ValidationError("invalid ending serial %q for pack %s", c.EndingSerial, c.PackId)
		}
	}

	payload, err := utils.MarshalToJSON(input.Closings)
	if err != nil {
		return nil, time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(time.Duration(ClampCloseExpireMinutes(input.ExpireMinutes)) * time.Minute)

	res := db.WithContext(ctx).Model(&BusinessDay{}).
		Where("id = ? AND store_id = ? AND status = ?", day.ID, identity.StoreId, BusinessDayStatusOpen).
		Updates(map[string]interface{}{
			"status":               BusinessDayStatusPendingClose,
			"pending_closings":     payload,
			"pending_initiated_by": input.InitiatorId,
			"pending_started_at":   now,
			"pending_expires_at":   expiresAt,
		})
	if res.Error != nil {
		return nil, time.Time{}, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, time.Time{}, PreconditionError(CodeInvalidStatus, "business day %s changed state concurrently", day.ID)
	}

	RecordAuditEvent(ctx, AuditEventDayClosePrepared, map[string]interface{}{
		"day_id":     day.ID,
		"closings":   len(input.Closings),
		"expires_at": expiresAt,
	})
	day.Status = BusinessDayStatusPendingClose
	day.PendingExpiresAt = &expiresAt
	return day, expiresAt, nil
}

type CommitDayCloseInput struct {
	DayId    string  `json:"day_id" binding:"required,uuid"`
	CloserId *string `json:"closer_id"`
}

// CommitDayClose materializes the staged closings into DayPack rows and
// finalizes the day. A redis lock keeps two terminals from racing the
// commit; the status-gated update is the actual serialization.
func CommitDayClose(ctx context.Context, identity *SessionIdentity, input *CommitDayCloseInput) (*BusinessDay, []DayPack, error) {
	release, err := utils.StoreLock(ctx, identity.StoreId, "day-close", "models", "CommitDayClose")
	if err != nil {
		return nil, nil, ConflictError(CodeCloseInProgress, "another close is in progress for this store")
	}
	defer release()

	db := config.GetDB()
	day, err := getBusinessDay(ctx, db, identity.StoreId, input.DayId)
	if err != nil {
		return nil, nil, err
	}
	if day.Status != BusinessDayStatusPendingClose {
		return nil, nil, PreconditionError(CodeInvalidStatus, "business day %s is %s, expected PENDING_CLOSE", day.ID, day.Status).
			WithMeta("status", string(day.Status))
	}
	now := time.Now().UTC()
	if day.PendingExpiresAt != nil && now.After(*day.PendingExpiresAt) {
		return nil, nil, PreconditionError(CodeExpired, "staged close expired at %s, prepare again", day.PendingExpiresAt.Format(time.RFC3339))
	}
	if day.PendingClosings == nil {
		return nil, nil, PreconditionError(CodeInvalidStatus, "business day %s has no staged closings", day.ID)
	}

	var closings []StagedClosing
	if err := utils.UnmarshalFromJSON([]byte(*day.PendingClosings), &closings); err != nil {
		return nil, nil, fmt.Errorf("decode staged closings for day %s: %w", day.ID, err)
	}

	var dayPacks []DayPack
	totalTickets := 0
	totalSales := decimal.Zero

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range closings {
			var pack Pack
			if err := tx.Where("id = ? AND store_id = ?", c.PackId, identity.StoreId).
				First(&pack).Error; err != nil {
				return NotFoundError(CodePackNotFound, "pack %s not found", c.PackId)
			}
			var game Game
			if err := tx.Where("id = ?", pack.GameId).First(&game).Error; err != nil {
				return fmt.Errorf("load game %s: %w", pack.GameId, err)
			}

			startingSerial := "000"
			var prior DayPack
			err := tx.Where("store_id = ? AND pack_id = ?", identity.StoreId, c.PackId).
				Order("created_at DESC").
				First(&prior).Error
			if err == nil {
				startingSerial = prior.EndingSerial
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			ticketsSold, err := TicketsBetween(startingSerial, c.EndingSerial)
			if err != nil {
				return err
			}
			salesAmount := game.TicketPrice.Mul(decimal.NewFromInt(int64(ticketsSold)))

			dayPack := DayPack{
				ID:             uuid.NewString(),
				StoreId:        identity.StoreId,
				BusinessDayId:  day.ID,
				PackId:         pack.ID,
				GameId:         game.ID,
				BinId:          c.BinId,
				StartingSerial: startingSerial,
				EndingSerial:   c.EndingSerial,
				TicketsSold:    ticketsSold,
				SalesAmount:    salesAmount,
			}
			if err := tx.Create(&dayPack).Error; err != nil {
				return err
			}
			dayPacks = append(dayPacks, dayPack)
			totalTickets += ticketsSold
			totalSales = totalSales.Add(salesAmount)
		}

		res := tx.Model(&BusinessDay{}).
			Where("id = ? AND store_id = ? AND status = ?", day.ID, identity.StoreId, BusinessDayStatusPendingClose).
			Updates(map[string]interface{}{
				"status":             BusinessDayStatusClosed,
				"closed_at":          now,
				"closed_by":          input.CloserId,
				"pending_closings":   nil,
				"total_tickets_sold": totalTickets,
				"total_sales_amount": totalSales,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return PreconditionError(CodeInvalidStatus, "business day %s changed state concurrently", day.ID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	RecordAuditEvent(ctx, AuditEventDayCloseCommitted, map[string]interface{}{
		"day_id":             day.ID,
		"day_packs":          len(dayPacks),
		"total_tickets_sold": totalTickets,
	})
	day.Status = BusinessDayStatusClosed
	day.ClosedAt = &now
	day.ClosedBy = input.CloserId
	day.PendingClosings = nil
	day.TotalTicketsSold = totalTickets
	day.TotalSalesAmount = totalSales
	return day, dayPacks, nil
}

type CancelDayCloseInput struct {
	DayId       string  `json:"day_id" binding:"required,uuid"`
	CancellerId *string `json:"canceller_id"`
}

// CancelDayClose discards the staged payload and reverts to OPEN. There is
// no expiry check here: cancelling a stale stage is always allowed.
func CancelDayClose(ctx context.Context, identity *SessionIdentity, input *CancelDayCloseInput) (*BusinessDay, error) {
	db := config.GetDB()
	day, err := getBusinessDay(ctx, db, identity.StoreId, input.DayId)
	if err != nil {
		return nil, err
	}
	if day.Status != BusinessDayStatusPendingClose {
		return nil, PreconditionError(CodeInvalidStatus, "business day %s is %s, expected PENDING_CLOSE", day.ID, day.Status).
			WithMeta("status", string(day.Status))
	}

	res := db.WithContext(ctx).Model(&BusinessDay{}).
		Where("id = ? AND store_id = ? AND status = ?", day.ID, identity.StoreId, BusinessDayStatusPendingClose).
		Updates(map[string]interface{}{
			"status":               BusinessDayStatusOpen,
			"pending_closings":     nil,
			"pending_initiated_by": nil,
			"pending_started_at":   nil,
			"pending_expires_at":   nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, PreconditionError(CodeInvalidStatus, "business day %s changed state concurrently", day.ID)
	}

	RecordAuditEvent(ctx, AuditEventDayCloseCancelled, map[string]interface{}{
		"day_id":       day.ID,
		"canceller_id": derefString(input.CancellerId),
	})
	day.Status = BusinessDayStatusOpen
	day.PendingClosings = nil
	day.PendingExpiresAt = nil
	return day, nil
}
