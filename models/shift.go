package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Shift is a cashier work session at a terminal, bounded by opening and
// closing pack serial readings.
type Shift struct {
	ID            string           `gorm:"primary_key;size:36" json:"id"`
	StoreId       string           `gorm:"size:36;not null;index" json:"store_id"`
	CashierId     *string          `gorm:"size:36" json:"cashier_id"`
	TerminalId    *string          `gorm:"size:36" json:"terminal_id"`
	BusinessDayId *string          `gorm:"size:36;index" json:"business_day_id"`
	OpenedAt      time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time       `json:"closed_at"`
	ClosingCash   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_cash"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// ShiftOpening is the serial showing on a pack when a shift starts.
// One row per (shift, pack); resubmission overwrites.
type ShiftOpening struct {
	ID            string    `gorm:"primary_key;size:36" json:"id"`
	StoreId       string    `gorm:"size:36;not null;index" json:"store_id"`
	ShiftId       string    `gorm:"size:36;not null;index:uniq_shift_opening,unique" json:"shift_id"`
	PackId        string    `gorm:"size:36;not null;index:uniq_shift_opening,unique" json:"pack_id"`
	OpeningSerial string    `gorm:"size:20;not null" json:"opening_serial"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// ShiftClosing is the serial showing when the shift ends. Manual entry
// needs a named authorizer since the scanner count is being overridden.
type ShiftClosing struct {
	ID               string      `gorm:"primary_key;size:36" json:"id"`
	StoreId          string      `gorm:"size:36;not null;index" json:"store_id"`
	ShiftId          string      `gorm:"size:36;not null;index:uniq_shift_closing,unique" json:"shift_id"`
	PackId           string      `gorm:"size:36;not null;index:uniq_shift_closing,unique" json:"pack_id"`
	ClosingSerial    string      `gorm:"size:20;not null" json:"closing_serial"`
	EntryMethod      EntryMethod `gorm:"size:20;not null;default:SCANNED" json:"entry_method"`
	ManualAuthorizer *int        `json:"manual_authorizer"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func validateShiftId(ctx context.Context, storeId string, shiftId string) error {
	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&Shift{}).
		Where("id = ? AND store_id = ?", shiftId, storeId).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return NotFoundError(CodeShiftNotFound, "shift %s not found", shiftId)
	}
	return nil
}

type OpenShiftInput struct {
	ShiftId    string           `json:"shift_id" binding:"required,uuid"`
	CashierId  *string          `json:"cashier_id"`
	TerminalId *string          `json:"terminal_id"`
	OpenedAt   *time.Time       `json:"opened_at"`
	Openings   []OpeningReading `json:"openings" binding:"dive"`
}

type OpeningReading struct {
	PackId        string `json:"pack_id" binding:"required,uuid"`
	OpeningSerial string `json:"opening_serial" binding:"required"`
}

// OpenShift creates the shift row if it does not exist yet and upserts the
// opening readings. The whole call is idempotent so a device can resend it.
func OpenShift(ctx context.Context, identity *SessionIdentity, input *OpenShiftInput) (*Shift, error) {
	if input.CashierId != nil {
		if err := validateCashierId(ctx, identity.StoreId, *input.CashierId); err != nil {
			return nil, err
		}
	}
	if input.TerminalId != nil {
		if err := validateTerminalId(ctx, identity.StoreId, *input.TerminalId); err != nil {
			return nil, err
		}
	}

	openedAt := time.Now().UTC()
	if input.OpenedAt != nil {
		openedAt = input.OpenedAt.UTC()
	}

	db := config.GetDB()
	var shift Shift
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND store_id = ?", input.ShiftId, identity.StoreId).First(&shift).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			shift = Shift{
				ID:         input.ShiftId,
				StoreId:    identity.StoreId,
				CashierId:  input.CashierId,
				TerminalId: input.TerminalId,
				OpenedAt:   openedAt,
			}
			if err := tx.Create(&shift).Error; err != nil && !isDuplicateKeyErr(err) {
				return err
			}
		} else if err != nil {
			return err
		}
		return upsertShiftOpenings(tx, identity.StoreId, shift.ID, input.Openings)
	})
	if err != nil {
		return nil, err
	}

	RecordAuditEvent(ctx, AuditEventShiftOpened, map[string]interface{}{
		"shift_id": shift.ID,
		"openings": len(input.Openings),
	})
	return &shift, nil
}

// RecordShiftOpenings upserts opening readings for an existing shift.
func RecordShiftOpenings(ctx context.Context, identity *SessionIdentity, shiftId string, readings []OpeningReading) error {
	if err := validateShiftId(ctx, identity.StoreId, shiftId); err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertShiftOpenings(tx, identity.StoreId, shiftId, readings)
	})
}

func upsertShiftOpenings(tx *gorm.DB, storeId string, shiftId string, readings []OpeningReading) error {
	for _, r := range readings {
		var count int64
		if err := tx.Model(&Pack{}).
			Where("id = ? AND store_id = ?", r.PackId, storeId).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return NotFoundError(CodePackNotFound, "pack %s not found", r.PackId)
		}

		opening := ShiftOpening{
			ID:            uuid.NewString(),
			StoreId:       storeId,
			ShiftId:       shiftId,
			PackId:        r.PackId,
			OpeningSerial: r.OpeningSerial,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shift_id"}, {Name: "pack_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"opening_serial", "updated_at"}),
		}).Create(&opening).Error; err != nil {
			return err
		}
	}
	return nil
}

type CloseShiftInput struct {
	ShiftId     string           `json:"shift_id" binding:"required,uuid"`
	ClosedAt    *time.Time       `json:"closed_at"`
	ClosingCash *decimal.Decimal `json:"closing_cash"`
	Closings    []ClosingReading `json:"closings" binding:"dive"`
}

type ClosingReading struct {
	PackId           string `json:"pack_id" binding:"required,uuid"`
	ClosingSerial    string `json:"closing_serial" binding:"required"`
	EntryMethod      string `json:"entry_method"`
	ManualAuthorizer *int   `json:"manual_authorizer"`
	// ActualSold is the authoritative count from the terminal's sales
	// journal; when it diverges from the serial delta a variance is raised.
	ActualSold *int `json:"actual_sold"`
}

// CloseShift upserts the closing readings, stamps the shift closed, and
// raises a variance for every pack whose journaled sales disagree with
// the serial delta.
func CloseShift(ctx context.Context, identity *SessionIdentity, input *CloseShiftInput) (*Shift, []Variance, error) {
	db := config.GetDB()
	var shift Shift
	if err := db.WithContext(ctx).
		Where("id = ? AND store_id = ?", input.ShiftId, identity.StoreId).
		First(&shift).Error; err != nil {
		return nil, nil, NotFoundError(CodeShiftNotFound, "shift %s not found", input.ShiftId)
	}

	closedAt := time.Now().UTC()
	if input.ClosedAt != nil {
		closedAt = input.ClosedAt.UTC()
	}

	var variances []Variance
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range input.Closings {
			entryMethod := EntryMethodScanned
			if r.EntryMethod != "" {
				entryMethod = EntryMethod(r.EntryMethod)
				if !entryMethod.Valid() {
					return ValidationError("invalid entry method %s", r.EntryMethod)
				}
			}
			if entryMethod == EntryMethodManual {
				if r.ManualAuthorizer == nil {
					return ValidationError("manual closing for pack %s requires an authorizer", r.PackId)
				}
				var count int64
				if err := tx.Model(&User{}).
					Where("id = ? AND store_id = ?", *r.ManualAuthorizer, identity.StoreId).
					Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return NotFoundError(CodeApproverNotFound, "authorizer %d not found", *r.ManualAuthorizer)
				}
			}

			closing := ShiftClosing{
				ID:               uuid.NewString(),
				StoreId:          identity.StoreId,
				ShiftId:          shift.ID,
				PackId:           r.PackId,
				ClosingSerial:    r.ClosingSerial,
				EntryMethod:      entryMethod,
				ManualAuthorizer: r.ManualAuthorizer,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "shift_id"}, {Name: "pack_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"closing_serial", "entry_method", "manual_authorizer", "updated_at"}),
			}).Create(&closing).Error; err != nil {
				return err
			}

			if r.ActualSold == nil {
				continue
			}
			var opening ShiftOpening
			err := tx.Where("shift_id = ? AND pack_id = ?", shift.ID, r.PackId).
				First(&opening).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			} else if err != nil {
				return err
			}

			expected, err := TicketsBetween(opening.OpeningSerial, r.ClosingSerial)
			if err != nil {
				return err
			}
			if *r.ActualSold == expected {
				continue
			}
			variance := Variance{
				ID:         uuid.NewString(),
				StoreId:    identity.StoreId,
				ShiftId:    shift.ID,
				PackId:     r.PackId,
				Expected:   expected,
				Actual:     *r.ActualSold,
				Difference: *r.ActualSold - expected,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "shift_id"}, {Name: "pack_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"expected", "actual", "difference", "updated_at"}),
			}).Create(&variance).Error; err != nil {
				return err
			}
			// Re-read into a fresh value so a retried close reports the
			// persisted row, not a fresh id that lost the conflict.
			var persisted Variance
			if err := tx.Where("shift_id = ? AND pack_id = ?", shift.ID, r.PackId).
				First(&persisted).Error; err != nil {
				return err
			}
			variances = append(variances, persisted)
		}

		updates := map[string]interface{}{"closed_at": closedAt}
		if input.ClosingCash != nil {
			updates["closing_cash"] = *input.ClosingCash
		}
		return tx.Model(&Shift{}).
			Where("id = ? AND store_id = ?", shift.ID, identity.StoreId).
			Updates(updates).Error
	})
	if err != nil {
		return nil, nil, err
	}

	RecordAuditEvent(ctx, AuditEventShiftClosed, map[string]interface{}{
		"shift_id":  shift.ID,
		"closings":  len(input.Closings),
		"variances": len(variances),
	})
	shift.ClosedAt = &closedAt
	return &shift, variances, nil
}
