package models

import (
	"context"
	"errors"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pack is the central inventory entity. It is never physically deleted;
// every lifecycle transition stamps its own timestamp/actor columns and
// bin moves are journaled in BinHistory.
type Pack struct {
	ID               string           `gorm:"primary_key;size:36" json:"id"`
	StoreId          string           `gorm:"size:36;not null;index:uniq_store_pack_number,unique" json:"store_id"`
	PackNumber       string           `gorm:"size:30;not null;index:uniq_store_pack_number,unique" json:"pack_number"`
	GameId           string           `gorm:"size:36;not null;index" json:"game_id"`
	StartSerial      string           `gorm:"size:20;not null" json:"start_serial"`
	EndSerial        string           `gorm:"size:20;not null" json:"end_serial"`
	Status           PackStatus       `gorm:"size:20;not null;index" json:"status"`
	BinId            *string          `gorm:"size:36" json:"bin_id"`
	TicketsSold      int              `gorm:"not null;default:0" json:"tickets_sold"`
	SalesAmount      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"sales_amount"`
	EntryMethod      EntryMethod      `gorm:"size:20;not null;default:SCANNED" json:"entry_method"`
	ReceivedAt       *time.Time       `json:"received_at"`
	ReceivedBy       *string          `gorm:"size:36" json:"received_by"`
	ActivatedAt      *time.Time       `json:"activated_at"`
	ActivatedBy      *string          `gorm:"size:36" json:"activated_by"`
	ActivatedShiftId *string          `gorm:"size:36" json:"activated_shift_id"`
	DepletedAt       *time.Time       `json:"depleted_at"`
	DepletedBy       *string          `gorm:"size:36" json:"depleted_by"`
	DepletedShiftId  *string          `gorm:"size:36" json:"depleted_shift_id"`
	DepletionReason  *DepletionReason `gorm:"size:30" json:"depletion_reason"`
	FinalSerial      *string          `gorm:"size:20" json:"final_serial"`
	ReturnedAt       *time.Time       `json:"returned_at"`
	ReturnedBy       *string          `gorm:"size:36" json:"returned_by"`
	ReturnReason     *ReturnReason    `gorm:"size:30" json:"return_reason"`
	ReturnNotes      *string          `gorm:"size:255" json:"return_notes"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// ValidatePackTransition enforces the lifecycle state machine. RETURNED is
// terminal; DEPLETED can still be sent back to the lottery as a return.
func ValidatePackTransition(from PackStatus, to PackStatus) error {
	allowed := map[PackStatus][]PackStatus{
		PackStatusReceived: {PackStatusActive, PackStatusReturned},
		PackStatusActive:   {PackStatusDepleted, PackStatusReturned},
		PackStatusDepleted: {PackStatusReturned},
		PackStatusReturned: {},
	}
	next, ok := allowed[from]
	if !ok {
		return PreconditionError(CodeInvalidStatus, "unknown pack status %s", from)
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	switch {
	case to == PackStatusReturned && from == PackStatusReturned:
		return ConflictError(CodeAlreadyReturned, "pack is already returned")
	case to == PackStatusActive && from == PackStatusActive:
		return ConflictError(CodeAlreadyActive, "pack is already active")
	default:
		return PreconditionError(CodeInvalidStatus, "pack cannot move from %s to %s", from, to).
			WithMeta("from", string(from)).
			WithMeta("to", string(to))
	}
}

type ReceivePackInput struct {
	PackId      string     `json:"pack_id" binding:"required,uuid"`
	GameCode    string     `json:"game_code" binding:"required"`
	PackNumber  string     `json:"pack_number" binding:"required"`
	StartSerial string     `json:"start_serial" binding:"required"`
	EndSerial   string     `json:"end_serial" binding:"required"`
	EntryMethod string     `json:"entry_method"`
	ReceivedAt  *time.Time `json:"received_at"`
	CashierId   *string    `json:"cashier_id"`
}

// ReceivePack registers a freshly delivered pack in RECEIVED state. The
// pack id is device generated so a retried request with the same pack
// number surfaces DUPLICATE_PACK instead of inserting twice.
func ReceivePack(ctx context.Context, identity *SessionIdentity, input *ReceivePackInput) (*Pack, error) {
	game, err := ResolveGameByCode(ctx, identity.JurisdictionId, identity.StoreId, input.GameCode)
	if err != nil {
		return nil, err
	}
	if input.CashierId != nil {
		if err := validateCashierId(ctx, identity.StoreId, *input.CashierId); err != nil {
			return nil, err
		}
	}

	entryMethod := EntryMethodScanned
	if input.EntryMethod != "" {
		entryMethod = EntryMethod(input.EntryMethod)
		if !entryMethod.Valid() {
			return nil, ValidationError("invalid entry method %s", input.EntryMethod)
		}
	}

	receivedAt := time.Now().UTC()
	if input.ReceivedAt != nil {
		receivedAt = input.ReceivedAt.UTC()
	}
	pack := Pack{
		ID:          input.PackId,
		StoreId:     identity.StoreId,
		PackNumber:  input.PackNumber,
		GameId:      game.ID,
		StartSerial: input.StartSerial,
		EndSerial:   input.EndSerial,
		Status:      PackStatusReceived,
		EntryMethod: entryMethod,
		ReceivedAt:  &receivedAt,
		ReceivedBy:  input.CashierId,
		SalesAmount: decimal.Zero,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&pack).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, ConflictError(CodeDuplicatePack, "pack number %s already exists", input.PackNumber).
				WithMeta("pack_number", input.PackNumber)
		}
		return nil, err
	}

	RecordAuditEvent(ctx, AuditEventPackReceived, map[string]interface{}{
		"pack_id":     pack.ID,
		"pack_number": pack.PackNumber,
		"game_id":     pack.GameId,
	})
	return &pack, nil
}

type ActivatePackInput struct {
	PackId      string  `json:"pack_id" binding:"required,uuid"`
	BinId       string  `json:"bin_id" binding:"required,uuid"`
	GameCode    string  `json:"game_code"`
	PackNumber  string  `json:"pack_number"`
	StartSerial string  `json:"start_serial"`
	EndSerial   string  `json:"end_serial"`
	ShiftId     *string `json:"shift_id"`
	CashierId   *string `json:"cashier_id"`
	// PreSoldTickets justifies tickets sold before the pack hit a bin.
	PreSoldTickets *int `json:"pre_sold_tickets"`
}

// ActivatePack puts a pack on display. A pack never seen before is created
// from the supplied payload first, so a device may upload its events out of
// order. Re-activating into the same bin is a safe no-op reported as
// idempotent; a different bin is a conflict.
func ActivatePack(ctx context.Context, identity *SessionIdentity, input *ActivatePackInput) (*Pack, bool, error) {
	bin, err := getActiveBin(ctx, identity.StoreId, input.BinId)
	if err != nil {
		return nil, false, err
	}
	if input.ShiftId != nil {
		if err := validateShiftId(ctx, identity.StoreId, *input.ShiftId); err != nil {
			return nil, false, err
		}
	}
	if input.CashierId != nil {
		if err := validateCashierId(ctx, identity.StoreId, *input.CashierId); err != nil {
			return nil, false, err
		}
	}

	db := config.GetDB()
	var pack Pack
	idempotent := false

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND store_id = ?", input.PackId, identity.StoreId).First(&pack).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, createErr := createPackForActivation(tx, ctx, identity, input)
			if createErr != nil {
				return createErr
			}
			pack = *created
		} else if err != nil {
			return err
		}

		if pack.Status == PackStatusActive {
			if pack.BinId != nil && *pack.BinId == bin.ID {
				idempotent = true
				return nil
			}
			return ConflictError(CodeAlreadyActive, "pack %s is already active in another bin", pack.ID).
				WithMeta("bin_id", derefString(pack.BinId))
		}
		if err := ValidatePackTransition(pack.Status, PackStatusActive); err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       PackStatusActive,
			"bin_id":       bin.ID,
			"activated_at": now,
		}
		if input.CashierId != nil {
			updates["activated_by"] = *input.CashierId
		}
		if input.ShiftId != nil {
			updates["activated_shift_id"] = *input.ShiftId
		}
		if input.PreSoldTickets != nil && *input.PreSoldTickets > 0 {
			updates["tickets_sold"] = *input.PreSoldTickets
		}
		// Status-gated update so a concurrent transition loses cleanly
		// instead of clobbering another terminal's write.
		res := tx.Model(&Pack{}).
			Where("id = ? AND store_id = ? AND status = ?", pack.ID, identity.StoreId, pack.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ConflictError(CodeAlreadyActive, "pack %s changed state concurrently", pack.ID)
		}

		history := BinHistory{
			ID:      uuid.NewString(),
			StoreId: identity.StoreId,
			PackId:  pack.ID,
			BinId:   bin.ID,
			Reason:  BinMoveReasonActivation,
			MovedAt: now,
			MovedBy: input.CashierId,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		pack.Status = PackStatusActive
		pack.BinId = &bin.ID
		pack.ActivatedAt = &now
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !idempotent {
		RecordAuditEvent(ctx, AuditEventPackActivated, map[string]interface{}{
			"pack_id": pack.ID,
			"bin_id":  bin.ID,
		})
	}
	return &pack, idempotent, nil
}

// createPackForActivation builds the pack row inside the activation
// transaction when the device's receive event has not arrived yet.
func createPackForActivation(tx *gorm.DB, ctx context.Context, identity *SessionIdentity, input *ActivatePackInput) (*Pack, error) {
	if input.GameCode == "" || input.PackNumber == "" {
		return nil, ValidationError("game_code and pack_number are required to activate an unknown pack")
	}
	game, err := ResolveGameByCode(ctx, identity.JurisdictionId, identity.StoreId, input.GameCode)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	pack := Pack{
		ID:          input.PackId,
		StoreId:     identity.StoreId,
		PackNumber:  input.PackNumber,
		GameId:      game.ID,
		StartSerial: input.StartSerial,
		EndSerial:   input.EndSerial,
		Status:      PackStatusReceived,
		EntryMethod: EntryMethodScanned,
		ReceivedAt:  &now,
		ReceivedBy:  input.CashierId,
		SalesAmount: decimal.Zero,
	}
	if err := tx.Create(&pack).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, ConflictError(CodeDuplicatePack, "pack number %s already exists", input.PackNumber)
		}
		return nil, err
	}
	return &pack, nil
}

type MovePackInput struct {
	PackId    string  `json:"pack_id" binding:"required,uuid"`
	FromBinId string  `json:"from_bin_id" binding:"required,uuid"`
	ToBinId   string  `json:"to_bin_id" binding:"required,uuid"`
	Reason    string  `json:"reason"`
	CashierId *string `json:"cashier_id"`
}

// MovePack relocates an active pack between bins. The stated source bin
// must match the pack's current bin so a stale device cannot move a pack
// someone else already moved.
func MovePack(ctx context.Context, identity *SessionIdentity, input *MovePackInput) (*Pack, error) {
	toBin, err := getActiveBin(ctx, identity.StoreId, input.ToBinId)
	if err != nil {
		return nil, err
	}
	reason := BinMoveReasonRearrange
	if input.Reason != "" {
		reason = BinMoveReason(input.Reason)
		if !reason.Valid() {
			return nil, ValidationError("invalid bin move reason %s", input.Reason)
		}
	}

	db := config.GetDB()
	var pack Pack
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND store_id = ?", input.PackId, identity.StoreId).
			First(&pack).Error; err != nil {
			return NotFoundError(CodePackNotFound, "pack %s not found", input.PackId)
		}
		if pack.BinId == nil || *pack.BinId != input.FromBinId {
			return PreconditionError(CodeBinMismatch, "pack %s is not in bin %s", pack.ID, input.FromBinId).
				WithMeta("current_bin_id", derefString(pack.BinId))
		}

		now := time.Now().UTC()
		res := tx.Model(&Pack{}).
			Where("id = ? AND store_id = ? AND bin_id = ?", pack.ID, identity.StoreId, input.FromBinId).
			Update("bin_id", toBin.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return PreconditionError(CodeBinMismatch, "pack %s moved concurrently", pack.ID)
		}

		history := BinHistory{
			ID:        uuid.NewString(),
			StoreId:   identity.StoreId,
			PackId:    pack.ID,
			BinId:     toBin.ID,
			FromBinId: &input.FromBinId,
			Reason:    reason,
			MovedAt:   now,
			MovedBy:   input.CashierId,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		pack.BinId = &toBin.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordAuditEvent(ctx, AuditEventPackMoved, map[string]interface{}{
		"pack_id":     pack.ID,
		"from_bin_id": input.FromBinId,
		"to_bin_id":   toBin.ID,
	})
	return &pack, nil
}

type DepletePackInput struct {
	PackId      string  `json:"pack_id" binding:"required,uuid"`
	FinalSerial string  `json:"final_serial" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
	ShiftId     *string `json:"shift_id"`
	CashierId   *string `json:"cashier_id"`
}

// DepletePack marks an active pack as sold out.
func DepletePack(ctx context.Context, identity *SessionIdentity, input *DepletePackInput) (*Pack, error) {
	reason := DepletionReason(input.Reason)
	if !reason.Valid() {
		return nil, ValidationError("invalid depletion reason %s", input.Reason)
	}
	if input.ShiftId != nil {
		if err := validateShiftId(ctx, identity.StoreId, *input.ShiftId); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()
	var pack Pack
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND store_id = ?", input.PackId, identity.StoreId).
			First(&pack).Error; err != nil {
			return NotFoundError(CodePackNotFound, "pack %s not found", input.PackId)
		}
		if err := ValidatePackTransition(pack.Status, PackStatusDepleted); err != nil {
			return err
		}

		now := time.Now().UTC()
		sold, err := TicketsBetween(pack.StartSerial, input.FinalSerial)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":           PackStatusDepleted,
			"depleted_at":      now,
			"depletion_reason": reason,
			"final_serial":     input.FinalSerial,
			"tickets_sold":     sold,
		}
		if input.CashierId != nil {
			updates["depleted_by"] = *input.CashierId
		}
		if input.ShiftId != nil {
			updates["depleted_shift_id"] = *input.ShiftId
		}
		res := tx.Model(&Pack{}).
			Where("id = ? AND store_id = ? AND status = ?", pack.ID, identity.StoreId, PackStatusActive).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return PreconditionError(CodeInvalidStatus, "pack %s changed state concurrently", pack.ID)
		}
		pack.Status = PackStatusDepleted
		pack.DepletedAt = &now
		pack.FinalSerial = &input.FinalSerial
		pack.TicketsSold = sold
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordAuditEvent(ctx, AuditEventPackDepleted, map[string]interface{}{
		"pack_id": pack.ID,
		"reason":  string(reason),
	})
	return &pack, nil
}

type ReturnPackInput struct {
	PackId             string  `json:"pack_id" binding:"required,uuid"`
	Reason             string  `json:"reason" binding:"required"`
	Notes              *string `json:"notes"`
	TicketsSoldOnReturn *int   `json:"tickets_sold_on_return"`
	CashierId          *string `json:"cashier_id"`
}

// ReturnPack sends a pack back to the lottery. Partially sold packs carry
// a tickets-sold count so the sales amount can be settled at return time.
func ReturnPack(ctx context.Context, identity *SessionIdentity, input *ReturnPackInput) (*Pack, error) {
	reason := ReturnReason(input.Reason)
	if !reason.Valid() {
		return nil, ValidationError("invalid return reason %s", input.Reason)
	}

	db := config.GetDB()
	var pack Pack
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND store_id = ?", input.PackId, identity.StoreId).
			First(&pack).Error; err != nil {
			return NotFoundError(CodePackNotFound, "pack %s not found", input.PackId)
		}
		if pack.Status == PackStatusReturned {
			return ConflictError(CodeAlreadyReturned, "pack %s is already returned", pack.ID)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":        PackStatusReturned,
			"returned_at":   now,
			"return_reason": reason,
			"bin_id":        nil,
		}
		if input.Notes != nil {
			updates["return_notes"] = *input.Notes
		}
		if input.CashierId != nil {
			updates["returned_by"] = *input.CashierId
		}
		if input.TicketsSoldOnReturn != nil {
			game, err := GetGame(ctx, identity.JurisdictionId, identity.StoreId, pack.GameId)
			if err != nil {
				return err
			}
			sold := *input.TicketsSoldOnReturn
			updates["tickets_sold"] = sold
			updates["sales_amount"] = game.TicketPrice.Mul(decimal.NewFromInt(int64(sold)))
		}
		res := tx.Model(&Pack{}).
			Where("id = ? AND store_id = ? AND status = ?", pack.ID, identity.StoreId, pack.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ConflictError(CodeAlreadyReturned, "pack %s changed state concurrently", pack.ID)
		}
		pack.Status = PackStatusReturned
		pack.ReturnedAt = &now
		pack.ReturnReason = &reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordAuditEvent(ctx, AuditEventPackReturned, map[string]interface{}{
		"pack_id": pack.ID,
		"reason":  string(reason),
	})
	return &pack, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
