package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
	"gorm.io/gorm"
)

// Variance records a gap between expected and journaled ticket movement
// for one (shift, pack) pair. Approval is a one-shot manager action.
type Variance struct {
	ID         string     `gorm:"primary_key;size:36" json:"id"`
	StoreId    string     `gorm:"size:36;not null;index" json:"store_id"`
	ShiftId    string     `gorm:"size:36;not null;index:uniq_variance,unique" json:"shift_id"`
	PackId     string     `gorm:"size:36;not null;index:uniq_variance,unique" json:"pack_id"`
	Expected   int        `gorm:"not null" json:"expected"`
	Actual     int        `gorm:"not null" json:"actual"`
	Difference int        `gorm:"not null" json:"difference"`
	Reason     *string    `gorm:"size:255" json:"reason"`
	ApprovedBy *int       `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`
	Notes      *string    `gorm:"size:255" json:"notes"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime;index" json:"updated_at"`
}

type ApproveVarianceInput struct {
	VarianceId string  `json:"variance_id" binding:"required,uuid"`
	ApproverId int     `json:"approver_id" binding:"required"`
	Notes      *string `json:"notes"`
}

// ApproveVariance records a manager's sign-off. Deliberately not
// idempotent: a second approval of the same variance is a conflict, not
// a silent success, because sign-off is a human decision.
func ApproveVariance(ctx context.Context, storeId string, input *ApproveVarianceInput) (*Variance, error) {
	db := config.GetDB()

	if _, err := GetStoreUser(ctx, storeId, input.ApproverId); err != nil {
		return nil, NotFoundError(CodeApproverNotFound, "approver %d not found", input.ApproverId)
	}

	loaded, err := utils.FetchModel[Variance](ctx, storeId, input.VarianceId)
	if err != nil {
		return nil, NotFoundError(CodeVarianceNotFound, "variance %s not found", input.VarianceId)
	}
	variance := *loaded
	if variance.ApprovedBy != nil {
		return nil, ConflictError(CodeAlreadyApproved, "variance %s is already approved", variance.ID).
			WithMeta("approved_by", *variance.ApprovedBy)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"approved_by": input.ApproverId,
			"approved_at": now,
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		res := tx.Model(&Variance{}).
			Where("id = ? AND store_id = ? AND approved_by IS NULL", variance.ID, storeId).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ConflictError(CodeAlreadyApproved, "variance %s approved concurrently", variance.ID)
		}
		variance.ApprovedBy = &input.ApproverId
		variance.ApprovedAt = &now
		variance.Notes = input.Notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordAuditEvent(ctx, AuditEventVarianceApproved, map[string]interface{}{
		"variance_id": variance.ID,
		"approver_id": input.ApproverId,
	})
	return &variance, nil
}
