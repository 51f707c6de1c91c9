package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// Bin is a physical display slot at a store.
type Bin struct {
	ID           string    `gorm:"primary_key;size:36" json:"id"`
	StoreId      string    `gorm:"size:36;index;not null" json:"store_id"`
	Label        string    `gorm:"size:50;not null" json:"label"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBin struct {
	Label        string `json:"label" binding:"required"`
	DisplayOrder int    `json:"display_order"`
}

func CreateBin(ctx context.Context, input *NewBin) (*Bin, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, ValidationError("store id is required")
	}

	bin := Bin{
		ID:           uuid.NewString(),
		StoreId:      storeId,
		Label:        input.Label,
		DisplayOrder: input.DisplayOrder,
		IsActive:     utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&bin).Error; err != nil {
		return nil, err
	}
	return &bin, nil
}

// getActiveBin resolves a bin that must exist in the store and be active.
func getActiveBin(ctx context.Context, storeId string, binId string) (*Bin, error) {
	db := config.GetDB()
	var bin Bin
	if err := db.WithContext(ctx).
		Where("id = ? AND store_id = ?", binId, storeId).
		First(&bin).Error; err != nil {
		return nil, NotFoundError(CodeBinNotFound, "bin %s not found", binId)
	}
	if bin.IsActive == nil || !*bin.IsActive {
		return nil, NotFoundError(CodeBinNotFound, "bin %s is not active", binId)
	}
	return &bin, nil
}
