package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// Terminal is a registered point-of-sale device at a store.
type Terminal struct {
	ID        string    `gorm:"primary_key;size:36" json:"id"`
	StoreId   string    `gorm:"size:36;index;not null" json:"store_id"`
	Label     string    `gorm:"size:100" json:"label"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTerminal struct {
	Label string `json:"label"`
}

func CreateTerminal(ctx context.Context, input *NewTerminal) (*Terminal, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, ValidationError("store id is required")
	}

	terminal := Terminal{
		ID:       uuid.NewString(),
		StoreId:  storeId,
		Label:    input.Label,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&terminal).Error; err != nil {
		return nil, err
	}
	return &terminal, nil
}

func validateTerminalId(ctx context.Context, storeId string, terminalId string) error {
	if terminalId == "" {
		return nil
	}
	if err := utils.ValidateResourceId[Terminal](ctx, storeId, terminalId); err != nil {
		if err == utils.ErrorRecordNotFound {
			return NotFoundError(CodeTerminalNotFound, "terminal %s not found", terminalId)
		}
		return err
	}
	return nil
}
