package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// Cashier is the person working a shift. Kept separate from User: a cashier
// does not need a back-office login to appear on a shift record.
type Cashier struct {
	ID        string    `gorm:"primary_key;size:36" json:"id"`
	StoreId   string    `gorm:"size:36;index;not null" json:"store_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	EmployeeNumber string `gorm:"size:50" json:"employee_number"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCashier struct {
	Name           string `json:"name" binding:"required"`
	EmployeeNumber string `json:"employee_number"`
}

func CreateCashier(ctx context.Context, input *NewCashier) (*Cashier, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, ValidationError("store id is required")
	}

	cashier := Cashier{
		ID:             uuid.NewString(),
		StoreId:        storeId,
		Name:           input.Name,
		EmployeeNumber: input.EmployeeNumber,
		IsActive:       utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&cashier).Error; err != nil {
		return nil, err
	}
	return &cashier, nil
}

func validateCashierId(ctx context.Context, storeId string, cashierId string) error {
	if cashierId == "" {
		return nil
	}
	if err := utils.ValidateResourceId[Cashier](ctx, storeId, cashierId); err != nil {
		if err == utils.ErrorRecordNotFound {
			return NotFoundError(CodeCashierNotFound, "cashier %s not found", cashierId)
		}
		return err
	}
	return nil
}
