package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
	"gorm.io/gorm/clause"
)

// StoreSetting is a device-facing configuration key/value, delivered to
// terminals through the config pull collection.
type StoreSetting struct {
	ID        string    `gorm:"primary_key;size:36" json:"id"`
	StoreId   string    `gorm:"size:36;not null;index:uniq_store_setting,unique" json:"store_id"`
	Key       string    `gorm:"size:100;not null;index:uniq_store_setting,unique" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertStoreSetting writes a setting keyed by (store, key).
func UpsertStoreSetting(ctx context.Context, key string, value string) (*StoreSetting, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, ValidationError("store id is required")
	}

	setting := StoreSetting{
		ID:      uuid.NewString(),
		StoreId: storeId,
		Key:     key,
		Value:   value,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[StoreSetting](storeId)
	return &setting, nil
}

// GetStoreSettings returns every setting for the store, redis-cached.
func GetStoreSettings(ctx context.Context, storeId string) ([]*StoreSetting, error) {
	cached, err := utils.RetrieveRedisList[StoreSetting](storeId)
	if err == nil && cached != nil {
		return cached, nil
	}

	settings, err := utils.FetchAllModels[StoreSetting](ctx, storeId)
	if err != nil {
		return nil, err
	}
	_ = utils.StoreRedisList[StoreSetting](settings, storeId)
	return settings, nil
}
