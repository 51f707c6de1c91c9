package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// Store is the tenant: a single retail location. Every tenant-owned table
// carries its id as store_id and is covered by the tenant guard plugin.
type Store struct {
	ID             uuid.UUID `gorm:"primary_key" json:"id"`
	JurisdictionId string    `gorm:"size:36;index;not null" json:"jurisdiction_id"`
	Name           string    `gorm:"size:100;not null" json:"name" binding:"required"`
	RetailerNumber string    `gorm:"size:50;index" json:"retailer_number"`
	Address        string    `gorm:"type:text" json:"address"`
	City           string    `gorm:"size:100" json:"city"`
	Timezone       string    `gorm:"size:50" json:"timezone"`
	IsActive       *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Jurisdiction is a state lottery authority. Games are cataloged per
// jurisdiction and optionally overridden per store.
type Jurisdiction struct {
	ID        string    `gorm:"primary_key;size:36" json:"id"`
	Code      string    `gorm:"size:10;unique;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStore struct {
	JurisdictionId string `json:"jurisdiction_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	RetailerNumber string `json:"retailer_number"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Timezone       string `json:"timezone"`
}

func CreateStore(ctx context.Context, input *NewStore) (*Store, error) {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&Jurisdiction{}).
		Where("id = ?", input.JurisdictionId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, errors.New("jurisdiction not found")
	}

	store := Store{
		ID:             uuid.New(),
		JurisdictionId: input.JurisdictionId,
		Name:           input.Name,
		RetailerNumber: input.RetailerNumber,
		Address:        input.Address,
		City:           input.City,
		Timezone:       input.Timezone,
		IsActive:       utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func GetStoreById(ctx context.Context, storeId string) (*Store, error) {
	var store *Store
	// stores are read on every validated request; cache them
	store, err := utils.RetrieveRedis[Store](storeId)
	if err != nil {
		return nil, err
	}
	if store == nil {
		db := config.GetDB()
		var s Store
		if err := db.WithContext(ctx).Where("id = ?", storeId).First(&s).Error; err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		store = &s
		if err := utils.StoreRedis[Store](store, storeId); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func CreateJurisdiction(ctx context.Context, code string, name string) (*Jurisdiction, error) {
	db := config.GetDB()
	j := Jurisdiction{
		ID:   uuid.NewString(),
		Code: code,
		Name: name,
	}
	if err := db.WithContext(ctx).Create(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}
