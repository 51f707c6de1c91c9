package models

import "time"

// BinHistory journals every pack to bin assignment. Rows are append-only
// and written inside the same transaction as the pack mutation.
type BinHistory struct {
	ID        string        `gorm:"primary_key;size:36" json:"id"`
	StoreId   string        `gorm:"size:36;not null;index" json:"store_id"`
	PackId    string        `gorm:"size:36;not null;index" json:"pack_id"`
	BinId     string        `gorm:"size:36;not null" json:"bin_id"`
	FromBinId *string       `gorm:"size:36" json:"from_bin_id"`
	Reason    BinMoveReason `gorm:"size:20;not null" json:"reason"`
	MovedAt   time.Time     `gorm:"not null" json:"moved_at"`
	MovedBy   *string       `gorm:"size:36" json:"moved_by"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}
