package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayPack is a finalized per-pack sales line for a closed business day.
// Rows are derived from the committed staged closings, never user edited.
type DayPack struct {
	ID             string          `gorm:"primary_key;size:36" json:"id"`
	StoreId        string          `gorm:"size:36;not null;index" json:"store_id"`
	BusinessDayId  string          `gorm:"size:36;not null;index" json:"business_day_id"`
	PackId         string          `gorm:"size:36;not null;index" json:"pack_id"`
	GameId         string          `gorm:"size:36;not null" json:"game_id"`
	BinId          *string         `gorm:"size:36" json:"bin_id"`
	StartingSerial string          `gorm:"size:20;not null" json:"starting_serial"`
	EndingSerial   string          `gorm:"size:20;not null" json:"ending_serial"`
	TicketsSold    int             `gorm:"not null" json:"tickets_sold"`
	SalesAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sales_amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime;index" json:"updated_at"`
}
