package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Game is a lottery product definition. A game is scoped to a jurisdiction
// (state-wide catalog) or to a single store (local override); exactly one of
// JurisdictionId/StoreId is set. Code is unique within its scope.
type Game struct {
	ID             string          `gorm:"primary_key;size:36" json:"id"`
	JurisdictionId *string         `gorm:"size:36;index" json:"jurisdiction_id"`
	StoreId        *string         `gorm:"size:36;index" json:"store_id"`
	Code           string          `gorm:"size:20;index;not null" json:"code"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	TicketPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"ticket_price"`
	PackValue      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"pack_value"`
	TicketsPerPack int             `gorm:"not null" json:"tickets_per_pack"`
	Status         GameStatus      `gorm:"type:enum('ACTIVE','INACTIVE','DISCONTINUED');default:ACTIVE;index" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGame struct {
	JurisdictionId string          `json:"jurisdiction_id"`
	StoreId        string          `json:"store_id"`
	Code           string          `json:"code" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	TicketPrice    decimal.Decimal `json:"ticket_price"`
	PackValue      decimal.Decimal `json:"pack_value"`
	TicketsPerPack int             `json:"tickets_per_pack"`
}

func CreateGame(ctx context.Context, input *NewGame) (*Game, error) {
	if (input.JurisdictionId == "") == (input.StoreId == "") {
		return nil, ValidationError("exactly one of jurisdiction_id or store_id is required")
	}

	db := config.GetDB()
	var count int64
	scope := db.WithContext(ctx).Model(&Game{}).Where("code = ?", input.Code)
	if input.JurisdictionId != "" {
		scope = scope.Where("jurisdiction_id = ?", input.JurisdictionId)
	} else {
		scope = scope.Where("store_id = ?", input.StoreId)
	}
	if err := scope.Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate game code in scope")
	}

	game := Game{
		ID:             uuid.NewString(),
		Code:           input.Code,
		Name:           input.Name,
		TicketPrice:    input.TicketPrice,
		PackValue:      input.PackValue,
		TicketsPerPack: input.TicketsPerPack,
		Status:         GameStatusActive,
	}
	if input.JurisdictionId != "" {
		game.JurisdictionId = &input.JurisdictionId
	} else {
		game.StoreId = &input.StoreId
	}
	if err := db.WithContext(ctx).Create(&game).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Game](utils.DereferencePtr(game.StoreId))
	return &game, nil
}

func UpdateGameStatus(ctx context.Context, gameId string, status GameStatus) (*Game, error) {
	db := config.GetDB()
	var game Game
	if err := db.WithContext(ctx).Where("id = ?", gameId).First(&game).Error; err != nil {
		return nil, NotFoundError(CodeGameNotFound, "game %s not found", gameId)
	}
	if err := db.WithContext(ctx).Model(&Game{}).
		Where("id = ?", gameId).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	game.Status = status
	_ = utils.RemoveRedisItem[Game](gameId)
	return &game, nil
}

// ResolveGameByCode is the two-tier catalog lookup: a jurisdiction-wide game
// first, then the store's own override. A resolved game that is not ACTIVE is
// a distinct failure from an unresolvable code, so clients can tell a typo
// from a deactivation.
func ResolveGameByCode(ctx context.Context, jurisdictionId string, storeId string, code string) (*Game, error) {
	db := config.GetDB()

	var game Game
	err := db.WithContext(ctx).
		Where("jurisdiction_id = ? AND store_id IS NULL AND code = ?", jurisdictionId, code).
		First(&game).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		err = db.WithContext(ctx).
			Where("store_id = ? AND code = ?", storeId, code).
			First(&game).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundError(CodeGameNotFound, "no game with code %s", code)
			}
			return nil, err
		}
	}

	if game.Status != GameStatusActive {
		return nil, PreconditionError(CodeGameInactive, "game %s is %s", code, game.Status).
			WithMeta("game_id", game.ID).
			WithMeta("status", string(game.Status))
	}
	return &game, nil
}

// GetGame fetches a game visible to the store: its own override or one from
// its jurisdiction.
func GetGame(ctx context.Context, jurisdictionId string, storeId string, gameId string) (*Game, error) {
	db := config.GetDB()
	var game Game
	err := db.WithContext(ctx).
		Where("id = ? AND (jurisdiction_id = ? OR store_id = ?)", gameId, jurisdictionId, storeId).
		First(&game).Error
	if err != nil {
		return nil, NotFoundError(CodeGameNotFound, "game %s not found", gameId)
	}
	return &game, nil
}
