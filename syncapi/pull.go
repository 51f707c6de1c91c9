package syncapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/lottery_backend/models"
	"gorm.io/gorm"
)

// parsePullFilter reads the shared cursor params off the query string.
func parsePullFilter(c *gin.Context) (models.PullFilter, error) {
	var filter models.PullFilter

	if v := strings.TrimSpace(c.Query("since_timestamp")); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, models.ValidationError("since_timestamp must be an ISO-8601 instant")
		}
		filter.Since = ts.UTC()
	}
	filter.SinceId = strings.TrimSpace(c.Query("since_id"))
	if v := strings.TrimSpace(c.Query("since_sequence")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return filter, models.ValidationError("since_sequence must be a non-negative integer")
		}
		filter.SinceSequence = n
	}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, models.ValidationError("limit must be an integer")
		}
		filter.Limit = n
	}
	return filter, nil
}

// pullHandler wires one collection to the generic delta reader.
func pullHandler[T any](scope func(*gin.Context, *models.SessionIdentity) func(*gorm.DB) *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		filter, err := parsePullFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}

		var scopeFn func(*gorm.DB) *gorm.DB
		if scope != nil {
			scopeFn = scope(c, identity)
		}
		result, err := models.PullDelta[T](ctx, filter, scopeFn)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, buildPullResponse(result, filter.SinceSequence))
	}
}

// Games span two catalog tiers, so the scope is an explicit OR of the
// session's jurisdiction and store. The tenant guard stands down because
// the predicate already names store_id.
func PullGamesHandler() gin.HandlerFunc {
	return pullHandler[models.Game](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("jurisdiction_id = ? OR store_id = ?", identity.JurisdictionId, identity.StoreId)
		}
	})
}

func PullConfigHandler() gin.HandlerFunc {
	return pullHandler[models.StoreSetting](nil)
}

func PullBinsHandler() gin.HandlerFunc {
	return pullHandler[models.Bin](nil)
}

func PullPacksHandler() gin.HandlerFunc {
	return pullHandler[models.Pack](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		binId := strings.TrimSpace(c.Query("bin_id"))
		gameId := strings.TrimSpace(c.Query("game_id"))
		if binId == "" && gameId == "" {
			return nil
		}
		return func(db *gorm.DB) *gorm.DB {
			if binId != "" {
				db = db.Where("bin_id = ?", binId)
			}
			if gameId != "" {
				db = db.Where("game_id = ?", gameId)
			}
			return db
		}
	})
}

func PullDayStatusHandler() gin.HandlerFunc {
	return pullHandler[models.BusinessDay](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		businessDate := strings.TrimSpace(c.Query("business_date"))
		if businessDate == "" {
			return nil
		}
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("business_date = ?", businessDate)
		}
	})
}

func PullShiftOpeningsHandler() gin.HandlerFunc {
	return pullHandler[models.ShiftOpening](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		shiftId := strings.TrimSpace(c.Query("shift_id"))
		if shiftId == "" {
			return nil
		}
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("shift_id = ?", shiftId)
		}
	})
}

func PullShiftClosingsHandler() gin.HandlerFunc {
	return pullHandler[models.ShiftClosing](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		shiftId := strings.TrimSpace(c.Query("shift_id"))
		if shiftId == "" {
			return nil
		}
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("shift_id = ?", shiftId)
		}
	})
}

func PullVariancesHandler() gin.HandlerFunc {
	return pullHandler[models.Variance](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		shiftId := strings.TrimSpace(c.Query("shift_id"))
		unresolvedOnly := strings.EqualFold(c.Query("unresolved_only"), "true")
		if shiftId == "" && !unresolvedOnly {
			return nil
		}
		return func(db *gorm.DB) *gorm.DB {
			if shiftId != "" {
				db = db.Where("shift_id = ?", shiftId)
			}
			if unresolvedOnly {
				db = db.Where("approved_by IS NULL")
			}
			return db
		}
	})
}

func PullDayPacksHandler() gin.HandlerFunc {
	return pullHandler[models.DayPack](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		dayId := strings.TrimSpace(c.Query("day_id"))
		packId := strings.TrimSpace(c.Query("pack_id"))
		if dayId == "" && packId == "" {
			return nil
		}
		return func(db *gorm.DB) *gorm.DB {
			if dayId != "" {
				db = db.Where("business_day_id = ?", dayId)
			}
			if packId != "" {
				db = db.Where("pack_id = ?", packId)
			}
			return db
		}
	})
}

func PullBinHistoryHandler() gin.HandlerFunc {
	return pullHandler[models.BinHistory](func(c *gin.Context, identity *models.SessionIdentity) func(*gorm.DB) *gorm.DB {
		packId := strings.TrimSpace(c.Query("pack_id"))
		binId := strings.TrimSpace(c.Query("bin_id"))
		if packId == "" && binId == "" {
			return nil
		}
		return func(db *gorm.DB) *gorm.DB {
			if packId != "" {
				db = db.Where("pack_id = ?", packId)
			}
			if binId != "" {
				db = db.Where("bin_id = ?", binId)
			}
			return db
		}
	})
}
