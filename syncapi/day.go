package syncapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/lottery_backend/models"
)

type OpenDayRequest struct {
	BusinessDate string `json:"business_date" binding:"required"`
}

func OpenDayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req OpenDayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "business_date is required", err)
			return
		}
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(req.BusinessDate)); err != nil {
			respondBadRequest(c, "business_date must be YYYY-MM-DD")
			return
		}
		day, err := models.OpenBusinessDay(ctx, identity.StoreId, strings.TrimSpace(req.BusinessDate))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, day)
	}
}

func PrepareDayCloseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.PrepareDayCloseInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid prepare payload", err)
			return
		}
		day, expiresAt, err := models.PrepareDayClose(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, DayPrepareResponse{Day: day, ExpiresAt: expiresAt})
	}
}

func CommitDayCloseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.CommitDayCloseInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid commit payload", err)
			return
		}
		day, dayPacks, err := models.CommitDayClose(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		if dayPacks == nil {
			dayPacks = []models.DayPack{}
		}
		respondOK(c, DayCommitResponse{Day: day, DayPacks: dayPacks})
	}
}

func CancelDayCloseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.CancelDayCloseInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid cancel payload", err)
			return
		}
		day, err := models.CancelDayClose(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, day)
	}
}
