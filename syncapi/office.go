package syncapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/middlewares"
	"github.com/mmdatafocus/lottery_backend/models"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// Back-office surface: store staff log in with username/password and get a
// JWT; managers resolve variances from here, not from the terminals.

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	StoreId string       `json:"store_id"`
}

func LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "username and password are required", err)
			return
		}

		user, err := models.AuthenticateUser(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := utils.JwtGenerate(user.ID, string(user.Role), user.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, LoginResponse{Token: token, User: user, StoreId: user.StoreId})
	}
}

func ListVariancesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim := middlewares.CtxValue(c.Request.Context())
		if claim == nil {
			respondError(c, models.UnauthorizedError(models.CodeInvalidSession, "login required"))
			return
		}
		ctx := utils.SetStoreIdInContext(c.Request.Context(), claim.StoreId)

		db := config.GetDB().WithContext(ctx)
		query := db.Where("store_id = ?", claim.StoreId)
		if strings.EqualFold(c.Query("unresolved_only"), "true") {
			query = query.Where("approved_by IS NULL")
		}
		if shiftId := strings.TrimSpace(c.Query("shift_id")); shiftId != "" {
			query = query.Where("shift_id = ?", shiftId)
		}

		var variances []models.Variance
		if err := query.Order("created_at DESC").Limit(200).Find(&variances).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, variances)
	}
}

func ApproveVarianceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim := middlewares.CtxValue(c.Request.Context())
		if claim == nil {
			respondError(c, models.UnauthorizedError(models.CodeInvalidSession, "login required"))
			return
		}
		ctx := utils.SetStoreIdInContext(c.Request.Context(), claim.StoreId)

		var body struct {
			ApproverId *int    `json:"approver_id"`
			Notes      *string `json:"notes"`
		}
		_ = c.ShouldBindJSON(&body)

		input := models.ApproveVarianceInput{
			VarianceId: c.Param("id"),
			ApproverId: claim.ID,
			Notes:      body.Notes,
		}
		if body.ApproverId != nil {
			input.ApproverId = *body.ApproverId
		}

		variance, err := models.ApproveVariance(ctx, claim.StoreId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, variance)
	}
}

func ListSettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim := middlewares.CtxValue(c.Request.Context())
		if claim == nil {
			respondError(c, models.UnauthorizedError(models.CodeInvalidSession, "login required"))
			return
		}
		ctx := utils.SetStoreIdInContext(c.Request.Context(), claim.StoreId)

		settings, err := models.GetStoreSettings(ctx, claim.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, settings)
	}
}

type UpsertSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

func UpsertSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim := middlewares.CtxValue(c.Request.Context())
		if claim == nil {
			respondError(c, models.UnauthorizedError(models.CodeInvalidSession, "login required"))
			return
		}
		ctx := utils.SetStoreIdInContext(c.Request.Context(), claim.StoreId)

		var req UpsertSettingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "key is required", err)
			return
		}

		setting, err := models.UpsertStoreSetting(ctx, req.Key, req.Value)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, setting)
	}
}
