package syncapi

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/lottery_backend/models"
)

func ReceivePackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.ReceivePackInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid receive payload", err)
			return
		}
		pack, err := models.ReceivePack(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, PushPackResponse{Pack: pack})
	}
}

func ActivatePackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.ActivatePackInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid activate payload", err)
			return
		}
		pack, idempotent, err := models.ActivatePack(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, PushPackResponse{Pack: pack, Idempotent: idempotent})
	}
}

func MovePackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.MovePackInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid move payload", err)
			return
		}
		pack, err := models.MovePack(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, PushPackResponse{Pack: pack})
	}
}

func DepletePackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.DepletePackInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid deplete payload", err)
			return
		}
		pack, err := models.DepletePack(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, PushPackResponse{Pack: pack})
	}
}

func ReturnPackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.ReturnPackInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid return payload", err)
			return
		}
		pack, err := models.ReturnPack(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, PushPackResponse{Pack: pack})
	}
}

func OpenShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.OpenShiftInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid shift open payload", err)
			return
		}
		shift, err := models.OpenShift(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, ShiftOpenResponse{Shift: shift})
	}
}

// RecordShiftOpeningsHandler re-submits opening readings for a shift that
// is already open, e.g. a pack activated after the shift started.
func RecordShiftOpeningsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req ShiftOpeningsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid shift openings payload", err)
			return
		}
		if err := models.RecordShiftOpenings(ctx, identity, req.ShiftId, req.Openings); err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"recorded": len(req.Openings)})
	}
}

func CloseShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, identity, err := authenticate(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.CloseShiftInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, "invalid shift close payload", err)
			return
		}
		shift, variances, err := models.CloseShift(ctx, identity, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		if variances == nil {
			variances = []models.Variance{}
		}
		respondOK(c, ShiftCloseResponse{Shift: shift, Variances: variances})
	}
}
