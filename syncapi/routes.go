package syncapi

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/lottery_backend/middlewares"
	"github.com/mmdatafocus/lottery_backend/models"
)

// RegisterRoutes mounts the device sync surface and the back-office
// surface on the given engine.
func RegisterRoutes(r *gin.Engine) {
	sync := r.Group("/sync/v1")
	{
		sync.POST("/session", StartSessionHandler())
		sync.POST("/session/complete", CompleteSessionHandler())

		pull := sync.Group("/pull")
		{
			pull.GET("/games", PullGamesHandler())
			pull.GET("/config", PullConfigHandler())
			pull.GET("/bins", PullBinsHandler())
			pull.GET("/packs", PullPacksHandler())
			pull.GET("/day-status", PullDayStatusHandler())
			pull.GET("/shift-openings", PullShiftOpeningsHandler())
			pull.GET("/shift-closings", PullShiftClosingsHandler())
			pull.GET("/variances", PullVariancesHandler())
			pull.GET("/day-packs", PullDayPacksHandler())
			pull.GET("/bin-history", PullBinHistoryHandler())
		}

		push := sync.Group("/push")
		{
			push.POST("/receive", ReceivePackHandler())
			push.POST("/activate", ActivatePackHandler())
			push.POST("/move", MovePackHandler())
			push.POST("/deplete", DepletePackHandler())
			push.POST("/return", ReturnPackHandler())
			push.POST("/shift/open", OpenShiftHandler())
			push.POST("/shift/openings", RecordShiftOpeningsHandler())
			push.POST("/shift/close", CloseShiftHandler())
		}

		day := sync.Group("/day")
		{
			day.POST("/open", OpenDayHandler())
			day.POST("/prepare", PrepareDayCloseHandler())
			day.POST("/commit", CommitDayCloseHandler())
			day.POST("/cancel", CancelDayCloseHandler())
		}
	}

	r.POST("/auth/login", LoginHandler())

	office := r.Group("/office", middlewares.RequireAuth())
	{
		office.GET("/variances", ListVariancesHandler())
		office.POST("/variances/:id/approve",
			middlewares.RequireRole(models.UserRoleAdmin, models.UserRoleManager),
			ApproveVarianceHandler())
		office.GET("/settings", ListSettingsHandler())
		office.POST("/settings",
			middlewares.RequireRole(models.UserRoleAdmin, models.UserRoleManager),
			UpsertSettingHandler())
	}
}
