package waitlist

import (
	"github.com/gin-gonic/gin"
)

// SetupWaitlistRoutes configures all waitlist-related routes following the same pattern as other modules
func SetupWaitlistRoutes(rg *gin.RouterGroup, controller *Controller) {
	waitlists := rg.Group("/waitlists")
	{
		waitlists.POST("/:pool_id/join", controller.Join)
		waitlists.DELETE("/:pool_id/members/:participant_id", controller.Leave)
		waitlists.GET("/:pool_id", controller.View)
		waitlists.GET("/:pool_id/stats", controller.Stats)
	}
}
