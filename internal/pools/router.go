package pools

import (
	"github.com/gin-gonic/gin"
)

// SetupPoolRoutes configures all pool-related routes following the same pattern as other modules
func SetupPoolRoutes(rg *gin.RouterGroup, controller *Controller) {
	poolGroup := rg.Group("/pools")
	{
		poolGroup.POST("", controller.CreatePool)
		poolGroup.GET("/:pool_id", controller.GetPool)
		poolGroup.DELETE("/:pool_id", controller.DeletePool)

		poolGroup.POST("/:pool_id/topics", controller.AddTopic)
		poolGroup.GET("/:pool_id/topics", controller.ListTopics)
		poolGroup.DELETE("/:pool_id/topics/:topic_id", controller.DeleteTopic)
	}
}
