package reservations

import (
	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes configures all reservation-related routes following the same pattern as other modules
func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller) {
	topics := rg.Group("/topics")
	{
		topics.POST("/:topic_id/reservations", controller.Claim)
		topics.GET("/:topic_id/reservations", controller.ListByTopic)
		topics.POST("/:topic_id/reservations/:participant_id/confirm", controller.Confirm)
		topics.DELETE("/:topic_id/reservations/:participant_id", controller.Release)
	}

	rg.GET("/pools/:pool_id/reservations", controller.ListByPool)
}
