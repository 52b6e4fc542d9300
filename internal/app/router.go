package app

import (
	"github.com/jcthewizard/Goalshare-sub000/internal/config"
	"github.com/jcthewizard/Goalshare-sub000/internal/middleware"
	"github.com/jcthewizard/Goalshare-sub000/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		goals := api.Group("/goals")
		{
			goals.GET("", c.goal.ListGoals)
			goals.POST("", c.goal.CreateGoal)
			goals.POST("/refresh", c.goal.RefreshGoals)
			goals.GET("/:id", c.goal.GetGoal)
			goals.PATCH("/:id", c.goal.UpdateGoal)
			goals.DELETE("/:id", c.goal.DeleteGoal)

			goals.POST("/:id/milestones", c.goal.AddMilestone)
			goals.PATCH("/:id/milestones/:milestoneId", c.goal.UpdateMilestone)
			goals.DELETE("/:id/milestones/:milestoneId", c.goal.DeleteMilestone)
			goals.POST("/:id/milestones/:milestoneId/complete", c.goal.CompleteMilestone)
			goals.POST("/:id/milestones/:milestoneId/uncomplete", c.goal.UncompleteMilestone)

			goals.POST("/:id/timeline", c.goal.AddTimelineItem)
			goals.PATCH("/:id/timeline/:itemId", c.goal.UpdateTimelineItem)
			goals.DELETE("/:id/timeline/:itemId", c.goal.DeleteTimelineItem)
			goals.POST("/:id/timeline/:itemId/complete", c.goal.CompleteTimelineItem)
		}

		social := api.Group("/social")
		{
			social.GET("/friends", c.social.ListFriends)
			social.DELETE("/friends/:userId", c.social.RemoveFriend)

			social.GET("/requests", c.social.ListRequests)
			social.POST("/requests", c.social.SendRequest)
			social.POST("/requests/:id/accept", c.social.AcceptRequest)
			social.POST("/requests/:id/decline", c.social.DeclineRequest)

			social.GET("/users/search", c.social.SearchUsers)

			social.GET("/feed", c.social.GetFeed)
			social.POST("/feed/:id/like", c.social.LikeUpdate)
			social.POST("/feed/:id/unlike", c.social.UnlikeUpdate)
			social.POST("/feed/:id/comments", c.social.AddComment)
			social.DELETE("/feed/:id/comments/:commentId", c.social.DeleteComment)
		}
	}
}
