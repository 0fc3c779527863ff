package user

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches user endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("/me", handler.Me)
		users.GET("", adminOnly, handler.List)
		users.GET("/:userId", handler.GetByID)
		users.PUT("/:userId", handler.Update)
		users.DELETE("/:userId", handler.Delete)
		users.POST("/:userId/roles", adminOnly, handler.AssignRole)
	}
}
