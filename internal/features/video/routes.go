package video

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches video endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly gin.HandlerFunc) {
	videos := router.Group("/videos")
	{
		videos.GET("", handler.List)
		videos.GET("/:videoId", handler.GetByID)
		videos.POST("", adminOnly, handler.Create)
		videos.PUT("/:videoId", adminOnly, handler.Update)
		videos.DELETE("/:videoId", adminOnly, handler.Delete)
	}
}
