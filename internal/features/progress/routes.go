package progress

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches progress endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	progress := router.Group("/progress")
	{
		progress.POST("", handler.Record)
		progress.GET("", handler.List)
	}
}
