package importer

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches import endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly gin.HandlerFunc) {
	router.POST("/import/youtube", adminOnly, handler.ImportYouTube)
}
