package token

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the authenticated token endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly gin.HandlerFunc) {
	tokens := router.Group("/tokens")
	{
		tokens.GET("", handler.List)
		tokens.GET("/:tokenId", handler.GetByID)
		tokens.GET("/:tokenId/export", handler.Export)
		tokens.POST("/:tokenId/verify", handler.VerifyByID)
		tokens.POST("/:tokenId/revoke", adminOnly, handler.RevokeByID)
	}
}

// RegisterPublicRoutes attaches the unauthenticated verification endpoint.
func RegisterPublicRoutes(router *gin.RouterGroup, handler *Handler) {
	router.GET("/verify/:hash", handler.VerifyByHash)
}
