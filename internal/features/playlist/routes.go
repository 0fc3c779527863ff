package playlist

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches playlist endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly gin.HandlerFunc) {
	playlists := router.Group("/playlists")
	{
		playlists.GET("", handler.List)
		playlists.GET("/:playlistId", handler.GetByID)
		playlists.POST("", adminOnly, handler.Create)
		playlists.PUT("/:playlistId", adminOnly, handler.Update)
		playlists.DELETE("/:playlistId", adminOnly, handler.Delete)
		playlists.POST("/:playlistId/enroll", handler.Enroll)
	}

	router.GET("/enrollments", handler.MyEnrollments)
}
