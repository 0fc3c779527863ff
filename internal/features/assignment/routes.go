package assignment

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches assignment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly gin.HandlerFunc) {
	router.POST("/assignments/generate", handler.Generate)
	router.POST("/videos/:videoId/quiz/from-assignment", adminOnly, handler.QuizFromAssignment)
}
