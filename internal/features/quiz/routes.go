package quiz

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches quiz endpoints to the router. The learner-facing
// fetch lives under the video path; everything under /quizzes except submit
// exposes answer keys and is admin only.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, adminOnly gin.HandlerFunc) {
	router.GET("/videos/:videoId/quiz", handler.GetForVideo)

	quizzes := router.Group("/quizzes")
	{
		quizzes.POST("/:quizId/submit", handler.Submit)
		quizzes.GET("", adminOnly, handler.List)
		quizzes.GET("/:quizId", adminOnly, handler.GetByID)
		quizzes.POST("", adminOnly, handler.Create)
		quizzes.PUT("/:quizId", adminOnly, handler.Update)
		quizzes.DELETE("/:quizId", adminOnly, handler.Delete)
	}
}
