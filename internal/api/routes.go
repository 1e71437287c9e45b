package api

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"lecturequiz/internal/api/handlers"
	"lecturequiz/internal/pkg/logger"
)

// StoreName is the cookie name of the session.
const StoreName = "lecturequiz_session"

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, store sessions.Store, frontendURL string, log *logger.Logger) {
	router.Use(RequestLogger(log))
	router.Use(CORSMiddleware(frontendURL))

	router.GET("/healthz", handler.HandleHealth)

	api := router.Group("/api")
	api.Use(sessions.Sessions(StoreName, store), SessionID(log))
	{
		api.GET("/options", handler.HandleOptions)

		api.POST("/quiz/generate", handler.HandleGenerateQuiz) // multipart upload
		api.GET("/quiz", handler.HandleGetQuiz)
		api.DELETE("/quiz", handler.HandleClearQuiz)
		api.POST("/quiz/answers", handler.HandleSubmitAnswer)

		api.DELETE("/session", handler.HandleDeleteSession)
	}
}
