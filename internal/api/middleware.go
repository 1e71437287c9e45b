package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lecturequiz/internal/api/handlers"
	"lecturequiz/internal/pkg/logger"
)

const defaultFrontendURL = "http://localhost:5173"

// CORSMiddleware allows the front-end origin to call the API with cookies.
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	if frontendURL == "" {
		frontendURL = defaultFrontendURL
	}
	return cors.New(cors.Config{
		AllowOrigins:     []string{strings.TrimSuffix(frontendURL, "/")},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// SessionID gives every caller a stable session id kept in the cookie
// session and exposes it to handlers under handlers.SessionIDKey.
func SessionID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		id, _ := sess.Get(handlers.SessionCookieKey).(string)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			sess.Set(handlers.SessionCookieKey, id)
			if err := sess.Save(); err != nil {
				log.Error("failed to save session cookie", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not start session", "code": "internal"})
				return
			}
			log.Debug("session started", "session", id)
		}
		c.Set(handlers.SessionIDKey, id)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
