package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionCookieKey is the cookie-session key holding the session id.
const SessionCookieKey = "sid"

// HandleDeleteSession destroys the caller's quiz state and cookie session.
// The next request starts a fresh session.
func (h *Handler) HandleDeleteSession(c *gin.Context) {
	sid, err := sessionID(c)
	if err != nil {
		h.abortWithError(c, "Resolve session", err)
		return
	}
	if err := h.Sessions.Delete(c.Request.Context(), sid); err != nil {
		h.abortWithError(c, "Delete session state", err)
		return
	}

	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := sess.Save(); err != nil {
		h.abortWithError(c, "Clear session cookie", err)
		return
	}
	h.Log.Info("session deleted", "session", sid)
	c.Status(http.StatusNoContent)
}
