package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "connect_sid"
	sessionKey    = "session_id"
)

// Session makes sure every request carries a connect_sid cookie and exposes its value.
func Session(ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sid, err := ctx.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			http.SetCookie(ctx.Writer, &http.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx.Set(sessionKey, sid)
		ctx.Next()
	}
}

// SessionID returns the session id set by Session.
func SessionID(ctx *gin.Context) string {
	return ctx.GetString(sessionKey)
}
