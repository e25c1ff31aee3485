package middleware

import (
	"net/http"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/auth"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth attaches the caller's session to the request context when a valid
// token is present. Requests without one continue anonymously and are
// rejected by whatever needs a session.
func Auth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := auth.ExtractAccessToken(c.Request)
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			logger.FromCtx(c.Request.Context()).Debug("ignoring invalid token", zap.Error(err))
			c.Next()
			return
		}

		ctx := session.WithContext(c.Request.Context(), claims.Session())
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// SessionFrom returns the caller's session, or the zero session for
// anonymous requests.
func SessionFrom(c *gin.Context) session.Session {
	sess, _ := session.FromContext(c.Request.Context())
	return sess
}

// RequireAuth rejects anonymous requests with 401 before they reach a
// handler.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": apperror.Message(session.ErrUnauthenticated),
				"code":   apperror.KindUnauthenticated,
			})
			return
		}
		c.Next()
	}
}
