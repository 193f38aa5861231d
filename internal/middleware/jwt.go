package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"matchday/internal/domain" // Error envelope
	"matchday/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// SessionCookie is the cookie carrying the session token
const SessionCookie = "session"

// Context keys set by SessionAuth
const (
	AccountIDKey = "accountID"
	ClaimsKey    = "claims"
)

// SessionAuth validates the session token from the cookie or the Authorization header
func SessionAuth(secret string, revoked *utils.Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(SessionCookie) // Browser clients send the cookie
		if tokenStr == "" {
			authHeader := c.GetHeader("Authorization") // API clients send a bearer token
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if tokenStr == "" {
			abort(c, domain.ErrUnauthorized("missing session"))
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			abort(c, domain.ErrUnauthorized("invalid or expired session"))
			return
		}
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{"jti": claims.ID, "error": err.Error()}).Error("Revocation lookup failed")
			abort(c, domain.ErrInternal("session lookup failed", err))
			return
		}
		if isRevoked {
			abort(c, domain.ErrUnauthorized("session has been logged out"))
			return
		}
		c.Set(AccountIDKey, claims.AccountID) // Store accountID in context
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// AccountID returns the authenticated account id set by SessionAuth
func AccountID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(AccountIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Claims returns the session claims set by SessionAuth
func Claims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

func abort(c *gin.Context, e *domain.AppError) {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, gin.H{"error": e.Message, "code": e.Code})
}
