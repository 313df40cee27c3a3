package auth

import (
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// VerifyToken decodes a Firebase ID token from the Authorization header when
// one is present and stores the verified identity on the gin context. Requests
// without a token pass through untouched; clients identify themselves in the
// request body and the handlers validate those IDs against the database.
func VerifyToken(authClient *auth.Client, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("token verification failed")
			c.Next()
			return
		}

		c.Set("firebase_uid", decoded.UID)
		if email, ok := decoded.Claims["email"].(string); ok {
			c.Set("email", email)
		}

		c.Next()
	}
}

// extractToken returns the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
