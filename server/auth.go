package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenAuth guards the API with a static bearer token. Websocket clients
// cannot always set headers, so the token is also accepted as a query
// parameter. An empty token disables auth.
func TokenAuth(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token == "" {
			ctx.Next()
			return
		}

		auth := ctx.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == token {
			ctx.Next()
			return
		}
		if ctx.Query("token") == token {
			ctx.Next()
			return
		}

		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}
