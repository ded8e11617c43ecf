package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func RegisterRoutes(r *gin.Engine, h *Handler, authToken string) {
	r.GET("/health", h.Health)

	authed := r.Group("/")
	if authToken != "" {
		authed.Use(tokenAuth(authToken))
	}
	{
		authed.GET("/languages", h.ListLanguages)
		authed.GET("/languages/:id", h.GetLanguage)

		authed.POST("/runs", h.CreateRun)
		authed.GET("/runs/ws", h.RunSocket)
		authed.GET("/runs/:id", h.GetRun)
		authed.GET("/runs/:id/status", h.GetRunStatus)
	}
}

// tokenAuth checks the bearer token. Browsers cannot set headers on a
// WebSocket handshake, so upgrade requests may pass it as ?access_token=.
func tokenAuth(token string) gin.HandlerFunc {
	const bearer = "Bearer "
	return func(c *gin.Context) {
		reqToken := c.GetHeader("Authorization")
		if strings.HasPrefix(reqToken, bearer) && reqToken[len(bearer):] == token {
			c.Next()
			return
		}
		if websocket.IsWebSocketUpgrade(c.Request) && c.Query("access_token") == token {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
	}
}
