package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "user_id"
	SceneIDKey  = "scene_id"
	UserHeader  = "X-User-ID"
	SceneHeader = "X-Scene-ID"
	AdminHeader = "X-Admin-Key"
	AnonymousID = "anonymous"
	maxIDLength = 64
)

// Identity reads the calling user and scene from the request headers. The
// scene may also be passed as the "scene" query parameter, which SSE
// clients use.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := cleanID(c.GetHeader(UserHeader))
		if user == "" {
			user = AnonymousID
		}
		scene := cleanID(c.GetHeader(SceneHeader))
		if scene == "" {
			scene = cleanID(c.Query("scene"))
		}
		c.Set(UserIDKey, user)
		c.Set(SceneIDKey, scene)
		c.Next()
	}
}

// AdminKey rejects requests that do not carry the configured admin key.
// An empty key disables the admin routes entirely.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		given := c.GetHeader(AdminHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the calling user from the Gin context.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(UserIDKey); exists {
		return v.(string)
	}
	return ""
}

// GetSceneID retrieves the scene of the request from the Gin context.
func GetSceneID(c *gin.Context) string {
	if v, exists := c.Get(SceneIDKey); exists {
		return v.(string)
	}
	return ""
}

func cleanID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxIDLength {
		return ""
	}
	for _, r := range s {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return s
}
