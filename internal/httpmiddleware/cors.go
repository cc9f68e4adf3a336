package httpmiddleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var vercelPreview = regexp.MustCompile(`(?i)^https?://.*\.vercel\.app$`)

// OriginAllowed reports whether origin passes the whitelist. An empty
// whitelist allows every origin. Origins are compared trimmed, lower-case and
// without a trailing slash.
func OriginAllowed(origin string, whitelist []string, allowPreviews bool) bool {
	normalized := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(origin), "/"))
	if len(whitelist) == 0 {
		return true
	}
	for _, o := range whitelist {
		if o == normalized {
			return true
		}
	}
	return allowPreviews && vercelPreview.MatchString(normalized)
}

// CORS allows credentialed cross-origin requests from whitelisted origins.
func CORS(whitelist []string, allowPreviews bool) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return OriginAllowed(origin, whitelist, allowPreviews)
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// SecurityHeaders sets conservative response headers on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
