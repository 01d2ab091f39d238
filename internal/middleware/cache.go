package middleware

import "github.com/gin-gonic/gin"

const (
	cacheHitKey    = "cache_hit"
	cacheHitHeader = "X-Cache"
)

// SetCacheHit records whether the page was assembled from the dashboard cache.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
	if hit {
		c.Header(cacheHitHeader, "HIT")
		return
	}
	c.Header(cacheHitHeader, "MISS")
}

// CacheHit reports the value stored by SetCacheHit.
func CacheHit(c *gin.Context) bool {
	return c.GetBool(cacheHitKey)
}
