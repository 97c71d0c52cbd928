package transport

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"redblue-bank/internal/replica"
)

// Logger is a Gin middleware factory that logs every request this
// replica serves, tagged with the replica's own ID so that multi-
// replica integration logs can be grep'd apart by which node handled
// which request.
func Logger(e *replica.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[replica %d] %s %s %s | %d | %s",
			e.ID(),
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// Recovery replaces Gin's default recovery: it logs panics tagged with
// the replica that panicked, instead of dumping a raw stack trace to
// the response body. A panic here means a handler bug, not a bank
// rule violation — it must never take down the replica's main loop,
// which keeps running in its own goroutine regardless.
func Recovery(e *replica.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[replica %d] PANIC recovered: %v", e.ID(), err)
				c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
