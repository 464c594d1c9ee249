package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupChat/internal/utils"
)

// AsyncMiddleware 把后续处理链交给协程池执行，限制同时访问数据库的请求数。
// 调用方 goroutine 阻塞到任务结束，同一时刻只有一个 goroutine 操作 c。
// pool 为 nil 时同步执行。
func AsyncMiddleware(pool *utils.WorkerPool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pool == nil {
			c.Next()
			return
		}

		done := make(chan struct{})
		pool.Submit(func() {
			defer close(done)
			defer func() {
				// worker 内的 panic 到不了 gin 的 Recovery，这里改写为 500 后继续上抛给协程池记录
				if r := recover(); r != nil {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
					panic(r)
				}
			}()
			c.Next()
		})
		<-done
	}
}
