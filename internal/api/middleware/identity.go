package middleware

import (
	"Attune/internal/pkg/response"
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
)

// IdentityMiddleware 读取上游网关注入的用户身份并写入 Context。
// 认证与会话由网关完成，这里只信任内网转发的头
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawUserID := c.GetHeader("X-User-ID")
		if rawUserID == "" {
			response.Fail(c, response.Unauthorized, "缺少用户身份")
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(rawUserID, 10, 64)
		if err != nil || userID == 0 {
			response.Fail(c, response.Unauthorized, "用户身份无效")
			c.Abort()
			return
		}

		c.Set("user_id", userID)

		newCtx := context.WithValue(c.Request.Context(), "user_id", userID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
