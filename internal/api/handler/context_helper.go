package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akhan280/doy-backend/pkg/response"
)

// MustGetUserID 从路径参数中安全提取用户 ID 并校验 UUID 格式。
// 格式非法时写入 400 响应并返回 false，调用方应直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, "用户 ID 格式非法")
		return "", false
	}
	return id, true
}
