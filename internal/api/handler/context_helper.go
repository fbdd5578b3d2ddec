package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coursehub/internal/service"
	"coursehub/pkg/jwt"
	"coursehub/pkg/response"
	"coursehub/pkg/validate"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果认证中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (int64, bool) {
	id := OptionalUserID(c)
	if id == 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// OptionalUserID 匿名访问时返回 0
func OptionalUserID(c *gin.Context) int64 {
	v, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	id, _ := v.(int64)
	return id
}

// MustGetActor 当前用户及其是否为工作人员
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, IsStaff: c.GetString("role") == jwt.RoleStaff}, true
}

// tokenFromContext 当前会话 Token 的 jti 与过期时间
func tokenFromContext(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	exp, _ := c.Get("token_exp")
	t, _ := exp.(time.Time)
	return jti, t
}

// parseIDParam 解析路径中的整数 id；非法 id 与不存在的资源一样返回 404
func parseIDParam(c *gin.Context, name string, code int, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, code, message)
		return 0, false
	}
	return id, true
}

// isFormRequest 表单提交（含文件上传）
func isFormRequest(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == gin.MIMEPOSTForm || strings.HasPrefix(ct, gin.MIMEMultipartPOSTForm)
}

// bindRequest 按 Content-Type 绑定 JSON 或表单
func bindRequest(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.BadRequest(c, 10001, "参数校验失败")
		return false
	}
	return true
}

// renderValidation 字段校验错误统一渲染为 400
func renderValidation(c *gin.Context, err error) bool {
	var verr *validate.Error
	if errors.As(err, &verr) {
		response.ValidationFailed(c, verr.Fields)
		return true
	}
	return false
}
