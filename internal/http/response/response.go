package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// ListBody 列表响应体
type ListBody struct {
	Search interface{} `json:"search,omitempty"`
	Data   interface{} `json:"data"`
}

// Success 200 响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// List 列表响应
func List(c *gin.Context, search, data interface{}) {
	c.JSON(http.StatusOK, ListBody{Search: search, Data: data})
}

// Error 错误响应
func Error(c *gin.Context, appErr *AppError) {
	if appErr == nil {
		appErr = Internal(nil)
	}
	if requestID := RequestID(c); requestID != "" {
		c.Header("X-Request-ID", requestID)
	}
	c.AbortWithStatusJSON(appErr.Status, ErrorBody{
		Type:    appErr.Type,
		Code:    appErr.Code,
		Message: appErr.Message,
		Param:   appErr.Param,
	})
}

// RequestID 读取请求ID
func RequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
