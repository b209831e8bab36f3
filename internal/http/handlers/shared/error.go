package shared

import (
	"github.com/dujiao-next/checkout/internal/http/response"
	"github.com/dujiao-next/checkout/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := response.RequestID(c); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回协议错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, appErr *response.AppError) {
	if appErr == nil {
		appErr = response.Internal(nil)
	}
	if appErr.Err != nil {
		log := RequestLog(c)
		if appErr.Status >= 500 {
			log.Errorw("handler_error",
				"status", appErr.Status,
				"code", appErr.Code,
				"error", appErr.Err,
			)
		} else {
			log.Warnw("handler_rejected",
				"status", appErr.Status,
				"code", appErr.Code,
				"error", appErr.Err,
			)
		}
	}
	response.Error(c, appErr)
}
