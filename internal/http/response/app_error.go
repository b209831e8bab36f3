package response

import "net/http"

// 错误类型
const (
	TypeInvalidRequest  = "invalid_request"
	TypeNotFound        = "not_found"
	TypeProcessingError = "processing_error"
)

// 错误码
const (
	CodeInvalidPayload       = "invalid_payload"
	CodeRequestNotIdempotent = "request_not_idempotent"
	CodeNotFound             = "not_found"
	CodeInternal             = "internal_error"
	CodeTooManyRequests      = "too_many_requests"
)

// AppError 统一错误包装，Status 为 HTTP 状态码
type AppError struct {
	Status  int
	Type    string
	Code    string
	Message string
	Param   string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithParam 附加 JSONPath 参数
func (e *AppError) WithParam(param string) *AppError {
	cp := *e
	cp.Param = param
	return &cp
}

// WrapError 包装错误
func WrapError(status int, errType, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// InvalidPayload 400 请求体错误
func InvalidPayload(message, param string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Type:    TypeInvalidRequest,
		Code:    CodeInvalidPayload,
		Message: message,
		Param:   param,
	}
}

// NotIdempotent 405 非法状态迁移
func NotIdempotent(message string) *AppError {
	return &AppError{
		Status:  http.StatusMethodNotAllowed,
		Type:    TypeInvalidRequest,
		Code:    CodeRequestNotIdempotent,
		Message: message,
	}
}

// NotFound 404
func NotFound(message string) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Type:    TypeNotFound,
		Code:    CodeNotFound,
		Message: message,
	}
}

// Internal 500，cause 仅用于日志
func Internal(err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Type:    TypeProcessingError,
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
