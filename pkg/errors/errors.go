package errors

import (
	"fmt"
	"net/http"
)

// 错误码
const (
	CodeSuccess         = 200
	CodeCreated         = 201
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInternalError   = 500
	CodeDatabaseError   = 501
	CodeAuthError       = 502
	CodeValidationError = 503
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound 资源不存在
func NotFound(format string, args ...interface{}) *AppError {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict 资源冲突
func Conflict(format string, args ...interface{}) *AppError {
	return New(CodeConflict, fmt.Sprintf(format, args...))
}

// BadRequest 请求参数错误
func BadRequest(format string, args ...interface{}) *AppError {
	return New(CodeBadRequest, fmt.Sprintf(format, args...))
}

// CodeOf 返回错误码, 非 AppError 视为内部错误
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternalError
}

// IsNotFound 是否为资源不存在
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsConflict 是否为资源冲突
func IsConflict(err error) bool {
	return CodeOf(err) == CodeConflict
}

// HTTPStatus 业务错误码 → HTTP 状态码
func HTTPStatus(code int) int {
	switch code {
	case CodeSuccess, CodeCreated, CodeBadRequest, CodeUnauthorized, CodeForbidden, CodeNotFound, CodeConflict:
		return code
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeAuthError:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrBadRequest      = New(CodeBadRequest, "请求参数错误")
	ErrUnauthorized    = New(CodeUnauthorized, "未授权")
	ErrForbidden       = New(CodeForbidden, "禁止访问")
	ErrNotFound        = New(CodeNotFound, "资源不存在")
	ErrConflict        = New(CodeConflict, "资源冲突")
	ErrInternalError   = New(CodeInternalError, "内部服务器错误")
	ErrDatabaseError   = New(CodeDatabaseError, "数据库错误")
	ErrAuthError       = New(CodeAuthError, "认证失败")
	ErrValidationError = New(CodeValidationError, "数据验证失败")

	// 具体业务错误
	ErrInvalidParams  = New(CodeBadRequest, "请求参数错误")
	ErrInvalidID      = New(CodeBadRequest, "无效的ID")
	ErrInvalidToken   = New(CodeUnauthorized, "无效的Token")
	ErrTokenExpired   = New(CodeUnauthorized, "Token已过期")
	ErrRecordNotFound = New(CodeNotFound, "记录不存在")
	ErrRecordExists   = New(CodeConflict, "记录已存在")
)
