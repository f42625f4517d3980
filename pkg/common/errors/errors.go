// pkg/common/errors/errors.go

/*
  - 使用实例
    // 业务层返回带分类的错误:
    return errors.NotFound("post not found")

    // Web层统一映射状态码:
    status := errors.StatusOf(err)
*/
package errors

import (
	"errors"
	"fmt"
	"net/http"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// Kind 错误分类，对应HTTP状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:   "internal",
	KindValidation: "validation",
	KindAuth:       "auth",
	KindForbidden:  "forbidden",
	KindNotFound:   "not_found",
	KindConflict:   "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status 返回分类对应的HTTP状态码
// Conflict 沿用 400（重复的唯一字段）
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error 面向客户端的业务错误
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string // 字段级校验信息
	Err     error             // 原始错误，不对外暴露
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同类错误视为相等，便于 errors.Is(err, ErrPostNotFound) 判断
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func Auth(msg string) *Error      { return newError(KindAuth, msg) }
func Forbidden(msg string) *Error { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error  { return newError(KindNotFound, msg) }
func Conflict(msg string) *Error  { return newError(KindConflict, msg) }

// Internal 包装不可预期的内部错误
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// 定义原始错误
var (
	ErrUserNotFound   = NotFound("user not found")
	ErrPostNotFound   = NotFound("post not found")
	ErrDuplicateEntry = Conflict("user already exists")
	ErrInvalidID      = Validation("invalid id", nil)
	ErrInvalidLogin   = Validation("invalid email or password", nil)
	ErrStaleSession   = Auth("user no longer exists")
)

// KindOf 提取错误分类，未知错误一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf 将任意错误映射为HTTP状态码
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return KindOf(err).Status()
}

// Public 包装成 Hertz 错误类型，内部错误标记为私有
func Public(err error) *hzte.Error {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return hzte.New(err, hzte.ErrorTypePublic, e.Kind.String())
	}
	return hzte.New(err, hzte.ErrorTypePrivate, KindInternal.String())
}
