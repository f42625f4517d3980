// Package render writes the unified JSON error body used by handlers and
// middleware.
package render

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"

	apperrors "social-blog/pkg/common/errors"
)

// Error 统一错误响应：{"code","message"[,"details"]}
// 内部错误只记录日志，不向客户端暴露细节
func Error(c context.Context, ctx *app.RequestContext, err error) {
	status := apperrors.StatusOf(err)
	message := "internal server error"

	var appErr *apperrors.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		message = "service unavailable"
	case errors.As(err, &appErr) && appErr.Kind != apperrors.KindInternal:
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		hlog.CtxErrorf(c, "[%s %s] %v", ctx.Method(), ctx.Path(), err)
	}
	_ = ctx.Error(apperrors.Public(err))

	body := utils.H{
		"code":    status,
		"message": message,
	}
	if appErr != nil && len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	ctx.AbortWithStatusJSON(status, body)
}

// Message 直接返回指定状态码与消息
func Message(ctx *app.RequestContext, status int, message string) {
	ctx.AbortWithStatusJSON(status, utils.H{
		"code":    status,
		"message": message,
	})
}
