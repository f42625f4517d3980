package handler

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	apperrors "social-blog/pkg/common/errors"
	"social-blog/pkg/core/auth"
	"social-blog/pkg/core/policy"
	"social-blog/pkg/web/middleware"
	"social-blog/pkg/web/render"
)

const imageField = "image"

var (
	errBadBody     = apperrors.Validation("invalid request body", nil)
	errNoImage     = apperrors.Validation("no image provided", nil)
	errImageFormat = apperrors.Validation("unsupported file format", nil)
	errImageSize   = apperrors.Validation("image too large", nil)
)

// 统一错误响应方法
func respondError(c context.Context, ctx *app.RequestContext, err error) {
	render.Error(c, ctx, err)
}

// caller 读取鉴权链写入的身份
func caller(c context.Context, ctx *app.RequestContext) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		respondError(c, ctx, policy.ErrTokenMissing)
	}
	return claims, ok
}

// formImage 校验 multipart 中的 image 字段：必须存在、为 image/* 且不超过上限
func formImage(ctx *app.RequestContext, maxSize int64) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile(imageField)
	if err != nil || fh == nil {
		return nil, errNoImage
	}
	if !strings.HasPrefix(strings.ToLower(fh.Header.Get("Content-Type")), "image/") {
		return nil, errImageFormat
	}
	if maxSize > 0 && fh.Size > maxSize {
		return nil, errImageSize
	}
	return fh, nil
}

// withImage 打开已校验的图片并交给 fn
func withImage(ctx *app.RequestContext, maxSize int64, fn func(filename string, f multipart.File) error) error {
	fh, err := formImage(ctx, maxSize)
	if err != nil {
		return err
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.Internal(err)
	}
	defer f.Close()
	return fn(fh.Filename, f)
}
