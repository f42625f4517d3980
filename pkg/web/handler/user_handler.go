package handler

import (
	"context"
	"mime/multipart"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"

	"social-blog/pkg/core/media"
	"social-blog/pkg/core/user/service"
	"social-blog/pkg/web/model"
)

type UserHandler struct {
	users        *service.UserService
	maxImageSize int64
}

func NewUserHandler(users *service.UserService, maxImageSize int64) *UserHandler {
	return &UserHandler{users: users, maxImageSize: maxImageSize}
}

// List 仅管理员可用
func (h *UserHandler) List(c context.Context, ctx *app.RequestContext) {
	users, err := h.users.List(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, utils.H{"users": model.NewUserList(users)})
}

func (h *UserHandler) Get(c context.Context, ctx *app.RequestContext) {
	user, err := h.users.Get(c, ctx.Param("id"))
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewUserRes(user))
}

func (h *UserHandler) Update(c context.Context, ctx *app.RequestContext) {
	var req model.UpdateProfileReq
	if err := ctx.BindAndValidate(&req); err != nil {
		respondError(c, ctx, errBadBody)
		return
	}

	user, err := h.users.UpdateProfile(c, ctx.Param("id"), req.Input())
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewUserRes(user))
}

func (h *UserHandler) Delete(c context.Context, ctx *app.RequestContext) {
	if err := h.users.Delete(c, ctx.Param("id")); err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, utils.H{"message": "your profile has been deleted"})
}

// UploadPhoto 上传当前用户的头像
func (h *UserHandler) UploadPhoto(c context.Context, ctx *app.RequestContext) {
	claims, ok := caller(c, ctx)
	if !ok {
		return
	}

	var avatar media.Image
	err := withImage(ctx, h.maxImageSize, func(filename string, f multipart.File) error {
		var err error
		avatar, err = h.users.UploadAvatar(c, claims.UserID, filename, f)
		return err
	})
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	ctx.JSON(200, model.AvatarUploadRes{
		Message: "your profile photo uploaded successfully",
		Avatar:  avatar,
	})
}
