package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"social-blog/pkg/core/user/service"
	"social-blog/pkg/web/model"
)

type AuthHandler struct {
	users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Register(c context.Context, ctx *app.RequestContext) {
	var req model.RegisterReq
	if err := ctx.BindAndValidate(&req); err != nil {
		respondError(c, ctx, errBadBody)
		return
	}

	session, err := h.users.Register(c, req.Input())
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	ctx.JSON(201, model.RegisterRes{
		Message: "user registered successfully",
		User:    model.NewUserRes(session.User),
		Token:   session.Token,
	})
}

func (h *AuthHandler) Login(c context.Context, ctx *app.RequestContext) {
	var req model.LoginReq
	if err := ctx.BindAndValidate(&req); err != nil {
		respondError(c, ctx, errBadBody)
		return
	}

	session, err := h.users.Login(c, req.Email, req.Password)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewLoginRes(session))
}
