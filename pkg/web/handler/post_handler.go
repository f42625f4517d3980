package handler

import (
	"context"
	"mime/multipart"

	"github.com/cloudwego/hertz/pkg/app"

	postmodel "social-blog/pkg/core/post/model"
	"social-blog/pkg/core/post/service"
	"social-blog/pkg/web/model"
)

type PostHandler struct {
	posts        *service.PostService
	maxImageSize int64
}

func NewPostHandler(posts *service.PostService, maxImageSize int64) *PostHandler {
	return &PostHandler{posts: posts, maxImageSize: maxImageSize}
}

// List 支持 category 与 pageNumber 查询参数
func (h *PostHandler) List(c context.Context, ctx *app.RequestContext) {
	filter, err := service.ParseFilter(ctx.Query("category"), ctx.Query("pageNumber"))
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	posts, err := h.posts.List(c, filter)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewPostList(posts))
}

func (h *PostHandler) Count(c context.Context, ctx *app.RequestContext) {
	count, err := h.posts.Count(c)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, count)
}

func (h *PostHandler) Get(c context.Context, ctx *app.RequestContext) {
	post, err := h.posts.Get(c, ctx.Param("id"))
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewPostRes(post))
}

// Create multipart 表单：image 文件 + title/description/category
func (h *PostHandler) Create(c context.Context, ctx *app.RequestContext) {
	claims, ok := caller(c, ctx)
	if !ok {
		return
	}

	req := model.CreatePostReq{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		Category:    ctx.PostForm("category"),
	}

	var post postmodel.Post
	err := withImage(ctx, h.maxImageSize, func(filename string, f multipart.File) error {
		var err error
		post, err = h.posts.Create(c, claims.UserID, req.Input(), service.Image{Filename: filename, Body: f})
		return err
	})
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(201, model.NewPostRes(post))
}

func (h *PostHandler) Update(c context.Context, ctx *app.RequestContext) {
	var req model.UpdatePostReq
	if err := ctx.BindAndValidate(&req); err != nil {
		respondError(c, ctx, errBadBody)
		return
	}

	post, err := h.posts.UpdateFields(c, ctx.Param("id"), req.Input())
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewPostRes(post))
}

func (h *PostHandler) UploadImage(c context.Context, ctx *app.RequestContext) {
	var post postmodel.Post
	err := withImage(ctx, h.maxImageSize, func(filename string, f multipart.File) error {
		var err error
		post, err = h.posts.ReplaceImage(c, ctx.Param("id"), service.Image{Filename: filename, Body: f})
		return err
	})
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewPostRes(post))
}

func (h *PostHandler) Delete(c context.Context, ctx *app.RequestContext) {
	post, err := h.posts.Delete(c, ctx.Param("id"))
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.DeletePostRes{
		Message: "post has been deleted successfully",
		PostID:  post.ID,
	})
}

// ToggleLike 已点赞则取消，否则点赞
func (h *PostHandler) ToggleLike(c context.Context, ctx *app.RequestContext) {
	claims, ok := caller(c, ctx)
	if !ok {
		return
	}

	post, err := h.posts.ToggleLike(c, ctx.Param("id"), claims.UserID)
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	ctx.JSON(200, model.NewPostRes(post))
}
