package dao

import (
	"context"

	"social-blog/pkg/core/post/model"
)

// PostUpdate 博文字段更新，nil 字段保持不变
type PostUpdate struct {
	Title       *string
	Description *string
	Category    *string
}

type PostRepository interface {
	// OwnerOf 只读取 owner_id，用于鉴权
	OwnerOf(ctx context.Context, id string) (string, error)
	QueryByID(ctx context.Context, id string) (model.Post, error)
	List(ctx context.Context, filter model.Filter) ([]model.Post, error)
	Count(ctx context.Context) (int64, error)
	CreatePost(ctx context.Context, post *model.Post) error
	UpdateFields(ctx context.Context, id string, upd PostUpdate) (model.Post, error)
	UpdateImage(ctx context.Context, id, url, publicID string) (model.Post, error)
	// Delete 删除博文及其点赞，返回被删除的博文
	Delete(ctx context.Context, id string) (model.Post, error)
	// ToggleLike 已点赞则取消，否则点赞
	ToggleLike(ctx context.Context, postID, userID string) (model.Post, error)
}
