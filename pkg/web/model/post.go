package model

import (
	"time"

	"social-blog/pkg/core/media"
	postmodel "social-blog/pkg/core/post/model"
	"social-blog/pkg/core/post/service"
)

type (
	// CreatePostReq multipart 表单字段，图片单独读取
	CreatePostReq struct {
		Title       string `form:"title" json:"title"`
		Description string `form:"description" json:"description"`
		Category    string `form:"category" json:"category"`
	}

	UpdatePostReq struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
	}

	PostRes struct {
		ID          string      `json:"id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Category    string      `json:"category"`
		OwnerID     string      `json:"ownerId"`
		User        *UserRes    `json:"user"` // 作者已删除时为 null
		Image       media.Image `json:"image"`
		Likes       []string    `json:"likes"`
		CreatedAt   time.Time   `json:"createdAt"`
		UpdatedAt   time.Time   `json:"updatedAt"`
	}

	DeletePostRes struct {
		Message string `json:"message"`
		PostID  string `json:"postId"`
	}
)

func (r CreatePostReq) Input() service.CreateInput {
	return service.CreateInput{Title: r.Title, Description: r.Description, Category: r.Category}
}

func (r UpdatePostReq) Input() service.UpdateInput {
	return service.UpdateInput{Title: r.Title, Description: r.Description, Category: r.Category}
}

func NewPostRes(p postmodel.Post) PostRes {
	res := PostRes{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		OwnerID:     p.OwnerID,
		Image:       media.Image{URL: p.ImageURL, PublicID: p.ImagePublicID},
		Likes:       p.LikerIDs(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Owner != nil && p.Owner.ID != "" {
		owner := NewUserRes(*p.Owner)
		res.User = &owner
	}
	return res
}

func NewPostList(posts []postmodel.Post) []PostRes {
	out := make([]PostRes, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostRes(p))
	}
	return out
}
