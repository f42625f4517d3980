package dao

import (
	"context"

	"social-blog/pkg/core/user/model"
)

// Avatar 头像字段更新
type Avatar struct {
	URL      string
	PublicID *string
}

// ProfileUpdate 资料更新，nil 字段保持不变
type ProfileUpdate struct {
	Username     *string
	PasswordHash *string
	Bio          *string
}

type UserRepository interface {
	QueryByID(ctx context.Context, id string) (model.User, error)
	QueryByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	IsUsernameExists(ctx context.Context, username string) (bool, error)
	IsEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (model.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar Avatar) error
	// DeleteCascade 删除用户及其博文、点赞，返回需要从图床清理的图片ID
	DeleteCascade(ctx context.Context, id string) ([]string, error)
}
