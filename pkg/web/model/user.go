package model

import (
	"time"

	"social-blog/pkg/core/media"
	usermodel "social-blog/pkg/core/user/model"
	"social-blog/pkg/core/user/service"
)

// 请求/响应数据结构
type (
	RegisterReq struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginReq struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// UpdateProfileReq 省略的字段保持不变
	UpdateProfileReq struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
	}

	AvatarRes struct {
		URL      string  `json:"url"`
		PublicID *string `json:"publicId"`
	}

	// UserRes 不包含密码哈希
	UserRes struct {
		ID                string    `json:"id"`
		Username          string    `json:"username"`
		Email             string    `json:"email"`
		Avatar            AvatarRes `json:"avatar"`
		Bio               string    `json:"bio"`
		IsAdmin           bool      `json:"isAdmin"`
		IsAccountVerified bool      `json:"isAccountVerified"`
		CreatedAt         time.Time `json:"createdAt"`
		UpdatedAt         time.Time `json:"updatedAt"`
	}

	RegisterRes struct {
		Message string  `json:"message"`
		User    UserRes `json:"user"`
		Token   string  `json:"token"`
	}

	LoginRes struct {
		ID                string    `json:"id"`
		Username          string    `json:"username"`
		IsAdmin           bool      `json:"isAdmin"`
		Avatar            AvatarRes `json:"avatar"`
		IsAccountVerified bool      `json:"isAccountVerified"`
		Token             string    `json:"token"`
	}

	AvatarUploadRes struct {
		Message string      `json:"message"`
		Avatar  media.Image `json:"avatar"`
	}
)

func (r RegisterReq) Input() service.RegisterInput {
	return service.RegisterInput{Username: r.Username, Email: r.Email, Password: r.Password}
}

func (r UpdateProfileReq) Input() service.UpdateInput {
	return service.UpdateInput{Username: r.Username, Password: r.Password, Bio: r.Bio}
}

func NewUserRes(u usermodel.User) UserRes {
	return UserRes{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Avatar:            AvatarRes{URL: u.AvatarURL, PublicID: u.AvatarPublicID},
		Bio:               u.Bio,
		IsAdmin:           u.IsAdmin,
		IsAccountVerified: u.IsAccountVerified,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func NewUserList(users []usermodel.User) []UserRes {
	out := make([]UserRes, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserRes(u))
	}
	return out
}

func NewLoginRes(s service.Session) LoginRes {
	return LoginRes{
		ID:                s.User.ID,
		Username:          s.User.Username,
		IsAdmin:           s.User.IsAdmin,
		Avatar:            AvatarRes{URL: s.User.AvatarURL, PublicID: s.User.AvatarPublicID},
		IsAccountVerified: s.User.IsAccountVerified,
		Token:             s.Token,
	}
}
