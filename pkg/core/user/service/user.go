package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "social-blog/pkg/common/errors"
	"social-blog/pkg/common/validation"
	"social-blog/pkg/core/auth"
	"social-blog/pkg/core/media"
	"social-blog/pkg/core/user/model"
	"social-blog/pkg/core/user/repository/dao"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateInput struct {
	Username *string
	Password *string
	Bio      *string
}

// Session 登录或注册后返回给客户端的身份
type Session struct {
	User  model.User
	Token string
}

type UserService struct {
	repo   dao.UserRepository
	hasher *auth.Hasher
	issuer *auth.Issuer
	media  media.Host
}

func NewUserService(repo dao.UserRepository, hasher *auth.Hasher, issuer *auth.Issuer, host media.Host) *UserService {
	return &UserService{repo: repo, hasher: hasher, issuer: issuer, media: host}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	v := validation.Violations{}
	validation.Required("username", in.Username, v)
	validation.Length("username", in.Username, 2, 100, v)
	validation.Required("email", in.Email, v)
	validation.Length("email", in.Email, 5, 100, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.Length("password", in.Password, 8, 0, v)
	if err := v.Err(); err != nil {
		return Session{}, err
	}

	// 检查邮箱与用户名重复
	if exists, err := s.repo.IsEmailExists(ctx, in.Email); err != nil {
		return Session{}, err
	} else if exists {
		return Session{}, apperrors.ErrDuplicateEntry
	}
	if exists, err := s.repo.IsUsernameExists(ctx, in.Username); err != nil {
		return Session{}, err
	} else if exists {
		return Session{}, apperrors.ErrDuplicateEntry
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
	}
	// 唯一索引兜底并发注册
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return Session{}, err
	}

	token, err := s.issuer.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return Session{}, apperrors.Internal(fmt.Errorf("issue token: %w", err))
	}
	hlog.CtxInfof(ctx, "[USER] registered id=%s", user.ID)
	return Session{User: user, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)

	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Length("email", email, 5, 100, v)
	validation.Email("email", email, v)
	validation.Required("password", password, v)
	validation.Length("password", password, 8, 0, v)
	if err := v.Err(); err != nil {
		return Session{}, err
	}

	user, err := s.repo.QueryByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return Session{}, apperrors.ErrInvalidLogin
	}
	if err != nil {
		return Session{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return Session{}, apperrors.ErrInvalidLogin
		}
		return Session{}, apperrors.Internal(err)
	}

	token, err := s.issuer.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return Session{}, apperrors.Internal(fmt.Errorf("issue token: %w", err))
	}
	return Session{User: user, Token: token}, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (model.User, error) {
	return s.repo.QueryByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in UpdateInput) (model.User, error) {
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}

	v := validation.Violations{}
	validation.Optional(in.Username, func(val string) { validation.Length("username", val, 2, 100, v) })
	validation.Optional(in.Password, func(val string) { validation.Length("password", val, 8, 0, v) })
	if err := v.Err(); err != nil {
		return model.User{}, err
	}

	upd := dao.ProfileUpdate{Username: in.Username, Bio: in.Bio}
	if in.Password != nil {
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return model.User{}, apperrors.Internal(fmt.Errorf("hash password: %w", err))
		}
		upd.PasswordHash = &hashed
	}
	return s.repo.UpdateProfile(ctx, id, upd)
}

// UploadAvatar 上传新头像后更新记录，再清理旧头像
func (s *UserService) UploadAvatar(ctx context.Context, id, filename string, r io.Reader) (media.Image, error) {
	user, err := s.repo.QueryByID(ctx, id)
	if err != nil {
		return media.Image{}, err
	}

	img, err := s.media.Upload(ctx, filename, r)
	if err != nil {
		return media.Image{}, apperrors.Internal(fmt.Errorf("upload avatar: %w", err))
	}

	publicID := img.PublicID
	if err := s.repo.UpdateAvatar(ctx, id, dao.Avatar{URL: img.URL, PublicID: &publicID}); err != nil {
		s.cleanup(ctx, img.PublicID)
		return media.Image{}, err
	}

	if user.HasHostedAvatar() {
		s.cleanup(ctx, *user.AvatarPublicID)
	}
	return img, nil
}

// Delete 删除用户，级联删除其博文与点赞，并清理图床上的图片
func (s *UserService) Delete(ctx context.Context, id string) error {
	images, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}
	for _, publicID := range images {
		s.cleanup(ctx, publicID)
	}
	hlog.CtxInfof(ctx, "[USER] deleted id=%s images=%d", id, len(images))
	return nil
}

// cleanup 数据库已提交后的图片清理，失败只记录日志
func (s *UserService) cleanup(ctx context.Context, publicID string) {
	if err := s.media.Remove(ctx, publicID); err != nil {
		hlog.CtxWarnf(ctx, "[MEDIA] orphaned image %s: %v", publicID, err)
	}
}
