package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "social-blog/pkg/common/errors"
	"social-blog/pkg/common/validation"
	"social-blog/pkg/core/media"
	"social-blog/pkg/core/post/model"
	"social-blog/pkg/core/post/repository/dao"
)

type CreateInput struct {
	Title       string
	Description string
	Category    string
}

type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
}

// Image 待上传的图片
type Image struct {
	Filename string
	Body     io.Reader
}

type PostService struct {
	repo  dao.PostRepository
	media media.Host
}

func NewPostService(repo dao.PostRepository, host media.Host) *PostService {
	return &PostService{repo: repo, media: host}
}

// ParseFilter 解析列表查询参数，pageNumber 必须是正整数
func ParseFilter(category, pageNumber string) (model.Filter, error) {
	filter := model.Filter{Category: strings.TrimSpace(category)}
	if pageNumber == "" {
		return filter, nil
	}
	page, err := strconv.Atoi(pageNumber)
	if err != nil || page < 1 {
		return model.Filter{}, apperrors.Validation("invalid page number", map[string]string{"pageNumber": "invalid"})
	}
	filter.Page = page
	return filter, nil
}

func (s *PostService) List(ctx context.Context, filter model.Filter) ([]model.Post, error) {
	return s.repo.List(ctx, filter)
}

func (s *PostService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *PostService) Get(ctx context.Context, id string) (model.Post, error) {
	return s.repo.QueryByID(ctx, id)
}

// OwnerOf 供鉴权链解析博文归属
func (s *PostService) OwnerOf(ctx context.Context, id string) (string, error) {
	return s.repo.OwnerOf(ctx, id)
}

func (s *PostService) Create(ctx context.Context, ownerID string, in CreateInput, img Image) (model.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Length("title", in.Title, 2, 200, v)
	validation.Required("description", in.Description, v)
	validation.Length("description", in.Description, 10, 0, v)
	validation.Required("category", in.Category, v)
	if err := v.Err(); err != nil {
		return model.Post{}, err
	}

	uploaded, err := s.media.Upload(ctx, img.Filename, img.Body)
	if err != nil {
		return model.Post{}, apperrors.Internal(fmt.Errorf("upload post image: %w", err))
	}

	post := model.Post{
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		OwnerID:       ownerID,
		ImageURL:      uploaded.URL,
		ImagePublicID: uploaded.PublicID,
	}
	if err := s.repo.CreatePost(ctx, &post); err != nil {
		s.cleanup(ctx, uploaded.PublicID)
		return model.Post{}, err
	}
	hlog.CtxInfof(ctx, "[POST] created id=%s owner=%s", post.ID, ownerID)
	return s.repo.QueryByID(ctx, post.ID)
}

func (s *PostService) UpdateFields(ctx context.Context, id string, in UpdateInput) (model.Post, error) {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		t := strings.TrimSpace(*p)
		return &t
	}
	in.Title, in.Description, in.Category = trim(in.Title), trim(in.Description), trim(in.Category)

	v := validation.Violations{}
	validation.Optional(in.Title, func(val string) { validation.Length("title", val, 2, 200, v) })
	validation.Optional(in.Description, func(val string) { validation.Length("description", val, 10, 0, v) })
	validation.Optional(in.Category, func(val string) { validation.Required("category", val, v) })
	if err := v.Err(); err != nil {
		return model.Post{}, err
	}

	return s.repo.UpdateFields(ctx, id, dao.PostUpdate{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
	})
}

// ReplaceImage 先上传新图并更新记录，再删除旧图
func (s *PostService) ReplaceImage(ctx context.Context, id string, img Image) (model.Post, error) {
	current, err := s.repo.QueryByID(ctx, id)
	if err != nil {
		return model.Post{}, err
	}

	uploaded, err := s.media.Upload(ctx, img.Filename, img.Body)
	if err != nil {
		return model.Post{}, apperrors.Internal(fmt.Errorf("upload post image: %w", err))
	}

	post, err := s.repo.UpdateImage(ctx, id, uploaded.URL, uploaded.PublicID)
	if err != nil {
		s.cleanup(ctx, uploaded.PublicID)
		return model.Post{}, err
	}
	s.cleanup(ctx, current.ImagePublicID)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id string) (model.Post, error) {
	post, err := s.repo.Delete(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	s.cleanup(ctx, post.ImagePublicID)
	hlog.CtxInfof(ctx, "[POST] deleted id=%s", id)
	return post, nil
}

func (s *PostService) ToggleLike(ctx context.Context, id, userID string) (model.Post, error) {
	post, err := s.repo.ToggleLike(ctx, id, userID)
	if err != nil {
		return model.Post{}, err
	}
	hlog.CtxDebugf(ctx, "[POST] like id=%s user=%s liked=%t", id, userID, post.LikedBy(userID))
	return post, nil
}

// cleanup 数据库已提交后的图片清理，失败只记录日志
func (s *PostService) cleanup(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.media.Remove(ctx, publicID); err != nil {
		hlog.CtxWarnf(ctx, "[MEDIA] orphaned image %s: %v", publicID, err)
	}
}
