package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "social-blog/pkg/common/errors"
	"social-blog/pkg/core/post/model"
	"social-blog/pkg/core/post/repository/dao"
	usermodel "social-blog/pkg/core/user/model"
)

type GormPostRepository struct {
	db *gorm.DB
}

var _ dao.PostRepository = (*GormPostRepository)(nil)

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// withRelations 加载作者与点赞集合
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner").
		Preload("Likes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, user_id ASC")
		})
}

func (r *GormPostRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Select("owner_id").Where("id = ?", id).First(&post).Error
	if err != nil {
		return "", fmt.Errorf("owner lookup failed: %w", apperrors.WrapGormError(err, apperrors.ErrPostNotFound))
	}
	return post.OwnerID, nil
}

func (r *GormPostRepository) QueryByID(ctx context.Context, id string) (model.Post, error) {
	var post model.Post
	err := withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&post).Error
	if err != nil {
		return model.Post{}, fmt.Errorf("post query failed: %w", apperrors.WrapGormError(err, apperrors.ErrPostNotFound))
	}
	return post, nil
}

// List 按创建时间倒序，同一时刻按 id 倒序保证分页稳定，Page>0 时按 PageSize 分页
func (r *GormPostRepository) List(ctx context.Context, filter model.Filter) ([]model.Post, error) {
	q := withRelations(r.db.WithContext(ctx)).Order("created_at DESC, id DESC")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Page > 0 {
		q = q.Offset((filter.Page - 1) * model.PageSize).Limit(model.PageSize)
	}

	posts := []model.Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("post list failed: %w", apperrors.WrapGormError(err, nil))
	}
	return posts, nil
}

func (r *GormPostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("post count failed: %w", apperrors.WrapGormError(err, nil))
	}
	return count, nil
}

// requireUser 写入前确认用户仍然存在，已删除用户的令牌返回 401
func requireUser(tx *gorm.DB, userID string) error {
	var n int64
	if err := tx.Model(&usermodel.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return apperrors.WrapGormError(err, nil)
	}
	if n == 0 {
		return apperrors.ErrStaleSession
	}
	return nil
}

func (r *GormPostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, post.OwnerID); err != nil {
			return err
		}
		return apperrors.WrapGormError(tx.Omit(clause.Associations).Create(post).Error, nil)
	})
	if err != nil {
		return fmt.Errorf("post creation failed: %w", err)
	}
	return nil
}

func (r *GormPostRepository) UpdateFields(ctx context.Context, id string, upd dao.PostUpdate) (model.Post, error) {
	fields := map[string]interface{}{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	return r.update(ctx, id, fields)
}

func (r *GormPostRepository) UpdateImage(ctx context.Context, id, url, publicID string) (model.Post, error) {
	return r.update(ctx, id, map[string]interface{}{
		"image_url":       url,
		"image_public_id": publicID,
	})
}

func (r *GormPostRepository) update(ctx context.Context, id string, fields map[string]interface{}) (model.Post, error) {
	if _, err := r.OwnerOf(ctx, id); err != nil {
		return model.Post{}, err
	}
	if len(fields) > 0 {
		err := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			return model.Post{}, fmt.Errorf("post update failed: %w", apperrors.WrapGormError(err, nil))
		}
	}
	return r.QueryByID(ctx, id)
}

func (r *GormPostRepository) Delete(ctx context.Context, id string) (model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			return apperrors.WrapGormError(err, apperrors.ErrPostNotFound)
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return apperrors.WrapGormError(err, nil)
		}
		result := tx.Where("id = ?", id).Delete(&model.Post{})
		if result.Error != nil {
			return apperrors.WrapGormError(result.Error, nil)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrPostNotFound
		}
		return nil
	})
	if err != nil {
		return model.Post{}, fmt.Errorf("post deletion failed: %w", err)
	}
	return post, nil
}

// ToggleLike 事务内先确认点赞用户存在，DELETE 命中则视为取消点赞，
// 否则 INSERT ... ON CONFLICT DO NOTHING 写入点赞
func (r *GormPostRepository) ToggleLike(ctx context.Context, postID, userID string) (model.Post, error) {
	if _, err := r.OwnerOf(ctx, postID); err != nil {
		return model.Post{}, err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{})
		if result.Error != nil {
			return apperrors.WrapGormError(result.Error, nil)
		}
		if result.RowsAffected > 0 {
			return nil
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Like{PostID: postID, UserID: userID}).Error
		return apperrors.WrapGormError(err, nil)
	})
	if err != nil {
		return model.Post{}, fmt.Errorf("toggle like failed: %w", err)
	}
	return r.QueryByID(ctx, postID)
}
