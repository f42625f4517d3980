package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	apperrors "social-blog/pkg/common/errors"
	postmodel "social-blog/pkg/core/post/model"
	"social-blog/pkg/core/user/model"
	"social-blog/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{})
}

// User查询方法实现
func (r *GormUserRepository) QueryByID(ctx context.Context, id string) (model.User, error) {
	var user model.User
	err := r.table(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return model.User{}, fmt.Errorf("user query failed: %w", apperrors.WrapGormError(err, apperrors.ErrUserNotFound))
	}
	return user, nil
}

func (r *GormUserRepository) QueryByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.table(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return model.User{}, fmt.Errorf("user lookup failed: %w", apperrors.WrapGormError(err, apperrors.ErrUserNotFound))
	}
	return user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.table(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user list failed: %w", apperrors.WrapGormError(err, nil))
	}
	return users, nil
}

// Check username existence
func (r *GormUserRepository) IsUsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.table(ctx).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username: %w", apperrors.WrapGormError(err, nil))
	}
	return count > 0, nil
}

// Check email existence
func (r *GormUserRepository) IsEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.table(ctx).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", apperrors.WrapGormError(err, nil))
	}
	return count > 0, nil
}

// Create new user with transaction
func (r *GormUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				return apperrors.ErrDuplicateEntry
			}
			return fmt.Errorf("user creation failed: %w", apperrors.WrapGormError(err, nil))
		}
		return nil
	})
}

// UpdateProfile 单条UPDATE语句，依赖数据库的单行原子性
// MySQL 对未变化的行返回 RowsAffected=0，因此先确认记录存在
func (r *GormUserRepository) UpdateProfile(ctx context.Context, id string, upd dao.ProfileUpdate) (model.User, error) {
	if _, err := r.QueryByID(ctx, id); err != nil {
		return model.User{}, err
	}

	fields := map[string]interface{}{}
	if upd.Username != nil {
		fields["username"] = *upd.Username
	}
	if upd.PasswordHash != nil {
		fields["password_hash"] = *upd.PasswordHash
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}

	if len(fields) > 0 {
		result := r.table(ctx).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			if apperrors.IsDuplicateError(result.Error) {
				return model.User{}, apperrors.ErrDuplicateEntry
			}
			return model.User{}, fmt.Errorf("profile update failed: %w", apperrors.WrapGormError(result.Error, nil))
		}
	}
	return r.QueryByID(ctx, id)
}

func (r *GormUserRepository) UpdateAvatar(ctx context.Context, id string, avatar dao.Avatar) error {
	if _, err := r.QueryByID(ctx, id); err != nil {
		return err
	}
	result := r.table(ctx).Where("id = ?", id).Updates(map[string]interface{}{
		"avatar_url":       avatar.URL,
		"avatar_public_id": avatar.PublicID,
	})
	if result.Error != nil {
		return fmt.Errorf("avatar update failed: %w", apperrors.WrapGormError(result.Error, nil))
	}
	return nil
}

// DeleteCascade 在一个事务内删除用户、其博文、相关点赞
func (r *GormUserRepository) DeleteCascade(ctx context.Context, id string) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return apperrors.WrapGormError(err, apperrors.ErrUserNotFound)
		}

		var posts []postmodel.Post
		if err := tx.Select("id", "image_public_id").Where("owner_id = ?", id).Find(&posts).Error; err != nil {
			return apperrors.WrapGormError(err, nil)
		}
		postIDs := make([]string, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
			if p.ImagePublicID != "" {
				images = append(images, p.ImagePublicID)
			}
		}

		// 用户在其他博文上的点赞
		if err := tx.Where("user_id = ?", id).Delete(&postmodel.Like{}).Error; err != nil {
			return apperrors.WrapGormError(err, nil)
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&postmodel.Like{}).Error; err != nil {
				return apperrors.WrapGormError(err, nil)
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&postmodel.Post{}).Error; err != nil {
				return apperrors.WrapGormError(err, nil)
			}
		}
		if err := tx.Delete(&model.User{}, "id = ?", id).Error; err != nil {
			return apperrors.WrapGormError(err, nil)
		}

		if user.HasHostedAvatar() {
			images = append(images, *user.AvatarPublicID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("user deletion failed: %w", err)
	}
	return images, nil
}
