package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	usermodel "social-blog/pkg/core/user/model"
)

// PageSize 列表分页大小
const PageSize = 3

type Post struct {
	ID            string          `gorm:"type:varchar(36);primaryKey"`
	Title         string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text;not null"`
	Category      string          `gorm:"type:varchar(100);not null;index"`
	OwnerID       string          `gorm:"type:varchar(36);not null;index"`
	Owner         *usermodel.User `gorm:"foreignKey:OwnerID"`
	ImageURL      string          `gorm:"type:varchar(512);not null"`
	ImagePublicID string          `gorm:"type:varchar(255);not null"`
	Likes         []Like          `gorm:"foreignKey:PostID"`
	CreatedAt     time.Time       `gorm:"precision:6;index;autoCreateTime"` // 微秒精度，列表排序依赖
	UpdatedAt     time.Time       `gorm:"precision:6;autoUpdateTime"`
}

// Like 点赞集合，复合主键保证同一用户只出现一次
type Like struct {
	PostID    string    `gorm:"type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time `gorm:"precision:6;autoCreateTime"`
}

func (Post) TableName() string { return "posts" }
func (Like) TableName() string { return "post_likes" }

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// LikerIDs 点赞用户ID，按点赞时间排序
func (p *Post) LikerIDs() []string {
	ids := make([]string, 0, len(p.Likes))
	for _, l := range p.Likes {
		ids = append(ids, l.UserID)
	}
	return ids
}

// LikedBy 判断用户是否已点赞
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// Filter 列表查询条件
type Filter struct {
	Category string
	Page     int // 0 表示不分页
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Post{}, &Like{})
}
