package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAvatarURL 未上传头像时使用的默认图片
const DefaultAvatarURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/5/59/User-avatar.svg/2048px-User-avatar.svg.png"

type User struct {
	ID                string    `gorm:"type:varchar(36);primaryKey"`
	Username          string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Email             string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash      string    `gorm:"type:varchar(255);not null"`
	AvatarURL         string    `gorm:"type:varchar(512);not null"`
	AvatarPublicID    *string   `gorm:"type:varchar(255)"` // nil 表示默认头像
	Bio               string    `gorm:"type:text"`
	IsAdmin           bool      `gorm:"default:false;index"`
	IsAccountVerified bool      `gorm:"default:false"`
	CreatedAt         time.Time `gorm:"index;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "base_users"
}

// BeforeCreate 分配主键并补全默认头像
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.AvatarURL == "" {
		u.AvatarURL = DefaultAvatarURL
	}
	return nil
}

// HasHostedAvatar 头像是否托管在图床上
func (u *User) HasHostedAvatar() bool {
	return u.AvatarPublicID != nil && *u.AvatarPublicID != ""
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
