package models

import "time"

// UserProfile is created alongside the account at registration.
type UserProfile struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
