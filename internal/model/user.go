package model

import "time"

type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UID       string    `gorm:"column:uid;size:128;uniqueIndex;not null" json:"uid"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Name      string    `gorm:"size:120" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (User) ReferenceKind() Kind {
	return KindUser
}

func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
