package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Activity is one row of the feed: an action recorded against a domain
// object.
type Activity struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Text          *string   `gorm:"type:text" json:"text,omitempty"`
	AboutKind     *Kind     `gorm:"column:about_kind;size:50;index:idx_activities_about" json:"aboutKind,omitempty"`
	AboutID       *uint64   `gorm:"column:about_id;index:idx_activities_about" json:"aboutId,omitempty"`
	Source        Source    `gorm:"size:20;not null" json:"source"`
	Action        Action    `gorm:"size:20;not null" json:"action"`
	CreatedUserID uint64    `gorm:"index;not null" json:"createdUserId"`
	CreatedUser   *User     `gorm:"foreignKey:CreatedUserID" json:"createdUser,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Activity) TableName() string {
	return "activities"
}

// BeforeSave rejects action values outside the closed set, so bad rows
// never reach the table.
func (a *Activity) BeforeSave(tx *gorm.DB) error {
	if !a.Action.Valid() {
		return fmt.Errorf("activity action %q is not a valid action", a.Action)
	}
	if !a.Source.Valid() {
		return fmt.Errorf("activity source %q is not a valid source", a.Source)
	}
	if (a.AboutKind == nil) != (a.AboutID == nil) {
		return fmt.Errorf("activity about reference must set both kind and id or neither")
	}
	return nil
}

func (a *Activity) About() (Ref, bool) {
	if a.AboutKind == nil || a.AboutID == nil {
		return Ref{}, false
	}
	return Ref{Kind: *a.AboutKind, ID: *a.AboutID}, true
}
