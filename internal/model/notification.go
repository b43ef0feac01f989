package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification records that something happened to or about an object.
//
// Text is optional; when empty the display text is synthesized from the
// creating user, the action and the about reference. AboutKind/AboutID
// form a generic reference and must be set together or not at all.
type Notification struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Token         string    `gorm:"size:36;uniqueIndex;not null" json:"token"`
	Text          *string   `gorm:"type:text" json:"text,omitempty"`
	AboutKind     *Kind     `gorm:"column:about_kind;size:50;index:idx_notifications_about" json:"aboutKind,omitempty"`
	AboutID       *uint64   `gorm:"column:about_id;index:idx_notifications_about" json:"aboutId,omitempty"`
	Source        Source    `gorm:"size:20;not null" json:"source"`
	Action        Action    `gorm:"size:20;not null" json:"action"`
	CreatedUserID uint64    `gorm:"index;not null" json:"createdUserId"`
	CreatedUser   *User     `gorm:"foreignKey:CreatedUserID" json:"createdUser,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.Token == "" {
		n.Token = uuid.NewString()
	}
	return nil
}

// BeforeSave keeps the enum columns closed and the about pair complete.
func (n *Notification) BeforeSave(tx *gorm.DB) error {
	if !n.Action.Valid() {
		return fmt.Errorf("notification action %q is not a valid action", n.Action)
	}
	if !n.Source.Valid() {
		return fmt.Errorf("notification source %q is not a valid source", n.Source)
	}
	if (n.AboutKind == nil) != (n.AboutID == nil) {
		return fmt.Errorf("notification about reference must set both kind and id or neither")
	}
	return nil
}

// IsComment reports whether the notification is a user comment.
func (n *Notification) IsComment() bool {
	return n.Action == ActionCommented
}

// IsActivity reports whether the notification was generated by the
// system rather than written by a user.
func (n *Notification) IsActivity() bool {
	return n.Source == SourceSystem
}

// About returns the generic reference, or false when the notification
// is not about anything.
func (n *Notification) About() (Ref, bool) {
	if n.AboutKind == nil || n.AboutID == nil {
		return Ref{}, false
	}
	return Ref{Kind: *n.AboutKind, ID: *n.AboutID}, true
}

func (n *Notification) AbsoluteURL() string {
	return fmt.Sprintf("/notifications/%s", n.Token)
}

func (n *Notification) EditURL() string {
	return fmt.Sprintf("/notifications/%s/edit", n.Token)
}

func (n *Notification) DeleteURL() string {
	return fmt.Sprintf("/notifications/%s/delete", n.Token)
}

// NotificationReply is one threaded response to a notification.
// ReplyToID points at an earlier reply of the same notification.
type NotificationReply struct {
	ID             uint64             `gorm:"primaryKey;autoIncrement" json:"id"`
	NotificationID uint64             `gorm:"index;not null" json:"notificationId"`
	Notification   *Notification      `gorm:"foreignKey:NotificationID" json:"-"`
	ReplyToID      *uint64            `gorm:"column:reply_to_id" json:"replyToId,omitempty"`
	ReplyTo        *NotificationReply `gorm:"foreignKey:ReplyToID" json:"-"`
	Text           string             `gorm:"size:500;not null" json:"text"`
	CreatedUserID  uint64             `gorm:"index;not null" json:"createdUserId"`
	CreatedUser    *User              `gorm:"foreignKey:CreatedUserID" json:"createdUser,omitempty"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (NotificationReply) TableName() string {
	return "notification_replies"
}

func (r *NotificationReply) AbsoluteURL() string {
	return fmt.Sprintf("/notifications/%d/replies/%d", r.NotificationID, r.ID)
}

// NotificationFor marks a generic object (usually a user) the
// notification is relevant to.
type NotificationFor struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	NotificationID uint64    `gorm:"index;not null" json:"notificationId"`
	Kind           Kind      `gorm:"size:50;not null" json:"kind"`
	ObjectID       uint64    `gorm:"column:object_id;not null" json:"objectId"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (NotificationFor) TableName() string {
	return "notification_fors"
}

func (f *NotificationFor) Ref() Ref {
	return Ref{Kind: f.Kind, ID: f.ObjectID}
}

func (f *NotificationFor) String() string {
	return fmt.Sprintf("%s %d", f.Kind, f.ObjectID)
}
