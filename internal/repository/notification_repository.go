package repository

import (
	"context"
	"errors"

	"github.com/shinyyama/activities-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id uint64) (*model.Notification, error)
	FindByToken(ctx context.Context, token string) (*model.Notification, error)
	ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Notification, int64, error)
	Delete(ctx context.Context, id uint64) error

	CreateReply(ctx context.Context, reply *model.NotificationReply) error
	Replies(ctx context.Context, notificationID uint64) ([]model.NotificationReply, error)
	ReplyByID(ctx context.Context, notificationID, replyID uint64) (*model.NotificationReply, error)
	DeleteReply(ctx context.Context, notificationID, replyID uint64) error

	AddFor(ctx context.Context, entry *model.NotificationFor) error
	ForEntries(ctx context.Context, notificationID uint64) ([]model.NotificationFor, error)

	SetDB(db *gorm.DB)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint64) (*model.Notification, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var n model.Notification
	if err := r.db.WithContext(ctx).
		Preload("CreatedUser").
		First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) FindByToken(ctx context.Context, token string) (*model.Notification, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var n model.Notification
	if err := r.db.WithContext(ctx).
		Preload("CreatedUser").
		Where("token = ?", token).
		First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListForUser pages the notifications whose for-set contains the user,
// newest first.
func (r *notificationRepository) ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Notification, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	const forUserJoin = "JOIN notification_fors nf ON nf.notification_id = notifications.id"

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Joins(forUserJoin).
		Where("nf.kind = ? AND nf.object_id = ?", model.KindUser, userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Notification
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Joins(forUserJoin).
		Where("nf.kind = ? AND nf.object_id = ?", model.KindUser, userID).
		Preload("CreatedUser").
		Order("notifications.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Delete removes the notification with its replies and for-entries.
func (r *notificationRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id = ?", id).Delete(&model.NotificationReply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notification_id = ?", id).Delete(&model.NotificationFor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Notification{}, id).Error
	})
}

func (r *notificationRepository) CreateReply(ctx context.Context, reply *model.NotificationReply) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *notificationRepository) Replies(ctx context.Context, notificationID uint64) ([]model.NotificationReply, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var replies []model.NotificationReply
	if err := r.db.WithContext(ctx).
		Preload("CreatedUser").
		Where("notification_id = ?", notificationID).
		Order("id ASC").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// ReplyByID looks a reply up scoped to its notification: a reply id
// that belongs to a different notification is a record-not-found.
func (r *notificationRepository) ReplyByID(ctx context.Context, notificationID, replyID uint64) (*model.NotificationReply, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var reply model.NotificationReply
	if err := r.db.WithContext(ctx).
		Preload("CreatedUser").
		Where("id = ? AND notification_id = ?", replyID, notificationID).
		First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// DeleteReply is idempotent; deleting an id that does not exist (or
// belongs to another notification) is a no-op.
func (r *notificationRepository) DeleteReply(ctx context.Context, notificationID, replyID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Where("id = ? AND notification_id = ?", replyID, notificationID).
		Delete(&model.NotificationReply{}).Error
}

func (r *notificationRepository) AddFor(ctx context.Context, entry *model.NotificationFor) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *notificationRepository) ForEntries(ctx context.Context, notificationID uint64) ([]model.NotificationFor, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var entries []model.NotificationFor
	if err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
