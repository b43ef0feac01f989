package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shinyyama/activities-backend/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	db, err := gorm.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Notification{},
		&model.NotificationReply{},
		&model.NotificationFor{},
		&model.Activity{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{UID: "uid-" + username, Username: username}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedNotification(t *testing.T, db *gorm.DB, userID uint64) *model.Notification {
	t.Helper()
	kind := model.KindUser
	n := &model.Notification{
		AboutKind:     &kind,
		AboutID:       &userID,
		Source:        model.SourceUser,
		Action:        model.ActionCommented,
		CreatedUserID: userID,
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

func TestNotificationTokenAssigned(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "troy")
	n := seedNotification(t, db, u.ID)
	if n.Token == "" {
		t.Fatal("token should be assigned on create")
	}

	repo := NewNotificationRepository(db)
	got, err := repo.FindByToken(context.Background(), n.Token)
	if err != nil {
		t.Fatalf("find by token: %v", err)
	}
	if got.ID != n.ID {
		t.Fatalf("got id=%d want=%d", got.ID, n.ID)
	}
	if got.CreatedUser == nil || got.CreatedUser.Username != "troy" {
		t.Fatalf("created user not preloaded: %+v", got.CreatedUser)
	}
}

func TestNotificationInvalidEnumRejected(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "troy")
	tests := []struct {
		name string
		n    model.Notification
	}{
		{"bad action", model.Notification{Source: model.SourceUser, Action: "SHREDDED", CreatedUserID: u.ID}},
		{"bad source", model.Notification{Source: "ALIEN", Action: model.ActionCreated, CreatedUserID: u.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.Create(&tt.n).Error; err == nil {
				t.Fatal("create should be rejected")
			}
		})
	}
}

func TestNotificationPartialAboutRejected(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "troy")
	kind := model.KindUser
	n := model.Notification{
		AboutKind:     &kind,
		Source:        model.SourceUser,
		Action:        model.ActionCreated,
		CreatedUserID: u.ID,
	}
	if err := db.Create(&n).Error; err == nil {
		t.Fatal("about kind without id should be rejected")
	}
}

func TestReplyByIDScopedToNotification(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "troy")
	n1 := seedNotification(t, db, u.ID)
	n2 := seedNotification(t, db, u.ID)

	reply := &model.NotificationReply{NotificationID: n1.ID, Text: "hello", CreatedUserID: u.ID}
	if err := repo.CreateReply(ctx, reply); err != nil {
		t.Fatalf("create reply: %v", err)
	}

	got, err := repo.ReplyByID(ctx, n1.ID, reply.ID)
	if err != nil {
		t.Fatalf("reply by id: %v", err)
	}
	if got.Text != "hello" || got.NotificationID != n1.ID || got.ReplyToID != nil {
		t.Fatalf("unexpected reply: %+v", got)
	}

	// globally valid id, wrong notification
	if _, err := repo.ReplyByID(ctx, n2.ID, reply.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want record not found, got %v", err)
	}
}

func TestDeleteReplyIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "troy")
	n := seedNotification(t, db, u.ID)

	keep := &model.NotificationReply{NotificationID: n.ID, Text: "keep", CreatedUserID: u.ID}
	drop := &model.NotificationReply{NotificationID: n.ID, Text: "drop", CreatedUserID: u.ID}
	for _, r := range []*model.NotificationReply{keep, drop} {
		if err := repo.CreateReply(ctx, r); err != nil {
			t.Fatalf("create reply: %v", err)
		}
	}

	// deleting a non-existent id succeeds and changes nothing
	if err := repo.DeleteReply(ctx, n.ID, 9999); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	replies, err := repo.Replies(ctx, n.ID)
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("len=%d want=2", len(replies))
	}

	// deleting an existing id removes exactly that reply
	if err := repo.DeleteReply(ctx, n.ID, drop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	replies, err = repo.Replies(ctx, n.ID)
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(replies) != 1 || replies[0].ID != keep.ID {
		t.Fatalf("unexpected replies after delete: %+v", replies)
	}
}

func TestRepliesOrderedByCreation(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "troy")
	n := seedNotification(t, db, u.ID)

	for _, text := range []string{"one", "two", "three"} {
		if err := repo.CreateReply(ctx, &model.NotificationReply{
			NotificationID: n.ID, Text: text, CreatedUserID: u.ID,
		}); err != nil {
			t.Fatalf("create reply %s: %v", text, err)
		}
	}
	replies, err := repo.Replies(ctx, n.ID)
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	want := []string{"one", "two", "three"}
	for i, r := range replies {
		if r.Text != want[i] {
			t.Fatalf("replies[%d]=%q want=%q", i, r.Text, want[i])
		}
	}
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	troy := seedUser(t, db, "troy")
	dana := seedUser(t, db, "dana")

	forDana := seedNotification(t, db, troy.ID)
	forBoth := seedNotification(t, db, troy.ID)
	entries := []model.NotificationFor{
		{NotificationID: forDana.ID, Kind: model.KindUser, ObjectID: dana.ID},
		{NotificationID: forBoth.ID, Kind: model.KindUser, ObjectID: dana.ID},
		{NotificationID: forBoth.ID, Kind: model.KindUser, ObjectID: troy.ID},
	}
	for i := range entries {
		if err := repo.AddFor(ctx, &entries[i]); err != nil {
			t.Fatalf("add for: %v", err)
		}
	}

	list, total, err := repo.ListForUser(ctx, dana.ID, 10, 0)
	if err != nil {
		t.Fatalf("list for dana: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("total=%d len=%d want 2/2", total, len(list))
	}
	// newest first
	if list[0].ID != forBoth.ID || list[1].ID != forDana.ID {
		t.Fatalf("unexpected order: %d, %d", list[0].ID, list[1].ID)
	}

	list, total, err = repo.ListForUser(ctx, troy.ID, 10, 0)
	if err != nil {
		t.Fatalf("list for troy: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != forBoth.ID {
		t.Fatalf("unexpected troy list: total=%d %+v", total, list)
	}
}

func TestDeleteNotificationCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "troy")
	n := seedNotification(t, db, u.ID)

	if err := repo.CreateReply(ctx, &model.NotificationReply{NotificationID: n.ID, Text: "r", CreatedUserID: u.ID}); err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if err := repo.AddFor(ctx, &model.NotificationFor{NotificationID: n.ID, Kind: model.KindUser, ObjectID: u.ID}); err != nil {
		t.Fatalf("add for: %v", err)
	}

	if err := repo.Delete(ctx, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, n.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("notification should be gone, got %v", err)
	}
	replies, err := repo.Replies(ctx, n.ID)
	if err != nil || len(replies) != 0 {
		t.Fatalf("replies should be gone: %v %v", replies, err)
	}
	entries, err := repo.ForEntries(ctx, n.ID)
	if err != nil || len(entries) != 0 {
		t.Fatalf("for entries should be gone: %v %v", entries, err)
	}
}
