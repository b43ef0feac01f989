package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shinyyama/activities-backend/internal/config"
	"github.com/shinyyama/activities-backend/internal/db"
	"github.com/shinyyama/activities-backend/internal/model"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(
		&model.User{},
		&model.Notification{},
		&model.NotificationReply{},
		&model.NotificationFor{},
		&model.Activity{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := gdb.Model(&model.Notification{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count notifications: %w", err)
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("notifications already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		troy := model.User{UID: "seed-troy", Username: "troy", Name: "Troy"}
		dana := model.User{UID: "seed-dana", Username: "dana", Name: "Dana"}
		for _, u := range []*model.User{&troy, &dana} {
			if err := tx.Where("uid = ?", u.UID).FirstOrCreate(u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Username, err)
			}
		}

		aboutKind := model.KindUser
		comment := model.Notification{
			Text:          strPtr("Welcome aboard!"),
			AboutKind:     &aboutKind,
			AboutID:       &dana.ID,
			Source:        model.SourceUser,
			Action:        model.ActionCommented,
			CreatedUserID: troy.ID,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
		if err := tx.Create(&model.NotificationFor{
			NotificationID: comment.ID,
			Kind:           model.KindUser,
			ObjectID:       dana.ID,
		}).Error; err != nil {
			return fmt.Errorf("seed for entry: %w", err)
		}
		reply := model.NotificationReply{
			NotificationID: comment.ID,
			Text:           "Thanks!",
			CreatedUserID:  dana.ID,
		}
		if err := tx.Create(&reply).Error; err != nil {
			return fmt.Errorf("seed reply: %w", err)
		}
		threaded := model.NotificationReply{
			NotificationID: comment.ID,
			ReplyToID:      &reply.ID,
			Text:           "Anytime.",
			CreatedUserID:  troy.ID,
		}
		if err := tx.Create(&threaded).Error; err != nil {
			return fmt.Errorf("seed threaded reply: %w", err)
		}

		// System notification with no text; the feed synthesizes it.
		system := model.Notification{
			AboutKind:     &aboutKind,
			AboutID:       &dana.ID,
			Source:        model.SourceSystem,
			Action:        model.ActionCreated,
			CreatedUserID: troy.ID,
		}
		if err := tx.Create(&system).Error; err != nil {
			return fmt.Errorf("seed system notification: %w", err)
		}

		actions := []model.Action{model.ActionCreated, model.ActionUpdated, model.ActionUploaded}
		for _, action := range actions {
			a := model.Activity{
				AboutKind:     &aboutKind,
				AboutID:       &dana.ID,
				Source:        model.SourceSystem,
				Action:        action,
				CreatedUserID: troy.ID,
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("seed activity %s: %w", action, err)
			}
		}

		log.Printf("seeded users, notifications, replies and %d activities", len(actions))
		return nil
	})
}

func strPtr(s string) *string {
	return &s
}
