package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shinyyama/activities-backend/internal/config"
	"github.com/shinyyama/activities-backend/internal/db"
	"github.com/shinyyama/activities-backend/internal/model"
	"github.com/shinyyama/activities-backend/internal/server"
)

// set via -ldflags at build time
var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Notification{},
		&model.NotificationReply{},
		&model.NotificationFor{},
		&model.Activity{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	srv, err := server.New(conn, cfg, server.Options{}, gitSHA, buildTime)
	if err != nil {
		log.Fatalf("server init error: %v", err)
	}

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
