package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/activities-backend/internal/config"
	"github.com/shinyyama/activities-backend/internal/handler"
	appmw "github.com/shinyyama/activities-backend/internal/middleware"
	"github.com/shinyyama/activities-backend/internal/model"
	"github.com/shinyyama/activities-backend/internal/render"
	"github.com/shinyyama/activities-backend/internal/repository"
	"github.com/shinyyama/activities-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e                *echo.Echo
	notificationRepo repository.NotificationRepository
	activityRepo     repository.ActivityRepository
	userRepo         repository.UserRepository
	sha              string
	build            string
}

// Options carries the swappable pieces of the server. A host
// application can register extra reference kinds or plug in its own
// form-rendering convention; everything defaults sensibly.
type Options struct {
	CustomFormRenderer render.CustomFormFunc
	RegisterKinds      func(*model.ResolverRegistry, repository.UserRepository) error
}

func New(db *gorm.DB, cfg *config.Config, opts Options, sha, buildTime string) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			return strings.HasSuffix(u.Hostname(), "vercel.app"), nil
		},
	}))

	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	registry := model.NewResolverRegistry()
	if err := registerUserKind(registry, userRepo); err != nil {
		return nil, err
	}
	if opts.RegisterKinds != nil {
		if err := opts.RegisterKinds(registry, userRepo); err != nil {
			return nil, err
		}
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	forms, err := render.NewFormRenderer(cfg.FormRenderer, opts.CustomFormRenderer)
	if err != nil {
		return nil, err
	}

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, registry)
	activitySvc := service.NewActivityService(activityRepo)

	notificationHandler := handler.NewNotificationHandler(notificationSvc, userRepo)
	activityHandler := handler.NewActivityHandler(activitySvc, registry, renderer, forms)

	var requireAuth echo.MiddlewareFunc
	if cfg.FirebaseProjectID != "" {
		authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProjectID)
		if err != nil {
			return nil, err
		}
		requireAuth = authMw.RequireAuth
	} else {
		// Without firebase the caller uid comes straight from a header.
		// Local development only.
		log.Printf("FIREBASE_PROJECT_ID not set; trusting X-Debug-UID header")
		requireAuth = func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Set("uid", c.Request().Header.Get("X-Debug-UID"))
				return next(c)
			}
		}
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/activities", activityHandler.List)
	api.GET("/activities/html", activityHandler.ListHTML)
	api.GET("/activities/:id/html", activityHandler.GetHTML)

	api.GET("/notifications", notificationHandler.List, requireAuth)
	api.POST("/notifications", notificationHandler.Create, requireAuth)
	api.GET("/notifications/:token", notificationHandler.Get)
	api.GET("/notifications/:token/replies", notificationHandler.ListReplies)
	api.POST("/notifications/:token/replies", notificationHandler.AddReply, requireAuth)
	api.DELETE("/notifications/:token/replies/:replyId", notificationHandler.DeleteReply, requireAuth)

	return &Server{
		e:                e,
		notificationRepo: notificationRepo,
		activityRepo:     activityRepo,
		userRepo:         userRepo,
		sha:              sha,
		build:            buildTime,
	}, nil
}

func registerUserKind(registry *model.ResolverRegistry, users repository.UserRepository) error {
	return registry.Register(model.KindUser, "user", func(ctx context.Context, ids []uint64) (map[uint64]model.Referent, error) {
		found, err := users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make(map[uint64]model.Referent, len(found))
		for id, u := range found {
			out[id] = u
		}
		return out, nil
	})
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) SetDB(db *gorm.DB) {
	s.notificationRepo.SetDB(db)
	s.activityRepo.SetDB(db)
	s.userRepo.SetDB(db)
}
