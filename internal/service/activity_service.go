package service

import (
	"context"
	"errors"

	"github.com/shinyyama/activities-backend/internal/model"
	"github.com/shinyyama/activities-backend/internal/repository"
	"gorm.io/gorm"
)

// FeedPage is one page of the activity feed, newest first.
type FeedPage struct {
	Items    []model.Activity
	Total    int64
	Number   int
	PerPage  int
	NumPages int
}

func (p FeedPage) HasNext() bool {
	return p.Number < p.NumPages
}

func (p FeedPage) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

type ActivityService interface {
	Record(ctx context.Context, a *model.Activity) error
	Get(ctx context.Context, id uint64) (*model.Activity, error)
	Feed(ctx context.Context, page, perPage int, source *model.Source) (FeedPage, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, a *model.Activity) error {
	return s.repo.Create(ctx, a)
}

func (s *activityService) Get(ctx context.Context, id uint64) (*model.Activity, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *activityService) Feed(ctx context.Context, page, perPage int, source *model.Source) (FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 50 {
		perPage = 20
	}
	items, total, err := s.repo.List(ctx, perPage, (page-1)*perPage, source)
	if err != nil {
		return FeedPage{}, err
	}
	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}
	return FeedPage{
		Items:    items,
		Total:    total,
		Number:   page,
		PerPage:  perPage,
		NumPages: numPages,
	}, nil
}
