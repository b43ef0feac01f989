package service

import (
	"context"
	"testing"

	"github.com/shinyyama/activities-backend/internal/model"
	"github.com/shinyyama/activities-backend/internal/repository"
)

func TestFeedPaging(t *testing.T) {
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	svc := NewActivityService(repository.NewActivityRepository(db))
	ctx := context.Background()

	u := &model.User{UID: "uid-troy", Username: "troy"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for i := 0; i < 5; i++ {
		src := model.SourceSystem
		if i%2 == 1 {
			src = model.SourceUser
		}
		a := model.Activity{Source: src, Action: model.ActionAdded, CreatedUserID: u.ID}
		if err := svc.Record(ctx, &a); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	page, err := svc.Feed(ctx, 1, 2, nil)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if page.Total != 5 || page.NumPages != 3 || !page.HasNext() || page.NextNumber() != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if len(page.Items) != 2 {
		t.Fatalf("len=%d want=2", len(page.Items))
	}

	last, err := svc.Feed(ctx, 3, 2, nil)
	if err != nil {
		t.Fatalf("feed last: %v", err)
	}
	if len(last.Items) != 1 || last.HasNext() {
		t.Fatalf("unexpected last page: %+v", last)
	}

	user := model.SourceUser
	filtered, err := svc.Feed(ctx, 1, 10, &user)
	if err != nil {
		t.Fatalf("filtered feed: %v", err)
	}
	if filtered.Total != 2 {
		t.Fatalf("filtered total=%d want=2", filtered.Total)
	}

	// out-of-range params are clamped
	clamped, err := svc.Feed(ctx, 0, -1, nil)
	if err != nil {
		t.Fatalf("clamped feed: %v", err)
	}
	if clamped.Number != 1 || clamped.PerPage != 20 {
		t.Fatalf("unexpected clamped page: %+v", clamped)
	}
}
