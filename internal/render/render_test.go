package render

import (
	"strings"
	"testing"
	"time"
)

func feedContext() ActivitiesContext {
	created := time.Date(2016, 1, 25, 18, 11, 0, 0, time.UTC)
	return ActivitiesContext{
		Page: PageInfo{Number: 1, NumPages: 2, HasNext: true, Next: 2},
		Items: []ActivityView{
			{ID: 10, Text: "troy created the movie Karate Kid", Action: "CREATED", Source: "SYSTEM", Author: "troy", CreatedAt: created},
			{ID: 11, Text: "dana commented", Action: "COMMENTED", Source: "USER", Author: "dana", CreatedAt: created},
		},
		Obj:                  "Karate Kid",
		ActivityURL:          "/api/activities/html",
		ShowCommentForm:      true,
		ShowActivityTypeTabs: true,
		IsInfiniteScroll:     true,
		CommentForm:          "<p><label for=\"text\">Comment</label> <input type=\"text\" name=\"text\" value=\"\"></p>",
	}
}

func TestActivitiesSnippet(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	html, err := r.ActivitiesString(feedContext())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"troy created the movie Karate Kid",
		`id="activity-10"`,
		`data-source="USER"`,
		"activity-type-tabs",
		"activity-comment-form",
		`data-infinite-scroll="true"`,
		`href="/api/activities/html?page=2"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("output missing %q:\n%s", want, html)
		}
	}
}

func TestActivitiesSnippetFlagsOff(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx := feedContext()
	ctx.Page.HasNext = false
	ctx.ShowCommentForm = false
	ctx.ShowActivityTypeTabs = false
	ctx.IsInfiniteScroll = false
	html, err := r.ActivitiesString(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, banned := range []string{
		"activity-type-tabs",
		"activity-comment-form",
		"data-infinite-scroll",
		"activities-more",
	} {
		if strings.Contains(html, banned) {
			t.Fatalf("output should not contain %q:\n%s", banned, html)
		}
	}
}

func TestActivitySnippet(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx := ActivityContext{
		Activity: ActivityView{
			ID:            7,
			Text:          "troy updated the movie Rocky",
			Action:        "UPDATED",
			Source:        "SYSTEM",
			Author:        "troy",
			ReferenceName: "Rocky",
			CreatedAt:     time.Date(2016, 1, 25, 18, 11, 0, 0, time.UTC),
		},
		ActivityURL:      "/api/activities/7/html",
		ShowReferenceObj: true,
	}
	html, err := r.ActivityString(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "activity-reference") || !strings.Contains(html, "Rocky") {
		t.Fatalf("reference obj missing:\n%s", html)
	}

	ctx.ShowReferenceObj = false
	html, err = r.ActivityString(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "activity-reference") {
		t.Fatalf("reference obj should be hidden:\n%s", html)
	}
}
