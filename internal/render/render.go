// Package render assembles the HTML snippets for the activity feed.
// Templates are embedded and addressed by their full slot name, e.g.
// "activities/snippets/activities.html".
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"
)

//go:embed templates
var templateFS embed.FS

const (
	ActivitiesTemplate = "activities/snippets/activities.html"
	ActivityTemplate   = "activities/snippets/activity.html"
)

// ActivityView is one feed item prepared for display.
type ActivityView struct {
	ID            uint64
	Text          string
	Action        string
	Source        string
	Author        string
	ReferenceName string
	CreatedAt     time.Time
}

// PageInfo describes where the rendered page sits in the feed.
type PageInfo struct {
	Number   int
	NumPages int
	HasNext  bool
	Next     int
}

// ActivitiesContext is the context contract of the activities snippet.
type ActivitiesContext struct {
	Page                 PageInfo
	Items                []ActivityView
	Obj                  string
	ActivityURL          string
	ActivitySource       string
	ShowCommentForm      bool
	ShowActivityTypeTabs bool
	IsInfiniteScroll     bool
	CommentForm          template.HTML
}

// ActivityContext is the context contract of the single-activity snippet.
type ActivityContext struct {
	Activity         ActivityView
	ActivityURL      string
	ShowReferenceObj bool
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	root := template.New("")
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		// strip the "templates/" prefix so templates keep their slot names
		name := path[len("templates/"):]
		_, err = root.New(name).Parse(string(raw))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: root}, nil
}

// Activities resolves the activities feed snippet against ctx.
func (r *Renderer) Activities(w io.Writer, ctx ActivitiesContext) error {
	return r.tmpl.ExecuteTemplate(w, ActivitiesTemplate, ctx)
}

// Activity resolves the single-activity snippet against ctx.
func (r *Renderer) Activity(w io.Writer, ctx ActivityContext) error {
	return r.tmpl.ExecuteTemplate(w, ActivityTemplate, ctx)
}

func (r *Renderer) ActivitiesString(ctx ActivitiesContext) (string, error) {
	var buf bytes.Buffer
	if err := r.Activities(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) ActivityString(ctx ActivityContext) (string, error) {
	var buf bytes.Buffer
	if err := r.Activity(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}
