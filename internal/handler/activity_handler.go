package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/activities-backend/internal/model"
	"github.com/shinyyama/activities-backend/internal/render"
	"github.com/shinyyama/activities-backend/internal/service"
)

type ActivityHandler struct {
	svc      service.ActivityService
	registry *model.ResolverRegistry
	renderer *render.Renderer
	forms    *render.FormRenderer
}

func NewActivityHandler(svc service.ActivityService, registry *model.ResolverRegistry, renderer *render.Renderer, forms *render.FormRenderer) *ActivityHandler {
	return &ActivityHandler{svc: svc, registry: registry, renderer: renderer, forms: forms}
}

type ActivityResponse struct {
	ID        uint64  `json:"id"`
	Text      string  `json:"text"`
	AboutKind *string `json:"aboutKind,omitempty"`
	AboutID   *uint64 `json:"aboutId,omitempty"`
	Source    string  `json:"source"`
	Action    string  `json:"action"`
	CreatedBy string  `json:"createdBy,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// displayText falls back to a synthesized sentence when the row carries
// no free text. Unresolvable references degrade to "kind #id" here; the
// feed keeps rendering.
func (h *ActivityHandler) displayText(c echo.Context, a *model.Activity) string {
	if a.Text != nil && *a.Text != "" {
		return *a.Text
	}
	who := fmt.Sprintf("user %d", a.CreatedUserID)
	if a.CreatedUser != nil {
		who = a.CreatedUser.Username
	}
	about, ok := a.About()
	if !ok {
		return fmt.Sprintf("%s %s", who, strings.ToLower(a.Action.Display()))
	}
	name := fmt.Sprintf("%s #%d", about.Kind, about.ID)
	verbose := string(about.Kind)
	if v, err := h.registry.Verbose(about.Kind); err == nil {
		verbose = v
		if obj, err := h.registry.ResolveOne(c.Request().Context(), about.Kind, about.ID); err == nil {
			name = obj.DisplayName()
		}
	}
	return fmt.Sprintf("%s %s the %s %s", who, strings.ToLower(a.Action.Display()), verbose, name)
}

func (h *ActivityHandler) toResponse(c echo.Context, a *model.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:        a.ID,
		Text:      h.displayText(c, a),
		Source:    string(a.Source),
		Action:    string(a.Action),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.AboutKind != nil {
		k := string(*a.AboutKind)
		resp.AboutKind = &k
		resp.AboutID = a.AboutID
	}
	if a.CreatedUser != nil {
		resp.CreatedBy = a.CreatedUser.Username
	}
	return resp
}

func (h *ActivityHandler) toView(c echo.Context, a *model.Activity) render.ActivityView {
	v := render.ActivityView{
		ID:        a.ID,
		Text:      h.displayText(c, a),
		Action:    string(a.Action),
		Source:    string(a.Source),
		CreatedAt: a.CreatedAt,
	}
	if a.CreatedUser != nil {
		v.Author = a.CreatedUser.Username
	}
	if about, ok := a.About(); ok {
		v.ReferenceName = fmt.Sprintf("%s #%d", about.Kind, about.ID)
		if obj, err := h.registry.ResolveOne(c.Request().Context(), about.Kind, about.ID); err == nil {
			v.ReferenceName = obj.DisplayName()
		}
	}
	return v
}

func (h *ActivityHandler) feedParams(c echo.Context) (page, limit int, source *model.Source, bad error) {
	page, limit = 1, 20
	if v := c.QueryParam("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.QueryParam("source"); v != "" {
		s, err := model.ParseSource(v)
		if err != nil {
			return 0, 0, nil, err
		}
		source = &s
	}
	return page, limit, source, nil
}

func (h *ActivityHandler) List(c echo.Context) error {
	page, limit, source, err := h.feedParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	feed, err := h.svc.Feed(c.Request().Context(), page, limit, source)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch activities"))
	}
	resp := make([]ActivityResponse, 0, len(feed.Items))
	for i := range feed.Items {
		resp = append(resp, h.toResponse(c, &feed.Items[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"activities": resp,
		"total":      feed.Total,
		"page":       feed.Number,
		"numPages":   feed.NumPages,
	})
}

// queryFlag reads a boolean query parameter that defaults to true,
// matching the snippet contract.
func queryFlag(c echo.Context, name string) bool {
	return c.QueryParam(name) != "false"
}

// ListHTML renders the activities snippet for the requested page.
func (h *ActivityHandler) ListHTML(c echo.Context) error {
	page, limit, source, err := h.feedParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	feed, err := h.svc.Feed(c.Request().Context(), page, limit, source)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch activities"))
	}

	items := make([]render.ActivityView, 0, len(feed.Items))
	for i := range feed.Items {
		items = append(items, h.toView(c, &feed.Items[i]))
	}

	ctx := render.ActivitiesContext{
		Page: render.PageInfo{
			Number:   feed.Number,
			NumPages: feed.NumPages,
			HasNext:  feed.HasNext(),
			Next:     feed.NextNumber(),
		},
		Items:                items,
		Obj:                  c.QueryParam("obj"),
		ActivityURL:          c.Request().URL.Path,
		ShowCommentForm:      queryFlag(c, "show_comment_form"),
		ShowActivityTypeTabs: queryFlag(c, "show_activity_type_tabs"),
		IsInfiniteScroll:     queryFlag(c, "is_infinite_scroll"),
	}
	if source != nil {
		ctx.ActivitySource = string(*source)
	}
	if ctx.ShowCommentForm {
		formHTML, err := h.forms.Render(commentForm())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to render comment form"))
		}
		ctx.CommentForm = template.HTML(formHTML)
	}

	html, err := h.renderer.ActivitiesString(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to render activities"))
	}
	return c.HTML(http.StatusOK, html)
}

// GetHTML renders the single-activity snippet.
func (h *ActivityHandler) GetHTML(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid activity id"))
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "activity not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch activity"))
	}
	ctx := render.ActivityContext{
		Activity:         h.toView(c, a),
		ActivityURL:      c.Request().URL.Path,
		ShowReferenceObj: c.QueryParam("show_reference_obj") == "true",
	}
	html, err := h.renderer.ActivityString(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to render activity"))
	}
	return c.HTML(http.StatusOK, html)
}

func commentForm() *render.Form {
	return &render.Form{
		Action: "/api/notifications",
		Fields: []render.Field{
			{Label: "Comment", Name: "text", Type: "text"},
		},
	}
}
