package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/activities-backend/internal/model"
	"github.com/shinyyama/activities-backend/internal/repository"
	"github.com/shinyyama/activities-backend/internal/service"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	svc      service.NotificationService
	users    repository.UserRepository
	validate *validator.Validate
}

func NewNotificationHandler(svc service.NotificationService, users repository.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		svc:      svc,
		users:    users,
		validate: validator.New(),
	}
}

type RefPayload struct {
	Kind string `json:"kind" validate:"required"`
	ID   uint64 `json:"id" validate:"required"`
}

type CreateNotificationRequest struct {
	Text   *string      `json:"text"`
	About  *RefPayload  `json:"about"`
	Source string       `json:"source" validate:"required"`
	Action string       `json:"action" validate:"required"`
	For    []RefPayload `json:"for" validate:"dive"`
}

type AddReplyRequest struct {
	Text      string  `json:"text" validate:"required,max=500"`
	ReplyToID *uint64 `json:"replyToId"`
}

type NotificationResponse struct {
	ID        uint64  `json:"id"`
	Token     string  `json:"token"`
	URL       string  `json:"url"`
	Text      string  `json:"text"`
	AboutKind *string `json:"aboutKind,omitempty"`
	AboutID   *uint64 `json:"aboutId,omitempty"`
	Source    string  `json:"source"`
	Action    string  `json:"action"`
	Comment   bool    `json:"isComment"`
	Activity  bool    `json:"isActivity"`
	CreatedBy string  `json:"createdBy,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type ReplyResponse struct {
	ID             uint64  `json:"id"`
	NotificationID uint64  `json:"notificationId"`
	ReplyToID      *uint64 `json:"replyToId,omitempty"`
	Text           string  `json:"text"`
	CreatedBy      string  `json:"createdBy,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

func (h *NotificationHandler) toResponse(c echo.Context, n *model.Notification) NotificationResponse {
	text, err := h.svc.Text(c.Request().Context(), n)
	if err != nil {
		// Precondition failure; surfaced in logs, blank in the payload.
		c.Logger().Errorf("notification %d text: %v", n.ID, err)
	}
	resp := NotificationResponse{
		ID:        n.ID,
		Token:     n.Token,
		URL:       n.AbsoluteURL(),
		Text:      text,
		Source:    string(n.Source),
		Action:    string(n.Action),
		Comment:   n.IsComment(),
		Activity:  n.IsActivity(),
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.AboutKind != nil {
		k := string(*n.AboutKind)
		resp.AboutKind = &k
		resp.AboutID = n.AboutID
	}
	if n.CreatedUser != nil {
		resp.CreatedBy = n.CreatedUser.Username
	}
	return resp
}

func toReplyResponse(r *model.NotificationReply) ReplyResponse {
	resp := ReplyResponse{
		ID:             r.ID,
		NotificationID: r.NotificationID,
		ReplyToID:      r.ReplyToID,
		Text:           r.Text,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if r.CreatedUser != nil {
		resp.CreatedBy = r.CreatedUser.Username
	}
	return resp
}

// currentUser resolves the authenticated uid to a user row.
func (h *NotificationHandler) currentUser(c echo.Context) (*model.User, error) {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing uid")
	}
	u, err := h.users.FindByUID(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusForbidden, "unknown user")
		}
		return nil, err
	}
	return u, nil
}

func (h *NotificationHandler) Create(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid payload"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	source, err := model.ParseSource(req.Source)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	action, err := model.ParseAction(req.Action)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}

	in := service.CreateNotificationInput{
		Text:          req.Text,
		Source:        source,
		Action:        action,
		CreatedUserID: user.ID,
	}
	if req.About != nil {
		in.About = &model.Ref{Kind: model.Kind(req.About.Kind), ID: req.About.ID}
	}
	for _, ref := range req.For {
		in.ForRefs = append(in.ForRefs, model.Ref{Kind: model.Kind(ref.Kind), ID: ref.ID})
	}

	n, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	n.CreatedUser = user
	return c.JSON(http.StatusCreated, h.toResponse(c, n))
}

func (h *NotificationHandler) Get(c echo.Context) error {
	token := c.Param("token")
	n, err := h.svc.GetByToken(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "notification not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch notification"))
	}

	thread, err := h.svc.Replies(c.Request().Context(), n.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch replies"))
	}
	forObjs, err := h.svc.ForObjects(c.Request().Context(), n.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to resolve for objects"))
	}

	replies := make([]ReplyResponse, 0, thread.Len())
	for _, r := range thread.Replies() {
		replies = append(replies, toReplyResponse(&r))
	}
	forNames := make([]string, 0, len(forObjs))
	for _, obj := range forObjs {
		forNames = append(forNames, obj.DisplayName())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notification": h.toResponse(c, n),
		"replies":      replies,
		"for":          forNames,
	})
}

func (h *NotificationHandler) List(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	page := 1
	if v := c.QueryParam("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	list, total, err := h.svc.ListForUser(c.Request().Context(), user.ID, limit, (page-1)*limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch notifications"))
	}
	resp := make([]NotificationResponse, 0, len(list))
	for i := range list {
		resp = append(resp, h.toResponse(c, &list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"total":         total,
		"page":          page,
	})
}

// byToken resolves the :token path param to a notification.
func (h *NotificationHandler) byToken(c echo.Context) (*model.Notification, error) {
	n, err := h.svc.GetByToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "notification not found")
		}
		return nil, err
	}
	return n, nil
}

func (h *NotificationHandler) AddReply(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.byToken(c)
	if err != nil {
		return err
	}
	var req AddReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid payload"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	reply, err := h.svc.AddReply(c.Request().Context(), n.ID, user.ID, req.Text, req.ReplyToID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "notification not found"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	reply.CreatedUser = user
	return c.JSON(http.StatusCreated, toReplyResponse(reply))
}

func (h *NotificationHandler) ListReplies(c echo.Context) error {
	n, err := h.byToken(c)
	if err != nil {
		return err
	}
	thread, err := h.svc.Replies(c.Request().Context(), n.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch replies"))
	}
	replies := make([]ReplyResponse, 0, thread.Len())
	for _, r := range thread.Replies() {
		replies = append(replies, toReplyResponse(&r))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"replies": replies})
}

// DeleteReply always reports success; deleting an absent reply is a
// no-op.
func (h *NotificationHandler) DeleteReply(c echo.Context) error {
	if _, err := h.currentUser(c); err != nil {
		return err
	}
	n, err := h.byToken(c)
	if err != nil {
		return err
	}
	replyID, err := strconv.ParseUint(c.Param("replyId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid reply id"))
	}
	if err := h.svc.DeleteReply(c.Request().Context(), n.ID, replyID); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete reply"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
