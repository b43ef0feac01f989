package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shinyyama/activities-backend/internal/model"
	"github.com/shinyyama/activities-backend/internal/repository"
	"gorm.io/gorm"
)

const maxReplyLen = 500

// CreateNotificationInput carries everything needed to record a new
// notification. ForRefs lists the generic objects the notification is
// relevant to.
type CreateNotificationInput struct {
	Text          *string
	About         *model.Ref
	Source        model.Source
	Action        model.Action
	CreatedUserID uint64
	ForRefs       []model.Ref
}

type NotificationService interface {
	Create(ctx context.Context, in CreateNotificationInput) (*model.Notification, error)
	GetByToken(ctx context.Context, token string) (*model.Notification, error)
	ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Notification, int64, error)
	Delete(ctx context.Context, id uint64) error

	AddReply(ctx context.Context, notificationID, userID uint64, text string, replyToID *uint64) (*model.NotificationReply, error)
	Replies(ctx context.Context, notificationID uint64) (*model.ReplyThread, error)
	ReplyByID(ctx context.Context, notificationID, replyID uint64) (*model.NotificationReply, error)
	DeleteReply(ctx context.Context, notificationID, replyID uint64) error

	ForObjects(ctx context.Context, notificationID uint64) ([]model.Referent, error)
	Text(ctx context.Context, n *model.Notification) (string, error)
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	registry *model.ResolverRegistry
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, registry *model.ResolverRegistry) NotificationService {
	return &notificationService{repo: repo, userRepo: userRepo, registry: registry}
}

func (s *notificationService) Create(ctx context.Context, in CreateNotificationInput) (*model.Notification, error) {
	if !in.Action.Valid() {
		return nil, fmt.Errorf("invalid action %q", in.Action)
	}
	if !in.Source.Valid() {
		return nil, fmt.Errorf("invalid source %q", in.Source)
	}
	n := &model.Notification{
		Text:          in.Text,
		Source:        in.Source,
		Action:        in.Action,
		CreatedUserID: in.CreatedUserID,
	}
	if in.About != nil {
		if !s.registry.Known(in.About.Kind) {
			return nil, fmt.Errorf("about kind %q not registered", in.About.Kind)
		}
		n.AboutKind = &in.About.Kind
		n.AboutID = &in.About.ID
	}
	for _, ref := range in.ForRefs {
		if !s.registry.Known(ref.Kind) {
			return nil, fmt.Errorf("for kind %q not registered", ref.Kind)
		}
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	for _, ref := range in.ForRefs {
		entry := &model.NotificationFor{
			NotificationID: n.ID,
			Kind:           ref.Kind,
			ObjectID:       ref.ID,
		}
		if err := s.repo.AddFor(ctx, entry); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (s *notificationService) GetByToken(ctx context.Context, token string) (*model.Notification, error) {
	n, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Notification, int64, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

func (s *notificationService) Delete(ctx context.Context, id uint64) error {
	return s.repo.Delete(ctx, id)
}

// AddReply appends a reply to the notification's thread. A reply_to id
// must name an existing reply of the same notification.
func (s *notificationService) AddReply(ctx context.Context, notificationID, userID uint64, text string, replyToID *uint64) (*model.NotificationReply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("reply text is required")
	}
	if len(text) > maxReplyLen {
		return nil, fmt.Errorf("reply text exceeds %d characters", maxReplyLen)
	}
	if _, err := s.repo.FindByID(ctx, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if replyToID != nil {
		if _, err := s.repo.ReplyByID(ctx, notificationID, *replyToID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("reply_to %d does not belong to notification %d", *replyToID, notificationID)
			}
			return nil, err
		}
	}
	reply := &model.NotificationReply{
		NotificationID: notificationID,
		ReplyToID:      replyToID,
		Text:           text,
		CreatedUserID:  userID,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *notificationService) Replies(ctx context.Context, notificationID uint64) (*model.ReplyThread, error) {
	replies, err := s.repo.Replies(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	return model.NewReplyThread(replies), nil
}

func (s *notificationService) ReplyByID(ctx context.Context, notificationID, replyID uint64) (*model.NotificationReply, error) {
	reply, err := s.repo.ReplyByID(ctx, notificationID, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return reply, nil
}

// DeleteReply is idempotent: a missing id is already deleted.
func (s *notificationService) DeleteReply(ctx context.Context, notificationID, replyID uint64) error {
	return s.repo.DeleteReply(ctx, notificationID, replyID)
}

// ForObjects resolves every for-entry to its concrete object in listing
// order, one batch fetch per distinct kind.
func (s *notificationService) ForObjects(ctx context.Context, notificationID uint64) ([]model.Referent, error) {
	entries, err := s.repo.ForEntries(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	refs := make([]model.Ref, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, e.Ref())
	}
	return s.registry.ResolveAll(ctx, refs)
}

// Text returns the stored text, or synthesizes
// "{user} {action} the {kind} {object}" from the notification's
// relations when no text was written.
func (s *notificationService) Text(ctx context.Context, n *model.Notification) (string, error) {
	if n.Text != nil && *n.Text != "" {
		return *n.Text, nil
	}

	about, ok := n.About()
	if !ok {
		return "", fmt.Errorf("%w: notification %d has no about reference", ErrUnresolvable, n.ID)
	}
	creator := n.CreatedUser
	if creator == nil {
		u, err := s.userRepo.FindByID(ctx, n.CreatedUserID)
		if err != nil {
			return "", fmt.Errorf("%w: creating user %d: %v", ErrUnresolvable, n.CreatedUserID, err)
		}
		creator = u
	}
	verbose, err := s.registry.Verbose(about.Kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	obj, err := s.registry.ResolveOne(ctx, about.Kind, about.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	return fmt.Sprintf("%s %s the %s %s",
		creator.Username,
		strings.ToLower(n.Action.Display()),
		verbose,
		obj.DisplayName(),
	), nil
}
