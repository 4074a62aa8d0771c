package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

const previewLength = 80

// ChatService serves the live-chat inbox of the calling agent.
type ChatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	dispatcher    events.Dispatcher
}

// ChatDependencies bundles repositories.
type ChatDependencies struct {
	ConversationRepo repository.ConversationRepository
	MessageRepo      repository.MessageRepository
	Dispatcher       events.Dispatcher
}

// NewChatService creates the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		conversations: deps.ConversationRepo,
		messages:      deps.MessageRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// MyChats lists the open conversations handled by actor. Admins see every
// open conversation. Unread counts are messages from others not yet read.
func (s *ChatService) MyChats(ctx context.Context, actor domain.Identity) ([]domain.Conversation, error) {
	filter := repository.ConversationFilter{}
	if actor.Role != domain.RoleAdmin {
		filter.AgentID = &actor.ID
	}
	records, err := s.conversations.ListOpen(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := make([]domain.Conversation, 0, len(records))
	for _, rec := range records {
		unread, err := s.messages.CountUnread(ctx, rec.ID, actor.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		out = append(out, domain.Conversation{
			ID:           rec.ID,
			Participants: rec.Participants,
			LastMessage:  rec.LastMessage,
			UnreadCount:  unread,
		})
	}
	return out, nil
}

// Messages lists a conversation's messages in send order.
func (s *ChatService) Messages(ctx context.Context, actor domain.Identity, chatID string) ([]domain.Message, error) {
	if _, err := s.accessible(ctx, actor, chatID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// Send stores a message from actor and returns it with its server id.
func (s *ChatService) Send(ctx context.Context, actor domain.Identity, chatID, text string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	if _, err := s.accessible(ctx, actor, chatID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		SenderID: actor.ID,
		Text:     text,
		IsRead:   true,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.conversations.SetLastMessage(ctx, chatID, text); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.New(events.EventMessageSent, chatID, actor.ID, events.MessageSentPayload{
		MessageID:   msg.ID,
		BodyPreview: preview(text),
	}))
	return msg, nil
}

// MarkRead marks every message from others in the conversation as read.
func (s *ChatService) MarkRead(ctx context.Context, actor domain.Identity, chatID string) (int64, error) {
	if _, err := s.accessible(ctx, actor, chatID); err != nil {
		return 0, err
	}
	n, err := s.messages.MarkRead(ctx, chatID, actor.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return n, nil
}

// Close ends a conversation; it no longer appears in any inbox.
func (s *ChatService) Close(ctx context.Context, actor domain.Identity, chatID string) error {
	if _, err := s.accessible(ctx, actor, chatID); err != nil {
		return err
	}
	if err := s.conversations.Close(ctx, chatID); err != nil {
		return apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.New(events.EventConversationClosed, chatID, actor.ID, nil))
	return nil
}

// accessible loads an open conversation actor may work on.
func (s *ChatService) accessible(ctx context.Context, actor domain.Identity, chatID string) (*domain.ConversationRecord, error) {
	conv, err := s.conversations.GetByID(ctx, chatID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("conversation", map[string]any{"chat_id": chatID})
		}
		return nil, apperrors.MapError(err)
	}
	if conv.Closed {
		return nil, apperrors.NewConflict("conversation is closed", map[string]any{"chat_id": chatID})
	}
	if actor.Role != domain.RoleAdmin && conv.AgentID != actor.ID {
		return nil, apperrors.NewForbidden("conversation belongs to another agent")
	}
	return conv, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength])
}
