package console

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/authz"
	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
)

// PlaceholderPrefix marks message ids generated locally before the server
// has acknowledged the message.
const PlaceholderPrefix = "local-"

// SelectConversation opens conversation id: its messages replace the
// message list, then the conversation is marked read in the background.
// Mark-read fires on every selection, even when a later selection has
// superseded the message fetch. A failed mark-read is only logged.
func (c *Console) SelectConversation(ctx context.Context, id string) Result {
	c.chat.SetActive(id)
	agentID := c.senderID()

	res := load(ctx, c, ViewMessages,
		func(ctx context.Context) ([]domain.Message, error) { return c.api.Messages(ctx, id) },
		func(msgs []domain.Message) {
			if c.chat.Active() == id {
				c.chat.Messages.ReplaceAll(msgs)
			}
		},
		func() []domain.Message { return fixtureMessages(id, agentID) })

	c.background(ctx, func(ctx context.Context) {
		if err := c.api.MarkRead(ctx, id); err != nil {
			c.logger.Debug("mark read failed", zap.String("chat", id), zap.Error(err))
			return
		}
		c.chat.ZeroUnread(id)
	})
	return res
}

// CloseConversation ends conversation id on the server, then drops it locally.
func (c *Console) CloseConversation(ctx context.Context, id string) Result {
	if err := c.api.CloseChat(ctx, id); err != nil {
		c.logger.Warn("close chat failed", zap.String("chat", id), zap.Error(err))
		c.publishFailure(ctx, "close-chat", id, err)
		return Result{Source: SourceNone, Err: err}
	}
	if c.chat.Active() == id {
		c.chat.SetActive("")
	}
	c.chat.Conversations.Remove(id)
	return Result{Source: SourceRemote}
}

// SendMessage appends text to the open conversation immediately under a
// placeholder id, then posts it. When the server echoes the stored message
// it replaces the placeholder in place; on failure the message is flagged
// failed and the operation reported. Blank text or no open conversation is
// a no-op returning nil.
func (c *Console) SendMessage(ctx context.Context, text string) *Operation {
	chatID := c.chat.Active()
	if strings.TrimSpace(text) == "" || chatID == "" {
		return nil
	}

	placeholder := domain.Message{
		ID:        PlaceholderPrefix + uuid.NewString(),
		ChatID:    chatID,
		SenderID:  c.senderID(),
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		IsRead:    false,
		Delivery:  domain.DeliveryPending,
	}
	op := newOperation(OpSendMessage, placeholder.ID)
	c.outbox.track(op)
	c.chat.Messages.AppendOne(placeholder)

	c.background(ctx, func(ctx context.Context) {
		echo, err := c.api.SendMessage(ctx, chatID, text)
		if err != nil {
			c.chat.MarkDelivery(placeholder.ID, domain.DeliveryFailed)
			c.failOp(ctx, op, err)
			return
		}
		if echo != nil {
			confirmed := *echo
			confirmed.Delivery = domain.DeliverySent
			if c.chat.Messages.Replace(placeholder.ID, confirmed) {
				op.rekey(confirmed.ID)
			}
		} else {
			c.chat.MarkDelivery(placeholder.ID, domain.DeliverySent)
		}
		c.chat.Conversations.PatchByID(chatID, func(conv *domain.Conversation) { conv.LastMessage = text })
		c.confirmOp(ctx, op)
	})
	return op
}

// ChangeTicketStatus updates a ticket on the server and, once accepted,
// locally. A rejected change leaves the board untouched.
func (c *Console) ChangeTicketStatus(ctx context.Context, id string, status domain.TicketStatus) Result {
	if err := c.api.UpdateTicketStatus(ctx, id, status); err != nil {
		c.logger.Warn("ticket status change failed", zap.String("ticket", id), zap.Error(err))
		c.publishFailure(ctx, "change-ticket-status", id, err)
		return Result{Source: SourceNone, Err: err}
	}
	c.tickets.PatchStatus(id, status)
	return Result{Source: SourceRemote}
}

// AssignTicket assigns a ticket on the server; once accepted the local copy
// gets the assignee and moves to ASSIGNED.
func (c *Console) AssignTicket(ctx context.Context, id, assignee string) Result {
	if err := c.api.AssignTicket(ctx, id, assignee); err != nil {
		c.logger.Warn("ticket assignment failed", zap.String("ticket", id), zap.Error(err))
		c.publishFailure(ctx, "assign-ticket", id, err)
		return Result{Source: SourceNone, Err: err}
	}
	c.tickets.PatchByID(id, func(t *domain.Ticket) {
		t.AssignedTo = assignee
		t.Status = domain.TicketStatusAssigned
	})
	return Result{Source: SourceRemote}
}

// MoveTask moves a task to status locally right away and tells the server
// in the background. If the server refuses, the task returns to its old
// column unless it was moved again in the meantime.
func (c *Console) MoveTask(ctx context.Context, id string, status domain.TaskStatus) *Operation {
	previous, found := c.tasks.PatchStatus(id, status)
	op := newOperation(OpMoveTask, id)
	c.outbox.track(op)

	c.background(ctx, func(ctx context.Context) {
		if err := c.api.UpdateTaskStatus(ctx, id, status); err != nil {
			if found && previous != status && c.tasks.SwapStatus(id, status, previous) {
				c.logger.Debug("task move rolled back", zap.String("task", id), zap.String("status", string(previous)))
			}
			c.failOp(ctx, op, err)
			return
		}
		c.confirmOp(ctx, op)
	})
	return op
}

// ChangeStaffRole changes a staff member's role. Only identities allowed to
// manage staff may call it; others get ErrForbidden without a request.
func (c *Console) ChangeStaffRole(ctx context.Context, id string, role domain.Role) Result {
	if !authz.IdentityCan(authz.ManageStaff, c.session.Identity()) {
		return Result{Source: SourceNone, Err: ErrForbidden}
	}
	if err := c.api.UpdateStaffRole(ctx, id, role); err != nil {
		c.logger.Warn("staff role change failed", zap.String("staff", id), zap.Error(err))
		c.publishFailure(ctx, "change-staff-role", id, err)
		return Result{Source: SourceNone, Err: err}
	}
	c.staff.PatchRole(id, role)
	return Result{Source: SourceRemote}
}

func (c *Console) senderID() string {
	if id := c.actorID(); id != "" {
		return id
	}
	return "agent"
}

func (c *Console) confirmOp(ctx context.Context, op *Operation) {
	c.outbox.confirm(op)
	c.publish(ctx, events.New(events.EventOperationConfirmed, op.ID, c.actorID(),
		events.OperationPayload{Kind: string(op.Kind), RecordID: op.RecordKey()}))
}

func (c *Console) failOp(ctx context.Context, op *Operation, err error) {
	c.logger.Warn("operation failed", zap.String("op", op.ID), zap.String("kind", string(op.Kind)), zap.Error(err))
	c.outbox.fail(op, err)
	c.publish(ctx, events.New(events.EventOperationFailed, op.ID, c.actorID(),
		events.OperationPayload{Kind: string(op.Kind), RecordID: op.RecordKey(), Reason: err.Error()}))
}

func (c *Console) publishFailure(ctx context.Context, kind, recordID string, err error) {
	c.publish(ctx, events.New(events.EventOperationFailed, recordID, c.actorID(),
		events.OperationPayload{Kind: kind, RecordID: recordID, Reason: err.Error()}))
}
