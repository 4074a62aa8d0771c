package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

var (
	admin  = domain.Identity{ID: "1", Name: "Admin One", Role: domain.RoleAdmin}
	agent  = domain.Identity{ID: "2", Name: "Agent Smith", Role: domain.RoleAgent}
	dev    = domain.Identity{ID: "3", Name: "John Dev", Role: domain.RoleDeveloper}
	sales  = domain.Identity{ID: "5", Name: "Sales Bea", Role: domain.RoleSales}
	holder = domain.Identity{ID: "4", Name: "Manager Sarah", Role: domain.RoleTaskAssigner}
)

type fixture struct {
	repos      repository.Repositories
	dispatcher events.Dispatcher
	activity   *ActivityService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	hash, err := auth.HashPassword("nexus123", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = repository.Seed(context.Background(), repos, hash)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	activity := NewActivityService(dispatcher, zap.NewNop(), 10)
	activity.RegisterHandlers()
	return fixture{repos: repos, dispatcher: dispatcher, activity: activity}
}

func statusOf(err error) int {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de.HTTPStatus
	}
	return 0
}

func TestLoginIssuesTokenAndMarksOnline(t *testing.T) {
	f := newFixture(t)
	tokens := auth.NewTokenManager("secret", 5)
	svc := NewAuthService(AuthDependencies{StaffRepo: f.repos.Staff, Tokens: tokens, Dispatcher: f.dispatcher})
	ctx := context.Background()

	id, token, _, err := svc.Login(ctx, "JOHN@nexus.com", "nexus123")
	require.NoError(t, err)
	assert.Equal(t, "3", id.ID)
	assert.Equal(t, domain.PresenceOnline, id.Status)
	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "3", claims.Subject)

	_, _, _, err = svc.Login(ctx, "john@nexus.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	_, _, _, err = svc.Login(ctx, "nobody@nexus.com", "nexus123")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	_, _, _, err = svc.Login(ctx, "", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, svc.Logout(ctx, *id))
	stored, err := f.repos.Staff.GetByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, domain.PresenceOffline, stored.Status)
}

func TestChatInboxAndUnread(t *testing.T) {
	f := newFixture(t)
	svc := NewChatService(ChatDependencies{ConversationRepo: f.repos.Conversations, MessageRepo: f.repos.Messages, Dispatcher: f.dispatcher})
	ctx := context.Background()

	chats, err := svc.MyChats(ctx, agent)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "Alex", chats[0].Title())
	assert.Equal(t, 2, chats[0].UnreadCount)

	none, err := svc.MyChats(ctx, sales)
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := svc.MarkRead(ctx, agent, "1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	chats, err = svc.MyChats(ctx, agent)
	require.NoError(t, err)
	assert.Zero(t, chats[0].UnreadCount)

	_, err = svc.Messages(ctx, sales, "1")
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	_, err = svc.Messages(ctx, agent, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestChatSendEchoesStoredMessage(t *testing.T) {
	f := newFixture(t)
	svc := NewChatService(ChatDependencies{ConversationRepo: f.repos.Conversations, MessageRepo: f.repos.Messages, Dispatcher: f.dispatcher})
	ctx := context.Background()

	msg, err := svc.Send(ctx, agent, "1", "On it")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "2", msg.SenderID)
	assert.NotEmpty(t, msg.Timestamp)

	msgs, err := svc.Messages(ctx, agent, "1")
	require.NoError(t, err)
	assert.Equal(t, msg.ID, msgs[len(msgs)-1].ID)

	chats, err := svc.MyChats(ctx, agent)
	require.NoError(t, err)
	assert.Equal(t, "On it", chats[0].LastMessage)

	_, err = svc.Send(ctx, agent, "1", "   ")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	recent := f.activity.Recent()
	require.NotEmpty(t, recent)
	assert.Equal(t, events.EventMessageSent, recent[len(recent)-1].Type)
}

func TestChatCloseRemovesFromInbox(t *testing.T) {
	f := newFixture(t)
	svc := NewChatService(ChatDependencies{ConversationRepo: f.repos.Conversations, MessageRepo: f.repos.Messages})
	ctx := context.Background()

	require.NoError(t, svc.Close(ctx, agent, "1"))
	chats, err := svc.MyChats(ctx, agent)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "2", chats[0].ID)

	_, err = svc.Send(ctx, agent, "1", "hello?")
	assert.Equal(t, http.StatusConflict, statusOf(err))
}

func TestTicketStatusRules(t *testing.T) {
	f := newFixture(t)
	svc := NewTicketService(TicketDependencies{TicketRepo: f.repos.Tickets, Dispatcher: f.dispatcher})
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, dev, "1", domain.TicketStatusInProgress)
	assert.Equal(t, http.StatusForbidden, statusOf(err), "developer is not the assignee of ticket 1")

	ticket, err := svc.UpdateStatus(ctx, dev, "2", domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)

	_, err = svc.UpdateStatus(ctx, admin, "1", "BOGUS")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = svc.UpdateStatus(ctx, admin, "404", domain.TicketStatusClosed)
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	ticket, err = svc.UpdateStatus(ctx, holder, "3", domain.TicketStatusNew)
	require.NoError(t, err, "any status may follow any other")
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
}

func TestTicketAssignSetsAssigned(t *testing.T) {
	f := newFixture(t)
	svc := NewTicketService(TicketDependencies{TicketRepo: f.repos.Tickets, Dispatcher: f.dispatcher})
	ctx := context.Background()

	ticket, err := svc.Assign(ctx, holder, "1", "John Dev")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)

	stored, err := f.repos.Tickets.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "John Dev", stored.AssignedTo)

	_, err = svc.Assign(ctx, holder, "1", " ")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestTasksScopedToAssignee(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(TaskDependencies{TaskRepo: f.repos.Tasks, Dispatcher: f.dispatcher})
	ctx := context.Background()

	mine, err := svc.MyTasks(ctx, dev)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.MyTasks(ctx, holder)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.UpdateStatus(ctx, dev, "t3", domain.TaskStatusTodo)
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	_, err = svc.UpdateStatus(ctx, dev, "t1", "BLOCKED")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	task, err := svc.UpdateStatus(ctx, dev, "t1", domain.TaskStatusDoing)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDoing, task.Status)
}

func TestStaffRoleChange(t *testing.T) {
	f := newFixture(t)
	svc := NewStaffService(StaffDependencies{StaffRepo: f.repos.Staff, Dispatcher: f.dispatcher})
	ctx := context.Background()

	roster, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@nexus.com", roster[0].Email)

	updated, err := svc.UpdateRole(ctx, admin, "3", domain.RoleManagement)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManagement, updated.Role)

	_, err = svc.UpdateRole(ctx, admin, "3", "OWNER")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = svc.UpdateRole(ctx, admin, "404", domain.RoleAgent)
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	recent := f.activity.Recent()
	require.NotEmpty(t, recent)
	last := recent[len(recent)-1]
	assert.Equal(t, events.EventStaffRoleChanged, last.Type)
	assert.Equal(t, events.StaffRoleChangedPayload{OldRole: domain.RoleDeveloper, NewRole: domain.RoleManagement}, last.Payload)
}

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)
	svc := NewDashboardService(f.repos)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardSummary{
		TotalTickets:  3,
		OpenTickets:   2,
		ActiveChats:   2,
		AssignedTasks: 2,
		StaffOnline:   3,
		Performance:   33,
	}, summary)
}

func TestActivityKeepsBoundedHistory(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	activity := NewActivityService(dispatcher, zap.NewNop(), 2)
	activity.RegisterHandlers()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventTicketAssigned, id, "1", nil)))
	}
	recent := activity.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Subject)
	assert.Equal(t, "c", recent[1].Subject)
}
