package console

import (
	"context"
	"net/http"
	"sync"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/remote"
)

// fakeBackend answers every call with the configured func, or a 503.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	me                 func(context.Context) (*domain.Identity, error)
	login              func(context.Context, domain.Credentials) (*domain.Identity, error)
	logout             func(context.Context) error
	dashboard          func(context.Context) (domain.DashboardSummary, error)
	myChats            func(context.Context) ([]domain.Conversation, error)
	messages           func(context.Context, string) ([]domain.Message, error)
	sendMessage        func(context.Context, string, string) (*domain.Message, error)
	markRead           func(context.Context, string) error
	closeChat          func(context.Context, string) error
	tickets            func(context.Context) ([]domain.Ticket, error)
	updateTicketStatus func(context.Context, string, domain.TicketStatus) error
	assignTicket       func(context.Context, string, string) error
	myTasks            func(context.Context) ([]domain.Task, error)
	updateTaskStatus   func(context.Context, string, domain.TaskStatus) error
	staff              func(context.Context) ([]domain.Identity, error)
	updateStaffRole    func(context.Context, string, domain.Role) error
}

func unavailable(path string) error {
	return &remote.RequestError{Method: http.MethodGet, Path: path, Status: http.StatusServiceUnavailable, StatusText: "Service Unavailable"}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Me(ctx context.Context) (*domain.Identity, error) {
	f.record("me")
	if f.me == nil {
		return nil, unavailable("/auth/me")
	}
	return f.me(ctx)
}

func (f *fakeBackend) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	f.record("login")
	if f.login == nil {
		return nil, unavailable("/auth/login")
	}
	return f.login(ctx, creds)
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.record("logout")
	if f.logout == nil {
		return unavailable("/auth/logout")
	}
	return f.logout(ctx)
}

func (f *fakeBackend) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	f.record("dashboard")
	if f.dashboard == nil {
		return domain.DashboardSummary{}, unavailable("/dashboard/summary")
	}
	return f.dashboard(ctx)
}

func (f *fakeBackend) MyChats(ctx context.Context) ([]domain.Conversation, error) {
	f.record("chats")
	if f.myChats == nil {
		return nil, unavailable("/chat/my")
	}
	return f.myChats(ctx)
}

func (f *fakeBackend) Messages(ctx context.Context, chatID string) ([]domain.Message, error) {
	f.record("messages:" + chatID)
	if f.messages == nil {
		return nil, unavailable("/chat/messages/" + chatID)
	}
	return f.messages(ctx, chatID)
}

func (f *fakeBackend) SendMessage(ctx context.Context, chatID, text string) (*domain.Message, error) {
	f.record("send:" + text)
	if f.sendMessage == nil {
		return nil, unavailable("/chat/messages/" + chatID)
	}
	return f.sendMessage(ctx, chatID, text)
}

func (f *fakeBackend) MarkRead(ctx context.Context, chatID string) error {
	f.record("read:" + chatID)
	if f.markRead == nil {
		return unavailable("/chat/" + chatID + "/read")
	}
	return f.markRead(ctx, chatID)
}

func (f *fakeBackend) CloseChat(ctx context.Context, chatID string) error {
	f.record("close:" + chatID)
	if f.closeChat == nil {
		return unavailable("/chat/close/" + chatID)
	}
	return f.closeChat(ctx, chatID)
}

func (f *fakeBackend) Tickets(ctx context.Context) ([]domain.Ticket, error) {
	f.record("tickets")
	if f.tickets == nil {
		return nil, unavailable("/tickets")
	}
	return f.tickets(ctx)
}

func (f *fakeBackend) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	f.record("ticket-status:" + id + ":" + string(status))
	if f.updateTicketStatus == nil {
		return unavailable("/tickets/" + id + "/status")
	}
	return f.updateTicketStatus(ctx, id, status)
}

func (f *fakeBackend) AssignTicket(ctx context.Context, id, assignee string) error {
	f.record("assign:" + id + ":" + assignee)
	if f.assignTicket == nil {
		return unavailable("/tickets/" + id + "/assign")
	}
	return f.assignTicket(ctx, id, assignee)
}

func (f *fakeBackend) MyTasks(ctx context.Context) ([]domain.Task, error) {
	f.record("tasks")
	if f.myTasks == nil {
		return nil, unavailable("/tasks/my")
	}
	return f.myTasks(ctx)
}

func (f *fakeBackend) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	f.record("task-status:" + id + ":" + string(status))
	if f.updateTaskStatus == nil {
		return unavailable("/tasks/" + id + "/status")
	}
	return f.updateTaskStatus(ctx, id, status)
}

func (f *fakeBackend) Staff(ctx context.Context) ([]domain.Identity, error) {
	f.record("staff")
	if f.staff == nil {
		return nil, unavailable("/staff")
	}
	return f.staff(ctx)
}

func (f *fakeBackend) UpdateStaffRole(ctx context.Context, id string, role domain.Role) error {
	f.record("staff-role:" + id + ":" + string(role))
	if f.updateStaffRole == nil {
		return unavailable("/staff/" + id + "/role")
	}
	return f.updateStaffRole(ctx, id, role)
}
