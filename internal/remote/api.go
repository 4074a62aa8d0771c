package remote

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// API exposes one typed method per support API endpoint.
type API struct {
	client *Client
}

// NewAPI wraps client.
func NewAPI(client *Client) *API {
	return &API{client: client}
}

// Client returns the underlying transport.
func (a *API) Client() *Client {
	return a.client
}

type statusBody struct {
	Status string `json:"status"`
}

type assignBody struct {
	Assignee string `json:"assignee"`
}

type roleBody struct {
	Role domain.Role `json:"role"`
}

type textBody struct {
	Text string `json:"text"`
}

// Me resolves the identity of the current session. GET /auth/me
func (a *API) Me(ctx context.Context) (*domain.Identity, error) {
	id, err := Get[domain.Identity](ctx, a.client, "/auth/me")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Login exchanges credentials for an identity. POST /auth/login
func (a *API) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	id, err := Post[domain.Identity](ctx, a.client, "/auth/login", creds)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Logout invalidates the server session. POST /auth/logout
func (a *API) Logout(ctx context.Context) error {
	_, err := Post[json.RawMessage](ctx, a.client, "/auth/logout", struct{}{})
	return err
}

// DashboardSummary fetches the home view counters. GET /dashboard/summary
func (a *API) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	return Get[domain.DashboardSummary](ctx, a.client, "/dashboard/summary")
}

// MyChats lists conversations for the current identity. GET /chat/my
func (a *API) MyChats(ctx context.Context) ([]domain.Conversation, error) {
	return Get[[]domain.Conversation](ctx, a.client, "/chat/my")
}

// Messages lists messages of a conversation. GET /chat/messages/{id}
func (a *API) Messages(ctx context.Context, chatID string) ([]domain.Message, error) {
	return Get[[]domain.Message](ctx, a.client, "/chat/messages/"+url.PathEscape(chatID))
}

// SendMessage posts text to a conversation. POST /chat/messages/{id}
// The returned message is nil when the server does not echo one back.
func (a *API) SendMessage(ctx context.Context, chatID, text string) (*domain.Message, error) {
	raw, err := Post[json.RawMessage](ctx, a.client, "/chat/messages/"+url.PathEscape(chatID), textBody{Text: text})
	if err != nil {
		return nil, err
	}
	var msg domain.Message
	if len(raw) == 0 || json.Unmarshal(raw, &msg) != nil || msg.ID == "" {
		return nil, nil
	}
	return &msg, nil
}

// MarkRead marks a conversation read. POST /chat/{id}/read
func (a *API) MarkRead(ctx context.Context, chatID string) error {
	_, err := Post[json.RawMessage](ctx, a.client, "/chat/"+url.PathEscape(chatID)+"/read", struct{}{})
	return err
}

// CloseChat ends a conversation. POST /chat/close/{id}
func (a *API) CloseChat(ctx context.Context, chatID string) error {
	_, err := Post[json.RawMessage](ctx, a.client, "/chat/close/"+url.PathEscape(chatID), struct{}{})
	return err
}

// Tickets lists tickets. GET /tickets
func (a *API) Tickets(ctx context.Context) ([]domain.Ticket, error) {
	return Get[[]domain.Ticket](ctx, a.client, "/tickets")
}

// UpdateTicketStatus changes a ticket's status. PUT /tickets/{id}/status
func (a *API) UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	_, err := Put[json.RawMessage](ctx, a.client, "/tickets/"+url.PathEscape(ticketID)+"/status", statusBody{Status: string(status)})
	return err
}

// AssignTicket assigns a ticket. POST /tickets/{id}/assign
func (a *API) AssignTicket(ctx context.Context, ticketID, assignee string) error {
	_, err := Post[json.RawMessage](ctx, a.client, "/tickets/"+url.PathEscape(ticketID)+"/assign", assignBody{Assignee: assignee})
	return err
}

// MyTasks lists tasks for the current identity. GET /tasks/my
func (a *API) MyTasks(ctx context.Context) ([]domain.Task, error) {
	return Get[[]domain.Task](ctx, a.client, "/tasks/my")
}

// UpdateTaskStatus moves a task between columns. PUT /tasks/{id}/status
func (a *API) UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus) error {
	_, err := Put[json.RawMessage](ctx, a.client, "/tasks/"+url.PathEscape(taskID)+"/status", statusBody{Status: string(status)})
	return err
}

// Staff lists the staff roster. GET /staff
func (a *API) Staff(ctx context.Context) ([]domain.Identity, error) {
	return Get[[]domain.Identity](ctx, a.client, "/staff")
}

// UpdateStaffRole changes a staff member's role. PUT /staff/{id}/role
func (a *API) UpdateStaffRole(ctx context.Context, staffID string, role domain.Role) error {
	_, err := Put[json.RawMessage](ctx, a.client, "/staff/"+url.PathEscape(staffID)+"/role", roleBody{Role: role})
	return err
}
