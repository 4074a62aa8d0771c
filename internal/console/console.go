// Package console is the view/sync layer: it calls the support API, folds
// the results into the client-side slices and derives the role-gated views.
package console

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/session"
	"github.com/spec-kit/nexus-console/internal/store"
)

// Routes returned by navigation-producing operations.
const (
	RouteHome  = "/"
	RouteLogin = "/login"
)

// Backend is the subset of the support API the console calls.
// *remote.API satisfies it.
type Backend interface {
	Me(ctx context.Context) (*domain.Identity, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
	Logout(ctx context.Context) error
	DashboardSummary(ctx context.Context) (domain.DashboardSummary, error)
	MyChats(ctx context.Context) ([]domain.Conversation, error)
	Messages(ctx context.Context, chatID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, chatID, text string) (*domain.Message, error)
	MarkRead(ctx context.Context, chatID string) error
	CloseChat(ctx context.Context, chatID string) error
	Tickets(ctx context.Context) ([]domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error
	AssignTicket(ctx context.Context, ticketID, assignee string) error
	MyTasks(ctx context.Context) ([]domain.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus) error
	Staff(ctx context.Context) ([]domain.Identity, error)
	UpdateStaffRole(ctx context.Context, staffID string, role domain.Role) error
}

// Options tune console behavior.
type Options struct {
	// UseFixtures substitutes built-in records when a fetch fails.
	UseFixtures bool
}

// Dependencies are the handles a Console works on. Nil slices, dispatcher
// and logger are created empty.
type Dependencies struct {
	API     Backend
	Session *session.Store
	Chat    *store.ChatSlice
	Tickets *store.TicketSlice
	Tasks   *store.TaskSlice
	Staff   *store.StaffSlice
	Events  events.Dispatcher
	Logger  *zap.Logger
}

// Console coordinates the session, the slices and the API.
type Console struct {
	api     Backend
	session *session.Store
	chat    *store.ChatSlice
	tickets *store.TicketSlice
	tasks   *store.TaskSlice
	staff   *store.StaffSlice
	events  events.Dispatcher
	outbox  *Outbox
	logger  *zap.Logger
	opts    Options

	mu          sync.Mutex
	dashboard   *domain.DashboardSummary
	generations map[View]uint64

	inflight sync.WaitGroup
}

// New wires a console.
func New(deps Dependencies, opts Options) *Console {
	c := &Console{
		api:         deps.API,
		session:     deps.Session,
		chat:        deps.Chat,
		tickets:     deps.Tickets,
		tasks:       deps.Tasks,
		staff:       deps.Staff,
		events:      deps.Events,
		outbox:      NewOutbox(),
		logger:      deps.Logger,
		opts:        opts,
		generations: make(map[View]uint64),
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.chat == nil {
		c.chat = store.NewChatSlice()
	}
	if c.tickets == nil {
		c.tickets = store.NewTicketSlice()
	}
	if c.tasks == nil {
		c.tasks = store.NewTaskSlice()
	}
	if c.staff == nil {
		c.staff = store.NewStaffSlice()
	}
	if c.events == nil {
		c.events = events.NewInMemoryDispatcher(c.logger)
	}
	return c
}

// Session returns the session store.
func (c *Console) Session() *session.Store { return c.session }

func (c *Console) Chat() *store.ChatSlice { return c.chat }

func (c *Console) Tickets() *store.TicketSlice { return c.tickets }

func (c *Console) Tasks() *store.TaskSlice { return c.tasks }

func (c *Console) Staff() *store.StaffSlice { return c.staff }

func (c *Console) Events() events.Dispatcher { return c.events }

// Outbox lists optimistic mutations that are pending or failed.
func (c *Console) Outbox() *Outbox { return c.outbox }

// Boot restores the stored session. When nothing was stored it asks the
// server once who the caller is; any failure leaves the console signed out.
// Loading is false when Boot returns.
func (c *Console) Boot(ctx context.Context) {
	if err := c.session.Initialize(ctx); err != nil {
		c.logger.Warn("session storage unreadable", zap.Error(err))
	}
	if c.session.State().IsAuthenticated {
		c.session.SetLoading(false)
		return
	}

	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	id, err := c.api.Me(ctx)
	if err != nil || id == nil || id.ID == "" {
		c.logger.Debug("no active server session", zap.Error(err))
		return
	}
	c.adopt(ctx, *id)
}

// Login signs in and returns the identity and the route to show next. Every
// failure is reported as ErrInvalidCredentials.
func (c *Console) Login(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	c.session.SetLoading(true)
	defer c.session.SetLoading(false)

	id, err := c.api.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil || id == nil || id.ID == "" {
		c.logger.Info("login rejected", zap.String("email", email), zap.Error(err))
		return nil, "", ErrInvalidCredentials
	}
	c.adopt(ctx, *id)
	return id, RouteHome, nil
}

// Logout ends the server session on a best-effort basis and always tears
// down local state. The returned error only reports a storage failure.
func (c *Console) Logout(ctx context.Context) (string, error) {
	if err := c.api.Logout(ctx); err != nil {
		c.logger.Warn("logout request failed", zap.Error(err))
	}

	err := c.session.Clear(ctx)
	c.chat.Reset()
	c.tickets.Reset()
	c.tasks.Reset()
	c.staff.Reset()
	c.mu.Lock()
	c.dashboard = nil
	c.mu.Unlock()

	c.publish(ctx, events.New(events.EventSessionChanged, "", "", events.SessionPayload{}))
	return RouteLogin, err
}

// SetLanguage switches and persists the UI language.
func (c *Console) SetLanguage(ctx context.Context, lang domain.Language) error {
	return c.session.SetLanguage(ctx, lang)
}

// ToggleLanguage flips between English and Hindi.
func (c *Console) ToggleLanguage(ctx context.Context) (domain.Language, error) {
	next := c.session.Language().Toggle()
	return next, c.session.SetLanguage(ctx, next)
}

// Wait blocks until background calls started by SendMessage, MoveTask and
// SelectConversation have finished, or ctx ends.
func (c *Console) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Console) adopt(ctx context.Context, id domain.Identity) {
	if !id.Role.Known() {
		c.logger.Debug("identity has unrecognized role", zap.String("role", string(id.Role)))
	}
	if err := c.session.SetIdentity(ctx, id); err != nil {
		c.logger.Warn("identity not persisted", zap.Error(err))
	}
	c.publish(ctx, events.New(events.EventSessionChanged, id.ID, id.ID, events.SessionPayload{Identity: &id}))
}

// background runs fn detached from the caller's cancellation.
func (c *Console) background(ctx context.Context, fn func(ctx context.Context)) {
	bg := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn(bg)
	}()
}

func (c *Console) publish(ctx context.Context, e events.Event) {
	_ = c.events.Publish(ctx, e)
}

func (c *Console) actorID() string {
	if id := c.session.Identity(); id != nil {
		return id.ID
	}
	return ""
}
