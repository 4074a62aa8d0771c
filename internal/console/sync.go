package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// View identifies a screen whose fetches are tracked by generation.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewChat      View = "chat"
	ViewMessages  View = "messages"
	ViewTickets   View = "tickets"
	ViewTasks     View = "tasks"
	ViewStaff     View = "staff"
)

// Source tells where the data behind a Result came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceFixture Source = "fixture"
	SourceNone    Source = "none"
)

// Result reports the outcome of a fetch or a remote-first mutation. Err
// carries the remote failure even when fixtures were substituted.
type Result struct {
	Source Source
	Stale  bool
	Err    error
}

// OK reports a fresh remote result.
func (r Result) OK() bool {
	return r.Err == nil && !r.Stale && r.Source == SourceRemote
}

// Leave marks view as abandoned: responses to fetches already in flight for
// it are dropped instead of being applied.
func (c *Console) Leave(view View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[view]++
}

func (c *Console) begin(view View) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[view]++
	return c.generations[view]
}

func (c *Console) current(view View, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[view] == gen
}

// load runs fetch for view and applies the data unless a newer fetch or a
// Leave superseded it. On failure fallback data is applied when fixtures
// are enabled.
func load[T any](ctx context.Context, c *Console, view View, fetch func(context.Context) (T, error), apply func(T), fallback func() T) Result {
	gen := c.begin(view)
	data, err := fetch(ctx)
	if !c.current(view, gen) {
		c.logger.Debug("dropping superseded response", zap.String("view", string(view)))
		return Result{Source: SourceNone, Stale: true, Err: err}
	}
	if err != nil {
		if c.opts.UseFixtures && fallback != nil {
			c.logger.Warn("fetch failed, showing fixture data", zap.String("view", string(view)), zap.Error(err))
			apply(fallback())
			return Result{Source: SourceFixture, Err: err}
		}
		c.logger.Warn("fetch failed", zap.String("view", string(view)), zap.Error(err))
		return Result{Source: SourceNone, Err: err}
	}
	apply(data)
	return Result{Source: SourceRemote}
}

// LoadDashboard fetches the home view counters.
func (c *Console) LoadDashboard(ctx context.Context) Result {
	return load(ctx, c, ViewDashboard, c.api.DashboardSummary,
		func(s domain.DashboardSummary) {
			c.mu.Lock()
			c.dashboard = &s
			c.mu.Unlock()
		},
		fixtureDashboard)
}

// LoadChats fetches the current identity's conversations.
func (c *Console) LoadChats(ctx context.Context) Result {
	return load(ctx, c, ViewChat, c.api.MyChats, c.chat.Conversations.ReplaceAll, fixtureConversations)
}

// LoadTickets fetches the ticket board.
func (c *Console) LoadTickets(ctx context.Context) Result {
	return load(ctx, c, ViewTickets, c.api.Tickets,
		func(tickets []domain.Ticket) {
			for _, t := range tickets {
				if !t.Status.Known() {
					c.logger.Debug("ticket has unrecognized status", zap.String("ticket", t.ID), zap.String("status", string(t.Status)))
				}
			}
			c.tickets.ReplaceAll(tickets)
		},
		fixtureTickets)
}

// LoadTasks fetches the current identity's tasks.
func (c *Console) LoadTasks(ctx context.Context) Result {
	return load(ctx, c, ViewTasks, c.api.MyTasks,
		func(tasks []domain.Task) {
			for _, t := range tasks {
				if !t.Status.Known() {
					c.logger.Debug("task has unrecognized status", zap.String("task", t.ID), zap.String("status", string(t.Status)))
				}
			}
			c.tasks.ReplaceAll(tasks)
		},
		fixtureTasks)
}

// LoadStaff fetches the staff roster.
func (c *Console) LoadStaff(ctx context.Context) Result {
	return load(ctx, c, ViewStaff, c.api.Staff,
		func(staff []domain.Identity) {
			for _, s := range staff {
				if !s.Role.Known() {
					c.logger.Debug("staff member has unrecognized role", zap.String("staff", s.ID), zap.String("role", string(s.Role)))
				}
			}
			c.staff.ReplaceAll(staff)
		},
		fixtureStaff)
}
