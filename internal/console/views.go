package console

import (
	"github.com/spec-kit/nexus-console/internal/authz"
	"github.com/spec-kit/nexus-console/internal/domain"
)

// MenuItem is one sidebar entry.
type MenuItem struct {
	Route string
	Label string
}

type menuEntry struct {
	route      string
	label      string
	capability authz.Capability
}

var menuEntries = []menuEntry{
	{route: "/", label: "dashboard", capability: authz.ViewDashboard},
	{route: "/chat", label: "liveChat", capability: authz.ViewChat},
	{route: "/tickets", label: "tickets", capability: authz.ViewTickets},
	{route: "/tasks", label: "tasks", capability: authz.ViewTasks},
	{route: "/staff", label: "staff", capability: authz.ViewStaff},
}

var menuLabels = map[domain.Language]map[string]string{
	domain.LanguageEnglish: {
		"dashboard": "Dashboard",
		"liveChat":  "Live Chat",
		"tickets":   "Tickets",
		"tasks":     "Tasks",
		"staff":     "Staff",
	},
	domain.LanguageHindi: {
		"dashboard": "डैशबोर्ड",
		"liveChat":  "लाइव चैट",
		"tickets":   "टिकट",
		"tasks":     "कार्य",
		"staff":     "कर्मचारी",
	},
}

// Menu lists the entries the current identity may open, labelled in the
// current language. Signed out, it is empty.
func (c *Console) Menu() []MenuItem {
	st := c.session.State()
	if st.Identity == nil {
		return nil
	}
	labels, ok := menuLabels[st.Language]
	if !ok {
		labels = menuLabels[domain.LanguageEnglish]
	}
	var items []MenuItem
	for _, e := range menuEntries {
		if authz.CanPerform(e.capability, st.Identity.Role) {
			items = append(items, MenuItem{Route: e.route, Label: labels[e.label]})
		}
	}
	return items
}

// FilterAll shows tickets of every status.
const FilterAll = "ALL"

// TicketRow is a ticket with the actions the current identity has on it.
type TicketRow struct {
	domain.Ticket
	CanManageStatus bool
	CanAssign       bool
}

// TicketBoard is the filtered ticket list.
type TicketBoard struct {
	Filter    string
	Rows      []TicketRow
	CanCreate bool
}

// TicketBoard filters tickets by status (FilterAll or "" for every ticket).
// Status may be managed by managers and by the ticket's assignee.
func (c *Console) TicketBoard(filter string) TicketBoard {
	if filter == "" {
		filter = FilterAll
	}
	id := c.session.Identity()
	board := TicketBoard{
		Filter:    filter,
		CanCreate: authz.IdentityCan(authz.CreateTicket, id),
	}
	canAssign := authz.IdentityCan(authz.AssignTicket, id)
	isManager := authz.IdentityCan(authz.ManageTicketStatus, id)

	for _, t := range c.tickets.All() {
		if filter != FilterAll && string(t.Status) != filter {
			continue
		}
		isAssignee := id != nil && t.AssignedTo != "" && t.AssignedTo == id.Name
		board.Rows = append(board.Rows, TicketRow{
			Ticket:          t,
			CanManageStatus: isManager || isAssignee,
			CanAssign:       canAssign,
		})
	}
	return board
}

// TaskColumn is one column of the task board.
type TaskColumn struct {
	Status domain.TaskStatus
	Title  string
	Tasks  []domain.Task
}

// TaskBoard groups tasks into their columns. Tasks whose status is not a
// known column are kept in Unsorted rather than hidden.
type TaskBoard struct {
	Columns   []TaskColumn
	Unsorted  []domain.Task
	CanCreate bool
}

var columnTitles = map[domain.TaskStatus]string{
	domain.TaskStatusTodo:  "Todo",
	domain.TaskStatusDoing: "In Progress",
	domain.TaskStatusDone:  "Completed",
}

// TaskBoard builds the kanban columns in slice order.
func (c *Console) TaskBoard() TaskBoard {
	board := TaskBoard{CanCreate: authz.IdentityCan(authz.CreateTask, c.session.Identity())}
	index := make(map[domain.TaskStatus]int)
	for i, status := range domain.TaskStatuses() {
		index[status] = i
		board.Columns = append(board.Columns, TaskColumn{Status: status, Title: columnTitles[status]})
	}
	for _, t := range c.tasks.All() {
		if i, ok := index[t.Status]; ok {
			board.Columns[i].Tasks = append(board.Columns[i].Tasks, t)
			continue
		}
		board.Unsorted = append(board.Unsorted, t)
	}
	return board
}

// StaffRow is a roster entry.
type StaffRow struct {
	domain.Identity
	Editable bool
}

// StaffRoster is the roster as the current identity may see and edit it.
type StaffRoster struct {
	Rows    []StaffRow
	CanEdit bool
}

// StaffRoster lists staff; roles are editable only for staff managers.
func (c *Console) StaffRoster() StaffRoster {
	canEdit := authz.IdentityCan(authz.ManageStaff, c.session.Identity())
	roster := StaffRoster{CanEdit: canEdit}
	for _, m := range c.staff.All() {
		roster.Rows = append(roster.Rows, StaffRow{Identity: m, Editable: canEdit})
	}
	return roster
}

// Dashboard returns the last loaded summary.
func (c *Console) Dashboard() (domain.DashboardSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dashboard == nil {
		return domain.DashboardSummary{}, false
	}
	return *c.dashboard, true
}

// Inbox is the chat screen: conversations, the open one and its messages.
type Inbox struct {
	Conversations []domain.Conversation
	ActiveID      string
	Messages      []domain.Message
	CanJoin       bool
}

// Inbox snapshots the chat slice.
func (c *Console) Inbox() Inbox {
	return Inbox{
		Conversations: c.chat.Conversations.All(),
		ActiveID:      c.chat.Active(),
		Messages:      c.chat.Messages.All(),
		CanJoin:       authz.IdentityCan(authz.JoinChat, c.session.Identity()),
	}
}
