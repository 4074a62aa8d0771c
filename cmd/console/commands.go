package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/spec-kit/nexus-console/internal/console"
	"github.com/spec-kit/nexus-console/internal/domain"
)

var errNotSignedIn = errors.New("not signed in; run: console login <email> <password>")

type commandRunner struct {
	console *console.Console
	out     io.Writer
	warn    io.Writer
}

type command struct {
	args   string
	nargs  int
	open   bool
	signed bool
	fn     func(r *commandRunner, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":         {args: "<email> <password>", nargs: 2, fn: (*commandRunner).login},
	"logout":        {fn: (*commandRunner).logout},
	"whoami":        {fn: (*commandRunner).whoami},
	"lang":          {args: "<en|hi>", nargs: 1, fn: (*commandRunner).lang},
	"menu":          {signed: true, fn: (*commandRunner).menu},
	"dashboard":     {signed: true, fn: (*commandRunner).dashboard},
	"chats":         {signed: true, fn: (*commandRunner).chats},
	"open":          {args: "<chatID>", nargs: 1, signed: true, fn: (*commandRunner).openChat},
	"send":          {args: "<chatID> <text...>", nargs: 2, open: true, signed: true, fn: (*commandRunner).send},
	"close":         {args: "<chatID>", nargs: 1, signed: true, fn: (*commandRunner).closeChat},
	"tickets":       {open: true, signed: true, fn: (*commandRunner).tickets},
	"ticket-status": {args: "<id> <status>", nargs: 2, signed: true, fn: (*commandRunner).ticketStatus},
	"assign":        {args: "<id> <assignee>", nargs: 2, open: true, signed: true, fn: (*commandRunner).assign},
	"tasks":         {signed: true, fn: (*commandRunner).tasks},
	"move":          {args: "<taskID> <status>", nargs: 2, signed: true, fn: (*commandRunner).move},
	"staff":         {signed: true, fn: (*commandRunner).staff},
	"role":          {args: "<staffID> <role>", nargs: 2, signed: true, fn: (*commandRunner).role},
}

// run checks arity and the session, then dispatches. open commands accept
// more than nargs arguments.
func (r *commandRunner) run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (see --help)", name)
	}
	if len(args) < cmd.nargs || (!cmd.open && len(args) > cmd.nargs) {
		return fmt.Errorf("usage: console %s %s", name, cmd.args)
	}
	if cmd.signed && r.console.Session().Identity() == nil {
		return errNotSignedIn
	}
	return cmd.fn(r, ctx, args)
}

// checkLoad turns a load result into the command outcome. Fixture data is
// shown with a notice rather than failing.
func (r *commandRunner) checkLoad(res console.Result) error {
	switch {
	case res.Source == console.SourceFixture:
		fmt.Fprintf(r.warn, "warning: API unavailable, showing sample data (%v)\n", res.Err)
		return nil
	case res.Err != nil:
		return res.Err
	}
	return nil
}

func (r *commandRunner) login(ctx context.Context, args []string) error {
	id, _, err := r.console.Login(ctx, args[0], args[1])
	if err != nil {
		return errors.New(console.LoginFailedMessage)
	}
	fmt.Fprintf(r.out, "Signed in as %s (%s)\n", id.Name, id.Role)
	return nil
}

func (r *commandRunner) logout(ctx context.Context, _ []string) error {
	if _, err := r.console.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Signed out")
	return nil
}

func (r *commandRunner) whoami(_ context.Context, _ []string) error {
	id := r.console.Session().Identity()
	if id == nil {
		fmt.Fprintln(r.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(r.out, "%s <%s>\nrole:   %s\nstatus: %s\nlang:   %s\n", id.Name, id.Email, id.Role, id.Status, r.console.Session().Language())
	return nil
}

func (r *commandRunner) lang(ctx context.Context, args []string) error {
	lang, ok := domain.ParseLanguage(args[0])
	if !ok {
		return fmt.Errorf("unsupported language %q", args[0])
	}
	if err := r.console.SetLanguage(ctx, lang); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Language set to %s\n", lang)
	return nil
}

func (r *commandRunner) menu(_ context.Context, _ []string) error {
	for _, item := range r.console.Menu() {
		fmt.Fprintf(r.out, "%-10s %s\n", item.Route, item.Label)
	}
	return nil
}

func (r *commandRunner) dashboard(ctx context.Context, _ []string) error {
	if err := r.checkLoad(r.console.LoadDashboard(ctx)); err != nil {
		return err
	}
	s, _ := r.console.Dashboard()
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total tickets\t%d\n", s.TotalTickets)
	fmt.Fprintf(w, "Open tickets\t%d\n", s.OpenTickets)
	fmt.Fprintf(w, "Active chats\t%d\n", s.ActiveChats)
	fmt.Fprintf(w, "Assigned tasks\t%d\n", s.AssignedTasks)
	fmt.Fprintf(w, "Staff online\t%d\n", s.StaffOnline)
	fmt.Fprintf(w, "Performance\t%d%%\n", s.Performance)
	return w.Flush()
}

func (r *commandRunner) chats(ctx context.Context, _ []string) error {
	if err := r.checkLoad(r.console.LoadChats(ctx)); err != nil {
		return err
	}
	inbox := r.console.Inbox()
	if len(inbox.Conversations) == 0 {
		fmt.Fprintln(r.out, "No open conversations")
		return nil
	}
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWITH\tUNREAD\tLAST")
	for _, conv := range inbox.Conversations {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", conv.ID, conv.Title(), conv.UnreadCount, conv.LastMessage)
	}
	return w.Flush()
}

func (r *commandRunner) openChat(ctx context.Context, args []string) error {
	if err := r.checkLoad(r.console.SelectConversation(ctx, args[0])); err != nil {
		return err
	}
	me := ""
	if id := r.console.Session().Identity(); id != nil {
		me = id.ID
	}
	for _, m := range r.console.Inbox().Messages {
		who := m.SenderID
		if who == me {
			who = "you"
		}
		fmt.Fprintf(r.out, "[%s] %s: %s\n", m.Timestamp, who, m.Text)
	}
	return nil
}

func (r *commandRunner) send(ctx context.Context, args []string) error {
	r.console.Chat().SetActive(args[0])
	op := r.console.SendMessage(ctx, strings.Join(args[1:], " "))
	if op == nil {
		return errors.New("message is empty")
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("message not delivered: %w", err)
	}
	fmt.Fprintf(r.out, "Sent (%s)\n", op.RecordKey())
	return nil
}

func (r *commandRunner) closeChat(ctx context.Context, args []string) error {
	if res := r.console.CloseConversation(ctx, args[0]); res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(r.out, "Conversation %s closed\n", args[0])
	return nil
}

func (r *commandRunner) tickets(ctx context.Context, args []string) error {
	var status string
	flags := pflag.NewFlagSet("tickets", pflag.ContinueOnError)
	flags.SetOutput(r.warn)
	flags.StringVar(&status, "status", console.FilterAll, "only show tickets with this status")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	if err := r.checkLoad(r.console.LoadTickets(ctx)); err != nil {
		return err
	}
	board := r.console.TicketBoard(strings.ToUpper(status))
	if len(board.Rows) == 0 {
		fmt.Fprintln(r.out, "No tickets")
		return nil
	}
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tASSIGNEE\tTITLE\tACTIONS")
	for _, row := range board.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", row.ID, row.Status, row.Priority, orDash(row.AssignedTo), row.Title, ticketActions(row))
	}
	return w.Flush()
}

func ticketActions(row console.TicketRow) string {
	var actions []string
	if row.CanManageStatus {
		actions = append(actions, "status")
	}
	if row.CanAssign {
		actions = append(actions, "assign")
	}
	return orDash(strings.Join(actions, ","))
}

func (r *commandRunner) ticketStatus(ctx context.Context, args []string) error {
	status := domain.TicketStatus(strings.ToUpper(args[1]))
	if res := r.console.ChangeTicketStatus(ctx, args[0], status); res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(r.out, "Ticket %s is now %s\n", args[0], status)
	return nil
}

func (r *commandRunner) assign(ctx context.Context, args []string) error {
	assignee := strings.Join(args[1:], " ")
	if res := r.console.AssignTicket(ctx, args[0], assignee); res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(r.out, "Ticket %s assigned to %s\n", args[0], assignee)
	return nil
}

func (r *commandRunner) tasks(ctx context.Context, _ []string) error {
	if err := r.checkLoad(r.console.LoadTasks(ctx)); err != nil {
		return err
	}
	board := r.console.TaskBoard()
	for _, col := range board.Columns {
		fmt.Fprintf(r.out, "== %s (%d)\n", col.Title, len(col.Tasks))
		for _, t := range col.Tasks {
			fmt.Fprintf(r.out, "  %s  %s  [%s]\n", t.ID, t.Title, orDash(t.AssignedTo))
		}
	}
	if len(board.Unsorted) > 0 {
		fmt.Fprintf(r.out, "== Other (%d)\n", len(board.Unsorted))
		for _, t := range board.Unsorted {
			fmt.Fprintf(r.out, "  %s  %s  (%s)\n", t.ID, t.Title, t.Status)
		}
	}
	return nil
}

func (r *commandRunner) move(ctx context.Context, args []string) error {
	if err := r.checkLoad(r.console.LoadTasks(ctx)); err != nil {
		return err
	}
	status := domain.TaskStatus(strings.ToUpper(args[1]))
	op := r.console.MoveTask(ctx, args[0], status)
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("move rejected: %w", err)
	}
	fmt.Fprintf(r.out, "Task %s moved to %s\n", args[0], status)
	return nil
}

func (r *commandRunner) staff(ctx context.Context, _ []string) error {
	if err := r.checkLoad(r.console.LoadStaff(ctx)); err != nil {
		return err
	}
	roster := r.console.StaffRoster()
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
	for _, row := range roster.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.ID, row.Name, row.Email, row.Role, row.Status)
	}
	return w.Flush()
}

func (r *commandRunner) role(ctx context.Context, args []string) error {
	role := domain.Role(strings.ToUpper(args[1]))
	if res := r.console.ChangeStaffRole(ctx, args[0], role); res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(r.out, "Staff %s is now %s\n", args[0], role)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
