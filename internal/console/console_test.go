package console

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/persistence"
	"github.com/spec-kit/nexus-console/internal/session"
)

var (
	adminID = domain.Identity{ID: "1", Name: "Admin", Email: "admin@nexus.io", Role: domain.RoleAdmin, Status: domain.PresenceOnline}
	devID   = domain.Identity{ID: "3", Name: "Dev John", Email: "john@nexus.io", Role: domain.RoleDeveloper, Status: domain.PresenceOnline}
)

func newTestConsole(t *testing.T, fb *fakeBackend, opts Options) (*Console, *persistence.MemoryStorage) {
	t.Helper()
	storage := persistence.NewMemoryStorage()
	c := New(Dependencies{API: fb, Session: session.New(storage, nil)}, opts)
	return c, storage
}

func signIn(t *testing.T, c *Console, id domain.Identity) {
	t.Helper()
	require.NoError(t, c.Session().SetIdentity(context.Background(), id))
}

func waitIdle(t *testing.T, c *Console) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestBootRestoresStoredIdentityWithoutNetwork(t *testing.T) {
	fb := &fakeBackend{}
	c, storage := newTestConsole(t, fb, Options{})
	raw, _ := json.Marshal(adminID)
	require.NoError(t, storage.Set(context.Background(), session.KeyIdentity, string(raw)))

	c.Boot(context.Background())

	st := c.Session().State()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, adminID, *st.Identity)
	assert.Empty(t, fb.Calls())
}

func TestBootWithoutSessionAsksServerOnce(t *testing.T) {
	fb := &fakeBackend{}
	c, _ := newTestConsole(t, fb, Options{})

	c.Boot(context.Background())

	st := c.Session().State()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.Identity)
	assert.Equal(t, []string{"me"}, fb.Calls())
}

func TestBootAdoptsServerSession(t *testing.T) {
	fb := &fakeBackend{me: func(context.Context) (*domain.Identity, error) { id := devID; return &id, nil }}
	c, storage := newTestConsole(t, fb, Options{})

	c.Boot(context.Background())

	assert.True(t, c.Session().State().IsAuthenticated)
	_, ok, _ := storage.Get(context.Background(), session.KeyIdentity)
	assert.True(t, ok)
}

func TestLoginSuccessStoresIdentityAndRoutesHome(t *testing.T) {
	fb := &fakeBackend{login: func(_ context.Context, creds domain.Credentials) (*domain.Identity, error) {
		assert.Equal(t, "admin@nexus.io", creds.Email)
		id := adminID
		return &id, nil
	}}
	c, _ := newTestConsole(t, fb, Options{})
	c.Boot(context.Background())

	var sessionEvents int
	c.Events().Subscribe(events.EventSessionChanged, func(context.Context, events.Event) error {
		sessionEvents++
		return nil
	})

	id, route, err := c.Login(context.Background(), "admin@nexus.io", "secret")
	require.NoError(t, err)
	assert.Equal(t, RouteHome, route)
	assert.Equal(t, "Admin", id.Name)

	st := c.Session().State()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, 1, sessionEvents)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	c, _ := newTestConsole(t, &fakeBackend{}, Options{})

	id, route, err := c.Login(context.Background(), "admin@nexus.io", "wrong")
	assert.Nil(t, id)
	assert.Empty(t, route)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, c.Session().State().Loading)
	assert.False(t, c.Session().State().IsAuthenticated)
}

func TestLogoutTearsDownEvenWhenServerFails(t *testing.T) {
	c, storage := newTestConsole(t, &fakeBackend{}, Options{UseFixtures: true})
	ctx := context.Background()
	signIn(t, c, adminID)
	require.NoError(t, c.SetLanguage(ctx, domain.LanguageHindi))
	c.LoadTickets(ctx)
	require.NotZero(t, c.Tickets().Len())

	route, err := c.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, RouteLogin, route)
	assert.False(t, c.Session().State().IsAuthenticated)
	assert.Zero(t, c.Tickets().Len())

	_, ok, _ := storage.Get(ctx, session.KeyIdentity)
	assert.False(t, ok)
	lang, ok, _ := storage.Get(ctx, session.KeyLanguage)
	assert.True(t, ok)
	assert.Equal(t, "hi", lang)
}

func TestToggleLanguage(t *testing.T) {
	c, _ := newTestConsole(t, &fakeBackend{}, Options{})
	ctx := context.Background()

	lang, err := c.ToggleLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageHindi, lang)
	lang, err = c.ToggleLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageEnglish, lang)
}

func TestLoadFallsBackToFixtures(t *testing.T) {
	c, _ := newTestConsole(t, &fakeBackend{}, Options{UseFixtures: true})
	ctx := context.Background()

	res := c.LoadDashboard(ctx)
	assert.Equal(t, SourceFixture, res.Source)
	assert.Error(t, res.Err)
	summary, ok := c.Dashboard()
	require.True(t, ok)
	assert.Equal(t, 128, summary.TotalTickets)
	assert.Equal(t, 92, summary.Performance)

	assert.Equal(t, SourceFixture, c.LoadChats(ctx).Source)
	conv, ok := c.Chat().Conversations.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Alex", conv.Title())
	assert.Equal(t, 2, conv.UnreadCount)

	assert.Equal(t, SourceFixture, c.LoadTasks(ctx).Source)
	assert.Equal(t, []string{"t1", "t2", "t3"}, c.Tasks().Keys())

	assert.Equal(t, SourceFixture, c.LoadStaff(ctx).Source)
	assert.Equal(t, 4, c.Staff().Len())
}

func TestLoadWithoutFixturesLeavesSliceAlone(t *testing.T) {
	c, _ := newTestConsole(t, &fakeBackend{}, Options{})
	c.Tickets().ReplaceAll([]domain.Ticket{{ID: "keep"}})

	res := c.LoadTickets(context.Background())
	assert.Equal(t, SourceNone, res.Source)
	assert.False(t, res.OK())
	assert.Equal(t, []string{"keep"}, c.Tickets().Keys())
}

func TestLoadKeepsUnknownStatusesVerbatim(t *testing.T) {
	fb := &fakeBackend{tickets: func(context.Context) ([]domain.Ticket, error) {
		return []domain.Ticket{{ID: "t1", Status: "ESCALATED"}}, nil
	}}
	c, _ := newTestConsole(t, fb, Options{})

	require.True(t, c.LoadTickets(context.Background()).OK())
	got, _ := c.Tickets().Get("t1")
	assert.Equal(t, domain.TicketStatus("ESCALATED"), got.Status)
}

func TestLeaveDropsInFlightResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fb := &fakeBackend{tickets: func(context.Context) ([]domain.Ticket, error) {
		close(started)
		<-release
		return []domain.Ticket{{ID: "late"}}, nil
	}}
	c, _ := newTestConsole(t, fb, Options{UseFixtures: true})

	done := make(chan Result, 1)
	go func() { done <- c.LoadTickets(context.Background()) }()
	<-started
	c.Leave(ViewTickets)
	close(release)

	res := <-done
	assert.True(t, res.Stale)
	assert.Zero(t, c.Tickets().Len())
}

func TestNewerLoadSupersedesOlder(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	fb := &fakeBackend{myTasks: func(context.Context) ([]domain.Task, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			return []domain.Task{{ID: "old"}}, nil
		}
		return []domain.Task{{ID: "new"}}, nil
	}}
	c, _ := newTestConsole(t, fb, Options{})

	first := make(chan Result, 1)
	go func() { first <- c.LoadTasks(context.Background()) }()
	<-firstStarted

	require.True(t, c.LoadTasks(context.Background()).OK())
	close(releaseFirst)

	assert.True(t, (<-first).Stale)
	assert.Equal(t, []string{"new"}, c.Tasks().Keys())
}

func TestSelectConversationReplacesMessagesThenMarksRead(t *testing.T) {
	fb := &fakeBackend{
		messages: func(_ context.Context, id string) ([]domain.Message, error) {
			return []domain.Message{{ID: "s1", ChatID: id, Text: "hello"}}, nil
		},
		markRead: func(context.Context, string) error { return nil },
	}
	c, _ := newTestConsole(t, fb, Options{})
	c.Chat().Conversations.ReplaceAll([]domain.Conversation{{ID: "c1", UnreadCount: 3}})
	c.Chat().Messages.AppendOne(domain.Message{ID: "stale"})

	res := c.SelectConversation(context.Background(), "c1")
	require.True(t, res.OK())
	assert.Equal(t, []string{"s1"}, c.Chat().Messages.Keys())

	waitIdle(t, c)
	assert.Equal(t, []string{"messages:c1", "read:c1"}, fb.Calls())
	conv, _ := c.Chat().Conversations.Get("c1")
	assert.Zero(t, conv.UnreadCount)
}

func TestSupersededSelectionStillMarksRead(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	fb := &fakeBackend{
		messages: func(_ context.Context, id string) ([]domain.Message, error) {
			if id == "c1" {
				close(firstStarted)
				<-releaseFirst
			}
			return []domain.Message{{ID: "m-" + id, ChatID: id}}, nil
		},
		markRead: func(context.Context, string) error { return nil },
	}
	c, _ := newTestConsole(t, fb, Options{})
	c.Chat().Conversations.ReplaceAll([]domain.Conversation{{ID: "c1", UnreadCount: 2}, {ID: "c2", UnreadCount: 1}})

	first := make(chan Result, 1)
	go func() { first <- c.SelectConversation(context.Background(), "c1") }()
	<-firstStarted

	require.True(t, c.SelectConversation(context.Background(), "c2").OK())
	close(releaseFirst)
	assert.True(t, (<-first).Stale)
	waitIdle(t, c)

	assert.Contains(t, fb.Calls(), "read:c1")
	assert.Contains(t, fb.Calls(), "read:c2")
	assert.Equal(t, []string{"m-c2"}, c.Chat().Messages.Keys())
	conv, _ := c.Chat().Conversations.Get("c1")
	assert.Zero(t, conv.UnreadCount)
}

func TestSelectConversationSwallowsMarkReadFailure(t *testing.T) {
	c, _ := newTestConsole(t, &fakeBackend{}, Options{UseFixtures: true})
	signIn(t, c, adminID)
	c.Chat().Conversations.ReplaceAll([]domain.Conversation{{ID: "c1", UnreadCount: 3}})

	res := c.SelectConversation(context.Background(), "c1")
	assert.Equal(t, SourceFixture, res.Source)
	waitIdle(t, c)

	msgs := c.Chat().Messages.All()
	require.Len(t, msgs, 2)
	assert.Equal(t, "customer", msgs[0].SenderID)
	assert.Equal(t, adminID.ID, msgs[1].SenderID)

	conv, _ := c.Chat().Conversations.Get("c1")
	assert.Equal(t, 3, conv.UnreadCount)
	assert.Empty(t, c.Outbox().Failed())
}

func TestSendMessageKeepsCallOrderWhateverCompletionOrder(t *testing.T) {
	gates := map[string]chan struct{}{"one": make(chan struct{}), "two": make(chan struct{})}
	finished := make(chan string, 2)
	fb := &fakeBackend{sendMessage: func(_ context.Context, chatID, text string) (*domain.Message, error) {
		<-gates[text]
		defer func() { finished <- text }()
		return &domain.Message{ID: "srv-" + text, ChatID: chatID, SenderID: "1", Text: text}, nil
	}}
	c, _ := newTestConsole(t, fb, Options{})
	signIn(t, c, adminID)
	c.Chat().SetActive("c1")

	op1 := c.SendMessage(context.Background(), "one")
	op2 := c.SendMessage(context.Background(), "two")
	require.NotNil(t, op1)
	require.NotNil(t, op2)

	before := c.Chat().Messages.All()
	require.Len(t, before, 2)
	assert.Equal(t, "one", before[0].Text)
	assert.Equal(t, "two", before[1].Text)
	assert.True(t, strings.HasPrefix(before[0].ID, PlaceholderPrefix))
	assert.Equal(t, domain.DeliveryPending, before[0].Delivery)
	assert.Len(t, c.Outbox().Pending(), 2)

	close(gates["two"])
	assert.Equal(t, "two", <-finished)
	close(gates["one"])
	waitIdle(t, c)

	after := c.Chat().Messages.All()
	require.Len(t, after, 2)
	assert.Equal(t, []string{"srv-one", "srv-two"}, []string{after[0].ID, after[1].ID})
	assert.Equal(t, domain.DeliverySent, after[0].Delivery)
	assert.Equal(t, OpConfirmed, op1.State())
	assert.Equal(t, "srv-one", op1.RecordKey())
	assert.Empty(t, c.Outbox().Pending())
}

func TestSendMessageFailureIsSurfaced(t *testing.T) {
	c, _ := newTestConsole(t, &fakeBackend{}, Options{})
	c.Chat().SetActive("c1")

	var failed []events.Event
	var mu sync.Mutex
	c.Events().Subscribe(events.EventOperationFailed, func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, e)
		return nil
	})

	op := c.SendMessage(context.Background(), "hello")
	require.NotNil(t, op)
	require.Error(t, op.Wait(context.Background()))
	waitIdle(t, c)

	msgs := c.Chat().Messages.All()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.DeliveryFailed, msgs[0].Delivery)
	assert.Equal(t, "agent", msgs[0].SenderID)
	assert.Equal(t, OpFailed, op.State())

	require.Len(t, c.Outbox().Failed(), 1)
	assert.True(t, c.Outbox().Dismiss(op.ID))
	assert.Empty(t, c.Outbox().Failed())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 1)
	assert.Equal(t, op.ID, failed[0].Subject)
}

func TestSendMessageWithoutEchoMarksSent(t *testing.T) {
	fb := &fakeBackend{sendMessage: func(context.Context, string, string) (*domain.Message, error) { return nil, nil }}
	c, _ := newTestConsole(t, fb, Options{})
	c.Chat().SetActive("c1")

	op := c.SendMessage(context.Background(), "hi")
	require.NoError(t, op.Wait(context.Background()))
	waitIdle(t, c)

	msgs := c.Chat().Messages.All()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.DeliverySent, msgs[0].Delivery)
	assert.True(t, strings.HasPrefix(msgs[0].ID, PlaceholderPrefix))
}

func TestSendMessageNoops(t *testing.T) {
	fb := &fakeBackend{}
	c, _ := newTestConsole(t, fb, Options{})

	assert.Nil(t, c.SendMessage(context.Background(), "hello"))
	c.Chat().SetActive("c1")
	assert.Nil(t, c.SendMessage(context.Background(), "   "))
	assert.Empty(t, fb.Calls())
}

func TestCloseConversation(t *testing.T) {
	fb := &fakeBackend{closeChat: func(context.Context, string) error { return nil }}
	c, _ := newTestConsole(t, fb, Options{})
	c.Chat().Conversations.ReplaceAll([]domain.Conversation{{ID: "c1"}, {ID: "c2"}})
	c.Chat().SetActive("c1")

	require.True(t, c.CloseConversation(context.Background(), "c1").OK())
	assert.Empty(t, c.Chat().Active())
	assert.Equal(t, []string{"c2"}, c.Chat().Conversations.Keys())
}

func TestRejectedCloseKeepsConversation(t *testing.T) {
	c, _ := newTestConsole(t, &fakeBackend{}, Options{})
	c.Chat().Conversations.ReplaceAll([]domain.Conversation{{ID: "c1"}})
	c.Chat().SetActive("c1")

	assert.Error(t, c.CloseConversation(context.Background(), "c1").Err)
	assert.Equal(t, "c1", c.Chat().Active())
	assert.Equal(t, []string{"c1"}, c.Chat().Conversations.Keys())
}

func TestTicketStatusChangeIsRemoteFirst(t *testing.T) {
	fb := &fakeBackend{}
	c, _ := newTestConsole(t, fb, Options{})
	c.Tickets().ReplaceAll([]domain.Ticket{{ID: "t1", Status: domain.TicketStatusNew}})

	res := c.ChangeTicketStatus(context.Background(), "t1", domain.TicketStatusResolved)
	assert.Error(t, res.Err)
	got, _ := c.Tickets().Get("t1")
	assert.Equal(t, domain.TicketStatusNew, got.Status)

	fb.updateTicketStatus = func(context.Context, string, domain.TicketStatus) error { return nil }
	require.True(t, c.ChangeTicketStatus(context.Background(), "t1", domain.TicketStatusResolved).OK())
	got, _ = c.Tickets().Get("t1")
	assert.Equal(t, domain.TicketStatusResolved, got.Status)
}

func TestAssignTicketSetsAssigned(t *testing.T) {
	fb := &fakeBackend{assignTicket: func(context.Context, string, string) error { return nil }}
	c, _ := newTestConsole(t, fb, Options{})
	c.Tickets().ReplaceAll([]domain.Ticket{{ID: "t1", Title: "x", Status: domain.TicketStatusNew}})

	require.True(t, c.AssignTicket(context.Background(), "t1", "Dev John").OK())
	got, _ := c.Tickets().Get("t1")
	assert.Equal(t, "Dev John", got.AssignedTo)
	assert.Equal(t, domain.TicketStatusAssigned, got.Status)
	assert.Equal(t, "x", got.Title)
}

func TestMoveTaskIsLocalFirstAndRollsBackOnFailure(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{updateTaskStatus: func(context.Context, string, domain.TaskStatus) error {
		<-release
		return errors.New("conflict")
	}}
	c, _ := newTestConsole(t, fb, Options{})
	c.Tasks().ReplaceAll([]domain.Task{{ID: "t1", Status: domain.TaskStatusTodo}})

	op := c.MoveTask(context.Background(), "t1", domain.TaskStatusDoing)
	got, _ := c.Tasks().Get("t1")
	assert.Equal(t, domain.TaskStatusDoing, got.Status)
	assert.Equal(t, OpPending, op.State())

	close(release)
	require.Error(t, op.Wait(context.Background()))
	got, _ = c.Tasks().Get("t1")
	assert.Equal(t, domain.TaskStatusTodo, got.Status)
}

func TestMoveTaskRollbackSkipsLaterMoves(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{updateTaskStatus: func(_ context.Context, _ string, status domain.TaskStatus) error {
		if status == domain.TaskStatusDoing {
			<-release
			return errors.New("conflict")
		}
		return nil
	}}
	c, _ := newTestConsole(t, fb, Options{})
	c.Tasks().ReplaceAll([]domain.Task{{ID: "t1", Status: domain.TaskStatusTodo}})

	first := c.MoveTask(context.Background(), "t1", domain.TaskStatusDoing)
	second := c.MoveTask(context.Background(), "t1", domain.TaskStatusDone)
	require.NoError(t, second.Wait(context.Background()))
	close(release)
	require.Error(t, first.Wait(context.Background()))

	got, _ := c.Tasks().Get("t1")
	assert.Equal(t, domain.TaskStatusDone, got.Status)
}

func TestChangeStaffRoleRequiresManageStaff(t *testing.T) {
	fb := &fakeBackend{updateStaffRole: func(context.Context, string, domain.Role) error { return nil }}
	c, _ := newTestConsole(t, fb, Options{})
	c.Staff().ReplaceAll([]domain.Identity{{ID: "2", Role: domain.RoleAgent}})

	signIn(t, c, devID)
	res := c.ChangeStaffRole(context.Background(), "2", domain.RoleSales)
	assert.ErrorIs(t, res.Err, ErrForbidden)
	assert.Empty(t, fb.Calls())

	signIn(t, c, adminID)
	require.True(t, c.ChangeStaffRole(context.Background(), "2", domain.RoleSales).OK())
	got, _ := c.Staff().Get("2")
	assert.Equal(t, domain.RoleSales, got.Role)
}
