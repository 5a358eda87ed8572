package handler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"ffbot/internal/backend"
	"ffbot/internal/domain"
	"ffbot/internal/middleware"
	"ffbot/internal/repository"
	"ffbot/internal/repository/memory"
	"ffbot/internal/service"
	"ffbot/internal/testutil"
	"ffbot/internal/view"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

const testUserID int64 = 100

type apiMessage struct {
	To     string
	Text   string
	Markup *tele.ReplyMarkup
}

// fakeAPI records everything handlers push to the chat
type fakeAPI struct {
	mu      sync.Mutex
	nextID  int
	sent    []apiMessage
	edited  []apiMessage
	deleted []string
	// screen holds sends and edits in order
	screen  []apiMessage
	editErr error
}

func (a *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	m := toMessage(to.Recipient(), what, opts)
	a.sent = append(a.sent, m)
	a.screen = append(a.screen, m)
	return &tele.Message{ID: 1000 + a.nextID}, nil
}

func (a *fakeAPI) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.editErr != nil {
		return nil, a.editErr
	}
	id, chatID := msg.MessageSig()
	m := toMessage(strconv.FormatInt(chatID, 10), what, opts)
	a.edited = append(a.edited, m)
	a.screen = append(a.screen, m)
	n, _ := strconv.Atoi(id)
	return &tele.Message{ID: n}, nil
}

func (a *fakeAPI) Delete(msg tele.Editable) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, _ := msg.MessageSig()
	a.deleted = append(a.deleted, id)
	return nil
}

// last returns the latest message shown to the test user
func (a *fakeAPI) last() apiMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	to := strconv.FormatInt(testUserID, 10)
	for i := len(a.screen) - 1; i >= 0; i-- {
		if a.screen[i].To == to {
			return a.screen[i]
		}
	}
	return apiMessage{}
}

// sentTo returns messages delivered to the given recipient
func (a *fakeAPI) sentTo(to string) []apiMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []apiMessage
	for _, m := range a.sent {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}

func toMessage(to string, what interface{}, opts []interface{}) apiMessage {
	m := apiMessage{To: to}
	switch v := what.(type) {
	case string:
		m.Text = v
	case *tele.Document:
		m.Text = v.FileName
	}
	for _, o := range opts {
		if markup, ok := o.(*tele.ReplyMarkup); ok {
			m.Markup = markup
		}
	}
	return m
}

type fixture struct {
	h        *Handler
	api      *fakeAPI
	repo     *testutil.MockBudgetRepository
	sessions *memory.SessionRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := memory.NewSessionRepo()
	f := newFixtureWith(t, sessions)
	f.sessions = sessions
	return f
}

// newFixtureWith builds the handler over an arbitrary session store
func newFixtureWith(t *testing.T, sessions repository.SessionRepository) *fixture {
	t.Helper()
	repo := new(testutil.MockBudgetRepository)
	api := &fakeAPI{}
	logger := testutil.NewTestLogger()

	auth := service.NewAuthService(repo, logger)
	h := NewHandler(api, middleware.NewGate(auth, time.Second, logger), Services{
		Auth:         auth,
		Groups:       service.NewGroupService(repo, 20, logger),
		Transactions: service.NewTransactionService(repo, logger),
		Spaces:       service.NewSpaceService(repo, logger),
		Periods:      service.NewPeriodService(repo),
	}, sessions, Options{
		Layout:         view.DefaultLayout,
		Timeout:        time.Second,
		CleanupRetries: 1,
	}, logger)
	h.now = func() time.Time { return time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC) }

	return &fixture{h: h, api: api, repo: repo}
}

func (f *fixture) press(t *testing.T, data string) *testutil.FakeContext {
	t.Helper()
	c := testutil.NewCallbackContext(testUserID, data)
	require.NoError(t, f.h.handleCallback(c))
	return c
}

func (f *fixture) typeText(t *testing.T, text string) *testutil.FakeContext {
	t.Helper()
	c := testutil.NewMessageContext(testUserID, text)
	require.NoError(t, f.h.gate.Require(middleware.Ready)(f.h.handleText)(c))
	return c
}

func (f *fixture) stage(t *testing.T) domain.Stage {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), testUserID)
	require.NoError(t, err)
	return s.Stage
}

func withJointChat(user *domain.User, chat string) *domain.User {
	user.CoreSettings.CurrentSpace.LinkedChat = chat
	user.Spaces[0].LinkedChat = chat
	return user
}

func amount(v int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(v)) })
}

func TestCreateGroupDialog(t *testing.T) {
	tests := []struct {
		name    string
		chat    string
		notices int
	}{
		{name: "without joint chat", notices: 0},
		{name: "with joint chat", chat: "-100500", notices: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			user := withJointChat(testutil.NewTestUser(testUserID, 7, 2025), tt.chat)
			f.repo.On("GetUser", mock.Anything, testUserID).Return(user, nil)
			f.repo.On("GroupNameExists", mock.Anything, testUserID, "Зарплата").Return(false, nil)
			f.repo.On("CreateGroup", mock.Anything, testUserID, domain.Income, "Зарплата", amount(12500)).
				Return(testutil.NewTestGroup(1, domain.Income, "Зарплата", 12500, 0), nil)

			f.press(t, view.CbCreateGroup)
			assert.IsType(t, domain.CreateGroupType{}, f.stage(t))

			f.press(t, string(domain.Income))
			assert.Equal(t, domain.CreateGroupName{Type: domain.Income}, f.stage(t))

			f.typeText(t, "  Зарплата ")
			assert.Equal(t, domain.CreateGroupPlan{Type: domain.Income, Name: "Зарплата"}, f.stage(t))

			f.typeText(t, "12.5")
			assert.Nil(t, f.stage(t))

			assert.Contains(t, f.api.last().Text, "Создана статья Зарплата (Доход)")
			assert.Contains(t, f.api.last().Text, "12.5 т.р.")
			assert.Len(t, f.api.sentTo("-100500"), tt.notices)
			f.repo.AssertExpectations(t)
		})
	}
}

func TestCreateGroupDialog_DuplicateName(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("GroupNameExists", mock.Anything, testUserID, "Еда").Return(true, nil)
	require.NoError(t, f.sessions.Save(context.Background(), testUserID, &domain.Session{
		Stage:    domain.CreateGroupName{Type: domain.Expense},
		PromptID: 42,
	}))

	f.typeText(t, "Еда")

	assert.Equal(t, domain.CreateGroupName{Type: domain.Expense}, f.stage(t))
	assert.Contains(t, f.api.last().Text, view.GroupNameExists)
	assert.ElementsMatch(t, []string{"500", "42"}, f.api.deleted)
	f.repo.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateGroupDialog_InvalidInputKeepsStage(t *testing.T) {
	tests := []struct {
		name  string
		stage domain.Stage
		input string
	}{
		{name: "empty name", stage: domain.CreateGroupName{Type: domain.Income}, input: "   "},
		{name: "name too long", stage: domain.CreateGroupName{Type: domain.Income}, input: "абвгдеёжзийклмнопрсту"},
		{name: "plan not a number", stage: domain.CreateGroupPlan{Type: domain.Income, Name: "Зарплата"}, input: "много"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
			require.NoError(t, f.sessions.Save(context.Background(), testUserID, &domain.Session{Stage: tt.stage}))

			f.typeText(t, tt.input)

			assert.Equal(t, tt.stage, f.stage(t))
			assert.Contains(t, f.api.last().Text, "❗️")
			f.repo.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAddTransactionDialog(t *testing.T) {
	f := newFixture(t)
	user := withJointChat(testutil.NewTestUser(testUserID, 7, 2025), "-100500")
	group := testutil.NewTestGroup(7, domain.Expense, "Еда", 30000, 3000)

	f.repo.On("GetUser", mock.Anything, testUserID).Return(user, nil)
	f.repo.On("ListGroups", mock.Anything, testUserID, domain.Expense).
		Return(&domain.Summary{Groups: []domain.Group{*group}}, nil)
	f.repo.On("GetGroup", mock.Anything, testUserID, int64(7)).Return(group, nil)
	f.repo.On("AddTransaction", mock.Anything, testUserID, mock.MatchedBy(func(tx domain.NewTransaction) bool {
		return tx.Type == domain.Expense && tx.GroupName == "Еда" &&
			tx.Description == "Продукты" && tx.Value.Equal(decimal.NewFromInt(2500))
	})).Return(&domain.Transaction{ID: 1, Description: "Продукты", Value: decimal.NewFromInt(5500)}, nil)

	f.press(t, view.CbAddTransaction)
	f.press(t, string(domain.Expense))
	assert.Equal(t, domain.TransactionGroupStage{Type: domain.Expense}, f.stage(t))
	assert.Equal(t, "group_id_7", f.api.last().Markup.InlineKeyboard[0][0].Data)

	f.press(t, "group_id_7")
	assert.Equal(t, domain.TransactionValueStage{Type: domain.Expense, GroupID: 7, GroupName: "Еда"}, f.stage(t))

	f.typeText(t, "2,5")
	st, ok := f.stage(t).(domain.TransactionDescriptionStage)
	require.True(t, ok)
	assert.True(t, st.Value.Equal(decimal.NewFromInt(2500)))

	f.typeText(t, "Продукты")
	assert.Nil(t, f.stage(t))

	reply := f.api.sentTo(strconv.FormatInt(testUserID, 10))
	require.NotEmpty(t, reply)
	text := reply[len(reply)-1].Text
	assert.Contains(t, text, "Статья (Расход): Еда")
	assert.Contains(t, text, "3.0 т.р. -> 5.5 т.р.")

	notices := f.api.sentTo("-100500")
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Text, "Сумма операции: 5.5 т.р.")
	f.repo.AssertExpectations(t)
}

func TestDeleteGroupDialog(t *testing.T) {
	tests := []struct {
		name    string
		chat    string
		notices int
	}{
		{name: "without joint chat", notices: 0},
		{name: "with joint chat", chat: "-100500", notices: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			user := withJointChat(testutil.NewTestUser(testUserID, 7, 2025), tt.chat)
			group := testutil.NewTestGroup(3, domain.Income, "Бонус", 1000, 0)
			f.repo.On("GetUser", mock.Anything, testUserID).Return(user, nil)
			f.repo.On("ListGroups", mock.Anything, testUserID, domain.Income).
				Return(&domain.Summary{Groups: []domain.Group{*group}}, nil)
			f.repo.On("GetGroup", mock.Anything, testUserID, int64(3)).Return(group, nil)
			f.repo.On("DeleteGroup", mock.Anything, testUserID, int64(3)).Return(nil)

			f.press(t, view.CbDeleteGroup)
			f.press(t, string(domain.Income))
			f.press(t, "group_id_3")

			assert.Nil(t, f.stage(t))
			assert.Contains(t, f.api.last().Text, "Статья Бонус (Доход) удалена")

			notices := f.api.sentTo("-100500")
			require.Len(t, notices, tt.notices)
			for _, n := range notices {
				assert.Contains(t, n.Text, "Бонус")
			}
			f.repo.AssertExpectations(t)
		})
	}
}

func TestTypeChoice_NoGroups(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("ListGroups", mock.Anything, testUserID, domain.Expense).Return(&domain.Summary{}, nil)

	f.press(t, view.CbAddTransaction)
	f.press(t, string(domain.Expense))

	assert.Nil(t, f.stage(t))
	assert.Equal(t, view.GroupsNotExist, f.api.last().Text)
}

func TestBackendFailureClearsDialog(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("ListGroups", mock.Anything, testUserID, domain.Income).
		Return(nil, backend.NewError(backend.LineItemListFailed, nil))

	f.press(t, view.CbDeleteGroup)
	f.press(t, string(domain.Income))

	assert.Nil(t, f.stage(t))
	assert.Equal(t, backend.KindMessage(backend.LineItemListFailed), f.api.last().Text)
}

func TestUnregisteredUserIsAskedToRegister(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(nil, nil)

	c := f.press(t, view.CbAddTransaction)

	require.Len(t, c.Edited, 1)
	assert.Equal(t, view.CbRegistration, c.Edited[0].Markup.InlineKeyboard[0][0].Data)
	assert.Nil(t, f.stage(t))
}

func TestLinkAccount(t *testing.T) {
	tests := []struct {
		name   string
		target interface{}
		expect string
	}{
		{name: "registered user", target: testutil.NewTestUser(555, 7, 2025), expect: view.UserLinked(555)},
		{name: "unknown user", target: nil, expect: view.UserNotRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
			f.repo.On("GetUser", mock.Anything, int64(555)).Return(tt.target, nil)
			f.repo.On("LinkUser", mock.Anything, testUserID, int64(1000), int64(555)).Return(nil)

			f.press(t, view.CbLinkedAdd)
			assert.Equal(t, domain.LinkAccountAdd{SpaceID: 1000}, f.stage(t))

			f.typeText(t, "abc")
			assert.Equal(t, domain.LinkAccountAdd{SpaceID: 1000}, f.stage(t))

			f.typeText(t, "555")
			assert.Nil(t, f.stage(t))
			assert.Equal(t, tt.expect, f.api.last().Text)
		})
	}
}

func TestJointChat_NotOwner(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(testUserID, 7, 2025)
	user.CoreSettings.CurrentSpace.OwnerID = 1
	f.repo.On("GetUser", mock.Anything, testUserID).Return(user, nil)

	f.press(t, view.CbJointChat)

	assert.Equal(t, view.NotOwner, f.api.last().Text)
	assert.Nil(t, f.stage(t))
	f.repo.AssertNotCalled(t, "UpdateSpace", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJointChat_Connect(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("UpdateSpace", mock.Anything, testUserID, int64(1000), domain.LinkedChatPatch("-100777")).
		Return(&domain.Space{ID: 1000}, nil)

	f.press(t, view.CbJointChat)
	assert.Equal(t, domain.JointChatID{SpaceID: 1000}, f.stage(t))

	f.typeText(t, "-100777")

	assert.Nil(t, f.stage(t))
	assert.Contains(t, f.api.last().Text, "Чат -100777 подключен")
	f.repo.AssertExpectations(t)
}

func TestChooseSpace(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("UpdateCoreSettings", mock.Anything, testUserID, domain.SpaceUpdate(1000)).Return(nil)

	f.press(t, "choose_space_1000")
	assert.Contains(t, f.api.last().Text, "База изменена на Дом")

	c := f.press(t, "choose_space_9")
	require.NotEmpty(t, c.Responses)
	assert.Equal(t, view.SpaceNotAccessible, c.Responses[len(c.Responses)-1].Text)
	f.repo.AssertNumberOfCalls(t, "UpdateCoreSettings", 1)
}

func TestPeriodChoice(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("UpdateCoreSettings", mock.Anything, testUserID, domain.PeriodUpdate(domain.Period{Month: 6, Year: 2025})).Return(nil)

	f.press(t, "period_06_2025")

	assert.Equal(t, view.CbAddTransaction, f.api.last().Markup.InlineKeyboard[0][0].Data)
	f.repo.AssertExpectations(t)
}

func TestArchiveDialog(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("ListYears", mock.Anything, testUserID).Return([]int{2024, 2025}, nil)
	f.repo.On("ListMonths", mock.Anything, testUserID, 2024).Return([]int{12, 11}, nil)
	f.repo.On("UpdateCoreSettings", mock.Anything, testUserID, domain.PeriodUpdate(domain.Period{Month: 11, Year: 2024})).Return(nil)

	f.press(t, view.CbArchive)
	assert.Equal(t, "all_periods_year_2025", f.api.last().Markup.InlineKeyboard[0][0].Data)

	f.press(t, "all_periods_year_2024")
	assert.Equal(t, domain.ArchiveMonth{Year: 2024}, f.stage(t))
	assert.Equal(t, "all_periods_month_11", f.api.last().Markup.InlineKeyboard[0][0].Data)

	f.press(t, "all_periods_month_11")
	assert.Nil(t, f.stage(t))
	f.repo.AssertExpectations(t)
}

func TestArchiveMonthOutsideDialogIgnored(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)

	c := f.press(t, "all_periods_month_3")

	assert.Len(t, c.Responses, 1)
	f.repo.AssertNotCalled(t, "UpdateCoreSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestLookBase(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("GetSummary", mock.Anything, testUserID).Return(&domain.Summary{}, nil).Once()

	f.press(t, view.CbLookBase)
	assert.Equal(t, view.EmptySummary, f.api.last().Text)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("ExportExcel", mock.Anything, testUserID).Return([]byte("xlsx"), nil)

	c := f.press(t, view.CbExportExcel)

	sent := f.api.sentTo(strconv.FormatInt(testUserID, 10))
	require.Len(t, sent, 2)
	assert.Equal(t, view.ExportName, sent[0].Text)
	assert.Equal(t, view.FileSent, sent[1].Text)
	assert.Equal(t, []string{"400"}, f.api.deleted)
	assert.Len(t, c.Responses, 1)
}

func TestExport_CallbackWithoutMessage(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("ExportExcel", mock.Anything, testUserID).Return([]byte("xlsx"), nil)

	c := testutil.NewCallbackContext(testUserID, view.CbExportExcel)
	c.Cb.Message = nil
	require.NotPanics(t, func() {
		require.NoError(t, f.h.handleCallback(c))
	})

	sent := f.api.sentTo(strconv.FormatInt(testUserID, 10))
	require.Len(t, sent, 2)
	assert.Empty(t, f.api.deleted)
	assert.Len(t, c.Responses, 1)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("DeleteUser", mock.Anything, testUserID).Return(nil)

	f.press(t, view.CbDeleteAccount)
	assert.Equal(t, view.ConfirmDeleteUser, f.api.last().Text)

	f.press(t, view.CbDeleteAccountOK)
	assert.Equal(t, view.DeletedUser, f.api.last().Text)
	f.repo.AssertExpectations(t)
}

func TestHandleGetID(t *testing.T) {
	f := newFixture(t)

	private := testutil.NewMessageContext(testUserID, "/get_id")
	require.NoError(t, f.h.handleGetID(private))
	require.Len(t, private.Sent, 1)
	assert.Equal(t, view.PrivateID(testUserID), private.Sent[0].Text)

	group := testutil.NewMessageContext(testUserID, "/get_id")
	group.Room = &tele.Chat{ID: -100500, Type: tele.ChatGroup}
	require.NoError(t, f.h.handleGetID(group))
	require.Len(t, group.Sent, 1)
	assert.Equal(t, view.ChatID(-100500), group.Sent[0].Text)

	f.repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestHandleText_IdleIgnored(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)

	f.typeText(t, "привет")

	assert.Empty(t, f.api.sent)
	assert.Empty(t, f.api.deleted)
}

func TestStartDropsDialog(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	require.NoError(t, f.sessions.Save(context.Background(), testUserID, &domain.Session{
		Stage: domain.CreateGroupName{Type: domain.Income},
	}))

	f.press(t, view.CbStart)

	assert.Nil(t, f.stage(t))
	assert.Contains(t, f.api.last().Text, "07_2025")
}

func TestShow_EditFailureSendsNewMessage(t *testing.T) {
	f := newFixture(t)
	f.api.editErr = errors.New("message to edit not found")
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)

	c := f.press(t, view.CbSettings)

	require.Len(t, f.api.sent, 1)
	assert.Equal(t, view.Settings, f.api.sent[0].Text)
	assert.Len(t, c.Responses, 1)
}

var errStore = errors.New("connection refused")

func TestSessionClearFailure_TerminalStageReportsNothingDone(t *testing.T) {
	sessions := new(testutil.MockSessionRepository)
	f := newFixtureWith(t, sessions)
	user := withJointChat(testutil.NewTestUser(testUserID, 7, 2025), "-100500")
	f.repo.On("GetUser", mock.Anything, testUserID).Return(user, nil)
	sessions.On("Get", mock.Anything, testUserID).Return(&domain.Session{
		Stage:    domain.CreateGroupPlan{Type: domain.Income, Name: "Зарплата"},
		PromptID: 42,
	}, nil)
	sessions.On("Clear", mock.Anything, testUserID).Return(errStore)

	f.typeText(t, "12.5")

	assert.Equal(t, backend.KindMessage(backend.ServiceUnavailable), f.api.last().Text)
	assert.Empty(t, f.api.sentTo("-100500"))
	f.repo.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sessions.AssertExpectations(t)
}

func TestSessionSaveFailure_AdvancingStageDropsPrompt(t *testing.T) {
	sessions := new(testutil.MockSessionRepository)
	f := newFixtureWith(t, sessions)
	f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil)
	f.repo.On("GroupNameExists", mock.Anything, testUserID, "Зарплата").Return(false, nil)
	sessions.On("Get", mock.Anything, testUserID).Return(&domain.Session{
		Stage:    domain.CreateGroupName{Type: domain.Income},
		PromptID: 42,
	}, nil)
	sessions.On("Save", mock.Anything, testUserID, mock.Anything).Return(errStore)
	sessions.On("Clear", mock.Anything, testUserID).Return(nil)

	f.typeText(t, "Зарплата")

	// 1001 is the plan prompt that could not be remembered
	assert.ElementsMatch(t, []string{"500", "42", "1001"}, f.api.deleted)
	assert.Equal(t, backend.KindMessage(backend.ServiceUnavailable), f.api.last().Text)
	sessions.AssertExpectations(t)
}

func TestSessionClearFailure_MenuNotShown(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "settings", data: view.CbSettings},
		{name: "start", data: view.CbStart},
		{name: "delete account", data: view.CbDeleteAccountOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(testutil.MockSessionRepository)
			f := newFixtureWith(t, sessions)
			f.repo.On("GetUser", mock.Anything, testUserID).Return(testutil.NewTestUser(testUserID, 7, 2025), nil).Maybe()
			sessions.On("Clear", mock.Anything, testUserID).Return(errStore)

			f.press(t, tt.data)

			assert.Equal(t, backend.KindMessage(backend.ServiceUnavailable), f.api.last().Text)
			f.repo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
		})
	}
}
