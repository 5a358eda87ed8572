package handler

import (
	"context"
	"time"

	"ffbot/internal/domain"
	"ffbot/internal/middleware"
	"ffbot/internal/repository"
	"ffbot/internal/service"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// ChatAPI is the part of the bot API handlers talk to directly.
// *tele.Bot satisfies it.
type ChatAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Services groups the business services used by handlers
type Services struct {
	Auth         *service.AuthService
	Groups       *service.GroupService
	Transactions *service.TransactionService
	Spaces       *service.SpaceService
	Periods      *service.PeriodService
}

// Options tunes presentation and cleanup
type Options struct {
	Layout          view.Layout
	Timeout         time.Duration
	CleanupRetries  int
	CleanupInterval time.Duration
	ContactEmail    string
}

// Handler manages all bot interactions
type Handler struct {
	api          ChatAPI
	gate         *middleware.Gate
	auth         *service.AuthService
	groups       *service.GroupService
	transactions *service.TransactionService
	spaces       *service.SpaceService
	periods      *service.PeriodService
	sessions     repository.SessionRepository
	opts         Options
	logger       *zap.Logger
	now          func() time.Time

	routes map[string]route
}

type route struct {
	level middleware.Level
	fn    tele.HandlerFunc
}

// NewHandler creates a new handler instance
func NewHandler(
	api ChatAPI,
	gate *middleware.Gate,
	services Services,
	sessions repository.SessionRepository,
	opts Options,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		api:          api,
		gate:         gate,
		auth:         services.Auth,
		groups:       services.Groups,
		transactions: services.Transactions,
		spaces:       services.Spaces,
		periods:      services.Periods,
		sessions:     sessions,
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
	h.routes = h.buildRoutes()
	return h
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers(b *tele.Bot) {
	private := middleware.PrivateOnly()

	// Commands
	b.Handle("/start", h.handleStart, private)
	b.Handle("/get_id", h.handleGetID)

	// Dialog replies
	b.Handle(tele.OnText, h.handleText, private, h.gate.Require(middleware.Ready))

	// Inline buttons, routed by payload
	b.Handle(tele.OnCallback, h.handleCallback, private)
}

func (h *Handler) buildRoutes() map[string]route {
	registered := func(fn tele.HandlerFunc) route { return route{level: middleware.Registered, fn: fn} }
	ready := func(fn tele.HandlerFunc) route { return route{level: middleware.Ready, fn: fn} }

	return map[string]route{
		view.CbStart:        {level: middleware.Public, fn: h.handleStart},
		view.CbRegistration: {level: middleware.Public, fn: h.handleRegistration},

		view.CbChoosePeriod:       registered(h.handleChoosePeriod),
		view.CbArchive:            registered(h.handleArchive),
		view.CbSettings:           registered(h.handleSettings),
		view.CbDescription:        registered(h.handleDescription),
		view.CbChooseSpace:        registered(h.handleChooseSpace),
		view.CbLinkedInstruction:  registered(h.handleLinkedInstruction),
		view.CbJointChatGuide:     registered(h.handleJointChatInstruction),
		view.CbDeleteAccount:      registered(h.handleDeleteAccount),
		view.CbDeleteAccountOK:    registered(h.handleDeleteAccountAccept),
		view.CbDeleteAccountAbort: registered(h.handleDeleteAccountCancel),

		view.CbLookBase:        ready(h.handleLookBase),
		view.CbExportExcel:     ready(h.handleExport),
		view.CbCreateGroup:     ready(h.handleCreateGroup),
		view.CbDeleteGroup:     ready(h.handleDeleteGroup),
		view.CbAddTransaction:  ready(h.handleAddTransaction),
		view.CbLinkedAccounts:  ready(h.handleLinkedAccounts),
		view.CbLinkedAdd:       ready(h.handleLinkedAdd),
		view.CbLinkedDelete:    ready(h.handleLinkedDelete),
		view.CbJointChat:       ready(h.handleJointChat),
		view.CbJointChatDelete: ready(h.handleJointChatDelete),

		string(domain.Income):  ready(h.handleTypeChoice),
		string(domain.Expense): ready(h.handleTypeChoice),
	}
}

func (h *Handler) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.opts.Timeout)
}

// GetState returns user's current dialog session
func (h *Handler) GetState(ctx context.Context, userID int64) *domain.Session {
	s, err := h.sessions.Get(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to load session", zap.Int64("user_id", userID), zap.Error(err))
		return &domain.Session{}
	}
	return s
}

// SetState moves the user to stage, remembering the prompt awaiting a reply
func (h *Handler) SetState(ctx context.Context, userID int64, stage domain.Stage, promptID int) error {
	s := &domain.Session{Stage: stage, PromptID: promptID}
	if err := h.sessions.Save(ctx, userID, s); err != nil {
		h.logger.Error("Failed to save session",
			zap.Int64("user_id", userID),
			zap.String("state", string(s.Tag())),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ResetState resets user to idle state
func (h *Handler) ResetState(ctx context.Context, userID int64) error {
	if err := h.sessions.Clear(ctx, userID); err != nil {
		h.logger.Error("Failed to clear session", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func actor(c tele.Context) view.Actor {
	return view.Actor{FirstName: c.Sender().FirstName, TelegramID: c.Sender().ID}
}
