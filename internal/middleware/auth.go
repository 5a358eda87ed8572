package middleware

import (
	"context"
	"strings"
	"time"

	"ffbot/internal/backend"
	"ffbot/internal/domain"
	"ffbot/internal/service"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Level is how much account setup an event needs before it may run
type Level int

const (
	// Public events skip the gate
	Public Level = iota
	// Registered events need a backend account
	Registered
	// Ready events also need an active space and period
	Ready
)

const userKey = "user"

// Gate checks the user before handlers run and shows the missing setup
// step instead.
type Gate struct {
	auth    *service.AuthService
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewGate creates the authorization gate
func NewGate(auth *service.AuthService, timeout time.Duration, logger *zap.Logger) *Gate {
	return &Gate{auth: auth, timeout: timeout, now: time.Now, logger: logger}
}

// Require returns middleware that lets events through at the given level
func (g *Gate) Require(level Level) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if level == Public {
				return next(c)
			}
			userID := c.Sender().ID

			ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
			defer cancel()

			verdict, user, err := g.auth.Check(ctx, userID)
			if err != nil {
				g.logger.Error("Failed to check user in gate",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
				gateVerdicts.WithLabelValues("error").Inc()
				return reply(c, backend.UserMessage(err), view.GoToMain())
			}
			gateVerdicts.WithLabelValues(verdict.String()).Inc()

			if verdict == service.NeedRegistration || (level == Ready && verdict != service.Pass) {
				g.logger.Debug("Event intercepted by gate",
					zap.Int64("user_id", userID),
					zap.Stringer("verdict", verdict),
				)
				return g.intercept(c, verdict, user)
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

func (g *Gate) intercept(c tele.Context, verdict service.Verdict, user *domain.User) error {
	switch verdict {
	case service.NeedRegistration:
		return reply(c, view.NeedRegistration(c.Sender().FirstName), view.RegistrationMenu())
	case service.NeedSpace:
		return reply(c, view.NeedSpace+"\n\n"+view.ChooseSpace, view.SpacesMenu(user))
	default:
		return reply(c, view.ChoosePeriod, view.PeriodMenu(domain.PeriodOf(g.now())))
	}
}

// CurrentUser returns the user resolved by the gate, nil for public events
func CurrentUser(c tele.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}

// reply edits the pressed message for callbacks and sends a new one otherwise
func reply(c tele.Context, text string, menu view.Menu) error {
	markup := menu.Markup()
	if c.Callback() == nil {
		return c.Send(text, markup)
	}

	err := c.Edit(text, markup)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return c.Respond()
	}
	if ackErr := c.Respond(); ackErr != nil && err == nil {
		return ackErr
	}
	if err != nil {
		return c.Send(text, markup)
	}
	return nil
}
