package handler

import (
	"bytes"
	"strings"

	"ffbot/internal/backend"
	"ffbot/internal/domain"
	"ffbot/internal/middleware"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start and the "home" button. Any dialog in progress
// is dropped before the gate runs.
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User opened main menu",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	return h.home(c)
}

// home shows the main menu once the user is fully set up
func (h *Handler) home(c tele.Context) error {
	return h.gate.Require(middleware.Ready)(h.showMain)(c)
}

func (h *Handler) showMain(c tele.Context) error {
	h.show(c, view.MainText(actor(c), middleware.CurrentUser(c)), view.MainMenu())
	return nil
}

// handleRegistration creates the backend account unless the user already
// registered elsewhere
func (h *Handler) handleRegistration(c tele.Context) error {
	userID := c.Sender().ID

	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	if _, err := h.auth.Register(ctx, userID); err != nil {
		h.logger.Error("Failed to register user", zap.Int64("user_id", userID), zap.Error(err))
		text := backend.KindMessage(backend.UserCreationFailed)
		if be, ok := backend.AsError(err); ok {
			text = be.Message
		}
		h.show(c, text, view.RegistrationMenu())
		return nil
	}

	return h.home(c)
}

// handleGetID replies with the sender's id in private chats and the chat id
// in groups
func (h *Handler) handleGetID(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.ID == c.Sender().ID {
		return c.Send(view.PrivateID(c.Sender().ID))
	}
	return c.Send(view.ChatID(chat.ID))
}

func (h *Handler) handleChoosePeriod(c tele.Context) error {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, c.Sender().ID); err != nil {
		return h.stateError(c, 0)
	}

	h.show(c, view.ChoosePeriod, view.PeriodMenu(domain.PeriodOf(h.now())))
	return nil
}

// handlePeriod applies a period picked from the period menu
func (h *Handler) handlePeriod(c tele.Context) error {
	userID := c.Sender().ID
	raw := strings.TrimPrefix(cleanCallbackData(c.Callback().Data), view.PrefixPeriod)

	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	p, err := domain.ParsePeriod(raw)
	if err != nil {
		h.logger.Warn("Invalid period payload", zap.String("data", raw), zap.Error(err))
		return c.Respond()
	}

	if err := h.periods.Set(ctx, userID, p); err != nil {
		h.logger.Error("Failed to set period",
			zap.Int64("user_id", userID),
			zap.Stringer("period", p),
			zap.Error(err),
		)
		h.show(c, view.FailChoosePeriod+"\n\n"+view.ChoosePeriod, view.PeriodMenu(domain.PeriodOf(h.now())))
		return nil
	}

	h.logger.Info("Period changed", zap.Int64("user_id", userID), zap.Stringer("period", p))
	return h.home(c)
}

// handleArchive starts browsing periods that have data
func (h *Handler) handleArchive(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	years, err := h.periods.Years(ctx, userID)
	if err != nil {
		return h.fail(c, "archive", err, view.GoToMain())
	}

	promptID := h.show(c, view.ChooseYear, view.YearsMenu(years))
	if err := h.SetState(ctx, userID, domain.ArchiveYear{}, promptID); err != nil {
		return h.stateError(c, promptID)
	}
	return nil
}

func (h *Handler) handleArchiveYear(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	if _, ok := h.GetState(ctx, userID).Stage.(domain.ArchiveYear); !ok {
		return c.Respond()
	}
	year, ok := payloadInt(c, view.PrefixArchiveYear)
	if !ok || !domain.ValidYear(int(year)) {
		return c.Respond()
	}

	months, err := h.periods.Months(ctx, userID, int(year))
	if err != nil {
		return h.fail(c, "archive", err, view.GoToMain())
	}

	promptID := h.show(c, view.ChooseMonth, view.MonthsMenu(months))
	if err := h.SetState(ctx, userID, domain.ArchiveMonth{Year: int(year)}, promptID); err != nil {
		return h.stateError(c, promptID)
	}
	return nil
}

func (h *Handler) handleArchiveMonth(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	st, ok := h.GetState(ctx, userID).Stage.(domain.ArchiveMonth)
	if !ok {
		return c.Respond()
	}
	month, ok := payloadInt(c, view.PrefixArchiveMonth)
	if !ok {
		return c.Respond()
	}

	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}
	if err := h.periods.Set(ctx, userID, domain.Period{Month: int(month), Year: st.Year}); err != nil {
		return h.fail(c, "archive", err, view.GoToMain())
	}
	dialogsTotal.WithLabelValues("archive", "ok").Inc()
	return h.home(c)
}

func (h *Handler) handleSettings(c tele.Context) error {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, c.Sender().ID); err != nil {
		return h.stateError(c, 0)
	}

	h.show(c, view.Settings, view.SettingsMenu())
	return nil
}

func (h *Handler) handleDescription(c tele.Context) error {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, c.Sender().ID); err != nil {
		return h.stateError(c, 0)
	}

	h.show(c, view.Description(h.opts.ContactEmail), view.GoToMain())
	return nil
}

// handleLookBase shows the report of the active period
func (h *Handler) handleLookBase(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	summary, err := h.groups.Summary(ctx, userID)
	if err != nil {
		return h.fail(c, "summary", err, view.GoToMain())
	}
	if summary.Empty() {
		h.show(c, view.EmptySummary, view.MainMenu())
		return nil
	}

	h.show(c, view.SummaryText(middleware.CurrentUser(c), summary, h.opts.Layout), view.GoToMain())
	return nil
}

// handleExport sends the workbook of the active space as a document
func (h *Handler) handleExport(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	data, err := h.groups.Export(ctx, userID)
	if err != nil {
		return h.fail(c, "export", err, view.GoToMain())
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: view.ExportName,
	}
	if _, err := h.api.Send(h.recipient(c), doc); err != nil {
		h.logger.Error("Failed to send export",
			zap.Int64("user_id", userID),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		h.show(c, backend.KindMessage(backend.ExportFailed), view.GoToMain())
		return nil
	}
	if _, err := h.api.Send(h.recipient(c), view.FileSent, view.GoToMain().Markup()); err != nil {
		h.logger.Warn("Failed to confirm export", zap.Int64("user_id", userID), zap.Error(err))
	}
	if cb := c.Callback(); cb != nil && cb.Message != nil {
		h.deleteWithRetry(cb.Message)
	}
	dialogsTotal.WithLabelValues("export", "ok").Inc()
	return c.Respond()
}
