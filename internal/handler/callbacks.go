package handler

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"ffbot/internal/backend"
	"ffbot/internal/domain"
	"ffbot/internal/middleware"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// chatRef addresses a chat by the id stored on a space
type chatRef string

func (r chatRef) Recipient() string { return string(r) }

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from editing a message - if message is not
// modified, just acknowledge callback. Otherwise acknowledge and return the
// error so the caller can send a new message.
func (h *Handler) handleEditError(err error, c tele.Context) error {
	if err == nil {
		return nil
	}
	userID := c.Sender().ID

	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.Int64("user_id", c.Sender().ID),
	)

	if r, ok := h.routes[data]; ok {
		callbacksTotal.WithLabelValues(data).Inc()
		return h.gate.Require(r.level)(r.fn)(c)
	}

	// Dynamic buttons
	var r route
	switch {
	case strings.HasPrefix(data, view.PrefixPeriod):
		r = route{middleware.Registered, h.handlePeriod}
	case strings.HasPrefix(data, view.PrefixSpace):
		r = route{middleware.Registered, h.handleSpaceChoice}
	case strings.HasPrefix(data, view.PrefixArchiveYear):
		r = route{middleware.Registered, h.handleArchiveYear}
	case strings.HasPrefix(data, view.PrefixArchiveMonth):
		r = route{middleware.Registered, h.handleArchiveMonth}
	case strings.HasPrefix(data, view.PrefixGroup):
		r = route{middleware.Ready, h.handleGroupChoice}
	case isNumeric(data):
		r = route{middleware.Ready, h.handleUnlinkChoice}
	default:
		h.logger.Warn("Unhandled callback in handleCallback",
			zap.String("data", data),
			zap.String("unique", callback.Unique),
		)
		return c.Respond()
	}

	callbacksTotal.WithLabelValues(routeLabel(data)).Inc()
	return h.gate.Require(r.level)(r.fn)(c)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// routeLabel keeps metric cardinality bounded for payloads carrying ids
func routeLabel(data string) string {
	for _, p := range []string{view.PrefixPeriod, view.PrefixSpace, view.PrefixArchiveYear, view.PrefixArchiveMonth, view.PrefixGroup} {
		if strings.HasPrefix(data, p) {
			return strings.TrimSuffix(p, "_")
		}
	}
	return "user_id"
}

// payloadInt parses the id following prefix in the callback data
func payloadInt(c tele.Context, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(cleanCallbackData(c.Callback().Data), prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func (h *Handler) recipient(c tele.Context) tele.Recipient {
	if chat := c.Chat(); chat != nil {
		return chat
	}
	return c.Sender()
}

// show edits the pressed message for callbacks and sends a new message
// otherwise. It returns the id of the message now on screen.
func (h *Handler) show(c tele.Context, text string, menu view.Menu) int {
	markup := menu.Markup()

	if cb := c.Callback(); cb != nil && cb.Message != nil {
		_, err := h.api.Edit(cb.Message, text, markup)
		if err == nil {
			c.Respond()
			return cb.Message.ID
		}
		if h.handleEditError(err, c) == nil {
			return cb.Message.ID
		}
	}

	msg, err := h.api.Send(h.recipient(c), text, markup)
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("user_id", c.Sender().ID),
			zap.Error(err),
		)
		return 0
	}
	return msg.ID
}

// fail reports err to the user, ends the dialog and offers menu
func (h *Handler) fail(c tele.Context, op string, err error, menu view.Menu) error {
	userID := c.Sender().ID
	h.logger.Error("Operation failed",
		zap.String("op", op),
		zap.Int64("user_id", userID),
		zap.Error(err),
	)
	dialogsTotal.WithLabelValues(op, "error").Inc()

	ctx, cancel := h.ctx()
	defer cancel()
	h.ResetState(ctx, userID)

	h.show(c, backend.UserMessage(err), menu)
	return nil
}

// stateError reports a session store failure. The dialog is dropped on a
// best-effort basis and nothing is reported as done. A prompt sent as a
// separate message is deleted.
func (h *Handler) stateError(c tele.Context, promptID int) error {
	dialogsTotal.WithLabelValues("session", "error").Inc()

	ctx, cancel := h.ctx()
	defer cancel()
	h.ResetState(ctx, c.Sender().ID)

	if c.Callback() == nil && promptID != 0 {
		if chat := c.Chat(); chat != nil {
			h.deleteWithRetry(&tele.StoredMessage{MessageID: strconv.Itoa(promptID), ChatID: chat.ID})
		}
	}
	h.show(c, backend.KindMessage(backend.ServiceUnavailable), view.GoToMain())
	return nil
}

// cleanup deletes the user's reply and the prompt it answered
func (h *Handler) cleanup(c tele.Context, promptID int) {
	if c.Callback() == nil && c.Message() != nil {
		h.deleteWithRetry(c.Message())
	}
	if promptID == 0 {
		return
	}
	chat := c.Chat()
	if chat == nil {
		return
	}
	h.deleteWithRetry(&tele.StoredMessage{MessageID: strconv.Itoa(promptID), ChatID: chat.ID})
}

func (h *Handler) deleteWithRetry(msg tele.Editable) {
	for attempt := 1; ; attempt++ {
		err := h.api.Delete(msg)
		if err == nil {
			return
		}
		if attempt >= h.opts.CleanupRetries {
			messageID, _ := msg.MessageSig()
			h.logger.Warn("Failed to delete message",
				zap.String("message_id", messageID),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return
		}
		time.Sleep(h.opts.CleanupInterval)
	}
}

// notify posts text to the joint chat of the user's active space, if any
func (h *Handler) notify(user *domain.User, text string) {
	space := user.CurrentSpace()
	if !space.HasJointChat() {
		return
	}
	if _, err := h.api.Send(chatRef(space.LinkedChat), text); err != nil {
		h.logger.Warn("Failed to notify joint chat",
			zap.Int64("space_id", space.ID),
			zap.String("chat", space.LinkedChat),
			zap.Error(err),
		)
		return
	}
	notificationsTotal.Inc()
}
