package handler

import (
	"context"
	"errors"

	"ffbot/internal/domain"
	"ffbot/internal/middleware"
	"ffbot/internal/service"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func (h *Handler) handleLinkedInstruction(c tele.Context) error {
	h.show(c, view.LinkedAccountsGuide, view.BackToSettings())
	return nil
}

func (h *Handler) handleJointChatInstruction(c tele.Context) error {
	h.show(c, view.JointChatGuide, view.BackToSettings())
	return nil
}

// owner returns the user if they own the active space. Otherwise the
// user has already been answered and ok is false.
func (h *Handler) owner(ctx context.Context, c tele.Context, op string) (*domain.User, bool) {
	user, err := h.spaces.Owner(ctx, c.Sender().ID)
	switch {
	case errors.Is(err, service.ErrNotOwner):
		h.show(c, view.NotOwner, view.BackToSettings())
		return nil, false
	case err != nil:
		h.fail(c, op, err, view.BackToSettings())
		return nil, false
	}
	return user, true
}

// handleLinkedAccounts lists users with access to the active space
func (h *Handler) handleLinkedAccounts(c tele.Context) error {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, c.Sender().ID); err != nil {
		return h.stateError(c, 0)
	}

	user, ok := h.owner(ctx, c, "linked_accounts")
	if !ok {
		return nil
	}

	space := user.CurrentSpace()
	text := view.LinkedUsers(space)
	if len(space.AvailableLinkedUsers) == 0 {
		text = view.NoLinkedUsers(space)
	}
	h.show(c, text, view.LinkedAccountsMenu())
	return nil
}

func (h *Handler) handleLinkedAdd(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	user, ok := h.owner(ctx, c, "link_user")
	if !ok {
		return nil
	}

	promptID := h.show(c, view.AskLinkID, view.BackToSettings())
	if err := h.SetState(ctx, userID, domain.LinkAccountAdd{SpaceID: user.CurrentSpace().ID}, promptID); err != nil {
		return h.stateError(c, promptID)
	}
	return nil
}

func (h *Handler) handleLinkedDelete(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	user, ok := h.owner(ctx, c, "unlink_user")
	if !ok {
		return nil
	}

	space := user.CurrentSpace()
	promptID := h.show(c, view.AskUnlink, view.UnlinkMenu(space.AvailableLinkedUsers))
	if err := h.SetState(ctx, userID, domain.LinkAccountDelete{SpaceID: space.ID}, promptID); err != nil {
		return h.stateError(c, promptID)
	}
	return nil
}

// handleUnlinkChoice revokes access of the user picked from the unlink menu
func (h *Handler) handleUnlinkChoice(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	st, ok := h.GetState(ctx, userID).Stage.(domain.LinkAccountDelete)
	if !ok {
		return c.Respond()
	}
	target, ok := payloadInt(c, "")
	if !ok {
		return c.Respond()
	}

	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}
	if err := h.spaces.UnlinkUser(ctx, userID, st.SpaceID, target); err != nil {
		return h.fail(c, "unlink_user", err, view.BackToSettings())
	}
	h.show(c, view.UserUnlinked, view.SettingsMenu())
	dialogsTotal.WithLabelValues("unlink_user", "ok").Inc()
	return nil
}

// linkAccount handles the typed Telegram ID of a user to share the space with
func (h *Handler) linkAccount(c tele.Context, s *domain.Session, st domain.LinkAccountAdd) error {
	userID := c.Sender().ID

	target, err := service.ParseTelegramID(c.Text())
	if err != nil {
		return h.reprompt(c, s, err.Error(), view.AskLinkID, s.Stage)
	}

	h.cleanup(c, s.PromptID)

	ctx, cancel := h.ctx()
	defer cancel()

	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	err = h.spaces.LinkUser(ctx, userID, st.SpaceID, target)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		h.show(c, view.UserNotRegistered, view.BackToSettings())
		dialogsTotal.WithLabelValues("link_user", "not_found").Inc()
		return nil
	case err != nil:
		return h.fail(c, "link_user", err, view.BackToSettings())
	}

	h.show(c, view.UserLinked(target), view.BackToSettings())
	dialogsTotal.WithLabelValues("link_user", "ok").Inc()
	return nil
}

// handleJointChat shows the connected chat or asks for one to connect
func (h *Handler) handleJointChat(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	user, ok := h.owner(ctx, c, "joint_chat")
	if !ok {
		return nil
	}

	space := user.CurrentSpace()
	if space.HasJointChat() {
		h.show(c, view.LinkedChatConnected(space.LinkedChat), view.JointChatDeleteMenu())
		return nil
	}

	promptID := h.show(c, view.AskChatID, view.JointChatAddMenu())
	if err := h.SetState(ctx, userID, domain.JointChatID{SpaceID: space.ID}, promptID); err != nil {
		return h.stateError(c, promptID)
	}
	return nil
}

// jointChatID connects the typed chat to the active space
func (h *Handler) jointChatID(c tele.Context, s *domain.Session, _ domain.JointChatID) error {
	userID := c.Sender().ID

	chat, err := service.ParseChatID(c.Text())
	if err != nil {
		return h.reprompt(c, s, err.Error(), view.AskChatID, s.Stage)
	}

	h.cleanup(c, s.PromptID)

	ctx, cancel := h.ctx()
	defer cancel()

	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	user, err := h.spaces.SetJointChat(ctx, userID, chat)
	switch {
	case errors.Is(err, service.ErrNotOwner):
		h.show(c, view.NotOwner, view.BackToSettings())
		return nil
	case err != nil:
		return h.fail(c, "joint_chat", err, view.BackToSettings())
	}

	h.show(c, view.ChatLinked(chat, user), view.MainMenu())
	dialogsTotal.WithLabelValues("joint_chat", "ok").Inc()
	return nil
}

func (h *Handler) handleJointChatDelete(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}

	user, err := h.spaces.SetJointChat(ctx, userID, "")
	switch {
	case errors.Is(err, service.ErrNotOwner):
		h.show(c, view.NotOwner, view.BackToSettings())
		return nil
	case err != nil:
		return h.fail(c, "joint_chat", err, view.BackToSettings())
	}

	h.show(c, view.ChatUnlinked(user), view.MainMenu())
	dialogsTotal.WithLabelValues("joint_chat_delete", "ok").Inc()
	return nil
}

func (h *Handler) handleChooseSpace(c tele.Context) error {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, c.Sender().ID); err != nil {
		return h.stateError(c, 0)
	}

	h.show(c, view.ChooseSpace, view.SpacesMenu(middleware.CurrentUser(c)))
	return nil
}

// handleSpaceChoice makes the picked space active
func (h *Handler) handleSpaceChoice(c tele.Context) error {
	userID := c.Sender().ID
	spaceID, ok := payloadInt(c, view.PrefixSpace)
	if !ok {
		return c.Respond()
	}

	ctx, cancel := h.ctx()
	defer cancel()

	user, space, err := h.spaces.Choose(ctx, userID, spaceID)
	switch {
	case errors.Is(err, service.ErrSpaceNotAccessible):
		h.logger.Warn("Space is not accessible",
			zap.Int64("user_id", userID),
			zap.Int64("space_id", spaceID),
		)
		return c.Respond(&tele.CallbackResponse{Text: view.SpaceNotAccessible})
	case err != nil:
		return h.fail(c, "choose_space", err, view.BackToSettings())
	}

	h.logger.Info("Space changed", zap.Int64("user_id", userID), zap.Int64("space_id", space.ID))
	h.show(c, view.SpaceChanged(space, user), view.MainMenu())
	return nil
}

func (h *Handler) handleDeleteAccount(c tele.Context) error {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.ResetState(ctx, c.Sender().ID); err != nil {
		return h.stateError(c, 0)
	}

	h.show(c, view.ConfirmDeleteUser, view.ConfirmDeleteMenu())
	return nil
}

// handleDeleteAccountAccept removes the backend account after confirmation
func (h *Handler) handleDeleteAccountAccept(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}
	if err := h.auth.DeleteAccount(ctx, userID); err != nil {
		return h.fail(c, "delete_account", err, view.GoToMain())
	}

	h.logger.Info("Account deleted", zap.Int64("user_id", userID))
	h.show(c, view.DeletedUser, view.GoToMain())
	return nil
}

func (h *Handler) handleDeleteAccountCancel(c tele.Context) error {
	h.show(c, view.CancelDeleteUser, view.GoToMain())
	return nil
}
