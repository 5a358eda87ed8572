package handler

import (
	"ffbot/internal/domain"
	"ffbot/internal/middleware"
	"ffbot/internal/service"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func (h *Handler) handleCreateGroup(c tele.Context) error {
	return h.askType(c, view.CreateGroup, domain.CreateGroupType{})
}

func (h *Handler) handleDeleteGroup(c tele.Context) error {
	return h.askType(c, view.DeleteGroup, domain.DeleteGroupType{})
}

func (h *Handler) handleAddTransaction(c tele.Context) error {
	return h.askType(c, view.AddTransaction, domain.TransactionTypeStage{})
}

// askType opens a dialog whose first step is picking income or expense
func (h *Handler) askType(c tele.Context, text string, stage domain.Stage) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	promptID := h.show(c, text, view.ChooseTypeMenu())
	if err := h.SetState(ctx, userID, stage, promptID); err != nil {
		return h.stateError(c, promptID)
	}
	return nil
}

// handleTypeChoice continues whichever dialog is waiting for a type
func (h *Handler) handleTypeChoice(c tele.Context) error {
	userID := c.Sender().ID
	t, err := domain.ParseTransactionType(cleanCallbackData(c.Callback().Data))
	if err != nil {
		return c.Respond()
	}

	ctx, cancel := h.ctx()
	defer cancel()

	switch h.GetState(ctx, userID).Stage.(type) {
	case domain.CreateGroupType:
		promptID := h.show(c, view.AskGroupName(h.groups.MaxNameLen()), view.GoToMain())
		if err := h.SetState(ctx, userID, domain.CreateGroupName{Type: t}, promptID); err != nil {
			return h.stateError(c, promptID)
		}
		return nil

	case domain.DeleteGroupType:
		return h.askGroup(c, t, view.AskGroupToDelete, domain.DeleteGroupName{Type: t})

	case domain.TransactionTypeStage:
		return h.askGroup(c, t, view.AskTransactionGroup, domain.TransactionGroupStage{Type: t})
	}

	h.logger.Debug("Type chosen outside of a dialog", zap.Int64("user_id", userID))
	return c.Respond()
}

// askGroup lists line items of type t so the user can pick one
func (h *Handler) askGroup(c tele.Context, t domain.TransactionType, text string, next domain.Stage) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	groups, err := h.groups.List(ctx, userID, t)
	if err != nil {
		return h.fail(c, string(next.Tag()), err, view.GoToMain())
	}
	if len(groups) == 0 {
		if err := h.ResetState(ctx, userID); err != nil {
			return h.stateError(c, 0)
		}
		h.show(c, view.GroupsNotExist, view.MainMenu())
		return nil
	}

	promptID := h.show(c, text, view.GroupsMenu(groups))
	if err := h.SetState(ctx, userID, next, promptID); err != nil {
		return h.stateError(c, promptID)
	}
	return nil
}

// handleGroupChoice handles a line item picked from the groups menu
func (h *Handler) handleGroupChoice(c tele.Context) error {
	userID := c.Sender().ID
	groupID, ok := payloadInt(c, view.PrefixGroup)
	if !ok {
		return c.Respond()
	}

	ctx, cancel := h.ctx()
	defer cancel()

	switch st := h.GetState(ctx, userID).Stage.(type) {
	case domain.DeleteGroupName:
		if err := h.ResetState(ctx, userID); err != nil {
			return h.stateError(c, 0)
		}
		group, err := h.groups.Delete(ctx, userID, groupID)
		if err != nil {
			return h.fail(c, "delete_group", err, view.GoToMain())
		}
		if group.Type == "" {
			group.Type = st.Type
		}
		h.show(c, view.DeletedGroup(group), view.MainMenu())

		user := middleware.CurrentUser(c)
		h.notify(user, view.NoticeDeleteGroup(actor(c), user, group))
		dialogsTotal.WithLabelValues("delete_group", "ok").Inc()
		return nil

	case domain.TransactionGroupStage:
		group, err := h.groups.Get(ctx, userID, groupID)
		if err != nil {
			return h.fail(c, "add_transaction", err, view.GoToMain())
		}
		promptID := h.show(c, view.AskTransactionValue(group.Name), view.GoToMain())
		next := domain.TransactionValueStage{
			Type:      st.Type,
			GroupID:   group.ID,
			GroupName: group.Name,
		}
		if err := h.SetState(ctx, userID, next, promptID); err != nil {
			return h.stateError(c, promptID)
		}
		return nil
	}

	return c.Respond()
}

// createGroupName handles the typed name of a new line item
func (h *Handler) createGroupName(c tele.Context, s *domain.Session, st domain.CreateGroupName) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	name, err := h.groups.ValidateName(ctx, userID, c.Text())
	if err != nil {
		if text, ok := retryText(err); ok {
			return h.reprompt(c, s, text, view.AskGroupName(h.groups.MaxNameLen()), s.Stage)
		}
		h.cleanup(c, s.PromptID)
		return h.fail(c, "create_group", err, view.GoToMain())
	}

	h.cleanup(c, s.PromptID)
	msg, err := h.api.Send(h.recipient(c), view.AskPlanValue(name), view.GoToMain().Markup())
	if err != nil {
		h.logger.Error("Failed to ask plan value", zap.Int64("user_id", userID), zap.Error(err))
		h.ResetState(ctx, userID)
		return nil
	}
	if err := h.SetState(ctx, userID, domain.CreateGroupPlan{Type: st.Type, Name: name}, msg.ID); err != nil {
		return h.stateError(c, msg.ID)
	}
	return nil
}

// createGroupPlan handles the plan value and creates the line item
func (h *Handler) createGroupPlan(c tele.Context, s *domain.Session, st domain.CreateGroupPlan) error {
	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	defer cancel()

	plan, err := service.ParseAmount(c.Text())
	if err != nil {
		return h.reprompt(c, s, err.Error(), view.AskPlanValue(st.Name), s.Stage)
	}

	h.cleanup(c, s.PromptID)
	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}
	created, err := h.groups.Create(ctx, userID, st.Type, st.Name, plan)
	if err != nil {
		return h.fail(c, "create_group", err, view.GoToMain())
	}

	shown := &domain.Group{Type: st.Type, Name: st.Name, PlanValue: plan}
	if created != nil {
		shown.ID = created.ID
	}
	h.show(c, view.CreatedGroup(shown), view.MainMenu())

	user := middleware.CurrentUser(c)
	h.notify(user, view.NoticeCreateGroup(actor(c), user, shown))
	dialogsTotal.WithLabelValues("create_group", "ok").Inc()
	return nil
}
