package handler

import (
	"errors"
	"strings"

	"ffbot/internal/domain"
	"ffbot/internal/service"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText routes typed replies to the dialog awaiting them
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	if strings.HasPrefix(text, "/") {
		return nil
	}

	userID := c.Sender().ID
	ctx, cancel := h.ctx()
	s := h.GetState(ctx, userID)
	cancel()

	h.logger.Debug("handleText",
		zap.Int64("user_id", userID),
		zap.String("state", string(s.Tag())),
	)

	switch st := s.Stage.(type) {
	case domain.CreateGroupName:
		return h.createGroupName(c, s, st)
	case domain.CreateGroupPlan:
		return h.createGroupPlan(c, s, st)
	case domain.TransactionValueStage:
		return h.transactionValue(c, s, st)
	case domain.TransactionDescriptionStage:
		return h.transactionDescription(c, s, st)
	case domain.LinkAccountAdd:
		return h.linkAccount(c, s, st)
	case domain.JointChatID:
		return h.jointChatID(c, s, st)
	}

	// Free text outside of a dialog is ignored
	return nil
}

// retryText returns the message for errors the user can fix by retyping
func retryText(err error) (string, bool) {
	if errors.Is(err, service.ErrGroupNameExists) {
		return view.GroupNameExists, true
	}
	if ve, ok := service.AsValidation(err); ok {
		return ve.Message, true
	}
	return "", false
}

// reprompt replaces the previous prompt with problem followed by prompt and
// keeps the dialog at stage
func (h *Handler) reprompt(c tele.Context, s *domain.Session, problem, prompt string, stage domain.Stage) error {
	userID := c.Sender().ID
	h.cleanup(c, s.PromptID)

	ctx, cancel := h.ctx()
	defer cancel()

	text := problem
	if prompt != "" {
		text += "\n\n" + prompt
	}
	msg, err := h.api.Send(h.recipient(c), text, view.GoToMain().Markup())
	if err != nil {
		h.logger.Error("Failed to send prompt", zap.Int64("user_id", userID), zap.Error(err))
		h.SetState(ctx, userID, stage, 0)
		return nil
	}

	h.logger.Debug("Input rejected",
		zap.Int64("user_id", userID),
		zap.String("state", string(stage.Tag())),
	)
	dialogsTotal.WithLabelValues(string(stage.Tag()), "retry").Inc()
	if err := h.SetState(ctx, userID, stage, msg.ID); err != nil {
		return h.stateError(c, msg.ID)
	}
	return nil
}
