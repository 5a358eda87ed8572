package handler

import (
	"strings"

	"ffbot/internal/domain"
	"ffbot/internal/service"
	"ffbot/internal/view"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// transactionValue handles the typed amount of a transaction
func (h *Handler) transactionValue(c tele.Context, s *domain.Session, st domain.TransactionValueStage) error {
	userID := c.Sender().ID

	value, err := service.ParseAmount(c.Text())
	if err != nil {
		return h.reprompt(c, s, err.Error(), view.AskTransactionValue(st.GroupName), s.Stage)
	}

	h.cleanup(c, s.PromptID)

	ctx, cancel := h.ctx()
	defer cancel()

	msg, err := h.api.Send(h.recipient(c), view.AskDescription, view.GoToMain().Markup())
	if err != nil {
		h.logger.Error("Failed to ask description", zap.Int64("user_id", userID), zap.Error(err))
		h.ResetState(ctx, userID)
		return nil
	}
	next := domain.TransactionDescriptionStage{
		Type:      st.Type,
		GroupID:   st.GroupID,
		GroupName: st.GroupName,
		Value:     value,
	}
	if err := h.SetState(ctx, userID, next, msg.ID); err != nil {
		return h.stateError(c, msg.ID)
	}
	return nil
}

// transactionDescription records the transaction once the description is in
func (h *Handler) transactionDescription(c tele.Context, s *domain.Session, st domain.TransactionDescriptionStage) error {
	userID := c.Sender().ID
	h.cleanup(c, s.PromptID)

	ctx, cancel := h.ctx()
	defer cancel()

	if err := h.ResetState(ctx, userID); err != nil {
		return h.stateError(c, 0)
	}
	result, err := h.transactions.Add(ctx, userID, st, strings.TrimSpace(c.Text()))
	if err != nil {
		return h.fail(c, "add_transaction", err, view.GoToMain())
	}

	tx := result.Transaction
	h.show(c, view.AddedTransaction(result.User, st.Type, st.GroupName, result.OldFact, tx), view.MainMenu())
	h.notify(result.User, view.NoticeTransaction(actor(c), result.User, st.Type, st.GroupName, tx))
	dialogsTotal.WithLabelValues("add_transaction", "ok").Inc()
	return nil
}
