package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_callbacks_total",
		Help: "Button presses by route",
	}, []string{"route"})

	dialogsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_dialogs_total",
		Help: "Finished dialogs by operation and outcome",
	}, []string{"op", "outcome"})

	notificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_joint_chat_notifications_total",
		Help: "Notices delivered to joint chats",
	})
)
