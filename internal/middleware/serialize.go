package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// UserQueues runs each user's events one at a time in arrival order. Every
// user with pending events gets a worker goroutine that exits once the
// queue drains.
type UserQueues struct {
	mu      sync.Mutex
	queues  map[int64][]func()
	onError func(error, tele.Context)
}

// NewUserQueues creates an empty queue set. onError receives handler errors.
func NewUserQueues(onError func(error, tele.Context)) *UserQueues {
	return &UserQueues{
		queues:  make(map[int64][]func()),
		onError: onError,
	}
}

// Enqueue appends job to the user's queue
func (q *UserQueues) Enqueue(userID int64, job func()) {
	q.mu.Lock()
	pending, running := q.queues[userID]
	q.queues[userID] = append(pending, job)
	q.mu.Unlock()

	if !running {
		go q.drain(userID)
	}
}

func (q *UserQueues) drain(userID int64) {
	for {
		q.mu.Lock()
		pending := q.queues[userID]
		if len(pending) == 0 {
			delete(q.queues, userID)
			q.mu.Unlock()
			return
		}
		job := pending[0]
		pending[0] = nil
		q.queues[userID] = pending[1:]
		q.mu.Unlock()

		job()
	}
}

// Len returns the number of users with queued or running events
func (q *UserQueues) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues)
}

// Serialize hands each event to its user's queue and returns at once. It
// must run in the goroutine receiving updates, so the bot is expected to be
// synchronous.
func Serialize(queues *UserQueues) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}
			queues.Enqueue(sender.ID, func() {
				if err := next(c); err != nil && queues.onError != nil {
					queues.onError(err, c)
				}
			})
			return nil
		}
	}
}

// PrivateOnly ignores events from group chats
func PrivateOnly() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if chat := c.Chat(); chat != nil && chat.Type != tele.ChatPrivate {
				return nil
			}
			return next(c)
		}
	}
}
