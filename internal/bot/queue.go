package bot

import (
	"context"

	"meowpremium-bot/internal/platform/telegram"
)

// UpdateQueue serializes update processing for the webhook path. The HTTP
// handler only enqueues and acknowledges; a single worker consumes in arrival
// order, which gives webhook mode the same ordering guarantee the long-poll
// loop has and keeps long-running work (the broadcast fan-out) off the
// request context.
type UpdateQueue struct {
	bot *Bot
	ch  chan telegram.Update
}

func NewUpdateQueue(b *Bot, size int) *UpdateQueue {
	return &UpdateQueue{bot: b, ch: make(chan telegram.Update, size)}
}

// Enqueue hands an update to the worker without blocking. A false return
// means the queue is full; the webhook call should then be failed so
// Telegram redelivers the update later.
func (q *UpdateQueue) Enqueue(upd telegram.Update) bool {
	select {
	case q.ch <- upd:
		return true
	default:
		return false
	}
}

// Run consumes updates until ctx is cancelled. Updates still queued at
// shutdown are dropped; Telegram redelivers anything it never got a 200 for.
func (q *UpdateQueue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd := <-q.ch:
			q.bot.HandleUpdate(ctx, upd)
		}
	}
}
