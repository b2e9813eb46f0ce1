package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meowpremium-bot/internal/domain/order"
	"meowpremium-bot/internal/domain/user"
)

func TestUpdateQueueProcessesInArrivalOrder(t *testing.T) {
	f := newFixture(t, nil, &user.User{ID: testUserID, CoinBalance: 100})
	q := NewUpdateQueue(f.bot, 16)

	f.bot.sessions.Set(testUserID, &PurchaseSession{
		State:       PurchaseAwaitPhone,
		ProductKey:  "premium_1m",
		PriceAmount: 15000,
		CoinPrice:   15,
	})

	// Phone then username: only this order completes the flow. Both are
	// queued before the worker starts, so interleaving cannot reorder them.
	require.True(t, q.Enqueue(textUpdate(testUserID, "+959123456789")))
	require.True(t, q.Enqueue(textUpdate(testUserID, "target_user")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return f.bot.sessions.Get(testUserID) == nil
	}, 2*time.Second, 5*time.Millisecond, "worker should drain the queue and finish the flow")

	cancel()
	<-done

	u, err := f.users.GetByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(85), u.CoinBalance)
	require.Len(t, f.orders.appended, 1)
	assert.Equal(t, order.StatusPlaced, f.orders.appended[0].Status)
	assert.Equal(t, "+959123456789", f.orders.appended[0].Phone)
}

func TestUpdateQueueRejectsWhenFull(t *testing.T) {
	f := newFixture(t, nil)
	q := NewUpdateQueue(f.bot, 1)

	assert.True(t, q.Enqueue(textUpdate(testUserID, "/start")))
	assert.False(t, q.Enqueue(textUpdate(testUserID, "/start")), "a full queue must refuse so the delivery is retried")
}

func TestUpdateQueueStopsOnCancel(t *testing.T) {
	f := newFixture(t, nil)
	q := NewUpdateQueue(f.bot, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
