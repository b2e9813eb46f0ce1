package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"meowpremium-bot/internal/platform/telegram"
)

// ----- Fake sender -----

type fakeSender struct {
	failFor  map[int64]bool
	attempts []int64
}

func (s *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) (*telegram.Message, error) {
	s.attempts = append(s.attempts, chatID)
	if s.failFor[chatID] {
		return nil, errors.New("forbidden: bot was blocked by the user")
	}
	return &telegram.Message{MessageID: int64(len(s.attempts))}, nil
}

// ----- Tests -----

func TestExecuteTallies(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]bool{2: true, 4: true}}
	svc := NewService(sender, 100000)

	result := svc.Execute(context.Background(), []int64{1, 2, 3, 4, 5}, "hello", nil)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
}

func TestExecuteAttemptsEveryRecipientDespiteFailures(t *testing.T) {
	// The very first send fails; the rest must still be attempted.
	sender := &fakeSender{failFor: map[int64]bool{1: true}}
	svc := NewService(sender, 100000)

	result := svc.Execute(context.Background(), []int64{1, 2, 3}, "hello", nil)

	assert.Equal(t, []int64{1, 2, 3}, sender.attempts)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}

func TestExecuteEmptyRecipientList(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, 100000)

	result := svc.Execute(context.Background(), nil, "hello", nil)

	assert.Equal(t, Result{}, result)
	assert.Empty(t, sender.attempts)
}

func TestExecuteReportsProgress(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, 100000)
	svc.reportEvery = 2

	var reports [][3]int
	recipients := make([]int64, 5)
	for i := range recipients {
		recipients[i] = int64(i + 1)
	}

	svc.Execute(context.Background(), recipients, "hello", func(done, total, failed int) {
		reports = append(reports, [3]int{done, total, failed})
	})

	// Progress after 2 and 4 of 5; the final tally is the caller's report.
	assert.Equal(t, [][3]int{{2, 5, 0}, {4, 5, 0}}, reports)
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, 100000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.Execute(ctx, []int64{1, 2, 3}, "hello", nil)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, result.Total, result.Succeeded+result.Failed)
}
