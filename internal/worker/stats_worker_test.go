package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type memAggregator struct {
	mu     sync.Mutex
	counts map[int64]map[int]int64
}

func (a *memAggregator) IncrementAggregated(ctx context.Context, pollID int64, optionIndex int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.counts == nil {
		a.counts = make(map[int64]map[int]int64)
	}
	if a.counts[pollID] == nil {
		a.counts[pollID] = make(map[int]int64)
	}
	a.counts[pollID][optionIndex]++
	return nil
}

func (a *memAggregator) get(pollID int64, optionIndex int) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[pollID][optionIndex]
}

func TestStatsWorkerAppliesEvents(t *testing.T) {
	agg := &memAggregator{}
	ch := make(chan VoteEvent, 10)
	w := NewStatsWorker(ch, agg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	ch <- VoteEvent{PollID: 1, OptionIndex: 0}
	ch <- VoteEvent{PollID: 1, OptionIndex: 0}
	ch <- VoteEvent{PollID: 2, OptionIndex: 3}

	assert.Eventually(t, func() bool {
		return agg.get(1, 0) == 2 && agg.get(2, 3) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
