package vote

import (
	"context"
	"time"
)

// Vote references a poll option by position. VoterID is nil for anonymous
// votes; those carry an AnonToken instead so repeat votes from the same
// client can still be rejected.
type Vote struct {
	ID          int64     `json:"id"`
	PollID      int64     `json:"poll_id"`
	VoterID     *int64    `json:"voter_id,omitempty"`
	AnonToken   *string   `json:"-"`
	OptionIndex int       `json:"option_index"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, v *Vote) error
	OptionCount(ctx context.Context, pollID int64) (int, error)
	CountByPoll(ctx context.Context, pollID int64) (map[int]int64, int64, error)
	AggregatedByPoll(ctx context.Context, pollID int64) (map[int]int64, int64, error)
	IncrementAggregated(ctx context.Context, pollID int64, optionIndex int) error
}
