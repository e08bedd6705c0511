package vote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memoryVoteRepo struct {
	mu           sync.Mutex
	optionCounts map[int64]int
	votes        []Vote
	aggregated   map[int64]map[int]int64
	countCalls   int
	aggCalls     int
}

func newMemoryVoteRepo() *memoryVoteRepo {
	return &memoryVoteRepo{
		optionCounts: make(map[int64]int),
		aggregated:   make(map[int64]map[int]int64),
	}
}

func (r *memoryVoteRepo) Create(ctx context.Context, v *Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.votes {
		if existing.PollID != v.PollID {
			continue
		}
		if v.VoterID != nil && existing.VoterID != nil && *existing.VoterID == *v.VoterID {
			return ErrAlreadyVoted
		}
		if v.AnonToken != nil && existing.AnonToken != nil && *existing.AnonToken == *v.AnonToken {
			return ErrAlreadyVoted
		}
	}
	v.ID = int64(len(r.votes) + 1)
	v.CreatedAt = time.Now()
	r.votes = append(r.votes, *v)
	return nil
}

func (r *memoryVoteRepo) OptionCount(ctx context.Context, pollID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.optionCounts[pollID], nil
}

func (r *memoryVoteRepo) CountByPoll(ctx context.Context, pollID int64) (map[int]int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countCalls++
	res := make(map[int]int64)
	var total int64
	for _, v := range r.votes {
		if v.PollID == pollID {
			res[v.OptionIndex]++
			total++
		}
	}
	return res, total, nil
}

func (r *memoryVoteRepo) AggregatedByPoll(ctx context.Context, pollID int64) (map[int]int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aggCalls++
	res := make(map[int]int64)
	var total int64
	for idx, c := range r.aggregated[pollID] {
		res[idx] = c
		total += c
	}
	return res, total, nil
}

func (r *memoryVoteRepo) IncrementAggregated(ctx context.Context, pollID int64, optionIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aggregated[pollID] == nil {
		r.aggregated[pollID] = make(map[int]int64)
	}
	r.aggregated[pollID][optionIndex]++
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestSubmitAnonymousVote(t *testing.T) {
	repo := newMemoryVoteRepo()
	repo.optionCounts[1] = 2
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Submit(ctx, 1, 0, nil, ptr("client-a")); err != nil {
		t.Fatalf("anonymous vote should succeed: %v", err)
	}
	if got := repo.votes[0].VoterID; got != nil {
		t.Fatalf("anonymous vote must record an absent voter id, got %v", *got)
	}

	if err := svc.Submit(ctx, 1, 1, nil, ptr("client-a")); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("same client token must not vote twice, got %v", err)
	}
	if err := svc.Submit(ctx, 1, 1, nil, ptr("client-b")); err != nil {
		t.Fatalf("different client token should succeed: %v", err)
	}

	if err := svc.Submit(ctx, 1, 0, nil, nil); !errors.Is(err, ErrNoVoterIdentifier) {
		t.Fatalf("anonymous vote without token, got %v", err)
	}
}

func TestSubmitBoundsCheck(t *testing.T) {
	repo := newMemoryVoteRepo()
	repo.optionCounts[1] = 2
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Submit(ctx, 1, 2, ptr(int64(42)), nil); !errors.Is(err, ErrOptionOutOfRange) {
		t.Fatalf("index == option count must be rejected, got %v", err)
	}
	if err := svc.Submit(ctx, 1, -1, ptr(int64(42)), nil); !errors.Is(err, ErrOptionOutOfRange) {
		t.Fatalf("negative index must be rejected, got %v", err)
	}
	if err := svc.Submit(ctx, 99, 0, ptr(int64(42)), nil); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("unknown poll must be rejected, got %v", err)
	}
	if len(repo.votes) != 0 {
		t.Fatalf("rejected submissions must not reach the repo")
	}

	if err := svc.Submit(ctx, 1, 1, ptr(int64(42)), nil); err != nil {
		t.Fatalf("in-range index: %v", err)
	}
}

func TestResultsFallbackAndCache(t *testing.T) {
	repo := newMemoryVoteRepo()
	repo.optionCounts[1] = 2
	svc := NewService(repo)
	svc.cacheTTL = time.Hour
	ctx := context.Background()

	if err := svc.Submit(ctx, 1, 0, ptr(int64(1)), nil); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := svc.Submit(ctx, 1, 0, ptr(int64(2)), nil); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := svc.Submit(ctx, 1, 1, ptr(int64(3)), nil); err != nil {
		t.Fatalf("vote: %v", err)
	}

	// no aggregate rows yet: the live count is the fallback
	results, total, err := svc.Results(ctx, 1)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if repo.countCalls != 1 {
		t.Fatalf("expected live count fallback, calls=%d", repo.countCalls)
	}
	if len(results) != 2 || results[0].OptionIndex != 0 || results[0].Votes != 2 {
		t.Fatalf("unexpected results %+v", results)
	}
	if results[1].Percentage < 33.0 || results[1].Percentage > 34.0 {
		t.Fatalf("unexpected percentage %+v", results[1])
	}

	// second read is served from cache
	if _, _, err := svc.Results(ctx, 1); err != nil {
		t.Fatalf("cached results: %v", err)
	}
	if repo.countCalls != 1 || repo.aggCalls != 1 {
		t.Fatalf("expected cached read, count=%d agg=%d", repo.countCalls, repo.aggCalls)
	}

	// a new vote invalidates the cache; the aggregate now wins
	if err := repo.IncrementAggregated(ctx, 1, 0); err != nil {
		t.Fatalf("agg: %v", err)
	}
	if err := svc.Submit(ctx, 1, 1, ptr(int64(4)), nil); err != nil {
		t.Fatalf("vote: %v", err)
	}
	_, total, err = svc.Results(ctx, 1)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected aggregate total 1, got %d", total)
	}
	if repo.countCalls != 1 {
		t.Fatalf("aggregate should short-circuit the live count, calls=%d", repo.countCalls)
	}
}
