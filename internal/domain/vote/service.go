package vote

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrPollNotFound      = errors.New("poll not found")
	ErrAlreadyVoted      = errors.New("already voted in this poll")
	ErrOptionOutOfRange  = errors.New("option index out of range")
	ErrNoVoterIdentifier = errors.New("anonymous vote needs a client token")
)

type Service struct {
	repo Repository

	mu       sync.Mutex
	results  map[int64]resultsEntry
	cacheTTL time.Duration
}

type resultsEntry struct {
	results []Result
	total   int64
	expires time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		results:  make(map[int64]resultsEntry),
		cacheTTL: 5 * time.Second,
	}
}

// Submit records a vote for the option at optionIndex. voterID may be nil
// (anonymous voting is allowed); anonymous votes must carry anonToken.
// The index is bounds-checked against the poll's current option count.
func (s *Service) Submit(ctx context.Context, pollID int64, optionIndex int, voterID *int64, anonToken *string) error {
	if voterID == nil && (anonToken == nil || *anonToken == "") {
		return ErrNoVoterIdentifier
	}

	count, err := s.repo.OptionCount(ctx, pollID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPollNotFound
	}
	if optionIndex < 0 || optionIndex >= count {
		return ErrOptionOutOfRange
	}

	v := &Vote{
		PollID:      pollID,
		VoterID:     voterID,
		AnonToken:   anonToken,
		OptionIndex: optionIndex,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.results, pollID)
	s.mu.Unlock()

	return nil
}

type Result struct {
	OptionIndex int     `json:"option_index"`
	Votes       int64   `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

// Results returns per-option counts for a poll, preferring the aggregate
// maintained by the stats worker and falling back to a live count when
// the aggregate is empty. Responses are cached briefly.
func (s *Service) Results(ctx context.Context, pollID int64) ([]Result, int64, error) {
	s.mu.Lock()
	if entry, ok := s.results[pollID]; ok && time.Now().Before(entry.expires) {
		res, total := entry.results, entry.total
		s.mu.Unlock()
		return res, total, nil
	}
	s.mu.Unlock()

	counts, total, err := s.repo.AggregatedByPoll(ctx, pollID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		counts, total, err = s.repo.CountByPoll(ctx, pollID)
		if err != nil {
			return nil, 0, err
		}
	}

	results := make([]Result, 0, len(counts))
	for idx, c := range counts {
		var p float64
		if total > 0 {
			p = float64(c) * 100.0 / float64(total)
		}
		results = append(results, Result{OptionIndex: idx, Votes: c, Percentage: p})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].OptionIndex < results[j].OptionIndex })

	s.mu.Lock()
	s.results[pollID] = resultsEntry{results: results, total: total, expires: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return results, total, nil
}
