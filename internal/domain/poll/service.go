package poll

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrOwnerRequired = errors.New("authentication required")
	ErrNotOwner      = errors.New("poll belongs to another user")
	ErrPollNotFound  = errors.New("poll not found")
)

type Service struct {
	repo Repository

	mu        sync.Mutex
	listCache map[int64]listEntry
	cacheTTL  time.Duration
}

type listEntry struct {
	polls   []Poll
	expires time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		listCache: make(map[int64]listEntry),
		cacheTTL:  30 * time.Second,
	}
}

// Create validates, normalizes and sanitizes the input under CreateRules,
// then inserts the poll owned by ownerID. The owner's cached listing is
// invalidated on success.
func (s *Service) Create(ctx context.Context, ownerID int64, question string, options []string) (int64, error) {
	q, opts, err := validateInput(question, options, CreateRules)
	if err != nil {
		return 0, err
	}
	if ownerID == 0 {
		return 0, ErrOwnerRequired
	}

	p := &Poll{OwnerID: ownerID, Question: q}
	optModels := make([]Option, len(opts))
	for i, text := range opts {
		optModels[i] = Option{Position: i, Text: text}
	}

	id, err := s.repo.Create(ctx, p, optModels)
	if err != nil {
		return 0, err
	}

	s.invalidate(ownerID)
	return id, nil
}

// Update rewrites the question and options of a poll owned by ownerID.
// Authorization is folded into the repository filter: a miss on id+owner
// surfaces as not-found rather than a distinct forbidden error.
func (s *Service) Update(ctx context.Context, id, ownerID int64, question string, options []string) error {
	q, opts, err := validateInput(question, options, UpdateRules)
	if err != nil {
		return err
	}
	if ownerID == 0 {
		return ErrOwnerRequired
	}

	optModels := make([]Option, len(opts))
	for i, text := range opts {
		optModels[i] = Option{Position: i, Text: text}
	}

	ok, err := s.repo.Update(ctx, id, ownerID, q, optModels)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPollNotFound
	}

	s.invalidate(ownerID)
	return nil
}

// Delete removes a poll after confirming ownership. The destructive
// statement is additionally filtered by owner, so a concurrent ownership
// change between the check and the delete cannot widen its reach.
func (s *Service) Delete(ctx context.Context, id, ownerID int64) error {
	if ownerID == 0 {
		return ErrOwnerRequired
	}

	// A missing poll is reported the same way as someone else's poll, so
	// callers cannot probe which ids exist.
	owner, err := s.repo.OwnerOf(ctx, id)
	if errors.Is(err, ErrPollNotFound) {
		return ErrNotOwner
	}
	if err != nil {
		return err
	}
	if owner != ownerID {
		return ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.invalidate(ownerID)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Poll, []Option, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByOwner returns the polls owned by ownerID, newest first, served
// from a short-lived cache. An absent identity yields an empty list
// rather than an error.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Poll, error) {
	if ownerID == 0 {
		return []Poll{}, nil
	}

	s.mu.Lock()
	if entry, ok := s.listCache[ownerID]; ok && time.Now().Before(entry.expires) {
		polls := entry.polls
		s.mu.Unlock()
		return polls, nil
	}
	s.mu.Unlock()

	polls, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.listCache[ownerID] = listEntry{polls: polls, expires: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return polls, nil
}

func (s *Service) invalidate(ownerID int64) {
	s.mu.Lock()
	delete(s.listCache, ownerID)
	s.mu.Unlock()
}
