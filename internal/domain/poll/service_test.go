package poll

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type memoryPollRepo struct {
	mu          sync.Mutex
	polls       map[int64]*Poll
	opts        map[int64][]Option
	nextID      int64
	createCalls int
	deleteCalls int
	listCalls   int
}

func newMemoryPollRepo() *memoryPollRepo {
	return &memoryPollRepo{
		polls:  make(map[int64]*Poll),
		opts:   make(map[int64][]Option),
		nextID: 1,
	}
}

func (r *memoryPollRepo) Create(ctx context.Context, p *Poll, options []Option) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	copyPoll := *p
	r.polls[p.ID] = &copyPoll

	cloned := make([]Option, len(options))
	for i, opt := range options {
		opt.ID = int64(i + 1)
		opt.PollID = p.ID
		opt.CreatedAt = time.Now()
		cloned[i] = opt
	}
	r.opts[p.ID] = cloned
	return p.ID, nil
}

func (r *memoryPollRepo) GetByID(ctx context.Context, id int64) (*Poll, []Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return nil, nil, ErrPollNotFound
	}
	copyPoll := *p
	copiedOpts := make([]Option, len(r.opts[id]))
	copy(copiedOpts, r.opts[id])
	return &copyPoll, copiedOpts, nil
}

func (r *memoryPollRepo) ListByOwner(ctx context.Context, ownerID int64) ([]Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	res := []Poll{}
	for _, p := range r.polls {
		if p.OwnerID == ownerID {
			res = append(res, *p)
		}
	}
	return res, nil
}

func (r *memoryPollRepo) Update(ctx context.Context, id, ownerID int64, question string, options []Option) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	p.Question = question
	p.UpdatedAt = time.Now()
	r.opts[id] = options
	return true, nil
}

func (r *memoryPollRepo) Delete(ctx context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	p, ok := r.polls[id]
	if !ok || p.OwnerID != ownerID {
		return nil
	}
	delete(r.polls, id)
	delete(r.opts, id)
	return nil
}

func (r *memoryPollRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return 0, ErrPollNotFound
	}
	return p.OwnerID, nil
}

func TestCreateValidation(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cases := []struct {
		name     string
		question string
		options  []string
		wantErr  error
	}{
		{"empty question", "   ", []string{"a", "b"}, ErrQuestionRequired},
		{"one option", "q?", []string{"a"}, ErrTooFewOptions},
		{"eleven options", "q?", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}, ErrTooManyOptions},
		{"duplicates collapse below two", "q?", []string{"a", "a", " a "}, ErrTooFewOptions},
		{"empties collapse below two", "q?", []string{"a", "  ", ""}, ErrTooFewOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, 1, tc.question, tc.options); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if repo.createCalls != 0 {
		t.Fatalf("expected no repo calls on validation failure, got %d", repo.createCalls)
	}
}

func TestCreateQuestionLengthBoundary(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'x'
	}

	if _, err := svc.Create(ctx, 1, string(long), []string{"a", "b"}); !errors.Is(err, ErrQuestionTooLong) {
		t.Fatalf("expected question too long, got %v", err)
	}
	if _, err := svc.Create(ctx, 1, string(long[:500]), []string{"a", "b"}); err != nil {
		t.Fatalf("500-rune question should pass: %v", err)
	}
}

func TestCreateSanitizesAndNormalizes(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, 7,
		"<script>alert(1)</script>Best colour?",
		[]string{" red ", "red", "<b>blue</b>", "", "green"},
	)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}

	p, opts, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Question != "Best colour?" {
		t.Fatalf("expected sanitized question, got %q", p.Question)
	}
	if p.OwnerID != 7 {
		t.Fatalf("expected owner 7, got %d", p.OwnerID)
	}

	texts := make([]string, len(opts))
	for i, o := range opts {
		if o.Position != i {
			t.Fatalf("expected position %d, got %d", i, o.Position)
		}
		texts[i] = o.Text
	}
	want := []string{"red", "blue", "green"}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("expected options %v, got %v", want, texts)
	}
}

func TestCreateRequiresOwner(t *testing.T) {
	svc := NewService(newMemoryPollRepo())
	if _, err := svc.Create(context.Background(), 0, "q?", []string{"a", "b"}); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected owner required, got %v", err)
	}
}

func TestUpdateOwnershipFilter(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, 1, "q?", []string{"a", "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// someone else's update misses the filter and reads as not found
	if err := svc.Update(ctx, id, 2, "hijack?", []string{"x", "y"}); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("expected not found for non-owner, got %v", err)
	}

	// the update path carries no length caps
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'q'
	}
	if err := svc.Update(ctx, id, 1, string(long), []string{"x", "y"}); err != nil {
		t.Fatalf("owner update: %v", err)
	}

	p, _, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Question != string(long) {
		t.Fatalf("expected updated question")
	}

	if err := svc.Update(ctx, id, 1, "  ", []string{"x", "y"}); !errors.Is(err, ErrQuestionRequired) {
		t.Fatalf("expected question required, got %v", err)
	}
	if err := svc.Update(ctx, id, 1, "q?", []string{"x"}); !errors.Is(err, ErrTooFewOptions) {
		t.Fatalf("expected too few options, got %v", err)
	}
}

func TestDeleteOwnershipGuard(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, 1, "q?", []string{"a", "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, id, 2); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	if repo.deleteCalls != 0 {
		t.Fatalf("delete must not reach the repo for a non-owner, calls=%d", repo.deleteCalls)
	}

	if err := svc.Delete(ctx, id, 1); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected exactly one repo delete, got %d", repo.deleteCalls)
	}

	// a missing poll reads the same as someone else's poll
	if err := svc.Delete(ctx, id, 1); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner for missing poll, got %v", err)
	}
}

func TestListByOwnerCache(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	svc.cacheTTL = time.Hour
	ctx := context.Background()

	id, err := svc.Create(ctx, 1, "q?", []string{"a", "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ListByOwner(ctx, 1); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.ListByOwner(ctx, 1); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected cached second list, repo calls=%d", repo.listCalls)
	}

	// delete invalidates the owner's listing
	if err := svc.Delete(ctx, id, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	polls, err := svc.ListByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected cache invalidation after delete, repo calls=%d", repo.listCalls)
	}
	if len(polls) != 0 {
		t.Fatalf("expected empty listing after delete, got %d", len(polls))
	}

	// anonymous callers get an explicit empty list, not an error
	polls, err = svc.ListByOwner(ctx, 0)
	if err != nil || len(polls) != 0 {
		t.Fatalf("expected empty list for anonymous, got %v polls, err=%v", len(polls), err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("anonymous list must not hit the repo")
	}
}
