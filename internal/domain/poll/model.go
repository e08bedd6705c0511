package poll

import (
	"context"
	"time"
)

type Poll struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Option struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	Position  int       `json:"position"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, p *Poll, options []Option) (int64, error)
	GetByID(ctx context.Context, id int64) (*Poll, []Option, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Poll, error)
	// Update matches by id AND owner in one statement and reports whether
	// a row was hit, so authorization is atomic with the write.
	Update(ctx context.Context, id, ownerID int64, question string, options []Option) (bool, error)
	// Delete is likewise filtered by owner.
	Delete(ctx context.Context, id, ownerID int64) error
	OwnerOf(ctx context.Context, id int64) (int64, error)
}
