package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pollboard/internal/domain/poll"
)

type PollRepo struct {
	db *sql.DB
}

func NewPollRepo(db *sql.DB) *PollRepo {
	return &PollRepo{db: db}
}

func (r *PollRepo) Create(ctx context.Context, p *poll.Poll, options []poll.Option) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
        INSERT INTO polls (owner_id, question)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at
    `, p.OwnerID, p.Question).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return 0, err
	}

	if err := insertOptions(ctx, tx, p.ID, options); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return p.ID, nil
}

func (r *PollRepo) GetByID(ctx context.Context, id int64) (*poll.Poll, []poll.Option, error) {
	p := &poll.Poll{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, owner_id, question, created_at, updated_at
        FROM polls WHERE id = $1
    `, id).Scan(&p.ID, &p.OwnerID, &p.Question, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, poll.ErrPollNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, poll_id, position, text, created_at
        FROM options WHERE poll_id = $1 ORDER BY position
    `, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var opts []poll.Option
	for rows.Next() {
		var o poll.Option
		if err := rows.Scan(&o.ID, &o.PollID, &o.Position, &o.Text, &o.CreatedAt); err != nil {
			return nil, nil, err
		}
		opts = append(opts, o)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return p, opts, nil
}

func (r *PollRepo) ListByOwner(ctx context.Context, ownerID int64) ([]poll.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, owner_id, question, created_at, updated_at
        FROM polls WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []poll.Poll
	for rows.Next() {
		var p poll.Poll
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Question, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// Update rewrites the poll's question and replaces its option set inside
// one transaction. The UPDATE is filtered by owner, so a miss means the
// poll does not exist or is owned by someone else.
func (r *PollRepo) Update(ctx context.Context, id, ownerID int64, question string, options []poll.Option) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE polls SET question = $1, updated_at = now()
        WHERE id = $2 AND owner_id = $3
    `, question, id, ownerID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE poll_id = $1`, id); err != nil {
		return false, err
	}
	if err := insertOptions(ctx, tx, id, options); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PollRepo) Delete(ctx context.Context, id, ownerID int64) error {
	_, err := r.db.ExecContext(ctx, `
        DELETE FROM polls WHERE id = $1 AND owner_id = $2
    `, id, ownerID)
	return err
}

func (r *PollRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM polls WHERE id = $1`, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, poll.ErrPollNotFound
	}
	return ownerID, err
}

func insertOptions(ctx context.Context, tx *sql.Tx, pollID int64, options []poll.Option) error {
	for i := range options {
		options[i].PollID = pollID
		err := tx.QueryRowContext(ctx, `
            INSERT INTO options (poll_id, position, text)
            VALUES ($1, $2, $3)
            RETURNING id, created_at
        `, pollID, options[i].Position, options[i].Text).
			Scan(&options[i].ID, &options[i].CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
