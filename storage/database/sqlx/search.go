package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/search"
)

type historyRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Query     string    `db:"query"`
	CreatedAt time.Time `db:"created_at"`
}

func (r historyRow) unboil() search.History {
	return search.History{ID: r.ID, UserID: r.UserID, Query: r.Query, CreatedAt: r.CreatedAt.UTC()}
}

type searchRepository struct {
	db *sqlx.DB
}

var _ search.Repository = (*searchRepository)(nil) // interface compliance check

func NewSearchRepository(db *sqlx.DB) *searchRepository {
	return &searchRepository{db: db}
}

func (repo searchRepository) SaveHistory(ctx context.Context, h search.History) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO search_history (id, user_id, query, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, query) DO UPDATE SET created_at = EXCLUDED.created_at`)
		if _, err := tx.ExecContext(ctx, q, uuid.NewString(), h.UserID, h.Query, h.CreatedAt.UTC()); err != nil {
			return errors.Wrap(err, "upserting search history")
		}
		q = tx.Rebind(`DELETE FROM search_history WHERE user_id = ? AND id NOT IN (
			SELECT id FROM search_history WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?)`)
		_, err := tx.ExecContext(ctx, q, h.UserID, h.UserID, search.MaxHistory)
		return errors.Wrap(err, "trimming search history")
	})
}

func (repo searchRepository) GetHistoryEntry(ctx context.Context, id string) (search.History, error) {
	if !validID(id) {
		return search.History{}, search.ErrNotFound
	}
	var r historyRow
	q := repo.db.Rebind("SELECT id, user_id, query, created_at FROM search_history WHERE id = ?")
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return search.History{}, trapNoRowsErr(err, search.ErrNotFound, "selecting search history entry")
	}
	return r.unboil(), nil
}

func (repo searchRepository) ListHistory(ctx context.Context, userID string) ([]search.History, error) {
	history := make([]search.History, 0)
	if !validID(userID) {
		return history, nil
	}
	var rows []historyRow
	q := repo.db.Rebind(`SELECT id, user_id, query, created_at FROM search_history
		WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, userID, search.MaxHistory); err != nil {
		return nil, errors.Wrap(err, "selecting search history")
	}
	for _, r := range rows {
		history = append(history, r.unboil())
	}
	return history, nil
}

func (repo searchRepository) DeleteHistoryEntry(ctx context.Context, id string) error {
	if !validID(id) {
		return search.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM search_history WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting search history entry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return search.ErrNotFound
	}
	return nil
}

func (repo searchRepository) ClearHistory(ctx context.Context, userID string) error {
	if !validID(userID) {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM search_history WHERE user_id = ?"), userID)
	return errors.Wrap(err, "clearing search history")
}
