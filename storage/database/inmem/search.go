package inmem

import (
	"context"

	"github.com/Prajjwal2051/Viewly-sub002/core/search"
)

type searchRepository struct {
	db *DB
}

var _ search.Repository = (*searchRepository)(nil) // interface compliance check

func NewSearchRepository(db *DB) *searchRepository {
	return &searchRepository{db: db}
}

// history returns the entries of userID, most recent first; callers hold db.mu.
func (repo *searchRepository) history(userID string) []*search.History {
	entries := repo.db.searches.newestFirst()
	var res []*search.History
	for _, h := range entries {
		if h.UserID == userID {
			res = append(res, h)
		}
	}
	sortNewestFirst(res, func(h *search.History) int64 { return h.CreatedAt.UnixNano() })
	return res
}

func (repo *searchRepository) SaveHistory(_ context.Context, h search.History) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.searches.deleteWhere(func(e *search.History) bool { return e.UserID == h.UserID && e.Query == h.Query })
	h.ID = newID()
	repo.db.searches.insert(h.ID, h)

	if entries := repo.history(h.UserID); len(entries) > search.MaxHistory {
		stale := make(map[string]bool, len(entries)-search.MaxHistory)
		for _, e := range entries[search.MaxHistory:] {
			stale[e.ID] = true
		}
		repo.db.searches.deleteWhere(func(e *search.History) bool { return stale[e.ID] })
	}
	return nil
}

func (repo *searchRepository) GetHistoryEntry(_ context.Context, id string) (search.History, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	h, ok := repo.db.searches.get(id)
	if !ok {
		return search.History{}, search.ErrNotFound
	}
	return *h, nil
}

func (repo *searchRepository) ListHistory(_ context.Context, userID string) ([]search.History, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	entries := repo.history(userID)
	history := make([]search.History, 0, len(entries))
	for _, h := range entries {
		history = append(history, *h)
	}
	return history, nil
}

func (repo *searchRepository) DeleteHistoryEntry(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.searches.delete(id) {
		return search.ErrNotFound
	}
	return nil
}

func (repo *searchRepository) ClearHistory(_ context.Context, userID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.searches.deleteWhere(func(e *search.History) bool { return e.UserID == userID })
	return nil
}
