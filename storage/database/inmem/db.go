// Package inmem implements every repository over mutex-guarded in-memory tables.
// It backs the "memory" database engine and the test suites.
package inmem

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
	"github.com/Prajjwal2051/Viewly-sub002/core/search"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

// table keeps rows by ID, in insertion order.
type table[T any] struct {
	ids  []string
	rows map[string]*T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) get(id string) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) insert(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.rows[id] = &row
}

// all returns the rows in insertion order.
func (t *table[T]) all() []*T {
	rows := make([]*T, 0, len(t.ids))
	for _, id := range t.ids {
		rows = append(rows, t.rows[id])
	}
	return rows
}

// newestFirst returns the rows in reverse insertion order.
func (t *table[T]) newestFirst() []*T {
	rows := t.all()
	slices.Reverse(rows)
	return rows
}

func (t *table[T]) filter(pred func(*T) bool) []*T {
	var rows []*T
	for _, row := range t.all() {
		if pred(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *table[T]) delete(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.ids = slices.DeleteFunc(t.ids, func(i string) bool { return i == id })
	return true
}

// deleteWhere deletes the rows matching pred and returns their IDs.
func (t *table[T]) deleteWhere(pred func(*T) bool) []string {
	var deleted []string
	for _, id := range t.ids {
		if pred(t.rows[id]) {
			deleted = append(deleted, id)
			delete(t.rows, id)
		}
	}
	if len(deleted) > 0 {
		t.ids = slices.DeleteFunc(t.ids, func(i string) bool { _, ok := t.rows[i]; return !ok })
	}
	return deleted
}

func (t *table[T]) count(pred func(*T) bool) int64 {
	var n int64
	for _, row := range t.rows {
		if pred(row) {
			n++
		}
	}
	return n
}

// DB is guarded by a single lock: most reads join several tables.
type DB struct {
	mu            sync.RWMutex
	users         *table[user.User]
	videos        *table[video.Video]
	tweets        *table[tweet.Tweet]
	comments      *table[comment.Comment]
	likes         *table[like.Like]
	subscriptions *table[subscription.Subscription]
	playlists     *table[playlist.Playlist]
	notifications *table[notification.Notification]
	searches      *table[search.History]
}

func Open() *DB {
	return &DB{
		users:         newTable[user.User](),
		videos:        newTable[video.Video](),
		tweets:        newTable[tweet.Tweet](),
		comments:      newTable[comment.Comment](),
		likes:         newTable[like.Like](),
		subscriptions: newTable[subscription.Subscription](),
		playlists:     newTable[playlist.Playlist](),
		notifications: newTable[notification.Notification](),
		searches:      newTable[search.History](),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	fresh := Open()
	db.users, db.videos, db.tweets = fresh.users, fresh.videos, fresh.tweets
	db.comments, db.likes, db.subscriptions = fresh.comments, fresh.likes, fresh.subscriptions
	db.playlists, db.notifications, db.searches = fresh.playlists, fresh.notifications, fresh.searches
}

func newID() string { return uuid.NewString() }

func now() time.Time { return time.Now().UTC() }

// joins; callers hold db.mu

func (db *DB) summary(userID string) *core.UserSummary {
	usr, ok := db.users.get(userID)
	if !ok {
		return nil
	}
	s := usr.Summary()
	return &s
}

func (db *DB) withOwner(v video.Video) video.Video {
	v.Owner = db.summary(v.OwnerID)
	return v
}

func (db *DB) likesCount(target like.Target) int64 {
	return db.likes.count(func(l *like.Like) bool { return l.Target() == target })
}

func (db *DB) isLiked(target like.Target, userID string) bool {
	if userID == "" {
		return false
	}
	return db.likes.count(func(l *like.Like) bool { return l.LikedBy == userID && l.Target() == target }) > 0
}

func (db *DB) subscribersCount(channelID string) int64 {
	return db.subscriptions.count(func(s *subscription.Subscription) bool { return s.ChannelID == channelID })
}

func (db *DB) isSubscribed(subscriberID, channelID string) bool {
	if subscriberID == "" {
		return false
	}
	return db.subscriptions.count(func(s *subscription.Subscription) bool {
		return s.SubscriberID == subscriberID && s.ChannelID == channelID
	}) > 0
}

// deleteLikes removes the likes on the given targets.
func (db *DB) deleteLikes(targets ...like.Target) {
	set := make(map[like.Target]bool, len(targets))
	for _, t := range targets {
		set[t] = true
	}
	db.likes.deleteWhere(func(l *like.Like) bool { return set[l.Target()] })
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sortNewestFirst stable-sorts items by descending key; ties keep their order.
func sortNewestFirst[T any](items []T, key func(T) int64) {
	slices.SortStableFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return 0
	})
}
