package inmem

import (
	"context"
	"slices"
	"strings"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, email, excludedID string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users.all() {
		if usr.ID == excludedID {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = newID()
	usr.WatchHistory = []string{}
	repo.db.users.insert(usr.ID, usr)
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var match func(*user.User) bool
	switch {
	case filter.ID != "":
		if usr, ok := repo.db.users.get(filter.ID); ok {
			return copyUser(*usr), nil
		}
		return user.User{}, user.ErrNotFound
	case filter.Username != "":
		match = func(u *user.User) bool { return u.Username == filter.Username }
	case filter.Email != "":
		match = func(u *user.User) bool { return u.Email == filter.Email }
	case filter.UsernameOrEmail != "":
		match = func(u *user.User) bool { return u.Username == filter.UsernameOrEmail || u.Email == filter.UsernameOrEmail }
	default:
		return user.User{}, user.ErrNotFound
	}

	for _, usr := range repo.db.users.all() {
		if match(usr) {
			return copyUser(*usr), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	existing, ok := repo.db.users.get(usr.ID)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	// only changed through AddToWatchHistory & SetRefreshTokenHash
	usr.WatchHistory = existing.WatchHistory
	usr.RefreshTokenHash = existing.RefreshTokenHash
	*existing = usr
	return copyUser(usr), nil
}

func (repo *userRepository) SetRefreshTokenHash(_ context.Context, id, hash string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr, ok := repo.db.users.get(id)
	if !ok {
		return user.ErrNotFound
	}
	usr.RefreshTokenHash = hash
	return nil
}

func (repo *userRepository) SearchUsers(_ context.Context, query string, page core.PageQuery) (core.Page[core.UserSummary], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := repo.db.users.filter(func(u *user.User) bool {
		return containsFold(u.Username, query) || containsFold(u.FullName, query)
	})
	slices.SortFunc(users, func(a, b *user.User) int { return strings.Compare(a.Username, b.Username) })

	summaries := make([]core.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return core.PaginateSlice(summaries, page), nil
}

func (repo *userRepository) GetChannelProfile(_ context.Context, username, viewerID string) (user.ChannelProfile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users.all() {
		if usr.Username != username {
			continue
		}
		subscribedTo := repo.db.subscriptions.count(func(s *subscription.Subscription) bool {
			return s.SubscriberID == usr.ID
		})
		return user.ChannelProfile{
			ID:                        usr.ID,
			Username:                  usr.Username,
			FullName:                  usr.FullName,
			Email:                     usr.Email,
			Avatar:                    usr.Avatar,
			CoverImage:                usr.CoverImage,
			SubscribersCount:          repo.db.subscribersCount(usr.ID),
			ChannelsSubscribedToCount: subscribedTo,
			IsSubscribed:              repo.db.isSubscribed(viewerID, usr.ID),
			CreatedAt:                 usr.CreatedAt,
		}, nil
	}
	return user.ChannelProfile{}, user.ErrNotFound
}

func (repo *userRepository) AddToWatchHistory(_ context.Context, userID, videoID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr, ok := repo.db.users.get(userID)
	if !ok {
		return user.ErrNotFound
	}
	history := slices.DeleteFunc(slices.Clone(usr.WatchHistory), func(id string) bool { return id == videoID })
	history = append([]string{videoID}, history...)
	if len(history) > user.MaxWatchHistory {
		history = history[:user.MaxWatchHistory]
	}
	usr.WatchHistory = history
	return nil
}

func (repo *userRepository) GetWatchHistory(_ context.Context, userID string) ([]user.WatchedVideo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	usr, ok := repo.db.users.get(userID)
	if !ok {
		return nil, user.ErrNotFound
	}
	videos := make([]user.WatchedVideo, 0, len(usr.WatchHistory))
	for _, id := range usr.WatchHistory {
		if v, ok := repo.db.videos.get(id); ok {
			videos = append(videos, repo.db.withOwner(*v))
		}
	}
	return videos, nil
}

func copyUser(usr user.User) user.User {
	usr.WatchHistory = slices.Clone(usr.WatchHistory)
	if usr.WatchHistory == nil {
		usr.WatchHistory = []string{}
	}
	return usr
}
