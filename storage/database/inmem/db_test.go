package inmem

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
	"github.com/Prajjwal2051/Viewly-sub002/core/search"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

func createUser(t *testing.T, db *DB, username string) user.User {
	t.Helper()
	usr, err := NewUserRepository(db).CreateUser(context.Background(), user.User{
		Username: username,
		Email:    username + "@viewly.test",
		FullName: username,
	})
	require.NoError(t, err)
	return usr
}

func createVideo(t *testing.T, db *DB, ownerID, title string, published bool) video.Video {
	t.Helper()
	v, err := NewVideoRepository(db).CreateVideo(context.Background(), video.Video{
		OwnerID:     ownerID,
		Title:       title,
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return v
}

func TestUserRepository_CheckUniqueness(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewUserRepository(db)
	usr := createUser(t, db, "jdoe")

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUniqueness(ctx, "jdoe", "other@viewly.test", ""))
	assert.Equal(t, user.ErrEmailExists, repo.CheckUniqueness(ctx, "other", "jdoe@viewly.test", ""))
	assert.NoError(t, repo.CheckUniqueness(ctx, "jdoe", "jdoe@viewly.test", usr.ID))
	assert.NoError(t, repo.CheckUniqueness(ctx, "", "new@viewly.test", ""))
}

func TestUserRepository_WatchHistory(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewUserRepository(db)
	usr := createUser(t, db, "viewer")
	owner := createUser(t, db, "owner")

	var ids []string
	for i := 0; i < user.MaxWatchHistory+5; i++ {
		v := createVideo(t, db, owner.ID, fmt.Sprintf("video %d", i), true)
		ids = append(ids, v.ID)
		require.NoError(t, repo.AddToWatchHistory(ctx, usr.ID, v.ID))
	}
	// re-watching moves the video to the top without duplicating it
	require.NoError(t, repo.AddToWatchHistory(ctx, usr.ID, ids[len(ids)-3]))

	got, err := repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	require.Len(t, got.WatchHistory, user.MaxWatchHistory)
	assert.Equal(t, ids[len(ids)-3], got.WatchHistory[0])
	assert.Equal(t, ids[len(ids)-1], got.WatchHistory[1])
	assert.NotContains(t, got.WatchHistory, ids[0])

	history, err := repo.GetWatchHistory(ctx, usr.ID)
	require.NoError(t, err)
	require.Len(t, history, user.MaxWatchHistory)
	require.NotNil(t, history[0].Owner)
	assert.Equal(t, "owner", history[0].Owner.Username)

	// UpdateUser never overwrites the history
	got.WatchHistory = nil
	got.FullName = "Viewer"
	_, err = repo.UpdateUser(ctx, got)
	require.NoError(t, err)
	got, err = repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "viewer@viewly.test"})
	require.NoError(t, err)
	assert.Equal(t, "Viewer", got.FullName)
	assert.Len(t, got.WatchHistory, user.MaxWatchHistory)
}

func TestUserRepository_UpdateUserKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewUserRepository(db)
	usr := createUser(t, db, "rotator")

	stale, err := repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	require.NoError(t, repo.SetRefreshTokenHash(ctx, usr.ID, "rotated"))

	stale.FullName = "Rotator"
	_, err = repo.UpdateUser(ctx, stale)
	require.NoError(t, err)

	got, err := repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.Equal(t, "Rotator", got.FullName)
	assert.Equal(t, "rotated", got.RefreshTokenHash)
}

func TestVideoRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := Open()
	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	v := createVideo(t, db, owner.ID, "doomed", true)
	other := createVideo(t, db, owner.ID, "survivor", true)

	c, err := NewCommentRepository(db).CreateComment(ctx, comment.Comment{VideoID: v.ID, OwnerID: fan.ID, Content: "nice"})
	require.NoError(t, err)
	likes := NewLikeRepository(db)
	_, err = likes.CreateLike(ctx, like.Like{VideoID: v.ID, LikedBy: fan.ID})
	require.NoError(t, err)
	_, err = likes.CreateLike(ctx, like.Like{CommentID: c.ID, LikedBy: owner.ID})
	require.NoError(t, err)
	_, err = likes.CreateLike(ctx, like.Like{VideoID: other.ID, LikedBy: fan.ID})
	require.NoError(t, err)
	p, err := NewPlaylistRepository(db).CreatePlaylist(ctx, playlist.Playlist{Name: "mix", OwnerID: fan.ID, Videos: []string{v.ID, other.ID}})
	require.NoError(t, err)

	require.NoError(t, NewVideoRepository(db).DeleteVideo(ctx, v.ID))

	_, err = NewCommentRepository(db).GetComment(ctx, c.ID)
	assert.Equal(t, comment.ErrNotFound, err)
	assert.Equal(t, int64(1), db.likes.count(func(*like.Like) bool { return true }))
	p, err = NewPlaylistRepository(db).GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID}, p.Videos)

	assert.Equal(t, video.ErrNotFound, NewVideoRepository(db).DeleteVideo(ctx, v.ID))
}

func TestVideoRepository_QueryVideos(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewVideoRepository(db)
	owner := createUser(t, db, "owner")
	a := createVideo(t, db, owner.ID, "Go tutorial", true)
	b := createVideo(t, db, owner.ID, "Cooking pasta", true)
	c := createVideo(t, db, owner.ID, "Go draft", false)
	require.NoError(t, repo.IncrementViews(ctx, b.ID))

	page := core.PageQuery{Page: 1, Limit: 10}
	res, err := repo.QueryVideos(ctx, video.QueryFilter{Search: "go"}, []core.DBOrdering{video.DefaultOrdering}, page)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, a.ID, res.Docs[0].ID)

	res, err = repo.QueryVideos(ctx, video.QueryFilter{OwnerID: owner.ID, IncludeUnpublished: true}, []core.DBOrdering{video.DefaultOrdering}, page)
	require.NoError(t, err)
	require.Len(t, res.Docs, 3)
	assert.Equal(t, c.ID, res.Docs[0].ID) // newest first

	res, err = repo.QueryVideos(ctx, video.QueryFilter{}, []core.DBOrdering{{Field: "views"}}, page)
	require.NoError(t, err)
	require.Len(t, res.Docs, 2)
	assert.Equal(t, b.ID, res.Docs[0].ID)
	assert.Equal(t, int64(1), res.Docs[0].Views)
	require.NotNil(t, res.Docs[0].Owner)
}

func TestSearchRepository_SaveHistory(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewSearchRepository(db)
	base := time.Now().UTC()

	for i := 0; i < search.MaxHistory+3; i++ {
		require.NoError(t, repo.SaveHistory(ctx, search.History{
			UserID:    "u1",
			Query:     fmt.Sprintf("q%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.SaveHistory(ctx, search.History{UserID: "u1", Query: "q5", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.SaveHistory(ctx, search.History{UserID: "u2", Query: "other", CreatedAt: base}))

	history, err := repo.ListHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, search.MaxHistory)
	assert.Equal(t, "q5", history[0].Query)
	queries := make([]string, 0, len(history))
	for _, h := range history {
		queries = append(queries, h.Query)
	}
	assert.NotContains(t, queries, "q0")

	require.NoError(t, repo.ClearHistory(ctx, "u1"))
	history, err = repo.ListHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
	history, err = repo.ListHistory(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
