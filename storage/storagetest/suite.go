// Package storagetest runs the same repository checks against every database engine.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
	"github.com/Prajjwal2051/Viewly-sub002/core/search"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
	"github.com/Prajjwal2051/Viewly-sub002/storage"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

// Run checks repos against the behavior the services rely on.
// Each case creates its own users, so repos may be shared by every case.
func Run(t *testing.T, repos *storage.Repositories) {
	s := suite{repos: repos, prefix: uuid.NewString()[:6]}

	t.Run("UpdateUser keeps refresh token", s.updateUserKeepsRefreshToken)
	t.Run("WatchHistory", s.watchHistory)
	t.Run("GetVideoDetail", s.videoDetail)
	t.Run("QueryVideos", s.queryVideos)
	t.Run("DeleteVideo cascades", s.deleteVideoCascades)
	t.Run("GetChannelProfile", s.channelProfile)
	t.Run("SearchHistory", s.searchHistory)
}

type suite struct {
	repos  *storage.Repositories
	prefix string // keeps usernames unique when a database is reused
}

func (s suite) user(t *testing.T, name string) user.User {
	t.Helper()
	uname := s.prefix + name
	return testutil.CreateUser(t, s.repos.Users, name, uname, uname+"@viewly.test", "Pa$$w0rd")
}

func (s suite) subscribe(t *testing.T, subscriber, channel user.User) {
	t.Helper()
	_, err := s.repos.Subscriptions.CreateSubscription(context.Background(), subscription.Subscription{
		SubscriberID: subscriber.ID,
		ChannelID:    channel.ID,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
}

func (s suite) like(t *testing.T, l like.Like) {
	t.Helper()
	l.CreatedAt = time.Now().UTC()
	_, err := s.repos.Likes.CreateLike(context.Background(), l)
	require.NoError(t, err)
}

func (s suite) updateUserKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	usr := s.user(t, "rotator")

	stale, err := s.repos.Users.GetUser(ctx, user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	require.NoError(t, s.repos.Users.SetRefreshTokenHash(ctx, usr.ID, "rotated"))

	stale.FullName = "Rotator"
	stale.UpdatedAt = time.Now().UTC()
	_, err = s.repos.Users.UpdateUser(ctx, stale)
	require.NoError(t, err)

	got, err := s.repos.Users.GetUser(ctx, user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.Equal(t, "Rotator", got.FullName)
	assert.Equal(t, "rotated", got.RefreshTokenHash)
}

func (s suite) watchHistory(t *testing.T) {
	ctx := context.Background()
	viewer := s.user(t, "viewer")
	owner := s.user(t, "owner")
	base := time.Now().UTC().Add(-time.Hour)

	var ids []string
	for i := 0; i < user.MaxWatchHistory+5; i++ {
		v := testutil.CreateVideo(t, s.repos.Videos, owner.ID, fmt.Sprintf("clip-%03d", i), true, base.Add(time.Duration(i)*time.Second))
		ids = append(ids, v.ID)
		require.NoError(t, s.repos.Users.AddToWatchHistory(ctx, viewer.ID, v.ID))
	}
	// re-watching moves the video to the top without duplicating it
	rewatched := ids[len(ids)-3]
	require.NoError(t, s.repos.Users.AddToWatchHistory(ctx, viewer.ID, rewatched))

	history, err := s.repos.Users.GetWatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, history, user.MaxWatchHistory)
	assert.Equal(t, rewatched, history[0].ID)
	assert.Equal(t, ids[len(ids)-1], history[1].ID)
	assert.Equal(t, ids[len(ids)-2], history[2].ID)
	assert.Equal(t, ids[5], history[len(history)-1].ID)
	for _, v := range history {
		assert.NotEqual(t, ids[0], v.ID)
	}

	require.NotNil(t, history[0].Owner)
	assert.Equal(t, owner.ID, history[0].Owner.ID)
	assert.Equal(t, owner.Username, history[0].Owner.Username)
	assert.Equal(t, owner.Avatar, history[0].Owner.Avatar)
	assert.Equal(t, "clip-102", history[0].Title)

	empty, err := s.repos.Users.GetWatchHistory(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func (s suite) videoDetail(t *testing.T) {
	ctx := context.Background()
	owner := s.user(t, "director")
	fan := s.user(t, "cinephile")
	stranger := s.user(t, "passerby")
	v := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "premiere", true)
	other := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "trailer", true)

	s.like(t, like.Like{VideoID: v.ID, LikedBy: fan.ID})
	s.like(t, like.Like{VideoID: v.ID, LikedBy: owner.ID})
	s.like(t, like.Like{VideoID: other.ID, LikedBy: stranger.ID})
	s.subscribe(t, fan, owner)

	detail, err := s.repos.Videos.GetVideoDetail(ctx, v.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, detail.ID)
	assert.Equal(t, "premiere", detail.Title)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, owner.Username, detail.Owner.Username)
	assert.Equal(t, int64(2), detail.LikesCount)
	assert.True(t, detail.IsLiked)
	assert.Equal(t, int64(1), detail.SubscribersCount)
	assert.True(t, detail.IsSubscribed)

	detail, err = s.repos.Videos.GetVideoDetail(ctx, v.ID, stranger.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.LikesCount)
	assert.False(t, detail.IsLiked)
	assert.Equal(t, int64(1), detail.SubscribersCount)
	assert.False(t, detail.IsSubscribed)

	detail, err = s.repos.Videos.GetVideoDetail(ctx, v.ID, "")
	require.NoError(t, err)
	assert.False(t, detail.IsLiked)
	assert.False(t, detail.IsSubscribed)

	_, err = s.repos.Videos.GetVideoDetail(ctx, uuid.NewString(), fan.ID)
	assert.Equal(t, video.ErrNotFound, err)
}

func (s suite) queryVideos(t *testing.T) {
	ctx := context.Background()
	owner := s.user(t, "uploader")
	base := time.Now().UTC().Add(-time.Hour)
	first := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "Gopher Basics", true, base)
	second := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "Cooking Pasta", true, base.Add(time.Minute))
	third := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "Advanced gophers", true, base.Add(2*time.Minute))
	draft := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "Gopher draft", false, base.Add(3*time.Minute))
	ordering := []core.DBOrdering{video.DefaultOrdering}

	res, err := s.repos.Videos.QueryVideos(ctx, video.QueryFilter{OwnerID: owner.ID}, ordering, core.PageQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalDocs)
	assert.Equal(t, 2, res.TotalPages)
	assert.True(t, res.HasNextPage)
	require.Len(t, res.Docs, 2)
	assert.Equal(t, third.ID, res.Docs[0].ID)
	assert.Equal(t, second.ID, res.Docs[1].ID)
	require.NotNil(t, res.Docs[0].Owner)
	assert.Equal(t, owner.Username, res.Docs[0].Owner.Username)

	res, err = s.repos.Videos.QueryVideos(ctx, video.QueryFilter{OwnerID: owner.ID}, ordering, core.PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalDocs)
	assert.False(t, res.HasNextPage)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, first.ID, res.Docs[0].ID)

	res, err = s.repos.Videos.QueryVideos(ctx, video.QueryFilter{OwnerID: owner.ID, Search: "GOPHER"}, ordering, core.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Docs, 2)
	assert.Equal(t, third.ID, res.Docs[0].ID)
	assert.Equal(t, first.ID, res.Docs[1].ID)

	res, err = s.repos.Videos.QueryVideos(ctx, video.QueryFilter{OwnerID: owner.ID, IncludeUnpublished: true}, ordering, core.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.TotalDocs)
	require.NotEmpty(t, res.Docs)
	assert.Equal(t, draft.ID, res.Docs[0].ID)

	res, err = s.repos.Videos.QueryVideos(ctx, video.QueryFilter{OwnerID: owner.ID}, ordering, core.PageQuery{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalDocs)
	assert.Empty(t, res.Docs)
}

func (s suite) deleteVideoCascades(t *testing.T) {
	ctx := context.Background()
	owner := s.user(t, "creator")
	fan := s.user(t, "fan")
	doomed := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "doomed", true)
	survivor := testutil.CreateVideo(t, s.repos.Videos, owner.ID, "survivor", true)

	now := time.Now().UTC()
	c, err := s.repos.Comments.CreateComment(ctx, comment.Comment{
		VideoID: doomed.ID, OwnerID: fan.ID, Content: "nice", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	s.like(t, like.Like{VideoID: doomed.ID, LikedBy: fan.ID})
	s.like(t, like.Like{CommentID: c.ID, LikedBy: owner.ID})
	s.like(t, like.Like{VideoID: survivor.ID, LikedBy: fan.ID})
	p, err := s.repos.Playlists.CreatePlaylist(ctx, playlist.Playlist{
		Name: "mix", OwnerID: fan.ID, Videos: []string{doomed.ID, survivor.ID}, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, s.repos.Users.AddToWatchHistory(ctx, fan.ID, survivor.ID))
	require.NoError(t, s.repos.Users.AddToWatchHistory(ctx, fan.ID, doomed.ID))

	require.NoError(t, s.repos.Videos.DeleteVideo(ctx, doomed.ID))

	_, err = s.repos.Videos.GetVideo(ctx, doomed.ID)
	assert.Equal(t, video.ErrNotFound, err)
	_, err = s.repos.Comments.GetComment(ctx, c.ID)
	assert.Equal(t, comment.ErrNotFound, err)
	_, err = s.repos.Likes.GetLike(ctx, like.Target{Type: like.TargetVideo, ID: doomed.ID}, fan.ID)
	assert.Equal(t, like.ErrNotFound, err)
	_, err = s.repos.Likes.GetLike(ctx, like.Target{Type: like.TargetComment, ID: c.ID}, owner.ID)
	assert.Equal(t, like.ErrNotFound, err)
	_, err = s.repos.Likes.GetLike(ctx, like.Target{Type: like.TargetVideo, ID: survivor.ID}, fan.ID)
	assert.NoError(t, err)

	p, err = s.repos.Playlists.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{survivor.ID}, p.Videos)

	history, err := s.repos.Users.GetWatchHistory(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, survivor.ID, history[0].ID)

	assert.Equal(t, video.ErrNotFound, s.repos.Videos.DeleteVideo(ctx, doomed.ID))
}

func (s suite) channelProfile(t *testing.T) {
	ctx := context.Background()
	channel := s.user(t, "channel")
	first := s.user(t, "follower1")
	second := s.user(t, "follower2")
	lurker := s.user(t, "lurker")
	s.subscribe(t, first, channel)
	s.subscribe(t, second, channel)
	s.subscribe(t, channel, first)

	profile, err := s.repos.Users.GetChannelProfile(ctx, channel.Username, first.ID)
	require.NoError(t, err)
	assert.Equal(t, channel.ID, profile.ID)
	assert.Equal(t, channel.Email, profile.Email)
	assert.Equal(t, int64(2), profile.SubscribersCount)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = s.repos.Users.GetChannelProfile(ctx, channel.Username, lurker.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.SubscribersCount)
	assert.False(t, profile.IsSubscribed)

	profile, err = s.repos.Users.GetChannelProfile(ctx, lurker.Username, "")
	require.NoError(t, err)
	assert.Zero(t, profile.SubscribersCount)
	assert.Zero(t, profile.ChannelsSubscribedToCount)
	assert.False(t, profile.IsSubscribed)

	_, err = s.repos.Users.GetChannelProfile(ctx, s.prefix+"nobody", "")
	assert.Equal(t, user.ErrNotFound, err)
}

func (s suite) searchHistory(t *testing.T) {
	ctx := context.Background()
	searcher := s.user(t, "searcher")
	other := s.user(t, "browser")
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	for i := 0; i < search.MaxHistory+3; i++ {
		require.NoError(t, s.repos.Searches.SaveHistory(ctx, search.History{
			UserID:    searcher.ID,
			Query:     fmt.Sprintf("q%02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	// searching again moves the query to the top
	require.NoError(t, s.repos.Searches.SaveHistory(ctx, search.History{UserID: searcher.ID, Query: "q05", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.repos.Searches.SaveHistory(ctx, search.History{UserID: other.ID, Query: "other", CreatedAt: base}))

	history, err := s.repos.Searches.ListHistory(ctx, searcher.ID)
	require.NoError(t, err)
	require.Len(t, history, search.MaxHistory)
	assert.Equal(t, "q05", history[0].Query)
	assert.Equal(t, "q22", history[1].Query)
	assert.Equal(t, "q03", history[len(history)-1].Query)
	queries := make([]string, 0, len(history))
	for _, h := range history {
		queries = append(queries, h.Query)
	}
	assert.NotContains(t, queries, "q02")

	entry, err := s.repos.Searches.GetHistoryEntry(ctx, history[1].ID)
	require.NoError(t, err)
	assert.Equal(t, searcher.ID, entry.UserID)
	require.NoError(t, s.repos.Searches.DeleteHistoryEntry(ctx, entry.ID))
	_, err = s.repos.Searches.GetHistoryEntry(ctx, entry.ID)
	assert.Equal(t, search.ErrNotFound, err)

	require.NoError(t, s.repos.Searches.ClearHistory(ctx, searcher.ID))
	history, err = s.repos.Searches.ListHistory(ctx, searcher.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	history, err = s.repos.Searches.ListHistory(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
