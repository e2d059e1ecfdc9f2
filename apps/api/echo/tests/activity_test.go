package tests

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/dashboard"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/search"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

func Test_notificationApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	bob := env.createUser(t, "bob")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	bobToken := env.login(t, bob)

	for _, token := range []string{johnToken, bobToken} {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/subscriptions/c/"+jane.ID, token)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	list := func(query string) core.Page[notification.Notification] {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/notifications"+query, janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page core.Page[notification.Notification]
		decodeData(t, rec, &page)
		return page
	}
	unread := func() int64 {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/notifications/unread-count", janeToken)
		env.do(req, rec)
		var res struct {
			UnreadCount int64 `json:"unreadCount"`
		}
		decodeData(t, rec, &res)
		return res.UnreadCount
	}

	page := list("")
	require.Len(t, page.Docs, 2)
	assert.Equal(t, bob.ID, page.Docs[0].Sender.ID) // newest first
	assert.Equal(t, notification.TypeSubscription, page.Docs[0].Type)
	assert.Equal(t, int64(2), unread())

	t.Run("mark read", func(t *testing.T) {
		path := "/api/v1/notifications/" + page.Docs[0].ID + "/read"
		req, rec := newAuthRequest(http.MethodPatch, path, johnToken)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil) // not john's

		req, rec = newAuthRequest(http.MethodPatch, path, janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var n notification.Notification
		decodeData(t, rec, &n)
		assert.True(t, n.IsRead)

		assert.Equal(t, int64(1), unread())
		unreadOnly := list("?unreadOnly=true")
		require.Len(t, unreadOnly.Docs, 1)
		assert.Equal(t, page.Docs[1].ID, unreadOnly.Docs[0].ID)
	})

	t.Run("mark all read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/v1/notifications/read-all", janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res struct {
			ModifiedCount int64 `json:"modifiedCount"`
		}
		decodeData(t, rec, &res)
		assert.Equal(t, int64(1), res.ModifiedCount)
		assert.Zero(t, unread())
	})

	t.Run("delete", func(t *testing.T) {
		path := "/api/v1/notifications/" + page.Docs[1].ID
		req, rec := newAuthRequest(http.MethodDelete, path, bobToken)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)

		req, rec = newAuthRequest(http.MethodDelete, path, janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, list("").Docs, 1)
	})

	t.Run("anonymous", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/notifications")
		env.do(req, rec)
		checkErrors(t, rec, http.StatusUnauthorized, nil)
	})
}

func Test_searchApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "johnny_cat")
	janeToken := env.login(t, jane)
	createVideo(t, env, jane.ID, "Funny cat", true)
	createVideo(t, env, jane.ID, "Secret cat", false)
	createVideo(t, env, jane.ID, "Dogs", true)
	testutil.CreateTweet(t, env.repos.Tweets, john.ID, "my cat is great")

	find := func(token string, params ...string) (search.Results, int) {
		v := make(url.Values)
		for i := 0; i+1 < len(params); i += 2 {
			v.Add(params[i], params[i+1])
		}
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/search?"+v.Encode(), token)
		env.do(req, rec)
		var res search.Results
		if rec.Code == http.StatusOK {
			decodeData(t, rec, &res)
		}
		return res, rec.Code
	}

	t.Run("all", func(t *testing.T) {
		res, code := find("", "q", "CAT")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, search.TypeAll, res.Type)
		require.NotNil(t, res.Videos)
		require.NotNil(t, res.Users)
		require.NotNil(t, res.Tweets)
		assert.Equal(t, int64(1), res.Videos.TotalDocs) // published only
		assert.Equal(t, int64(1), res.Users.TotalDocs)
		assert.Equal(t, john.ID, res.Users.Docs[0].ID)
		assert.Equal(t, int64(1), res.Tweets.TotalDocs)
	})

	t.Run("one domain", func(t *testing.T) {
		res, code := find("", "q", "cat", "type", "videos")
		require.Equal(t, http.StatusOK, code)
		assert.NotNil(t, res.Videos)
		assert.Nil(t, res.Users)
		assert.Nil(t, res.Tweets)
	})

	t.Run("invalid", func(t *testing.T) {
		_, code := find("", "q", "  ")
		assert.Equal(t, http.StatusBadRequest, code)
		_, code = find("", "q", "cat", "type", "planets")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("history", func(t *testing.T) {
		for _, q := range []string{"cat", "dogs", "cat"} {
			_, code := find(janeToken, "q", q)
			require.Equal(t, http.StatusOK, code)
		}

		history := func() []search.History {
			req, rec := newAuthRequest(http.MethodGet, "/api/v1/search/history", janeToken)
			env.do(req, rec)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var entries []search.History
			decodeData(t, rec, &entries)
			return entries
		}
		entries := history()
		require.Len(t, entries, 2) // repeated queries move to the top
		assert.Equal(t, "cat", entries[0].Query)
		assert.Equal(t, "dogs", entries[1].Query)

		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/search/history/"+entries[1].ID, janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, history(), 1)

		req, rec = newAuthRequest(http.MethodDelete, "/api/v1/search/history/"+entries[1].ID, janeToken)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)

		req, rec = newAuthRequest(http.MethodDelete, "/api/v1/search/history", janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Empty(t, history())
	})

	t.Run("history is capped", func(t *testing.T) {
		for i := 0; i < search.MaxHistory+5; i++ {
			_, code := find(janeToken, "q", fmt.Sprintf("query %d", i))
			require.Equal(t, http.StatusOK, code)
		}
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/search/history", janeToken)
		env.do(req, rec)
		var entries []search.History
		decodeData(t, rec, &entries)
		assert.Len(t, entries, search.MaxHistory)
	})
}

func Test_dashboardApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	v1 := createVideo(t, env, jane.ID, "first", true)
	createVideo(t, env, jane.ID, "second", false)
	testutil.CreateTweet(t, env.repos.Tweets, jane.ID, "hi")

	steps := []struct {
		method, path, token string
		body                []byte
	}{
		{http.MethodGet, "/api/v1/videos/" + v1.ID, johnToken, nil},
		{http.MethodGet, "/api/v1/videos/" + v1.ID, "", nil},
		{http.MethodPost, "/api/v1/likes/toggle/v/" + v1.ID, johnToken, nil},
		{http.MethodPost, "/api/v1/subscriptions/c/" + jane.ID, johnToken, nil},
		{http.MethodPost, "/api/v1/comments/" + v1.ID, johnToken, marchallObj(t, comment.NewComment{Content: "wow"})},
	}
	for _, s := range steps {
		req, rec := newAuthRequest(s.method, s.path, s.token, s.body)
		env.do(req, rec)
		require.Less(t, rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/v1/dashboard/stats", janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats dashboard.Stats
	decodeData(t, rec, &stats)
	assert.Equal(t, dashboard.Stats{
		TotalVideos:      2,
		TotalViews:       2,
		TotalSubscribers: 1,
		TotalLikes:       1,
		TotalTweets:      1,
		TotalComments:    1,
	}, stats)

	req, rec = newAuthRequest(http.MethodGet, "/api/v1/dashboard/videos", janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var videos []dashboard.ChannelVideo
	decodeData(t, rec, &videos)
	require.Len(t, videos, 2) // unpublished included
	for _, v := range videos {
		if v.ID == v1.ID {
			assert.Equal(t, int64(1), v.LikesCount)
			assert.Equal(t, int64(1), v.CommentsCount)
			assert.Equal(t, int64(2), v.Views)
		}
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/v1/dashboard/stats", johnToken)
	env.do(req, rec)
	decodeData(t, rec, &stats)
	assert.Equal(t, dashboard.Stats{}, stats)

	req, rec = newRequest(http.MethodGet, "/api/v1/dashboard/stats")
	env.do(req, rec)
	checkErrors(t, rec, http.StatusUnauthorized, nil)
}
