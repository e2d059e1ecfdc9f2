package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

func Test_tweetApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)

	var created tweet.Tweet
	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/tweets", janeToken, marchallObj(t, tweet.NewTweet{Content: "   "}))
		env.do(req, rec)
		checkErrors(t, rec, http.StatusBadRequest, map[string]string{"content": "this field is required"})

		req, rec = newRequest(http.MethodPost, "/api/v1/tweets", marchallObj(t, tweet.NewTweet{Content: "hello"}))
		env.do(req, rec)
		checkErrors(t, rec, http.StatusUnauthorized, nil)

		req, rec = newAuthRequest(http.MethodPost, "/api/v1/tweets", janeToken, marchallObj(t, tweet.NewTweet{Content: " hello world "}))
		env.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decodeData(t, rec, &created)
		assert.Equal(t, "hello world", created.Content)
		require.NotNil(t, created.Owner)
		assert.Equal(t, jane.Username, created.Owner.Username)
	})
	testutil.CreateTweet(t, env.repos.Tweets, john.ID, "john was here")

	t.Run("update", func(t *testing.T) {
		tests := []httpTest{
			{name: "not the owner", token: johnToken, body: marchallObj(t, tweet.NewTweet{Content: "mine"}), wantCode: http.StatusForbidden},
			{name: "unknown", path: "/api/v1/tweets/unknown", token: janeToken, body: marchallObj(t, tweet.NewTweet{Content: "x"}), wantCode: http.StatusNotFound},
			{name: "success", token: janeToken, body: marchallObj(t, tweet.NewTweet{Content: "edited"}), wantCode: http.StatusOK},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				path := tt.path
				if path == "" {
					path = "/api/v1/tweets/" + created.ID
				}
				req, rec := newAuthRequest(http.MethodPatch, path, tt.token, tt.body)
				env.do(req, rec)
				checkCodeAndData(t, tt, rec)
			})
		}
	})

	t.Run("like & list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/likes/toggle/t/"+created.ID, johnToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/api/v1/tweets/user/"+jane.ID, johnToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page core.Page[tweet.Tweet]
		decodeData(t, rec, &page)
		require.Len(t, page.Docs, 1)
		assert.Equal(t, "edited", page.Docs[0].Content)
		assert.Equal(t, int64(1), page.Docs[0].LikesCount)
		assert.True(t, page.Docs[0].IsLiked)

		req, rec = newRequest(http.MethodGet, "/api/v1/tweets")
		env.do(req, rec)
		decodeData(t, rec, &page)
		assert.Equal(t, int64(2), page.TotalDocs)
		for _, tw := range page.Docs {
			assert.False(t, tw.IsLiked)
		}

		req, rec = newRequest(http.MethodGet, "/api/v1/tweets/user/ghost")
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/tweets/"+created.ID, johnToken)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusForbidden, nil)

		req, rec = newAuthRequest(http.MethodDelete, "/api/v1/tweets/"+created.ID, janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodPost, "/api/v1/likes/toggle/t/"+created.ID, johnToken)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)
	})
}

func Test_commentApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	v := createVideo(t, env, jane.ID, "clip", true)
	path := "/api/v1/comments/" + v.ID

	var c comment.Comment
	req, rec := newAuthRequest(http.MethodPost, path, johnToken, marchallObj(t, comment.NewComment{Content: "nice!"}))
	env.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &c)
	assert.Equal(t, v.ID, c.VideoID)
	assert.Equal(t, john.ID, c.OwnerID)

	req, rec = newAuthRequest(http.MethodPost, "/api/v1/comments/unknown", johnToken, marchallObj(t, comment.NewComment{Content: "nice!"}))
	env.do(req, rec)
	checkErrors(t, rec, http.StatusNotFound, nil)

	req, rec = newAuthRequest(http.MethodPost, path, johnToken, marchallObj(t, comment.NewComment{}))
	env.do(req, rec)
	checkErrors(t, rec, http.StatusBadRequest, map[string]string{"content": "this field is required"})

	// the video owner is notified
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/notifications", janeToken)
	env.do(req, rec)
	var notifs core.Page[notification.Notification]
	decodeData(t, rec, &notifs)
	require.Len(t, notifs.Docs, 1)
	assert.Equal(t, notification.TypeComment, notifs.Docs[0].Type)
	assert.Equal(t, c.ID, notifs.Docs[0].CommentID)
	require.NotNil(t, notifs.Docs[0].Sender)
	assert.Equal(t, john.Username, notifs.Docs[0].Sender.Username)

	req, rec = newAuthRequest(http.MethodPost, "/api/v1/likes/toggle/c/"+c.ID, janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, path, janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page core.Page[comment.Comment]
	decodeData(t, rec, &page)
	require.Len(t, page.Docs, 1)
	assert.Equal(t, int64(1), page.Docs[0].LikesCount)
	assert.True(t, page.Docs[0].IsLiked)
	require.NotNil(t, page.Docs[0].Owner)

	tests := []struct {
		name     string
		method   string
		token    string
		wantCode int
	}{
		{name: "update by other", method: http.MethodPatch, token: janeToken, wantCode: http.StatusForbidden},
		{name: "update", method: http.MethodPatch, token: johnToken, wantCode: http.StatusOK},
		{name: "delete by other", method: http.MethodDelete, token: janeToken, wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, token: johnToken, wantCode: http.StatusOK},
		{name: "delete again", method: http.MethodDelete, token: johnToken, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, "/api/v1/comments/c/"+c.ID, tt.token, marchallObj(t, comment.NewComment{Content: "edited"}))
			env.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	req, rec = newRequest(http.MethodGet, "/api/v1/comments/unknown")
	env.do(req, rec)
	checkErrors(t, rec, http.StatusNotFound, nil)
}

func Test_likeApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	v1 := createVideo(t, env, jane.ID, "first", true)
	v2 := createVideo(t, env, jane.ID, "second", true)

	toggle := func(id string) like.ToggleResult {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/likes/toggle/v/"+id, johnToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res like.ToggleResult
		decodeData(t, rec, &res)
		return res
	}
	assert.True(t, toggle(v1.ID).IsLiked)
	assert.True(t, toggle(v2.ID).IsLiked)
	assert.False(t, toggle(v1.ID).IsLiked)

	req, rec := newAuthRequest(http.MethodGet, "/api/v1/likes/videos", johnToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page core.Page[video.Video]
	decodeData(t, rec, &page)
	require.Len(t, page.Docs, 1)
	assert.Equal(t, v2.ID, page.Docs[0].ID)

	// one notification per like, none on unlike
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/notifications/unread-count", janeToken)
	env.do(req, rec)
	var count struct {
		UnreadCount int64 `json:"unreadCount"`
	}
	decodeData(t, rec, &count)
	assert.Equal(t, int64(2), count.UnreadCount)

	req, rec = newAuthRequest(http.MethodPost, "/api/v1/likes/toggle/v/unknown", johnToken)
	env.do(req, rec)
	checkErrors(t, rec, http.StatusNotFound, nil)

	req, rec = newRequest(http.MethodGet, "/api/v1/likes/videos")
	env.do(req, rec)
	checkErrors(t, rec, http.StatusUnauthorized, nil)
}

func Test_subscriptionApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	bob := env.createUser(t, "bob")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	bobToken := env.login(t, bob)

	toggle := func(channelID, token string) *subscription.ToggleResult {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/subscriptions/c/"+channelID, token)
		env.do(req, rec)
		if rec.Code != http.StatusOK {
			return nil
		}
		var res subscription.ToggleResult
		decodeData(t, rec, &res)
		return &res
	}

	require.True(t, toggle(jane.ID, johnToken).IsSubscribed)
	require.True(t, toggle(jane.ID, bobToken).IsSubscribed)
	require.True(t, toggle(john.ID, janeToken).IsSubscribed)
	assert.False(t, toggle(jane.ID, bobToken).IsSubscribed)
	assert.Nil(t, toggle(jane.ID, janeToken))
	assert.Nil(t, toggle("unknown", janeToken))

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/subscriptions/c/"+jane.ID, janeToken)
	env.do(req, rec)
	checkErrors(t, rec, http.StatusBadRequest, map[string]string{"channelId": "you cannot subscribe to your own channel"})

	t.Run("subscribers", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/subscriptions/c/"+jane.ID)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page core.Page[subscription.ChannelSummary]
		decodeData(t, rec, &page)
		require.Len(t, page.Docs, 1)
		assert.Equal(t, john.ID, page.Docs[0].ID)
		assert.Equal(t, int64(1), page.Docs[0].SubscribersCount)
		assert.True(t, page.Docs[0].IsSubscribed) // jane subscribes back
	})

	t.Run("subscribed channels", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/subscriptions/u/"+john.ID)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page core.Page[subscription.ChannelSummary]
		decodeData(t, rec, &page)
		require.Len(t, page.Docs, 1)
		assert.Equal(t, jane.ID, page.Docs[0].ID)
		assert.Equal(t, int64(1), page.Docs[0].SubscribersCount)
	})

	t.Run("unknown user", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/subscriptions/u/unknown")
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)
	})
}

func Test_draftVideoInteractions(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	draft := createVideo(t, env, jane.ID, "draft", false)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     []byte
		wantCode int
	}{
		{name: "like: not the owner", method: http.MethodPost, path: "/api/v1/likes/toggle/v/" + draft.ID, token: johnToken, wantCode: http.StatusNotFound},
		{name: "like: owner", method: http.MethodPost, path: "/api/v1/likes/toggle/v/" + draft.ID, token: janeToken, wantCode: http.StatusOK},
		{
			name: "comment: not the owner", method: http.MethodPost, path: "/api/v1/comments/" + draft.ID, token: johnToken,
			body: marchallObj(t, comment.NewComment{Content: "first!"}), wantCode: http.StatusNotFound,
		},
		{
			name: "comment: owner", method: http.MethodPost, path: "/api/v1/comments/" + draft.ID, token: janeToken,
			body: marchallObj(t, comment.NewComment{Content: "note to self"}), wantCode: http.StatusCreated,
		},
		{name: "comments: anonymous", method: http.MethodGet, path: "/api/v1/comments/" + draft.ID, wantCode: http.StatusNotFound},
		{name: "comments: not the owner", method: http.MethodGet, path: "/api/v1/comments/" + draft.ID, token: johnToken, wantCode: http.StatusNotFound},
		{name: "comments: owner", method: http.MethodGet, path: "/api/v1/comments/" + draft.ID, token: janeToken, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body [][]byte
			if tt.body != nil {
				body = append(body, tt.body)
			}
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, body...)
			env.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	t.Run("playlist: not the owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/v1/playlist", johnToken, marchallObj(t, playlist.NewPlaylist{Name: "Later"}))
		env.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var p playlist.Playlist
		decodeData(t, rec, &p)

		req, rec = newAuthRequest(http.MethodPatch, "/api/v1/playlist/add/"+draft.ID+"/"+p.ID, johnToken)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)
	})

	// nothing john tried reached jane
	req, rec := newAuthRequest(http.MethodGet, "/api/v1/notifications", janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page core.Page[notification.Notification]
	decodeData(t, rec, &page)
	assert.Empty(t, page.Docs)
}
