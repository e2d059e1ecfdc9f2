package tests

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

func createVideo(t *testing.T, env *testEnv, ownerID, title string, published bool, createdAt ...time.Time) video.Video {
	t.Helper()
	return testutil.CreateVideo(t, env.repos.Videos, ownerID, title, published, createdAt...)
}

func Test_videoApi_publish(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/subscriptions/c/"+jane.ID, johnToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	videoFile := formFile{field: "videoFile", filename: "clip.mp4", content: mp4Data}
	thumbnail := formFile{field: "thumbnail", filename: "thumb.png", content: pngData}
	fields := map[string]string{"title": "  My first video ", "description": "Hello"}

	tests := []struct {
		name       string
		token      string
		fields     map[string]string
		files      []formFile
		wantCode   int
		wantErrors map[string]string
	}{
		{
			name:     "anonymous",
			fields:   fields,
			files:    []formFile{videoFile, thumbnail},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:       "missing video file",
			token:      janeToken,
			fields:     fields,
			files:      []formFile{thumbnail},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"videoFile": "video file is required"},
		},
		{
			name:       "missing thumbnail",
			token:      janeToken,
			fields:     fields,
			files:      []formFile{videoFile},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"thumbnail": "thumbnail is required"},
		},
		{
			name:       "video file not a video",
			token:      janeToken,
			fields:     fields,
			files:      []formFile{{field: "videoFile", filename: "clip.mp4", content: pngData}, thumbnail},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"videoFile": "must be a valid video file"},
		},
		{
			name:       "missing title",
			token:      janeToken,
			fields:     map[string]string{"description": "Hello"},
			files:      []formFile{videoFile, thumbnail},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"title": "this field is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newMultipartRequest(t, http.MethodPost, "/api/v1/videos", tt.token, tt.fields, tt.files...)
			env.do(req, rec)
			checkErrors(t, rec, tt.wantCode, tt.wantErrors)
		})
	}

	t.Run("success", func(t *testing.T) {
		req, rec := newMultipartRequest(t, http.MethodPost, "/api/v1/videos", janeToken, fields, videoFile, thumbnail)
		env.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var v video.Video
		decodeData(t, rec, &v)
		assert.NotEmpty(t, v.ID)
		assert.Equal(t, "My first video", v.Title)
		assert.Equal(t, jane.ID, v.OwnerID)
		assert.Equal(t, float64(42), v.Duration)
		assert.True(t, v.IsPublished)
		assert.Zero(t, v.Views)
		assert.NotEmpty(t, v.VideoFile)
		assert.NotEmpty(t, v.Thumbnail)

		// subscribers hear about it
		req, rec = newAuthRequest(http.MethodGet, "/api/v1/notifications", johnToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page core.Page[notification.Notification]
		decodeData(t, rec, &page)
		require.Len(t, page.Docs, 1)
		assert.Equal(t, notification.TypeNewVideo, page.Docs[0].Type)
		assert.Equal(t, v.ID, page.Docs[0].VideoID)
	})
}

func Test_videoApi_query(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)

	now := time.Now()
	cats := createVideo(t, env, jane.ID, "Funny cats", true, now.Add(-3*time.Hour))
	dogs := createVideo(t, env, jane.ID, "Funny dogs", true, now.Add(-2*time.Hour))
	draft := createVideo(t, env, jane.ID, "Draft", false, now.Add(-1*time.Hour))
	cooking := createVideo(t, env, john.ID, "Cooking", true, now)

	path := func(params ...string) string {
		v := make(url.Values)
		for i := 0; i+1 < len(params); i += 2 {
			v.Add(params[i], params[i+1])
		}
		return "/api/v1/videos?" + v.Encode()
	}
	ids := func(vs ...video.Video) []string {
		res := make([]string, 0, len(vs))
		for _, v := range vs {
			res = append(res, v.ID)
		}
		return res
	}

	tests := []struct {
		name      string
		path      string
		token     string
		wantIDs   []string
		wantTotal int64
	}{
		{name: "newest first", path: path(), wantIDs: ids(cooking, dogs, cats), wantTotal: 3},
		{name: "search", path: path("query", "FUNNY"), wantIDs: ids(dogs, cats), wantTotal: 2},
		{name: "by owner", path: path("userId", jane.ID), wantIDs: ids(dogs, cats), wantTotal: 2},
		{name: "owner sees drafts", path: path("userId", jane.ID), token: janeToken, wantIDs: ids(draft, dogs, cats), wantTotal: 3},
		{name: "oldest first", path: path("sortBy", "createdAt", "sortType", "asc"), wantIDs: ids(cats, dogs, cooking), wantTotal: 3},
		{name: "ordering by title", path: path("ordering", "title"), wantIDs: ids(cooking, cats, dogs), wantTotal: 3},
		{name: "paginated", path: path("page", "2", "limit", "2"), wantIDs: ids(cats), wantTotal: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.do(req, rec)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var page core.Page[video.Video]
			decodeData(t, rec, &page)
			assert.Equal(t, tt.wantIDs, ids(page.Docs...))
			assert.Equal(t, tt.wantTotal, page.TotalDocs)
			for _, v := range page.Docs {
				require.NotNil(t, v.Owner)
			}
		})
	}

	t.Run("page metadata", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, path("page", "1", "limit", "2"))
		env.do(req, rec)
		var page core.Page[video.Video]
		decodeData(t, rec, &page)
		assert.Equal(t, 2, page.TotalPages)
		assert.True(t, page.HasNextPage)
		assert.False(t, page.HasPrevPage)
		require.NotNil(t, page.NextPage)
		assert.Equal(t, 2, *page.NextPage)
		assert.Nil(t, page.PrevPage)
	})
}

func Test_videoApi_watch(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	v := createVideo(t, env, jane.ID, "clip", true)
	draft := createVideo(t, env, jane.ID, "draft", false)

	watch := func(id, token string) (video.Detail, int) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/videos/"+id, token)
		env.do(req, rec)
		var detail video.Detail
		if rec.Code == http.StatusOK {
			decodeData(t, rec, &detail)
		}
		return detail, rec.Code
	}

	detail, code := watch(v.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), detail.Views)
	assert.False(t, detail.IsLiked)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, jane.Username, detail.Owner.Username)

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/likes/toggle/v/"+v.ID, johnToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	detail, code = watch(v.ID, johnToken)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(2), detail.Views)
	assert.Equal(t, int64(1), detail.LikesCount)
	assert.True(t, detail.IsLiked)

	_, code = watch(draft.ID, johnToken)
	assert.Equal(t, http.StatusNotFound, code)
	_, code = watch(draft.ID, janeToken)
	assert.Equal(t, http.StatusOK, code)
	_, code = watch("unknown", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func Test_videoApi_update(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	v := createVideo(t, env, jane.ID, "clip", true)
	path := "/api/v1/videos/" + v.ID

	tests := []struct {
		name     string
		token    string
		fields   map[string]string
		files    []formFile
		wantCode int
	}{
		{name: "not the owner", token: johnToken, fields: map[string]string{"title": "mine"}, wantCode: http.StatusForbidden},
		{name: "nothing to update", token: janeToken, fields: map[string]string{}, wantCode: http.StatusBadRequest},
		{name: "title", token: janeToken, fields: map[string]string{"title": "New title"}, wantCode: http.StatusOK},
		{
			name:     "thumbnail",
			token:    janeToken,
			files:    []formFile{{field: "thumbnail", filename: "new.png", content: pngData}},
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newMultipartRequest(t, http.MethodPatch, path, tt.token, tt.fields, tt.files...)
			env.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	req, rec := newRequest(http.MethodGet, path)
	env.do(req, rec)
	var detail video.Detail
	decodeData(t, rec, &detail)
	assert.Equal(t, "New title", detail.Title)
	assert.NotEqual(t, v.Thumbnail, detail.Thumbnail)
	assert.Equal(t, v.Description, detail.Description)
}

func Test_videoApi_togglePublishAndDelete(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	v := createVideo(t, env, jane.ID, "clip", true)

	req, rec := newAuthRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/"+v.ID, johnToken)
	env.do(req, rec)
	checkErrors(t, rec, http.StatusForbidden, nil)

	req, rec = newAuthRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/"+v.ID, janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got video.Video
	decodeData(t, rec, &got)
	assert.False(t, got.IsPublished)

	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/videos/"+v.ID, johnToken)
	env.do(req, rec)
	checkErrors(t, rec, http.StatusForbidden, nil)

	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/videos/"+v.ID, janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, "/api/v1/videos/"+v.ID, janeToken)
	env.do(req, rec)
	checkErrors(t, rec, http.StatusNotFound, nil)
}
