package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
)

func Test_playlistApi(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	janeToken := env.login(t, jane)
	johnToken := env.login(t, john)
	v1 := createVideo(t, env, jane.ID, "first", true)
	v2 := createVideo(t, env, john.ID, "second", true)
	draft := createVideo(t, env, jane.ID, "draft", false)

	var p playlist.Playlist
	t.Run("create", func(t *testing.T) {
		tests := []struct {
			name     string
			token    string
			data     playlist.NewPlaylist
			wantCode int
		}{
			{name: "anonymous", data: playlist.NewPlaylist{Name: "Faves"}, wantCode: http.StatusUnauthorized},
			{name: "missing name", token: janeToken, data: playlist.NewPlaylist{Description: "x"}, wantCode: http.StatusBadRequest},
			{name: "success", token: janeToken, data: playlist.NewPlaylist{Name: "Faves", Description: "the best"}, wantCode: http.StatusCreated},
			{name: "duplicate name", token: janeToken, data: playlist.NewPlaylist{Name: "faves"}, wantCode: http.StatusConflict},
			{name: "same name, other owner", token: johnToken, data: playlist.NewPlaylist{Name: "Faves"}, wantCode: http.StatusCreated},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPost, "/api/v1/playlist", tt.token, marchallObj(t, tt.data))
				env.do(req, rec)
				require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				if tt.wantCode == http.StatusCreated && tt.token == janeToken {
					decodeData(t, rec, &p)
				}
			})
		}
		assert.Equal(t, jane.ID, p.OwnerID)
		assert.Empty(t, p.Videos)
	})

	edit := func(action, videoID, token string) (playlist.Playlist, int) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/v1/playlist/"+action+"/"+videoID+"/"+p.ID, token)
		env.do(req, rec)
		var got playlist.Playlist
		if rec.Code == http.StatusOK {
			decodeData(t, rec, &got)
		}
		return got, rec.Code
	}

	t.Run("add videos", func(t *testing.T) {
		got, code := edit("add", v1.ID, janeToken)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{v1.ID}, got.Videos)

		got, code = edit("add", v2.ID, janeToken)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{v1.ID, v2.ID}, got.Videos)

		_, code = edit("add", draft.ID, janeToken)
		require.Equal(t, http.StatusOK, code)

		_, code = edit("add", v1.ID, janeToken)
		assert.Equal(t, http.StatusConflict, code)
		_, code = edit("add", "unknown", janeToken)
		assert.Equal(t, http.StatusNotFound, code)
		_, code = edit("add", v2.ID, johnToken)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("detail", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/playlist/"+p.ID)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var detail playlist.Detail
		decodeData(t, rec, &detail)
		assert.Equal(t, "Faves", detail.Name)
		require.NotNil(t, detail.Owner)
		assert.Equal(t, jane.Username, detail.Owner.Username)
		require.Len(t, detail.Videos, 2) // the draft is hidden
		assert.Equal(t, v1.ID, detail.Videos[0].ID)
		assert.Equal(t, v2.ID, detail.Videos[1].ID)
		assert.Equal(t, 2, detail.TotalVideos)

		req, rec = newRequest(http.MethodGet, "/api/v1/playlist/unknown")
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)
	})

	t.Run("user playlists", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/playlist/user/"+jane.ID)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var lists []playlist.Summary
		decodeData(t, rec, &lists)
		require.Len(t, lists, 1)
		assert.Equal(t, p.ID, lists[0].ID)
		assert.Equal(t, 3, lists[0].TotalVideos)
		assert.Equal(t, v1.Thumbnail, lists[0].Thumbnail)

		req, rec = newRequest(http.MethodGet, "/api/v1/playlist/user/unknown")
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)
	})

	t.Run("remove video", func(t *testing.T) {
		got, code := edit("remove", v1.ID, janeToken)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{v2.ID, draft.ID}, got.Videos)

		_, code = edit("remove", v1.ID, janeToken)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/v1/playlist/"+p.ID, johnToken, marchallObj(t, playlist.UpdatePlaylist{Name: "Mine"}))
		env.do(req, rec)
		checkErrors(t, rec, http.StatusForbidden, nil)

		req, rec = newAuthRequest(http.MethodPatch, "/api/v1/playlist/"+p.ID, janeToken, marchallObj(t, playlist.UpdatePlaylist{Name: "Renamed"}))
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got playlist.Playlist
		decodeData(t, rec, &got)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "the best", got.Description)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/v1/playlist/"+p.ID, johnToken)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusForbidden, nil)

		req, rec = newAuthRequest(http.MethodDelete, "/api/v1/playlist/"+p.ID, janeToken)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, rec = newRequest(http.MethodGet, "/api/v1/playlist/"+p.ID)
		env.do(req, rec)
		checkErrors(t, rec, http.StatusNotFound, nil)
	})
}

func Test_playlistApi_deletedVideo(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	janeToken := env.login(t, jane)
	v := createVideo(t, env, jane.ID, "clip", true)

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/playlist", janeToken, marchallObj(t, playlist.NewPlaylist{Name: "Mine"}))
	env.do(req, rec)
	var p playlist.Playlist
	decodeData(t, rec, &p)

	req, rec = newAuthRequest(http.MethodPatch, "/api/v1/playlist/add/"+v.ID+"/"+p.ID, janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/videos/"+v.ID, janeToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, rec = newRequest(http.MethodGet, "/api/v1/playlist/"+p.ID)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail playlist.Detail
	decodeData(t, rec, &detail)
	assert.Empty(t, detail.Videos)
	assert.Equal(t, 0, detail.TotalVideos)
}
