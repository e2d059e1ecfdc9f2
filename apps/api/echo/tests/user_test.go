package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/Prajjwal2051/Viewly-sub002/apps/api/echo"
	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

var resetLinkRegex = regexp.MustCompile(`/password-reset/([^/\s]+)/(\S+)`)

func Test_userApi_register(t *testing.T) {
	env := setup(t)
	env.createUser(t, "taken")

	fields := func(uname, email, pwd string) map[string]string {
		return map[string]string{"fullName": " Jane  Doe ", "username": uname, "email": email, "password": pwd}
	}
	avatar := formFile{field: "avatar", filename: "me.png", content: pngData}

	t.Run("success", func(t *testing.T) {
		req, rec := newMultipartRequest(t, http.MethodPost, "/api/v1/users/register", "",
			fields("Jane_Doe", "JANE@viewly.test", testPassword),
			avatar,
			formFile{field: "coverImage", filename: "cover.png", content: pngData},
		)
		env.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "refreshToken")

		var usr user.User
		decodeData(t, rec, &usr)
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "jane_doe", usr.Username)
		assert.Equal(t, "jane@viewly.test", usr.Email)
		assert.Equal(t, "Jane Doe", usr.FullName)
		assert.True(t, strings.HasPrefix(usr.Avatar, env.conf.Media.PublicURL+"/"), usr.Avatar)
		assert.NotEmpty(t, usr.CoverImage)

		sent := env.mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "jane@viewly.test", sent[0].To[0].Address)
	})

	tests := []struct {
		name       string
		fields     map[string]string
		files      []formFile
		wantCode   int
		wantErrors map[string]string
	}{
		{
			name:       "missing avatar",
			fields:     fields("john", "john@viewly.test", testPassword),
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"avatar": "avatar file is required"},
		},
		{
			name:       "avatar not an image",
			fields:     fields("john", "john@viewly.test", testPassword),
			files:      []formFile{{field: "avatar", filename: "me.png", content: "just some text"}},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"avatar": "must be a valid image file"},
		},
		{
			name:     "username taken",
			fields:   fields("Taken", "john@viewly.test", testPassword),
			files:    []formFile{avatar},
			wantCode: http.StatusConflict,
		},
		{
			name:     "email taken",
			fields:   fields("john", "taken@viewly.test", testPassword),
			files:    []formFile{avatar},
			wantCode: http.StatusConflict,
		},
		{
			name:     "missing fields",
			fields:   map[string]string{"password": testPassword},
			files:    []formFile{avatar},
			wantCode: http.StatusBadRequest,
			wantErrors: map[string]string{
				"fullName": "this field is required",
				"username": "this field is required",
				"email":    "this field is required",
			},
		},
		{
			name:     "weak password",
			fields:   fields("john", "john@viewly.test", "password"),
			files:    []formFile{avatar},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newMultipartRequest(t, http.MethodPost, "/api/v1/users/register", "", tt.fields, tt.files...)
			env.do(req, rec)
			if tt.wantErrors != nil {
				checkErrors(t, rec, tt.wantCode, tt.wantErrors)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			res := decodeEnvelope(t, rec)
			if tt.wantCode == http.StatusBadRequest {
				assert.Contains(t, res.Errors, "password")
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")

	tests := []httpTest{
		{
			name:     "by username",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "JANE", Password: testPassword}),
			wantCode: http.StatusOK,
		},
		{
			name:     "by email",
			body:     marchallObj(t, echoapi.LoginRequest{Email: usr.Email, Password: testPassword}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "jane", Password: "Wr0ng!Pass#2024"}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "ghost", Password: testPassword}),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "missing identifier",
			body:     marchallObj(t, echoapi.LoginRequest{Password: testPassword}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/v1/users/login", tt.body)
			env.do(req, rec)
			checkCodeAndData(t, tt, rec)
			if tt.wantCode != http.StatusOK {
				return
			}

			var res echoapi.LoginResponse
			decodeData(t, rec, &res)
			assert.Equal(t, usr.ID, res.User.ID)
			assert.NotEmpty(t, res.AccessToken)
			assert.NotEmpty(t, res.RefreshToken)

			cookies := map[string]*http.Cookie{}
			for _, c := range rec.Result().Cookies() {
				cookies[c.Name] = c
			}
			require.Contains(t, cookies, "accessToken")
			require.Contains(t, cookies, "refreshToken")
			assert.True(t, cookies["accessToken"].HttpOnly)
			assert.Equal(t, res.AccessToken, cookies["accessToken"].Value)
			assert.Equal(t, res.RefreshToken, cookies["refreshToken"].Value)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")

	req, rec := newRequest(http.MethodPost, "/api/v1/users/login", marchallObj(t, echoapi.LoginRequest{
		Username: usr.Username,
		Password: testPassword,
	}))
	env.do(req, rec)
	var login echoapi.LoginResponse
	decodeData(t, rec, &login)

	refresh := func(token string) *httptest.ResponseRecorder {
		req, rec := newRequest(http.MethodPost, "/api/v1/users/refresh-token", marchallObj(t, echoapi.RefreshTokenRequest{RefreshToken: token}))
		return env.do(req, rec)
	}

	// rotation
	rec = refresh(login.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens echoapi.TokenResponse
	decodeData(t, rec, &tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, login.RefreshToken, tokens.RefreshToken)

	// the previous token is spent
	checkErrors(t, refresh(login.RefreshToken), http.StatusUnauthorized, nil)
	// an access token is not a refresh token
	checkErrors(t, refresh(tokens.AccessToken), http.StatusUnauthorized, nil)
	checkErrors(t, refresh(""), http.StatusUnauthorized, nil)

	// the refresh token cookie is accepted too
	req, rec = newRequest(http.MethodPost, "/api/v1/users/refresh-token")
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: tokens.RefreshToken})
	env.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func Test_userApi_logout(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")
	token := env.login(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/users/logout", token)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		assert.True(t, c.MaxAge < 0, c.Name)
	}

	stored, err := env.repos.Users.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshTokenHash)

	req, rec = newRequest(http.MethodPost, "/api/v1/users/logout")
	env.do(req, rec)
	checkErrors(t, rec, http.StatusUnauthorized, nil)
}

func Test_userApi_auth(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")
	token := env.login(t, usr)

	t.Run("bearer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/users/current-user", token)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)
		var got user.User
		decodeData(t, rec, &got)
		assert.Equal(t, usr.ID, got.ID)
	})
	t.Run("cookie", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/users/current-user")
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		env.do(req, rec)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("missing token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/v1/users/current-user")
		env.do(req, rec)
		checkErrors(t, rec, http.StatusUnauthorized, nil)
	})
	t.Run("bad token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/users/current-user", token+"x")
		env.do(req, rec)
		checkErrors(t, rec, http.StatusUnauthorized, nil)
	})
}

func Test_userApi_changePassword(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")
	token := env.login(t, usr)
	newPwd := "N3w!Secret#Pass"

	tests := []struct {
		name       string
		data       user.ChangePassword
		wantCode   int
		wantErrors map[string]string
	}{
		{
			name:       "wrong old password",
			data:       user.ChangePassword{OldPassword: "nope", NewPassword: newPwd, ConfirmPassword: newPwd},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"oldPassword": "invalid old password"},
		},
		{
			name:     "confirmation mismatch",
			data:     user.ChangePassword{OldPassword: testPassword, NewPassword: newPwd, ConfirmPassword: newPwd + "!"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "success",
			data:     user.ChangePassword{OldPassword: testPassword, NewPassword: newPwd, ConfirmPassword: newPwd},
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/v1/users/change-password", token, marchallObj(t, tt.data))
			env.do(req, rec)
			if tt.wantErrors != nil {
				checkErrors(t, rec, tt.wantCode, tt.wantErrors)
				return
			}
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	req, rec := newRequest(http.MethodPost, "/api/v1/users/login", marchallObj(t, echoapi.LoginRequest{Username: "jane", Password: newPwd}))
	env.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_userApi_updateAccount(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")
	other := env.createUser(t, "john")
	token := env.login(t, usr)

	tests := []struct {
		name     string
		data     user.UpdateAccount
		wantCode int
		want     user.UpdateAccount
	}{
		{name: "nothing", data: user.UpdateAccount{}, wantCode: http.StatusBadRequest},
		{name: "email taken", data: user.UpdateAccount{Email: other.Email}, wantCode: http.StatusConflict},
		{name: "invalid email", data: user.UpdateAccount{Email: "nope"}, wantCode: http.StatusBadRequest},
		{
			name:     "success",
			data:     user.UpdateAccount{FullName: "Jane Updated", Email: "NEW@viewly.test"},
			wantCode: http.StatusOK,
			want:     user.UpdateAccount{FullName: "Jane Updated", Email: "new@viewly.test"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPatch, "/api/v1/users/update-account", token, marchallObj(t, tt.data))
			env.do(req, rec)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			var got user.User
			decodeData(t, rec, &got)
			assert.Equal(t, tt.want.FullName, got.FullName)
			assert.Equal(t, tt.want.Email, got.Email)
		})
	}
}

func Test_userApi_updateImages(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")
	token := env.login(t, usr)

	req, rec := newMultipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", token, nil,
		formFile{field: "avatar", filename: "new.png", content: pngData})
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got user.User
	decodeData(t, rec, &got)
	assert.NotEqual(t, usr.Avatar, got.Avatar)

	req, rec = newMultipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", token, nil)
	env.do(req, rec)
	checkErrors(t, rec, http.StatusBadRequest, map[string]string{"avatar": "avatar file is required"})

	req, rec = newMultipartRequest(t, http.MethodPatch, "/api/v1/users/cover-image", token, nil,
		formFile{field: "coverImage", filename: "cover.png", content: pngData})
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &got)
	assert.NotEmpty(t, got.CoverImage)

	req, rec = newMultipartRequest(t, http.MethodPatch, "/api/v1/users/cover-image", token, nil)
	env.do(req, rec)
	checkErrors(t, rec, http.StatusBadRequest, map[string]string{"coverImage": "cover image file is required"})
}

func Test_userApi_uploadTooLarge(t *testing.T) {
	env := setup(t, func(conf *core.Config) { conf.Media.MaxUploadSize = 64 })
	usr := env.createUser(t, "jane")
	token := env.login(t, usr)

	req, rec := newMultipartRequest(t, http.MethodPatch, "/api/v1/users/avatar", token, nil,
		formFile{field: "avatar", filename: "big.png", content: pngData + strings.Repeat("x", 1024)})
	env.do(req, rec)
	checkErrors(t, rec, http.StatusRequestEntityTooLarge, nil)
}

func Test_userApi_channelProfile(t *testing.T) {
	env := setup(t)
	jane := env.createUser(t, "jane")
	john := env.createUser(t, "john")
	johnToken := env.login(t, john)

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/subscriptions/c/"+jane.ID, johnToken)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name           string
		token          string
		wantSubscribed bool
	}{
		{name: "anonymous", token: ""},
		{name: "subscriber", token: johnToken, wantSubscribed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/v1/users/c/JANE", tt.token)
			env.do(req, rec)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var profile user.ChannelProfile
			decodeData(t, rec, &profile)
			assert.Equal(t, jane.ID, profile.ID)
			assert.Equal(t, int64(1), profile.SubscribersCount)
			assert.Equal(t, int64(0), profile.ChannelsSubscribedToCount)
			assert.Equal(t, tt.wantSubscribed, profile.IsSubscribed)
		})
	}

	req, rec = newRequest(http.MethodGet, "/api/v1/users/c/ghost")
	env.do(req, rec)
	checkErrors(t, rec, http.StatusNotFound, nil)
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")
	newPwd := "R3set!Secret#Pass"

	// unknown emails are not disclosed
	req, rec := newRequest(http.MethodPost, "/api/v1/users/forgot-password", marchallObj(t, echoapi.PasswordResetRequest{Email: "ghost@viewly.test"}))
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, env.mail.SentMessages())

	req, rec = newRequest(http.MethodPost, "/api/v1/users/forgot-password", marchallObj(t, echoapi.PasswordResetRequest{Email: usr.Email}))
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := env.mail.SentMessages()
	require.Len(t, sent, 1)
	match := resetLinkRegex.FindStringSubmatch(sent[0].TextContent)
	require.Len(t, match, 3, sent[0].TextContent)
	uid, token := match[1], match[2]

	tests := []struct {
		name       string
		data       user.ResetUserPassword
		wantCode   int
		wantErrors map[string]string
	}{
		{
			name:       "invalid uid",
			data:       user.ResetUserPassword{UID: "bad", Token: token, Password: newPwd, PasswordConfirm: newPwd},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"uid": "invalid value"},
		},
		{
			name:       "invalid token",
			data:       user.ResetUserPassword{UID: uid, Token: token + "x", Password: newPwd, PasswordConfirm: newPwd},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"token": "invalid value"},
		},
		{
			name:     "success",
			data:     user.ResetUserPassword{UID: uid, Token: token, Password: newPwd, PasswordConfirm: newPwd},
			wantCode: http.StatusOK,
		},
		{
			name:       "token spent",
			data:       user.ResetUserPassword{UID: uid, Token: token, Password: newPwd, PasswordConfirm: newPwd},
			wantCode:   http.StatusBadRequest,
			wantErrors: map[string]string{"token": "invalid value"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/v1/users/reset-password", marchallObj(t, tt.data))
			env.do(req, rec)
			if tt.wantErrors != nil {
				checkErrors(t, rec, tt.wantCode, tt.wantErrors)
				return
			}
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func Test_userApi_watchHistory(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "jane")
	token := env.login(t, usr)
	v1 := createVideo(t, env, usr.ID, "first", true)
	v2 := createVideo(t, env, usr.ID, "second", true)

	for _, id := range []string{v1.ID, v2.ID, v1.ID} {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/videos/"+id, token)
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/v1/users/history", token)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var history []user.WatchedVideo
	decodeData(t, rec, &history)
	require.Len(t, history, 2)
	assert.Equal(t, v1.ID, history[0].ID) // most recent first, without duplicates
	assert.Equal(t, v2.ID, history[1].ID)
	require.NotNil(t, history[0].Owner)
	assert.Equal(t, usr.Username, history[0].Owner.Username)
}
