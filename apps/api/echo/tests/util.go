package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/Prajjwal2051/Viewly-sub002/apps/api/echo"
	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/dashboard"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/playlist"
	"github.com/Prajjwal2051/Viewly-sub002/core/search"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
	emailsvc "github.com/Prajjwal2051/Viewly-sub002/services/email"
	mediasvc "github.com/Prajjwal2051/Viewly-sub002/services/media"
	"github.com/Prajjwal2051/Viewly-sub002/storage"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database/inmem"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

const (
	testPassword = "Str0ng!Pass#2024"
	pngData      = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01"
	mp4Data      = "\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free"
)

type (
	testEnv struct {
		app   *echoapi.Server
		conf  *core.Config
		repos *storage.Repositories
		mail  *emailsvc.ConsoleServiceMock
	}

	// fakeProber reports a fixed duration without running ffprobe.
	fakeProber struct{ duration float64 }

	httpTest struct {
		name     string
		method   string
		path     string
		body     []byte
		token    string
		wantCode int
		wantData []byte
		extra    interface{}
	}

	// envelope is the decoded body of any response.
	envelope struct {
		StatusCode int               `json:"statusCode"`
		Data       json.RawMessage   `json:"data"`
		Message    string            `json:"message"`
		Errors     map[string]string `json:"errors"`
		Success    bool              `json:"success"`
	}

	formFile struct {
		field, filename, content string
	}
)

func (p fakeProber) Duration(context.Context, string) (float64, error) {
	return p.duration, nil
}

// setup builds a server over a fresh in-memory database; configure may tune the config first.
func setup(t *testing.T, configure ...func(conf *core.Config)) *testEnv {
	t.Helper()
	conf := testutil.Config(t)
	for _, fn := range configure {
		fn(conf)
	}
	logger := testutil.Logger(conf)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	media, err := mediasvc.NewLocalStore(conf.Media.LocalDir, conf.Media.PublicURL)
	require.NoError(t, err)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	repos := storage.NewMemory(inmem.Open())

	userSvc := user.NewService(repos.Users, media, mailSvc, conf, logger)
	notifSvc := notification.NewService(repos.Notifications, logger)
	subSvc := subscription.NewService(repos.Subscriptions, userSvc, notifSvc)
	videoSvc := video.NewService(repos.Videos, media, fakeProber{duration: 42}, userSvc, subSvc, notifSvc, logger)
	tweetSvc := tweet.NewService(repos.Tweets, userSvc)
	commentSvc := comment.NewService(repos.Comments, videoSvc, notifSvc)

	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:            conf,
		Logger:          logger,
		AccessLog:       zerolog.Nop(),
		Validate:        validate,
		Translator:      translator,
		Media:           media,
		UserSvc:         userSvc,
		VideoSvc:        videoSvc,
		TweetSvc:        tweetSvc,
		CommentSvc:      commentSvc,
		LikeSvc:         like.NewService(repos.Likes, videoSvc, commentSvc, tweetSvc, notifSvc),
		SubscriptionSvc: subSvc,
		PlaylistSvc:     playlist.NewService(repos.Playlists, videoSvc, userSvc),
		NotificationSvc: notifSvc,
		SearchSvc:       search.NewService(repos.Searches, videoSvc, userSvc, tweetSvc, validate, logger),
		DashboardSvc:    dashboard.NewService(repos.Dashboard),
	})
	return &testEnv{app: app, conf: conf, repos: repos, mail: mailSvc}
}

// createUser stores a user with the test password.
func (env *testEnv) createUser(t *testing.T, uname string) user.User {
	t.Helper()
	return testutil.CreateUser(t, env.repos.Users, "User "+uname, uname, uname+"@viewly.test", testPassword)
}

// login authenticates usr through the API and returns its access token.
func (env *testEnv) login(t *testing.T, usr user.User) string {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/api/v1/users/login", marchallObj(t, echoapi.LoginRequest{
		Username: usr.Username,
		Password: testPassword,
	}))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res echoapi.LoginResponse
	decodeData(t, rec, &res)
	return res.AccessToken
}

func (env *testEnv) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	env.app.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newMultipartRequest sends fields and files as multipart/form-data.
func newMultipartRequest(
	t *testing.T,
	method, path, token string,
	fields map[string]string,
	files ...formFile,
) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// decodeEnvelope decodes the response body and checks its status code against the HTTP one.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.StatusCode)
	assert.Equal(t, rec.Code < http.StatusBadRequest, env.Success)
	return env
}

// decodeData decodes the data field of a successful response into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData compares the code and, when wantData is set, the data field of the response.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	env := decodeEnvelope(t, rec)
	ok, err := jsonBytesEqual(env.Data, tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", string(env.Data), string(tt.wantData))
	}
}

// checkErrors asserts an error envelope carrying wantErrors, which may be empty.
func checkErrors(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, wantErrors map[string]string) {
	t.Helper()
	require.Equal(t, wantCode, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
	assert.NotNil(t, env.Errors)
	if wantErrors == nil {
		wantErrors = map[string]string{}
	}
	assert.Equal(t, wantErrors, env.Errors)
}
