package testutil

import (
	"context"
	"net/mail"
	"net/url"
	"os"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
	logsvc "github.com/Prajjwal2051/Viewly-sub002/services/logger"
	"github.com/Prajjwal2051/Viewly-sub002/storage"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database"
	"github.com/Prajjwal2051/Viewly-sub002/storage/database/mongodb"
)

// Config returns a test configuration over the in-memory engine, with rate limits disabled.
func Config(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{
		Env:             "TEST",
		TestMode:        true,
		AppName:         "Viewly",
		Build:           "test",
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "https://viewly.test",
		Server: core.ServerConfig{
			CORSOrigins: []string{"https://viewly.test"},
		},
		Auth: core.AuthConfig{
			AccessTokenSecret:    "access-secret",
			AccessTokenExpiry:    time.Hour,
			RefreshTokenSecret:   "refresh-secret",
			RefreshTokenExpiry:   24 * time.Hour,
			PasswordResetTimeout: time.Hour,
		},
		Database: core.DatabaseConfig{Engine: "memory"},
		Media: core.MediaConfig{
			Backend:       "local",
			LocalDir:      t.TempDir(),
			PublicURL:     "http://viewly.test/media",
			TempDir:       t.TempDir(),
			MaxUploadSize: 1 << 20,
		},
		Mail: core.MailConfig{
			DefaultFrom: mail.Address{Name: "Viewly", Address: "noreply@viewly.test"},
		},
	}
}

// Logger returns a silent logger.
func Logger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zerolog.Nop(), conf)
	logger.Enable(false)
	return logger
}

// databaseURL parses DATABASE_URI, skipping the test when it is unset or not one of schemes.
func databaseURL(t *testing.T, schemes ...string) *url.URL {
	t.Helper()
	raw := os.Getenv("DATABASE_URI")
	if raw == "" {
		t.Skip("DATABASE_URI is not set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing DATABASE_URI: %v", err)
	}
	if !slices.Contains(schemes, u.Scheme) {
		t.Skipf("DATABASE_URI is not a %s URI", schemes[0])
	}
	return u
}

func testDBName() string {
	return "viewly_test_" + uuid.NewString()[:8]
}

// PrepareMongo opens a fresh database on the DATABASE_URI mongodb server, with its indexes synced.
// The database is dropped when the test ends.
func PrepareMongo(t *testing.T) *storage.Repositories {
	t.Helper()
	u := databaseURL(t, "mongodb", "mongodb+srv")
	ctx := context.Background()

	db, err := mongodb.Open(ctx, core.DatabaseConfig{Engine: storage.EngineMongo, URI: u.String(), Name: testDBName()})
	if err != nil {
		t.Fatalf("PrepareMongo() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Drop(ctx); err != nil {
			t.Logf("dropping test database: %v", err)
		}
		_ = db.Close(ctx)
	})
	if err = db.EnsureIndexes(ctx); err != nil {
		t.Fatalf("PrepareMongo() failed: %v", err)
	}
	return storage.NewMongo(db)
}

// PostgresConfig returns a test configuration over a fresh database name on the DATABASE_URI postgres server.
// The database is dropped when the test ends; it is not created.
func PostgresConfig(t *testing.T) *core.Config {
	t.Helper()
	u := databaseURL(t, "postgres", "postgresql")

	port := 5432
	if p := u.Port(); p != "" {
		var err error
		if port, err = strconv.Atoi(p); err != nil {
			t.Fatalf("parsing DATABASE_URI port: %v", err)
		}
	}
	conf := Config(t)
	conf.Database = core.DatabaseConfig{
		Engine:     storage.EnginePostgres,
		Name:       testDBName(),
		Host:       u.Hostname(),
		Port:       port,
		DisableTLS: u.Query().Get("sslmode") != "require",
	}
	if u.User != nil {
		conf.Database.User = u.User.Username()
		conf.Database.Password, _ = u.User.Password()
		conf.Database.AdminUser = conf.Database.User
		conf.Database.AdminPassword = conf.Database.Password
	}
	t.Cleanup(func() {
		if err := database.Drop(conf); err != nil {
			t.Logf("dropping test database: %v", err)
		}
	})
	return conf
}

// PreparePostgres creates a fresh database on the DATABASE_URI postgres server and runs the embedded migrations.
func PreparePostgres(t *testing.T) *storage.Repositories {
	t.Helper()
	conf := PostgresConfig(t)
	ctx := context.Background()

	repos, err := storage.Open(ctx, conf, storage.Options{Setup: true})
	if err != nil {
		t.Fatalf("PreparePostgres() failed: %v", err)
	}
	t.Cleanup(func() { _ = repos.Close(ctx) })
	return repos
}

// CreateUser stores a user with pwd as its password; createdAt defaults to now.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	fullName, uname, email, pwd string,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FullName:  fullName,
		Username:  uname,
		Email:     email,
		Avatar:    "http://viewly.test/media/" + uname + ".png",
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateVideo stores a video owned by ownerID.
func CreateVideo(t *testing.T, repo video.Repository, ownerID, title string, published bool, createdAt ...time.Time) video.Video {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	v, err := repo.CreateVideo(context.Background(), video.Video{
		VideoFile:   "http://viewly.test/media/" + title + ".mp4",
		Thumbnail:   "http://viewly.test/media/" + title + ".png",
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		Duration:    42,
		IsPublished: published,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateVideo() failed: %v", err)
	}
	return v
}

// CreateTweet stores a tweet owned by ownerID.
func CreateTweet(t *testing.T, repo tweet.Repository, ownerID, content string) tweet.Tweet {
	t.Helper()
	now := time.Now().UTC()
	tw, err := repo.CreateTweet(context.Background(), tweet.Tweet{
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTweet() failed: %v", err)
	}
	return tw
}
