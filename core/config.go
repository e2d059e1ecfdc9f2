package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		CORSOrigins     []string
	}

	AuthConfig struct {
		AccessTokenSecret    string
		AccessTokenExpiry    time.Duration
		RefreshTokenSecret   string
		RefreshTokenExpiry   time.Duration
		CookieSecure         bool
		PasswordResetTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string // mongodb | postgres | memory
		URI           string // mongodb only
		Name          string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	S3Config struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}

	MediaConfig struct {
		Backend       string // local | s3
		LocalDir      string
		PublicURL     string
		TempDir       string
		MaxUploadSize int64
		FFProbePath   string
		S3            S3Config
	}

	MailConfig struct {
		SendgridAPIKey string
		DefaultFrom    mail.Address
	}

	RateLimitConfig struct {
		Requests     int
		Window       time.Duration
		AuthRequests int
		AuthWindow   time.Duration
	}

	LogConfig struct {
		Level  string
		Format string // json | console
	}

	Config struct {
		Env             string
		Debug           bool
		TestMode        bool
		WorkDir         string
		AppName         string
		Build           string
		SecretKey       string
		FrontendBaseURL string
		RollbarToken    string

		Server    ServerConfig
		Auth      AuthConfig
		Database  DatabaseConfig
		Media     MediaConfig
		Mail      MailConfig
		RateLimit RateLimitConfig
		Log       LogConfig
	}
)

// Address returns the database host:port pair.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) IsMongo() bool    { return c.Engine == "mongodb" }
func (c DatabaseConfig) IsPostgres() bool { return c.Engine == "postgres" }

// NewConfig loads the configuration from the environment, after an optional `config/.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("app.name", "Viewly")
	v.SetDefault("build", "develop")
	v.SetDefault("secret.key", "b7%w+0lq4$8^ci&yd1(zh!vs3r9n)o2xk@ea6m=jg5tpf#u")
	v.SetDefault("frontend.base.url", "http://localhost:5173")
	v.SetDefault("rollbar.token", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debug.host", ":4000")
	v.SetDefault("server.shutdown.timeout", 5*time.Second)
	v.SetDefault("server.read.timeout", 30*time.Second)
	v.SetDefault("server.write.timeout", 5*time.Minute)
	v.SetDefault("server.cors.origins", "http://localhost:5173")

	v.SetDefault("auth.access.token.secret", "")
	v.SetDefault("auth.access.token.expiry", 24*time.Hour)
	v.SetDefault("auth.refresh.token.secret", "")
	v.SetDefault("auth.refresh.token.expiry", 10*24*time.Hour)
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.password.reset.timeout", 3*24*time.Hour)

	v.SetDefault("database.engine", "mongodb")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "viewly")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "viewly")
	v.SetDefault("database.password", "viewly")
	v.SetDefault("database.admin.user", "postgres")
	v.SetDefault("database.admin.password", "")
	v.SetDefault("database.disable.tls", true)

	v.SetDefault("media.backend", "local")
	v.SetDefault("media.local.dir", "public/media")
	v.SetDefault("media.public.url", "http://localhost:8000/media")
	v.SetDefault("media.temp.dir", "public/temp")
	v.SetDefault("media.max.upload.size", int64(512<<20))
	v.SetDefault("media.ffprobe.path", "ffprobe")
	v.SetDefault("media.s3.endpoint", "localhost:9000")
	v.SetDefault("media.s3.access.key", "")
	v.SetDefault("media.s3.secret.key", "")
	v.SetDefault("media.s3.bucket", "viewly")
	v.SetDefault("media.s3.use.ssl", false)

	v.SetDefault("mail.sendgrid.api.key", "")
	v.SetDefault("mail.default.from", "Viewly <noreply@localhost>")

	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", 15*time.Minute)
	v.SetDefault("ratelimit.auth.requests", 10)
	v.SetDefault("ratelimit.auth.window", 15*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        env == "TEST",
		WorkDir:         wd,
		AppName:         v.GetString("app.name"),
		Build:           v.GetString("build"),
		SecretKey:       v.GetString("secret.key"),
		FrontendBaseURL: strings.TrimRight(v.GetString("frontend.base.url"), "/"),
		RollbarToken:    v.GetString("rollbar.token"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debug.host"),
			ShutdownTimeout: v.GetDuration("server.shutdown.timeout"),
			ReadTimeout:     v.GetDuration("server.read.timeout"),
			WriteTimeout:    v.GetDuration("server.write.timeout"),
			CORSOrigins:     splitList(v.GetString("server.cors.origins")),
		},
		Auth: AuthConfig{
			AccessTokenSecret:    v.GetString("auth.access.token.secret"),
			AccessTokenExpiry:    v.GetDuration("auth.access.token.expiry"),
			RefreshTokenSecret:   v.GetString("auth.refresh.token.secret"),
			RefreshTokenExpiry:   v.GetDuration("auth.refresh.token.expiry"),
			CookieSecure:         v.GetBool("auth.cookie.secure"),
			PasswordResetTimeout: v.GetDuration("auth.password.reset.timeout"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			URI:           v.GetString("database.uri"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.admin.user"),
			AdminPassword: v.GetString("database.admin.password"),
			DisableTLS:    v.GetBool("database.disable.tls"),
		},
		Media: MediaConfig{
			Backend:       strings.ToLower(v.GetString("media.backend")),
			LocalDir:      absPath(wd, v.GetString("media.local.dir")),
			PublicURL:     strings.TrimRight(v.GetString("media.public.url"), "/"),
			TempDir:       absPath(wd, v.GetString("media.temp.dir")),
			MaxUploadSize: v.GetInt64("media.max.upload.size"),
			FFProbePath:   v.GetString("media.ffprobe.path"),
			S3: S3Config{
				Endpoint:  v.GetString("media.s3.endpoint"),
				AccessKey: v.GetString("media.s3.access.key"),
				SecretKey: v.GetString("media.s3.secret.key"),
				Bucket:    v.GetString("media.s3.bucket"),
				UseSSL:    v.GetBool("media.s3.use.ssl"),
			},
		},
		Mail: MailConfig{
			SendgridAPIKey: v.GetString("mail.sendgrid.api.key"),
		},
		RateLimit: RateLimitConfig{
			Requests:     v.GetInt("ratelimit.requests"),
			Window:       v.GetDuration("ratelimit.window"),
			AuthRequests: v.GetInt("ratelimit.auth.requests"),
			AuthWindow:   v.GetDuration("ratelimit.auth.window"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if host, _, err := net.SplitHostPort(conf.Server.Address); err == nil && host != "" {
		conf.Server.Host = host
	} else {
		conf.Server.Host, _ = os.Hostname()
	}

	from, err := mail.ParseAddress(v.GetString("mail.default.from"))
	if err != nil {
		log.Fatalf("config.mail.ParseAddress(%s): %v", v.GetString("mail.default.from"), err)
	}
	conf.Mail.DefaultFrom = *from

	// token secrets fall back to the app secret
	if conf.Auth.AccessTokenSecret == "" {
		conf.Auth.AccessTokenSecret = conf.SecretKey + ".access"
	}
	if conf.Auth.RefreshTokenSecret == "" {
		conf.Auth.RefreshTokenSecret = conf.SecretKey + ".refresh"
	}
	return conf
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func absPath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
