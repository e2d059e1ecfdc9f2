package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
	contextUserKey     = "user"
	bearerPrefix       = "Bearer "
)

// Claims represents the authorization claims transmitted via a JWT.
// Refresh tokens only carry the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

type tokenIssuer struct {
	issuer        string
	accessSecret  []byte
	accessExpiry  time.Duration
	refreshSecret []byte
	refreshExpiry time.Duration
	signingMethod jwt.SigningMethod
	validMethods  []string
}

func newTokenIssuer(conf *core.Config) tokenIssuer {
	return tokenIssuer{
		issuer:        conf.AppName,
		accessSecret:  []byte(conf.Auth.AccessTokenSecret),
		accessExpiry:  conf.Auth.AccessTokenExpiry,
		refreshSecret: []byte(conf.Auth.RefreshTokenSecret),
		refreshExpiry: conf.Auth.RefreshTokenExpiry,
		signingMethod: jwt.SigningMethodHS256,
		validMethods:  []string{jwt.SigningMethodHS256.Alg()},
	}
}

func (ti tokenIssuer) registeredClaims(usr user.User, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(), // tokens issued within the same second must differ
		Issuer:    ti.issuer,
		Subject:   usr.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
}

func (ti tokenIssuer) sign(claims jwt.Claims, secret []byte) (string, error) {
	ss, err := jwt.NewWithClaims(ti.signingMethod, claims).SignedString(secret)
	return ss, errors.Wrap(err, "signing token")
}

// GeneratePair issues a new access token and a new refresh token for usr.
func (ti tokenIssuer) GeneratePair(usr user.User) (access, refresh string, err error) {
	access, err = ti.sign(&Claims{
		RegisteredClaims: ti.registeredClaims(usr, ti.accessExpiry),
		Username:         usr.Username,
		Email:            usr.Email,
		FullName:         usr.FullName,
	}, ti.accessSecret)
	if err != nil {
		return "", "", err
	}
	refresh, err = ti.sign(&Claims{RegisteredClaims: ti.registeredClaims(usr, ti.refreshExpiry)}, ti.refreshSecret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (ti tokenIssuer) parse(token string, secret []byte) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods(ti.validMethods),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (ti tokenIssuer) ParseAccess(token string) (*Claims, error) {
	return ti.parse(token, ti.accessSecret)
}

func (ti tokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return ti.parse(token, ti.refreshSecret)
}

// accessToken reads the access token from its cookie, or from the Authorization header.
func accessToken(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return ""
}

// authenticate loads the user owning the access token into the context.
// When required is false, requests without a valid token go through anonymously.
func (s *Server) authenticate(required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := accessToken(ctx)
			if token == "" {
				if required {
					return errUnauthorized
				}
				return next(ctx)
			}

			claims, err := s.tokens.ParseAccess(token)
			if err != nil {
				if required {
					return errInvalidAccessToken
				}
				return next(ctx)
			}

			usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if err != user.ErrNotFound {
					return errors.Wrap(err, "finding user by ID")
				}
				if required {
					return errInvalidAccessToken
				}
				return next(ctx)
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

// mustContextUser is used behind the auth guard only.
func mustContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := getContextUser(ctx); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

// viewerID is the ID of the authenticated user, "" for anonymous requests.
func viewerID(ctx echo.Context) string {
	usr, _ := getContextUser(ctx)
	return usr.ID
}

func setAuthCookies(ctx echo.Context, secure bool, tokens ...authCookie) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	for _, tok := range tokens {
		ctx.SetCookie(&http.Cookie{
			Name:     tok.name,
			Value:    tok.value,
			Path:     "/",
			MaxAge:   tok.maxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: sameSite,
		})
	}
}

type authCookie struct {
	name   string
	value  string
	maxAge int // seconds; negative deletes the cookie
}

func (ti tokenIssuer) cookies(access, refresh string) []authCookie {
	return []authCookie{
		{name: accessTokenCookie, value: access, maxAge: int(ti.accessExpiry.Seconds())},
		{name: refreshTokenCookie, value: refresh, maxAge: int(ti.refreshExpiry.Seconds())},
	}
}

func expiredCookies() []authCookie {
	return []authCookie{
		{name: accessTokenCookie, maxAge: -1},
		{name: refreshTokenCookie, maxAge: -1},
	}
}
