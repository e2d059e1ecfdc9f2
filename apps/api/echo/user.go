package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

var errCoverImageRequired = core.NewValidationError(nil, core.FieldError{Field: "coverImage", Error: "cover image file is required"})

type userApi struct {
	svc      *user.Service
	tokens   tokenIssuer
	uploads  uploader
	validate *validator.Validate
	secure   bool // cookies
}

func registerUserAPI(g *echo.Group, gd guards, api userApi) {
	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register, gd.limit, gd.upload)
	ug.POST("/login", api.login, gd.limit)
	ug.POST("/refresh-token", api.refreshToken, gd.limit)
	ug.POST("/forgot-password", api.forgotPassword, gd.limit)
	ug.POST("/reset-password", api.resetPassword, gd.limit)
	ug.GET("/c/:username", api.channelProfile, gd.optional)

	// authed endpoints
	ag := ug.Group("", gd.auth)
	ag.POST("/logout", api.logout)
	ag.POST("/change-password", api.changePassword)
	ag.GET("/current-user", api.currentUser)
	ag.PATCH("/update-account", api.updateAccount)
	ag.PATCH("/avatar", api.updateAvatar, gd.upload)
	ag.PATCH("/cover-image", api.updateCoverImage, gd.upload)
	ag.GET("/history", api.watchHistory)
}

func (api *userApi) register(ctx echo.Context) error {
	var nu user.NewUser
	if err := ctx.Bind(&nu); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := nu.Validate(api.validate); err != nil {
		return err
	}

	avatar, err := api.uploads.spool(ctx, "avatar", core.ResourceImage)
	defer removeUploads(avatar)
	if err != nil {
		return err
	}
	cover, err := api.uploads.spool(ctx, "coverImage", core.ResourceImage)
	defer removeUploads(cover)
	if err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), nu, avatar, cover)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return respond(ctx, http.StatusCreated, usr, "User registered successfully")
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.usernameOrEmail(), data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating user")
	}
	access, refresh, err := api.issueTokens(ctx, usr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, LoginResponse{User: usr, AccessToken: access, RefreshToken: refresh}, "User logged in successfully")
}

// issueTokens generates a token pair, stores the refresh token and sets the cookies.
func (api *userApi) issueTokens(ctx echo.Context, usr user.User) (string, string, error) {
	access, refresh, err := api.tokens.GeneratePair(usr)
	if err != nil {
		return "", "", errors.Wrap(err, "generating tokens")
	}
	if err = api.svc.SetRefreshToken(ctx.Request().Context(), usr, refresh); err != nil {
		return "", "", err
	}
	setAuthCookies(ctx, api.secure, api.tokens.cookies(access, refresh)...)
	return access, refresh, nil
}

func (api *userApi) logout(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Logout(ctx.Request().Context(), usr.ID); err != nil {
		return err
	}
	setAuthCookies(ctx, api.secure, expiredCookies()...)
	return respond(ctx, http.StatusOK, echo.Map{}, "User logged out")
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	var data RefreshTokenRequest
	if cookie, err := ctx.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		data.RefreshToken = cookie.Value
	} else if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshTokenRequest")
	}
	if data.RefreshToken == "" {
		return errUnauthorized
	}

	claims, err := api.tokens.ParseRefresh(data.RefreshToken)
	if err != nil {
		return errInvalidRefreshToken
	}
	usr, err := api.svc.VerifyRefreshToken(ctx.Request().Context(), claims.Subject, data.RefreshToken)
	if err != nil {
		return err
	}

	access, refresh, err := api.issueTokens(ctx, usr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh}, "Access token refreshed")
}

func (api *userApi) changePassword(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var data user.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = data.Validate(api.validate, usr); err != nil {
		return err
	}
	if err = api.svc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Password changed successfully")
}

func (api *userApi) currentUser(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, usr, "Current user fetched successfully")
}

func (api *userApi) updateAccount(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var data user.UpdateAccount
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAccount")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if usr, err = api.svc.UpdateAccount(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "updating account")
	}
	return respond(ctx, http.StatusOK, usr, "Account details updated successfully")
}

func (api *userApi) updateAvatar(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	avatar, err := api.uploads.spool(ctx, "avatar", core.ResourceImage)
	defer removeUploads(avatar)
	if err != nil {
		return err
	}
	if avatar == nil {
		return user.ErrAvatarRequired
	}
	if usr, err = api.svc.UpdateAvatar(ctx.Request().Context(), usr, *avatar); err != nil {
		return errors.Wrap(err, "updating avatar")
	}
	return respond(ctx, http.StatusOK, usr, "Avatar updated successfully")
}

func (api *userApi) updateCoverImage(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	cover, err := api.uploads.spool(ctx, "coverImage", core.ResourceImage)
	defer removeUploads(cover)
	if err != nil {
		return err
	}
	if cover == nil {
		return errCoverImageRequired
	}
	if usr, err = api.svc.UpdateCoverImage(ctx.Request().Context(), usr, *cover); err != nil {
		return errors.Wrap(err, "updating cover image")
	}
	return respond(ctx, http.StatusOK, usr, "Cover image updated successfully")
}

func (api *userApi) channelProfile(ctx echo.Context) error {
	profile, err := api.svc.GetChannelProfile(ctx.Request().Context(), ctx.Param("username"), viewerID(ctx))
	if err != nil {
		return errors.Wrap(err, "getting channel profile")
	}
	return respond(ctx, http.StatusOK, profile, "User channel fetched successfully")
}

func (api *userApi) watchHistory(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	history, err := api.svc.GetWatchHistory(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting watch history")
	}
	return respond(ctx, http.StatusOK, history, "Watch history fetched successfully")
}

// forgotPassword never discloses whether an account exists for the email.
func (api *userApi) forgotPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil && err != user.ErrNotFound {
		return errors.Wrap(err, "requesting password reset")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "If an account exists for this email, a password reset link has been sent")
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return respond(ctx, http.StatusOK, echo.Map{}, "Password has been reset with the new password")
}

var errLoginIdentifierRequired = core.NewValidationError(
	nil,
	core.FieldError{Field: "username", Error: "username or email is required"},
	core.FieldError{Field: "email", Error: "username or email is required"},
)

type (
	LoginRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		User         user.User `json:"user"`
		AccessToken  string    `json:"accessToken"`
		RefreshToken string    `json:"refreshToken"`
	}

	RefreshTokenRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	TokenResponse struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	if lr.Username == "" && lr.Email == "" {
		return errLoginIdentifierRequired
	}
	return validate.Struct(lr)
}

func (lr *LoginRequest) usernameOrEmail() string {
	if lr.Username != "" {
		return lr.Username
	}
	return lr.Email
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
