package user

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

var (
	// errors
	ErrNotFound               = core.NewNotFoundError("user not found")
	ErrChannelNotFound        = core.NewNotFoundError("channel does not exist")
	ErrEmailExists            = core.NewConflictError("a user with this email already exists")
	ErrUsernameExists         = core.NewConflictError("a user with this username already exists")
	ErrInvalidCredentials     = core.NewAuthError("invalid user credentials")
	ErrInvalidRefreshToken    = core.NewAuthError("refresh token is expired or used")
	ErrInvalidOldPassword     = core.NewValidationError(nil, core.FieldError{Field: "oldPassword", Error: "invalid old password"})
	ErrAvatarRequired         = core.NewValidationError(nil, core.FieldError{Field: "avatar", Error: "avatar file is required"})
	errInvalidValue           = "invalid value"
	passwordResetTemplateName = "password_reset"
	welcomeTemplateName       = "welcome"
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when another user than excludedID owns them.
		CheckUniqueness(ctx context.Context, username, email, excludedID string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// UpdateUser saves the profile fields of usr; WatchHistory and RefreshTokenHash are left as stored.
		UpdateUser(ctx context.Context, usr User) (User, error)
		// SetRefreshTokenHash stores the hash of the single valid refresh token of a user; "" revokes it.
		SetRefreshTokenHash(ctx context.Context, id, hash string) error
		// SearchUsers does a case-insensitive match on User.Username or User.FullName.
		SearchUsers(ctx context.Context, query string, page core.PageQuery) (core.Page[core.UserSummary], error)
		GetChannelProfile(ctx context.Context, username, viewerID string) (ChannelProfile, error)
		// AddToWatchHistory moves videoID to the top of the history and trims it to MaxWatchHistory entries.
		AddToWatchHistory(ctx context.Context, userID, videoID string) error
		GetWatchHistory(ctx context.Context, userID string) ([]WatchedVideo, error)
	}

	Service struct {
		repo     Repository
		media    core.MediaStore
		mailSvc  core.EmailService
		logger   core.Logger
		tokenGen tokenGenerator
		appName  string
	}
)

func NewService(repo Repository, media core.MediaStore, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		media:   media,
		mailSvc: mailSvc,
		logger:  logger,
		tokenGen: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.Auth.PasswordResetTimeout,
		},
		appName: conf.AppName,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email, excludedID string) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, excludedID); err != nil {
		if err == ErrUsernameExists || err == ErrEmailExists {
			return err
		}
		return errors.Wrap(err, "checking user uniqueness")
	}
	return nil
}

// Register creates a new user; the avatar is required, the cover image is optional.
// Uploaded assets are removed again when the user cannot be created.
func (svc *Service) Register(ctx context.Context, nu NewUser, avatar *core.Upload, cover *core.Upload) (User, error) {
	if err := svc.checkUniqueness(ctx, nu.Username, nu.Email, ""); err != nil {
		return User{}, err
	}
	if avatar == nil {
		return User{}, ErrAvatarRequired
	}

	avatarAsset, err := svc.media.Upload(ctx, *avatar, core.ResourceImage)
	if err != nil {
		return User{}, errors.Wrap(err, "uploading avatar")
	}
	var coverAsset core.MediaAsset
	if cover != nil {
		if coverAsset, err = svc.media.Upload(ctx, *cover, core.ResourceImage); err != nil {
			svc.deleteAsset(ctx, avatarAsset.PublicID)
			return User{}, errors.Wrap(err, "uploading cover image")
		}
	}

	now := time.Now().UTC()
	usr := User{
		Username:           nu.Username,
		Email:              nu.Email,
		FullName:           nu.FullName,
		Avatar:             avatarAsset.URL,
		AvatarPublicID:     avatarAsset.PublicID,
		CoverImage:         coverAsset.URL,
		CoverImagePublicID: coverAsset.PublicID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		svc.deleteAsset(ctx, avatarAsset.PublicID)
		svc.deleteAsset(ctx, coverAsset.PublicID)
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendMail(usr, "Welcome to "+svc.appName, welcomeTemplateName, usr.Summary())
	return usr, nil
}

// Authenticate checks a user's credentials and records the login.
func (svc *Service) Authenticate(ctx context.Context, usernameOrEmail, pwd string) (User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrNotFound
		}
		return User{}, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// SetRefreshToken makes token the only refresh token accepted for the user.
func (svc *Service) SetRefreshToken(ctx context.Context, usr User, token string) error {
	return errors.Wrap(svc.repo.SetRefreshTokenHash(ctx, usr.ID, HashToken(token)), "storing refresh token")
}

// VerifyRefreshToken checks that token is the refresh token currently stored for the user.
func (svc *Service) VerifyRefreshToken(ctx context.Context, userID, token string) (User, error) {
	usr, err := svc.GetByID(ctx, userID)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidRefreshToken
		}
		return User{}, err
	}
	if usr.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(usr.RefreshTokenHash), []byte(HashToken(token))) == 0 {
		return User{}, ErrInvalidRefreshToken
	}
	return usr, nil
}

// Logout revokes the user's refresh token.
func (svc *Service) Logout(ctx context.Context, userID string) error {
	return errors.Wrap(svc.repo.SetRefreshTokenHash(ctx, userID, ""), "revoking refresh token")
}

func (svc *Service) ChangePassword(ctx context.Context, usr User, data ChangePassword) error {
	if err := usr.CheckPassword(data.OldPassword); err != nil {
		return ErrInvalidOldPassword
	}
	if err := usr.SetPassword(data.NewPassword); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

// GetSummary returns the public projection of a user.
func (svc *Service) GetSummary(ctx context.Context, id string) (core.UserSummary, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return core.UserSummary{}, err
	}
	return usr.Summary(), nil
}

func (svc *Service) UpdateAccount(ctx context.Context, usr User, data UpdateAccount) (User, error) {
	if data.Email != "" && data.Email != usr.Email {
		if err := svc.checkUniqueness(ctx, "", data.Email, usr.ID); err != nil {
			return User{}, err
		}
		usr.Email = data.Email
	}
	if data.FullName != "" {
		usr.FullName = data.FullName
	}
	usr.UpdatedAt = time.Now().UTC()
	usr, err := svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}

// UpdateAvatar replaces the user's avatar; the previous asset is deleted once the new one is saved.
func (svc *Service) UpdateAvatar(ctx context.Context, usr User, up core.Upload) (User, error) {
	asset, err := svc.media.Upload(ctx, up, core.ResourceImage)
	if err != nil {
		return User{}, errors.Wrap(err, "uploading avatar")
	}
	oldPublicID := usr.AvatarPublicID
	usr.Avatar, usr.AvatarPublicID = asset.URL, asset.PublicID
	usr.UpdatedAt = time.Now().UTC()

	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		svc.deleteAsset(ctx, asset.PublicID)
		return User{}, errors.Wrap(err, "updating user")
	}
	svc.deleteAsset(ctx, oldPublicID)
	return usr, nil
}

// UpdateCoverImage replaces the user's cover image; the previous asset is deleted once the new one is saved.
func (svc *Service) UpdateCoverImage(ctx context.Context, usr User, up core.Upload) (User, error) {
	asset, err := svc.media.Upload(ctx, up, core.ResourceImage)
	if err != nil {
		return User{}, errors.Wrap(err, "uploading cover image")
	}
	oldPublicID := usr.CoverImagePublicID
	usr.CoverImage, usr.CoverImagePublicID = asset.URL, asset.PublicID
	usr.UpdatedAt = time.Now().UTC()

	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		svc.deleteAsset(ctx, asset.PublicID)
		return User{}, errors.Wrap(err, "updating user")
	}
	svc.deleteAsset(ctx, oldPublicID)
	return usr, nil
}

func (svc *Service) GetChannelProfile(ctx context.Context, username, viewerID string) (ChannelProfile, error) {
	username = core.CleanString(username, true /* lower */)
	if username == "" {
		return ChannelProfile{}, core.NewValidationError(nil, core.FieldError{Field: "username", Error: "username is missing"})
	}
	profile, err := svc.repo.GetChannelProfile(ctx, username, viewerID)
	if err == ErrNotFound {
		return ChannelProfile{}, ErrChannelNotFound
	}
	return profile, err
}

func (svc *Service) GetWatchHistory(ctx context.Context, userID string) ([]WatchedVideo, error) {
	videos, err := svc.repo.GetWatchHistory(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "getting watch history")
	}
	if videos == nil {
		videos = []WatchedVideo{}
	}
	return videos, nil
}

func (svc *Service) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	return errors.Wrap(svc.repo.AddToWatchHistory(ctx, userID, videoID), "adding to watch history")
}

func (svc *Service) Search(ctx context.Context, query string, page core.PageQuery) (core.Page[core.UserSummary], error) {
	page.Clean()
	return svc.repo.SearchUsers(ctx, core.CleanString(query), page)
}

// RequestPasswordReset mails a password reset link to the user owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := svc.tokenGen.makeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making password reset token")
	}

	data := struct {
		core.UserSummary
		UID   string
		Token string
	}{
		UserSummary: usr.Summary(),
		UID:         EncodeUID(usr),
		Token:       token,
	}
	svc.sendMail(usr, "Password Reset", passwordResetTemplateName, data)
	return nil
}

// ResetPassword sets a new password when the reset token is valid for the user encoded in the UID.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalidUID := core.NewValidationError(nil, core.FieldError{Field: "uid", Error: errInvalidValue})
	id, err := decodeUID(data.UID)
	if err != nil {
		return invalidUID
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return invalidUID
		}
		return errors.Wrap(err, "finding user by ID")
	}

	if err = svc.tokenGen.verifyToken(usr, data.Token); err != nil {
		if err == errInvalidToken || err == errTokenExpired {
			return core.NewValidationError(err, core.FieldError{Field: "token", Error: errInvalidValue})
		}
		return errors.Wrap(err, "verifying token")
	}

	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	// log out every session
	return errors.Wrap(svc.repo.SetRefreshTokenHash(ctx, usr.ID, ""), "revoking refresh token")
}

func (svc *Service) sendMail(usr User, subject, tmpl string, data interface{}) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: data,
	})
}

func (svc *Service) deleteAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := svc.media.Delete(ctx, publicID, core.ResourceImage); err != nil {
		svc.logger.Warn(fmt.Sprintf("deleting media asset %s: %v", publicID, err), err)
	}
}
