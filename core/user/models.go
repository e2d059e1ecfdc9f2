package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

// MaxWatchHistory is the number of videos kept in a user's watch history.
const MaxWatchHistory = 100

const errAccountFieldsText = "one of fullName or email is required"

type User struct {
	ID                 string    `json:"_id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	FullName           string    `json:"fullName"`
	Avatar             string    `json:"avatar"`
	AvatarPublicID     string    `json:"-"`
	CoverImage         string    `json:"coverImage"`
	CoverImagePublicID string    `json:"-"`
	WatchHistory       []string  `json:"watchHistory"` // video IDs, most recent first
	PasswordHash       []byte    `json:"-"`
	RefreshTokenHash   string    `json:"-"`
	CreatedAt          time.Time `json:"createdAt"` // UTC
	UpdatedAt          time.Time `json:"updatedAt"` // UTC
	LastLogin          time.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) Summary() core.UserSummary {
	return core.UserSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// ChannelProfile is a user's public channel page.
type ChannelProfile struct {
	ID                        string    `json:"_id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"fullName"`
	Email                     string    `json:"email"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// WatchedVideo is a watch history entry: the video with its owner populated.
type WatchedVideo = video.Video

// GetFilter selects a single user; the first non-empty field wins.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail string
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	FullName string `json:"fullName" form:"fullName" validate:"required,notblank,max=128"`
	Username string `json:"username" form:"username" validate:"required,min=3,max=64,alphanum_"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// UpdateAccount defines what information may be provided to modify a User's account details.
type UpdateAccount struct {
	FullName string `json:"fullName" validate:"omitempty,max=128"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (ua *UpdateAccount) Validate(validate *validator.Validate) error {
	ua.FullName = core.CleanString(ua.FullName)
	ua.Email = core.CleanString(ua.Email, true /* lower */)
	if ua.FullName == "" && ua.Email == "" {
		return core.NewValidationError(
			nil,
			core.FieldError{Field: "fullName", Error: errAccountFieldsText},
			core.FieldError{Field: "email", Error: errAccountFieldsText},
		)
	}
	return validate.Struct(ua)
}

type ChangePassword struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`

	// user attributes the new password is compared against
	fullName, username, email string
}

func (cp *ChangePassword) Validate(validate *validator.Validate, usr User) error {
	cp.fullName, cp.username, cp.email = usr.FullName, usr.Username, usr.Email
	return validate.Struct(cp)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.Token = core.CleanString(rp.Token)
	rp.UID = core.CleanString(rp.UID)
	return validate.Struct(rp)
}
