package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

const userCols = `id, username, email, full_name, avatar, avatar_public_id, cover_image, cover_image_public_id,
	password_hash, refresh_token_hash, created_at, updated_at, last_login`

type userRow struct {
	ID                 string      `db:"id"`
	Username           string      `db:"username"`
	Email              string      `db:"email"`
	FullName           string      `db:"full_name"`
	Avatar             string      `db:"avatar"`
	AvatarPublicID     null.String `db:"avatar_public_id"`
	CoverImage         null.String `db:"cover_image"`
	CoverImagePublicID null.String `db:"cover_image_public_id"`
	PasswordHash       []byte      `db:"password_hash"`
	RefreshTokenHash   null.String `db:"refresh_token_hash"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
	LastLogin          null.Time   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) boil(usr user.User) userRow {
	return userRow{
		ID:                 usr.ID,
		Username:           usr.Username,
		Email:              usr.Email,
		FullName:           usr.FullName,
		Avatar:             usr.Avatar,
		AvatarPublicID:     null.NewString(usr.AvatarPublicID, usr.AvatarPublicID != ""),
		CoverImage:         null.NewString(usr.CoverImage, usr.CoverImage != ""),
		CoverImagePublicID: null.NewString(usr.CoverImagePublicID, usr.CoverImagePublicID != ""),
		PasswordHash:       usr.PasswordHash,
		RefreshTokenHash:   null.NewString(usr.RefreshTokenHash, usr.RefreshTokenHash != ""),
		CreatedAt:          usr.CreatedAt.UTC(),
		UpdatedAt:          usr.UpdatedAt.UTC(),
		LastLogin:          null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unboil(r userRow) user.User {
	return user.User{
		ID:                 r.ID,
		Username:           r.Username,
		Email:              r.Email,
		FullName:           r.FullName,
		Avatar:             r.Avatar,
		AvatarPublicID:     r.AvatarPublicID.String,
		CoverImage:         r.CoverImage.String,
		CoverImagePublicID: r.CoverImagePublicID.String,
		WatchHistory:       []string{},
		PasswordHash:       r.PasswordHash,
		RefreshTokenHash:   r.RefreshTokenHash.String,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
		LastLogin:          r.LastLogin.Time.UTC(),
	}
}

func (repo userRepository) CheckUniqueness(ctx context.Context, username, email, excludedID string) error {
	var w where
	w.add("(username = ? OR email = ?)", username, email)
	if excludedID != "" {
		w.add("id::text <> ?", excludedID)
	}

	var rows []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind("SELECT username, email FROM users"+w.String()), w.args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if username != "" && r.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && r.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	q := `INSERT INTO users (` + userCols + `) VALUES (
		:id, :username, :email, :full_name, :avatar, :avatar_public_id, :cover_image, :cover_image_public_id,
		:password_hash, :refresh_token_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.boil(usr)); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, core.NewConflictError("a user with this username or email already exists")
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.WatchHistory = []string{}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var w where
	switch {
	case filter.ID != "":
		if !validID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.Username != "":
		w.add("username = ?", filter.Username)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	case filter.UsernameOrEmail != "":
		w.add("(username = ? OR email = ?)", filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}

	var r userRow
	if err := repo.db.GetContext(ctx, &r, repo.db.Rebind("SELECT "+userCols+" FROM users"+w.String()+" LIMIT 1"), w.args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user")
	}
	usr := repo.unboil(r)

	q := repo.db.Rebind("SELECT video_id::text FROM watch_history WHERE user_id = ? ORDER BY watched_at DESC")
	if err := repo.db.SelectContext(ctx, &usr.WatchHistory, q, usr.ID); err != nil {
		return user.User{}, errors.Wrap(err, "selecting watch history")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET
		username = :username, email = :email, full_name = :full_name,
		avatar = :avatar, avatar_public_id = :avatar_public_id,
		cover_image = :cover_image, cover_image_public_id = :cover_image_public_id,
		password_hash = :password_hash,
		updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(usr))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, core.NewConflictError("a user with this username or email already exists")
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	if !validID(id) {
		return user.ErrNotFound
	}
	q := repo.db.Rebind("UPDATE users SET refresh_token_hash = ? WHERE id = ?")
	_, err := repo.db.ExecContext(ctx, q, null.NewString(hash, hash != ""), id)
	return errors.Wrap(err, "setting refresh token hash")
}

func (repo userRepository) SearchUsers(ctx context.Context, query string, page core.PageQuery) (core.Page[core.UserSummary], error) {
	var w where
	pattern := likePattern(query)
	w.add("(username ILIKE ? OR full_name ILIKE ?)", pattern, pattern)

	return paginate(ctx, repo.db,
		"id, username, full_name, avatar", "FROM users"+w.String(), " ORDER BY username ASC",
		w.args, page,
		func(r struct {
			ID       string `db:"id"`
			Username string `db:"username"`
			FullName string `db:"full_name"`
			Avatar   string `db:"avatar"`
		}) core.UserSummary {
			return core.UserSummary{ID: r.ID, Username: r.Username, FullName: r.FullName, Avatar: r.Avatar}
		},
	)
}

func (repo userRepository) GetChannelProfile(ctx context.Context, username, viewerID string) (user.ChannelProfile, error) {
	q := repo.db.Rebind(`SELECT u.id, u.username, u.full_name, u.email, u.avatar, u.cover_image, u.created_at,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to_count,
		EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id::text = ?) AS is_subscribed
		FROM users u WHERE u.username = ?`)

	var r struct {
		ID                        string      `db:"id"`
		Username                  string      `db:"username"`
		FullName                  string      `db:"full_name"`
		Email                     string      `db:"email"`
		Avatar                    string      `db:"avatar"`
		CoverImage                null.String `db:"cover_image"`
		CreatedAt                 time.Time   `db:"created_at"`
		SubscribersCount          int64       `db:"subscribers_count"`
		ChannelsSubscribedToCount int64       `db:"channels_subscribed_to_count"`
		IsSubscribed              bool        `db:"is_subscribed"`
	}
	if err := repo.db.GetContext(ctx, &r, q, viewerID, username); err != nil {
		return user.ChannelProfile{}, trapNoRowsErr(err, user.ErrNotFound, "selecting channel profile")
	}
	return user.ChannelProfile{
		ID:                        r.ID,
		Username:                  r.Username,
		FullName:                  r.FullName,
		Email:                     r.Email,
		Avatar:                    r.Avatar,
		CoverImage:                r.CoverImage.String,
		SubscribersCount:          r.SubscribersCount,
		ChannelsSubscribedToCount: r.ChannelsSubscribedToCount,
		IsSubscribed:              r.IsSubscribed,
		CreatedAt:                 r.CreatedAt.UTC(),
	}, nil
}

func (repo userRepository) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	if !validID(userID) || !validID(videoID) {
		return user.ErrNotFound
	}
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO watch_history (user_id, video_id, watched_at) VALUES (?, ?, ?)
			ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at`)
		if _, err := tx.ExecContext(ctx, q, userID, videoID, time.Now().UTC()); err != nil {
			return errors.Wrap(err, "upserting watch history")
		}
		q = tx.Rebind(`DELETE FROM watch_history WHERE user_id = ? AND video_id NOT IN (
			SELECT video_id FROM watch_history WHERE user_id = ? ORDER BY watched_at DESC LIMIT ?)`)
		_, err := tx.ExecContext(ctx, q, userID, userID, user.MaxWatchHistory)
		return errors.Wrap(err, "trimming watch history")
	})
}

func (repo userRepository) GetWatchHistory(ctx context.Context, userID string) ([]user.WatchedVideo, error) {
	if !validID(userID) {
		return nil, user.ErrNotFound
	}
	q := repo.db.Rebind(`SELECT ` + videoCols + ` FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		LEFT JOIN users u ON u.id = v.owner_id
		WHERE wh.user_id = ? ORDER BY wh.watched_at DESC`)
	var rows []videoRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting watch history")
	}
	videos := make([]user.WatchedVideo, 0, len(rows))
	for _, r := range rows {
		videos = append(videos, r.unboil())
	}
	return videos, nil
}
