package playlist

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

type Playlist struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Videos      []string  `json:"videos"` // video IDs in insertion order
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Playlist) HasVideo(videoID string) bool {
	for _, id := range p.Videos {
		if id == videoID {
			return true
		}
	}
	return false
}

// Summary is a playlist as listed on a user's channel.
type Summary struct {
	Playlist
	TotalVideos int    `json:"totalVideos"`
	Thumbnail   string `json:"thumbnail"` // of the first video, if any
}

// Detail is a playlist with its published videos resolved.
type Detail struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Owner       *core.UserSummary `json:"owner"`
	Videos      []video.Video     `json:"videos"`
	TotalVideos int               `json:"totalVideos"`
	TotalViews  int64             `json:"totalViews"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type NewPlaylist struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

func (np *NewPlaylist) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	return validate.Struct(np)
}

type UpdatePlaylist struct {
	Name        string `json:"name" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

func (up *UpdatePlaylist) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Description = core.CleanString(up.Description)
	if up.Name == "" && up.Description == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "provide a name or a description"})
	}
	return validate.Struct(up)
}
