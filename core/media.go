package core

import "context"

type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// Upload is a file received from a client and spooled to local disk.
type Upload struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// MediaAsset is a file stored on the media host.
type MediaAsset struct {
	URL          string       `json:"url"`
	PublicID     string       `json:"publicId"`
	ResourceType ResourceType `json:"resourceType"`
	Bytes        int64        `json:"bytes"`
}

// MediaStore is any media host files can be uploaded to and deleted from.
type MediaStore interface {
	Upload(ctx context.Context, up Upload, rt ResourceType) (MediaAsset, error)
	Delete(ctx context.Context, publicID string, rt ResourceType) error
}

// MediaProber extracts metadata from local media files.
type MediaProber interface {
	// Duration returns the length in seconds of the media file at path.
	Duration(ctx context.Context, path string) (float64, error)
}
