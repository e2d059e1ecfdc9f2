// Package mediasvc stores uploaded media files and probes their metadata.
package mediasvc

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

// NewStore picks the media backend from conf.Media.Backend.
func NewStore(ctx context.Context, conf *core.Config) (core.MediaStore, error) {
	if conf.Media.Backend == "s3" {
		return NewS3Store(ctx, conf.Media.S3)
	}
	return NewLocalStore(conf.Media.LocalDir, conf.Media.PublicURL)
}

// newPublicID returns a unique object key for up, e.g. "images/<uuid>.png".
func newPublicID(up core.Upload, rt core.ResourceType) string {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	return path.Join(string(rt)+"s", uuid.NewString()+ext)
}

// validPublicID rejects keys escaping the store root.
func validPublicID(publicID string) bool {
	if publicID == "" || strings.HasPrefix(publicID, "/") {
		return false
	}
	return path.Clean(publicID) == publicID && !strings.HasPrefix(publicID, "..")
}
