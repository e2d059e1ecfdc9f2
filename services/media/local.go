package mediasvc

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

var errInvalidPublicID = errors.New("invalid media public ID")

// LocalStore keeps media files under a directory served at publicURL.
type LocalStore struct {
	dir       string
	publicURL string
}

var _ core.MediaStore = (*LocalStore)(nil)

func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media directory")
	}
	return &LocalStore{dir: dir, publicURL: publicURL}, nil
}

// Dir is the directory to serve at the public URL.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Upload(ctx context.Context, up core.Upload, rt core.ResourceType) (core.MediaAsset, error) {
	if err := ctx.Err(); err != nil {
		return core.MediaAsset{}, err
	}
	publicID := newPublicID(up, rt)
	dst := filepath.Join(s.dir, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return core.MediaAsset{}, errors.Wrap(err, "creating media directory")
	}

	n, err := copyFile(up.Path, dst)
	if err != nil {
		_ = os.Remove(dst)
		return core.MediaAsset{}, err
	}
	return core.MediaAsset{
		URL:          s.publicURL + "/" + publicID,
		PublicID:     publicID,
		ResourceType: rt,
		Bytes:        n,
	}, nil
}

// Delete removes a stored file; deleting a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, publicID string, _ core.ResourceType) error {
	if !validPublicID(publicID) {
		return errInvalidPublicID
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(publicID)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing media file")
	}
	return nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "opening upload")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, errors.Wrap(err, "creating media file")
	}
	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return 0, errors.Wrap(err, "copying upload")
	}
	return n, errors.Wrap(out.Close(), "closing media file")
}
