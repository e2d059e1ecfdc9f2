package mediasvc

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

// publicReadPolicy lets anyone GET the objects of the bucket.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// S3Store keeps media files in an S3-compatible bucket.
type S3Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

var _ core.MediaStore = (*S3Store)(nil)

// NewS3Store connects to the object store and creates the bucket when missing.
func NewS3Store(ctx context.Context, conf core.S3Config) (*S3Store, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to object store")
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "checking bucket")
	}
	if !exists {
		if err = client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, "creating bucket")
		}
		if err = client.SetBucketPolicy(ctx, conf.Bucket, fmt.Sprintf(publicReadPolicy, conf.Bucket)); err != nil {
			return nil, errors.Wrap(err, "setting bucket policy")
		}
	}

	return &S3Store{
		client:  client,
		bucket:  conf.Bucket,
		baseURL: client.EndpointURL().String() + "/" + conf.Bucket,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, up core.Upload, rt core.ResourceType) (core.MediaAsset, error) {
	publicID := newPublicID(up, rt)
	info, err := s.client.FPutObject(ctx, s.bucket, publicID, up.Path, minio.PutObjectOptions{
		ContentType: up.ContentType,
	})
	if err != nil {
		return core.MediaAsset{}, errors.Wrap(err, "putting object")
	}
	return core.MediaAsset{
		URL:          s.baseURL + "/" + publicID,
		PublicID:     publicID,
		ResourceType: rt,
		Bytes:        info.Size,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string, _ core.ResourceType) error {
	if !validPublicID(publicID) {
		return errInvalidPublicID
	}
	return errors.Wrap(s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}), "removing object")
}
