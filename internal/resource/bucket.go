package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketConfig describes an S3-compatible bucket.
type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	UseSSL    bool
}

// BucketOpener reads resources from objects in a bucket.
// A resource name maps to the object key Prefix/name.
type BucketOpener struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewBucketOpener creates a minio client for cfg.
func NewBucketOpener(cfg BucketConfig) (*BucketOpener, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("bucket endpoint and name are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &BucketOpener{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Open fetches the object for name. The object is stat'ed before returning
// so a missing key fails here rather than on first read.
func (o *BucketOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean != strings.TrimPrefix(name, "/") {
		return nil, notFound(name, nil)
	}
	key := path.Join(o.prefix, clean)

	obj, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, o.mapError(name, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, o.mapError(name, err)
	}
	return obj, nil
}

func (o *BucketOpener) mapError(name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return notFound(name, nil)
	}
	return fmt.Errorf("get object %s/%s: %w", o.bucket, name, err)
}
