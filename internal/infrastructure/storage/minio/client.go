// Package minio fetches and publishes estimator artifacts in an S3-compatible
// bucket.
package minio

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

const defaultRegion = "us-east-1"

// ObjectAPI is the subset of *minio.Client used by ArtifactStore.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ArtifactStore moves the estimator artifact between the bucket object named
// in config and a local file.
type ArtifactStore struct {
	api    ObjectAPI
	cfg    config.MinIOConfig
	logger logging.Logger
}

// NewArtifactStore builds a minio-go client for cfg. No request is made until
// Fetch or Push.
func NewArtifactStore(cfg config.MinIOConfig, log logging.Logger) (*ArtifactStore, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}
	return NewArtifactStoreWithAPI(client, cfg, log), nil
}

// NewArtifactStoreWithAPI wraps an existing client.
func NewArtifactStoreWithAPI(api ObjectAPI, cfg config.MinIOConfig, log logging.Logger) *ArtifactStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactStore{api: api, cfg: cfg, logger: log}
}

// Fetch downloads the configured object to dest, creating parent directories.
// A missing bucket or object is EST_001; transport failures are COMMON_014.
func (s *ArtifactStore) Fetch(ctx context.Context, dest string) error {
	info, err := s.api.StatObject(ctx, s.cfg.Bucket, s.cfg.Object, minio.StatObjectOptions{})
	if err != nil {
		return s.classify(err, "stat estimator artifact")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create artifact directory")
	}
	if err := s.api.FGetObject(ctx, s.cfg.Bucket, s.cfg.Object, dest, minio.GetObjectOptions{}); err != nil {
		return s.classify(err, "download estimator artifact")
	}
	s.logger.Info("estimator artifact downloaded",
		logging.String("bucket", s.cfg.Bucket),
		logging.String("object", s.cfg.Object),
		logging.Int64("size", info.Size),
		logging.String("etag", info.ETag),
		logging.String("dest", dest))
	return nil
}

// Push uploads the local file src to the configured object.
func (s *ArtifactStore) Push(ctx context.Context, src string) (minio.UploadInfo, error) {
	ok, err := s.api.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return minio.UploadInfo{}, s.classify(err, "check artifact bucket")
	}
	if !ok {
		return minio.UploadInfo{}, errors.New(errors.ErrCodeNotFound, "bucket "+s.cfg.Bucket+" does not exist")
	}
	info, err := s.api.FPutObject(ctx, s.cfg.Bucket, s.cfg.Object, src, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return minio.UploadInfo{}, s.classify(err, "upload estimator artifact")
	}
	s.logger.Info("estimator artifact uploaded",
		logging.String("bucket", info.Bucket),
		logging.String("object", info.Key),
		logging.Int64("size", info.Size))
	return info, nil
}

func (s *ArtifactStore) classify(err error, msg string) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		return errors.Wrap(err, errors.ErrCodeMissingEstimatorArtifact, msg).
			WithDetail(s.cfg.Bucket + "/" + s.cfg.Object)
	case resp.StatusCode == http.StatusForbidden:
		return errors.Wrap(err, errors.ErrCodeExternalService, msg+": access denied")
	default:
		return errors.Wrap(err, errors.ErrCodeExternalService, msg)
	}
}
