// Package minio archives export artifacts to S3-compatible object storage.
// Archiving is optional and best-effort, mirroring the kafka event path: a
// run's artifacts stay on local disk either way.
package minio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/patlytics/patscope/internal/config"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// objectAPI is the slice of minio.Client the archive needs; it exists so
// tests can substitute a fake.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// contentTypes maps export file extensions to MIME types.
var contentTypes = map[string]string{
	".csv":  "text/csv",
	".json": "application/json",
	".html": "text/html",
}

// Archive uploads run artifacts into one bucket, keyed by run id.
type Archive struct {
	api    objectAPI
	bucket string
	logger logging.Logger
}

// NewArchive connects to the object store and ensures the bucket exists.
func NewArchive(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Archive, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("archive")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeArchiveError, "failed to create object storage client")
	}

	a := &Archive{api: client, bucket: cfg.Bucket, logger: log}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("artifact archive ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
	)
	return a, nil
}

// newArchiveWithAPI wires an Archive over an arbitrary API, for tests.
func newArchiveWithAPI(api objectAPI, bucket string, log logging.Logger) *Archive {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Archive{api: api, bucket: bucket, logger: log}
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := a.api.BucketExists(ctx, a.bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeArchiveError, "failed to check bucket")
	}
	if exists {
		return nil
	}
	if err := a.api.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeArchiveError, "failed to create bucket")
	}
	return nil
}

// StoreRunArtifacts uploads the given local files under <runID>/<basename>.
// Missing files are an error; the caller passes exactly what it exported.
func (a *Archive) StoreRunArtifacts(ctx context.Context, runID string, paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return errors.Wrap(err, errors.CodeArchiveError, "artifact file not readable")
		}

		name := filepath.Base(path)
		object := fmt.Sprintf("%s/%s", runID, name)
		opts := minio.PutObjectOptions{
			ContentType: contentTypes[filepath.Ext(name)],
		}

		info, err := a.api.FPutObject(ctx, a.bucket, object, path, opts)
		if err != nil {
			return errors.Wrap(err, errors.CodeArchiveError,
				fmt.Sprintf("failed to upload artifact %s", name))
		}

		a.logger.Debug("artifact archived",
			logging.String("object", object),
			logging.Int64("bytes", info.Size),
		)
	}

	a.logger.Info("run artifacts archived",
		logging.String("run_id", runID),
		logging.Int("files", len(paths)),
	)
	return nil
}
