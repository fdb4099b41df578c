package storage

import (
	"context"
	"fmt"

	"github.com/anonto42/inkwell/backend/internal/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

type Options struct {
	Backend   string // s3, minio or gridfs
	Bucket    string
	PublicURL string

	S3Region   string
	S3Endpoint string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
}

// New builds the configured backend wrapped with metrics. The GridFS
// backend stores objects in mongoDB.
func New(ctx context.Context, opts Options, mongoDB *mongo.Database, m *metrics.Manager) (Storage, error) {
	var (
		backend Storage
		err     error
	)
	switch opts.Backend {
	case "s3":
		backend, err = NewS3Storage(ctx, opts.S3Region, opts.Bucket, opts.S3Endpoint, opts.PublicURL)
	case "minio":
		backend, err = NewMinioStorage(opts.MinioEndpoint, opts.MinioAccessKey, opts.MinioSecretKey, opts.MinioUseSSL, opts.Bucket, opts.PublicURL)
	case "", "gridfs":
		if mongoDB == nil {
			return nil, fmt.Errorf("gridfs storage needs MONGO_URI")
		}
		backend = NewGridFSStorage(mongoDB, opts.Bucket, opts.PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewInstrumented(backend, m), nil
}
