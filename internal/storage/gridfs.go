package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/multierr"
)

// GridFSStorage keeps objects in a MongoDB GridFS bucket, using the object
// key as the file name.
type GridFSStorage struct {
	db        *mongo.Database
	name      string
	publicURL string
}

func NewGridFSStorage(db *mongo.Database, bucket, publicURL string) *GridFSStorage {
	return &GridFSStorage{db: db, name: bucket, publicURL: publicURL}
}

// bucket returns a fresh handle; gridfs.Bucket keeps per-call state.
func (s *GridFSStorage) bucket() (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.name))
	return b, errors.Wrap(err, "open gridfs bucket")
}

func (s *GridFSStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	b, err := s.bucket()
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(deadline); err != nil {
			return "", errors.Wrap(err, "gridfs deadline")
		}
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := b.UploadFromStream(key, bytes.NewReader(data), opts); err != nil {
		return "", errors.Wrap(err, "gridfs upload")
	}
	return s.PublicURL(key), nil
}

func (s *GridFSStorage) PublicURL(key string) string {
	return joinURL(s.publicURL, key)
}

type gridFile struct {
	ID primitive.ObjectID `bson:"_id"`
}

func (s *GridFSStorage) Delete(ctx context.Context, keys ...string) error {
	keys = nonEmpty(keys)
	if len(keys) == 0 {
		return nil
	}
	b, err := s.bucket()
	if err != nil {
		return err
	}
	cursor, err := b.FindContext(ctx, bson.M{"filename": bson.M{"$in": keys}})
	if err != nil {
		return errors.Wrap(err, "gridfs find")
	}
	var files []gridFile
	if err := cursor.All(ctx, &files); err != nil {
		return errors.Wrap(err, "gridfs decode")
	}

	var result error
	for _, f := range files {
		if err := b.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			result = multierr.Append(result, errors.Wrapf(err, "gridfs delete %s", f.ID.Hex()))
		}
	}
	return result
}

func (s *GridFSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b, err := s.bucket()
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, errors.Wrap(err, "gridfs deadline")
		}
	}
	stream, err := b.OpenDownloadStreamByName(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, notFound(key)
		}
		return nil, errors.Wrap(err, "gridfs open")
	}
	return stream, nil
}
