package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"talent_server/core/port/out"
)

const defaultGridFSBucket = "cv_files"

// GridFSStorage keeps CV files in MongoDB and serves them through the API.
type GridFSStorage struct {
	db         *mongo.Database
	bucketName string
	publicBase string
}

// NewGridFSStorage returns URLs of the form {publicBase}/v1/api/files/{name}.
func NewGridFSStorage(db *mongo.Database, bucketName, publicBase string) *GridFSStorage {
	if bucketName == "" {
		bucketName = defaultGridFSBucket
	}
	return &GridFSStorage{
		db:         db,
		bucketName: bucketName,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// bucket builds a per-call handle so deadlines do not leak between requests.
func (s *GridFSStorage) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetReadDeadline(deadline)
		_ = b.SetWriteDeadline(deadline)
	}
	return b, nil
}

func (s *GridFSStorage) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	exists, err := s.exists(ctx, b, name)
	if err != nil {
		return "", err
	}
	if exists {
		return "", out.ErrObjectExists
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: contentType},
		{Key: "uploadedAt", Value: time.Now().UTC()},
	})
	if _, err := b.UploadFromStream(name, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return s.PublicURL(name), nil
}

func (s *GridFSStorage) exists(ctx context.Context, b *gridfs.Bucket, name string) (bool, error) {
	cursor, err := b.Find(bson.M{"filename": name})
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", name, err)
	}
	defer cursor.Close(ctx)
	return cursor.Next(ctx), cursor.Err()
}

// StoredFile is an open GridFS download.
type StoredFile struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// Open returns out.ErrNotFound when no file has that name.
func (s *GridFSStorage) Open(ctx context.Context, name string) (*StoredFile, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := b.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if file.Metadata != nil {
		if v, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && v != "" {
			contentType = v
		}
	}
	return &StoredFile{ReadCloser: stream, ContentType: contentType, Size: file.Length}, nil
}

func (s *GridFSStorage) PublicURL(name string) string {
	return fmt.Sprintf("%s/v1/api/files/%s", s.publicBase, url.PathEscape(name))
}

var _ out.FileStoragePort = (*GridFSStorage)(nil)
