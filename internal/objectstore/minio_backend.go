package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// downloadIDParam makes every pre-signed URL unique. SigV4 signatures only
// change once per second, so two links signed in the same second would
// otherwise be identical. The parameter is covered by the signature and
// ignored by the store.
const downloadIDParam = "x-download-id"

// MinIOBackend adapts minio.Client to the Backend interface for a single bucket.
type MinIOBackend struct {
	client *minio.Client
	bucket string
}

// NewMinIOBackend constructs an adapter bound to bucket.
func NewMinIOBackend(client *minio.Client, bucket string) *MinIOBackend {
	return &MinIOBackend{client: client, bucket: bucket}
}

func (b *MinIOBackend) List(ctx context.Context, prefix string, recursive bool) ([]Entry, error) {
	// Cancelling stops minio's producer goroutine if we bail out early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var entries []Entry
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if obj.Err != nil {
			return nil, translate(obj.Err)
		}
		entries = append(entries, Entry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
			IsPrefix:     !recursive && obj.Key != prefix && strings.HasSuffix(obj.Key, DefaultDelimiter),
		})
	}
	return entries, nil
}

func (b *MinIOBackend) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, translate(err)
	}
	return objectInfo(info), nil
}

func (b *MinIOBackend) Get(ctx context.Context, key string, limit int64) (ObjectInfo, []byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return ObjectInfo{}, nil, translate(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return ObjectInfo{}, nil, translate(err)
	}
	if info.Size > limit {
		return ObjectInfo{}, nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size)
	}
	body, err := io.ReadAll(io.LimitReader(obj, limit+1))
	if err != nil {
		return ObjectInfo{}, nil, translate(err)
	}
	if int64(len(body)) > limit {
		return ObjectInfo{}, nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return objectInfo(info), body, nil
}

func (b *MinIOBackend) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set(downloadIDParam, uuid.NewString())
	u, err := b.client.PresignedGetObject(ctx, b.bucket, key, expiry, params)
	if err != nil {
		return "", translate(err)
	}
	return u.String(), nil
}

func (b *MinIOBackend) BucketExists(ctx context.Context) (bool, error) {
	return b.client.BucketExists(ctx, b.bucket)
}

func objectInfo(info minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
	}
}

// translate maps missing-key responses to ErrNotFound. A missing bucket is a
// configuration problem, not a missing object.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return true
	case "NoSuchBucket":
		return false
	}
	return resp.StatusCode == http.StatusNotFound
}
