package objectstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/metrics"
)

const defaultCallTimeout = 30 * time.Second

// MaxInlineSize caps the bytes ReadFileContents will buffer for one object.
const MaxInlineSize int64 = 5 << 20

// Backend is the minimal set of bucket operations the store needs.
// Implementations return an error wrapping ErrNotFound for missing keys.
type Backend interface {
	List(ctx context.Context, prefix string, recursive bool) ([]Entry, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Get reads at most limit bytes and fails with ErrTooLarge beyond that.
	Get(ctx context.Context, key string, limit int64) (ObjectInfo, []byte, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	BucketExists(ctx context.Context) (bool, error)
}

// Store exposes the read-only browsing operations over one bucket.
type Store struct {
	backend   Backend
	bucket    string
	region    string
	timeout   time.Duration
	maxInline int64
	log       *zap.Logger
}

// NewStore wires a Store. A nil logger falls back to zap.L().
func NewStore(backend Backend, bucket, region string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.L()
	}
	return &Store{
		backend:   backend,
		bucket:    bucket,
		region:    region,
		timeout:   defaultCallTimeout,
		maxInline: MaxInlineSize,
		log:       log.Named("objectstore"),
	}
}

// ListObjects returns one level of the hierarchy under prefix.
func (s *Store) ListObjects(ctx context.Context, req ListingRequest) (Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	entries, err := s.backend.List(ctx, req.Prefix, false)
	s.observe("list", start, err)
	if err != nil {
		return Listing{}, s.wrap("list objects", err)
	}
	return req.Build(entries), nil
}

// GetFileDetails stats a key without downloading it.
func (s *Store) GetFileDetails(ctx context.Context, key string) (FileDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	info, err := s.backend.Stat(ctx, key)
	s.observe("stat", start, err)
	if err != nil {
		return FileDetails{}, s.wrap("stat object", err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = ContentTypeFromKey(key)
	}
	return FileDetails{
		Name:         BaseName(key),
		Path:         key,
		Type:         typeFile,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  contentType,
		ETag:         info.ETag,
	}, nil
}

// ObjectExists reports whether key is present. Other failures are returned.
func (s *Store) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.GetFileDetails(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GenerateDownloadURL signs a time-limited GET URL. Every call signs anew.
func (s *Store) GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	start := time.Now()
	u, err := s.backend.PresignGet(ctx, key, expiry)
	s.observe("presign", start, err)
	if err != nil {
		return "", s.wrap("presign object", err)
	}
	return u, nil
}

// ReadFileContents downloads key and prepares it for inline viewing. Objects
// over MaxInlineSize fail with ErrTooLarge.
func (s *Store) ReadFileContents(ctx context.Context, key string) (FileContents, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	info, body, err := s.backend.Get(ctx, key, s.maxInline)
	s.observe("get", start, err)
	if err != nil {
		return FileContents{}, s.wrap("get object", err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = ContentTypeFromKey(key)
	}
	size := info.Size
	if size == 0 {
		size = int64(len(body))
	}

	out := FileContents{
		ContentType:  contentType,
		Size:         size,
		LastModified: info.LastModified,
	}
	if IsTextFile(contentType, key) {
		out.Content = decodeText(body)
	} else {
		out.Content = base64.StdEncoding.EncodeToString(body)
		out.IsBinary = true
	}
	return out, nil
}

// SearchFiles walks everything under prefix and returns files whose base name
// contains query, ignoring case.
func (s *Store) SearchFiles(ctx context.Context, query, prefix string) ([]File, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	entries, err := s.backend.List(ctx, prefix, true)
	s.observe("search", start, err)
	if err != nil {
		return nil, s.wrap("search objects", err)
	}

	needle := strings.ToLower(query)
	results := []File{}
	for _, e := range entries {
		if e.IsPrefix {
			continue
		}
		name := BaseName(e.Key)
		if Hidden(name) {
			continue
		}
		if strings.Contains(strings.ToLower(name), needle) {
			results = append(results, fileFromEntry(e, name))
		}
	}
	sortFiles(results)
	return results, nil
}

// BucketInfo checks the bucket. Failures are reported in the result, never returned.
func (s *Store) BucketInfo(ctx context.Context) BucketInfo {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	info := BucketInfo{Name: s.bucket, Region: s.region}

	start := time.Now()
	exists, err := s.backend.BucketExists(ctx)
	s.observe("bucket_exists", start, err)
	switch {
	case err != nil:
		s.log.Warn("bucket check failed", zap.String("bucket", s.bucket), zap.Error(err))
		info.Error = err.Error()
	case !exists:
		info.Error = fmt.Sprintf("bucket %q does not exist", s.bucket)
	default:
		info.Accessible = true
	}
	return info
}

// observe records the call; a missing key is a normal answer, not a failure.
func (s *Store) observe(op string, start time.Time, err error) {
	if expected(err) {
		err = nil
	}
	metrics.ObserveObjectStore(op, start, err)
}

func (s *Store) wrap(op string, err error) error {
	if expected(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Error("object store call failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

func expected(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTooLarge)
}
