package file

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/objectstore"
)

type objectStore interface {
	ListObjects(ctx context.Context, req objectstore.ListingRequest) (objectstore.Listing, error)
	GetFileDetails(ctx context.Context, key string) (objectstore.FileDetails, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	ReadFileContents(ctx context.Context, key string) (objectstore.FileContents, error)
	SearchFiles(ctx context.Context, query, prefix string) ([]objectstore.File, error)
	BucketInfo(ctx context.Context) objectstore.BucketInfo
}

type activityRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, kind activity.Kind, description string, rc activity.RequestContext, metadata map[string]any)
}

// Service orchestrates file browsing over the object store and audits access.
type Service struct {
	store    objectStore
	activity activityRecorder
	expiry   ExpiryPolicy
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(store objectStore, recorder activityRecorder, expiry ExpiryPolicy) *Service {
	return &Service{
		store:    store,
		activity: recorder,
		expiry:   expiry,
		now:      time.Now,
	}
}

// List returns one level of the hierarchy.
func (s *Service) List(ctx context.Context, path string) (objectstore.Listing, error) {
	return s.store.ListObjects(ctx, objectstore.ListingRequest{Prefix: path, Delimiter: objectstore.DefaultDelimiter})
}

// Details returns object metadata.
func (s *Service) Details(ctx context.Context, path string) (objectstore.FileDetails, error) {
	details, err := s.store.GetFileDetails(ctx, path)
	if err != nil {
		return objectstore.FileDetails{}, mapStoreError(err)
	}
	return details, nil
}

// View returns metadata plus decoded content for text files, and records a file_view.
func (s *Service) View(ctx context.Context, actorID uuid.UUID, rc activity.RequestContext, path string) (ViewResult, error) {
	details, err := s.store.GetFileDetails(ctx, path)
	if err != nil {
		return ViewResult{}, mapStoreError(err)
	}

	result := ViewResult{
		Name:         details.Name,
		Path:         details.Path,
		ContentType:  details.ContentType,
		Size:         details.Size,
		LastModified: details.LastModified,
		IsBinary:     true,
	}

	if objectstore.IsTextFile(details.ContentType, path) {
		result.IsBinary = false
		if details.Size > objectstore.MaxInlineSize {
			result.TooLarge = true
		} else {
			contents, err := s.store.ReadFileContents(ctx, path)
			switch {
			case errors.Is(err, objectstore.ErrTooLarge):
				result.TooLarge = true
			case err != nil:
				return ViewResult{}, mapStoreError(err)
			default:
				result.Content = &contents.Content
				result.IsBinary = contents.IsBinary
			}
		}
	}

	s.activity.Record(ctx, actorID, activity.KindFileView, "Viewed file: "+details.Name, rc, map[string]any{
		"filePath":    path,
		"fileName":    details.Name,
		"fileSize":    details.Size,
		"contentType": details.ContentType,
		"isBinary":    result.IsBinary,
	})

	return result, nil
}

// Download signs a URL for an existing object and records a file_download.
// A zero expiresIn selects the default; out-of-range values are clamped.
func (s *Service) Download(ctx context.Context, actorID uuid.UUID, rc activity.RequestContext, path string, expiresIn int) (DownloadLink, error) {
	seconds := s.expiry.Clamp(expiresIn)

	exists, err := s.store.ObjectExists(ctx, path)
	if err != nil {
		return DownloadLink{}, mapStoreError(err)
	}
	if !exists {
		return DownloadLink{}, ErrFileNotFound
	}

	lifetime := time.Duration(seconds) * time.Second
	url, err := s.store.GenerateDownloadURL(ctx, path, lifetime)
	if err != nil {
		return DownloadLink{}, mapStoreError(err)
	}

	name := objectstore.BaseName(path)
	s.activity.Record(ctx, actorID, activity.KindFileDownload, "Downloaded file: "+name, rc, map[string]any{
		"filePath":    path,
		"fileName":    name,
		"downloadUrl": url,
		"expiresIn":   seconds,
	})

	return DownloadLink{
		DownloadURL: url,
		ExpiresIn:   seconds,
		ExpiresAt:   s.now().UTC().Add(lifetime),
	}, nil
}

// Search finds files under path whose names contain query. Searches are not audited.
func (s *Service) Search(ctx context.Context, query, path string) (SearchResult, error) {
	results, err := s.store.SearchFiles(ctx, query, path)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Results: results, Query: query, Path: path, Count: len(results)}, nil
}

// BucketInfo reports bucket reachability.
func (s *Service) BucketInfo(ctx context.Context) objectstore.BucketInfo {
	return s.store.BucketInfo(ctx)
}

// Navigate lists the parent of path.
func (s *Service) Navigate(ctx context.Context, path string) (objectstore.Listing, error) {
	return s.List(ctx, ParentPrefix(path))
}

// ParentPrefix drops the last non-empty segment of path: "a/b/c/" -> "a/b/", "a" -> "".
func ParentPrefix(path string) string {
	var parts []string
	for _, p := range strings.Split(path, objectstore.DefaultDelimiter) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) <= 1 {
		return ""
	}
	return strings.Join(parts[:len(parts)-1], objectstore.DefaultDelimiter) + objectstore.DefaultDelimiter
}

func mapStoreError(err error) error {
	if errors.Is(err, objectstore.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	return err
}
