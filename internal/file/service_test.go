package file

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/objectstore"
)

type recorded struct {
	actorID  uuid.UUID
	kind     activity.Kind
	metadata map[string]any
}

type fakeRecorder struct {
	records []recorded
}

func (f *fakeRecorder) Record(_ context.Context, actorID uuid.UUID, kind activity.Kind, _ string, _ activity.RequestContext, metadata map[string]any) {
	f.records = append(f.records, recorded{actorID: actorID, kind: kind, metadata: metadata})
}

type fakeObjectStore struct {
	details    map[string]objectstore.FileDetails
	contents   map[string]objectstore.FileContents
	listed     []string
	searchHits []objectstore.File
	failWith   error
	presigned  int
	lastExpiry time.Duration
	readCalls  int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		details:  map[string]objectstore.FileDetails{},
		contents: map[string]objectstore.FileContents{},
	}
}

func (f *fakeObjectStore) add(key, contentType, body string) {
	f.details[key] = objectstore.FileDetails{
		Name:        objectstore.BaseName(key),
		Path:        key,
		Type:        "file",
		Size:        int64(len(body)),
		ContentType: contentType,
	}
	f.contents[key] = objectstore.FileContents{Content: body, ContentType: contentType, Size: int64(len(body))}
}

func (f *fakeObjectStore) ListObjects(_ context.Context, req objectstore.ListingRequest) (objectstore.Listing, error) {
	if f.failWith != nil {
		return objectstore.Listing{}, f.failWith
	}
	f.listed = append(f.listed, req.Prefix)
	return req.Build(nil), nil
}

func (f *fakeObjectStore) GetFileDetails(_ context.Context, key string) (objectstore.FileDetails, error) {
	if f.failWith != nil {
		return objectstore.FileDetails{}, f.failWith
	}
	d, ok := f.details[key]
	if !ok {
		return objectstore.FileDetails{}, fmt.Errorf("stat object: %w", objectstore.ErrNotFound)
	}
	return d, nil
}

func (f *fakeObjectStore) ObjectExists(_ context.Context, key string) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.details[key]
	return ok, nil
}

func (f *fakeObjectStore) GenerateDownloadURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	f.presigned++
	f.lastExpiry = expiry
	return fmt.Sprintf("https://files.example/%s?sig=%d", key, f.presigned), nil
}

func (f *fakeObjectStore) ReadFileContents(_ context.Context, key string) (objectstore.FileContents, error) {
	f.readCalls++
	c, ok := f.contents[key]
	if !ok {
		return objectstore.FileContents{}, objectstore.ErrNotFound
	}
	return c, nil
}

func (f *fakeObjectStore) SearchFiles(_ context.Context, _, _ string) ([]objectstore.File, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.searchHits, nil
}

func (f *fakeObjectStore) BucketInfo(context.Context) objectstore.BucketInfo {
	return objectstore.BucketInfo{Name: "venue-files", Region: "us-east-1", Accessible: true}
}

var defaultPolicy = ExpiryPolicy{Default: 3600, Min: 300, Max: 86400}

func TestViewTextFileRecordsOneActivity(t *testing.T) {
	store := newFakeObjectStore()
	store.add("docs/readme.md", "text/markdown", "# Opening notes")
	recorder := &fakeRecorder{}
	service := NewService(store, recorder, defaultPolicy)
	actor := uuid.New()

	result, err := service.View(context.Background(), actor, activity.RequestContext{}, "docs/readme.md")
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}

	if result.Content == nil || *result.Content != "# Opening notes" {
		t.Fatalf("unexpected content: %v", result.Content)
	}
	if result.IsBinary {
		t.Fatalf("expected text file")
	}
	if len(recorder.records) != 1 {
		t.Fatalf("expected exactly one activity record, got %d", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.kind != activity.KindFileView || rec.actorID != actor {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.metadata["filePath"] != "docs/readme.md" || rec.metadata["isBinary"] != false {
		t.Fatalf("unexpected metadata: %+v", rec.metadata)
	}
}

func TestViewBinaryFileSkipsContent(t *testing.T) {
	store := newFakeObjectStore()
	store.add("plans/floor.pdf", "application/pdf", "%PDF-1.7")
	recorder := &fakeRecorder{}
	service := NewService(store, recorder, defaultPolicy)

	result, err := service.View(context.Background(), uuid.New(), activity.RequestContext{}, "plans/floor.pdf")
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}

	if result.Content != nil || !result.IsBinary {
		t.Fatalf("expected binary result without content, got %+v", result)
	}
	if store.readCalls != 0 {
		t.Fatalf("binary view should not download the body")
	}
	if len(recorder.records) != 1 {
		t.Fatalf("expected one activity record, got %d", len(recorder.records))
	}
}

func TestViewOversizedTextFileWithholdsContent(t *testing.T) {
	store := newFakeObjectStore()
	store.add("logs/door-access.log", "text/plain", "entry")
	details := store.details["logs/door-access.log"]
	details.Size = objectstore.MaxInlineSize + 1
	store.details["logs/door-access.log"] = details
	recorder := &fakeRecorder{}
	service := NewService(store, recorder, defaultPolicy)

	result, err := service.View(context.Background(), uuid.New(), activity.RequestContext{}, "logs/door-access.log")
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}

	if result.Content != nil || !result.TooLarge || result.IsBinary {
		t.Fatalf("expected withheld text content, got %+v", result)
	}
	if store.readCalls != 0 {
		t.Fatalf("oversized view should not download the body")
	}
	if len(recorder.records) != 1 {
		t.Fatalf("expected one activity record, got %d", len(recorder.records))
	}
}

func TestViewMissingFile(t *testing.T) {
	recorder := &fakeRecorder{}
	service := NewService(newFakeObjectStore(), recorder, defaultPolicy)

	_, err := service.View(context.Background(), uuid.New(), activity.RequestContext{}, "nope.txt")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if len(recorder.records) != 0 {
		t.Fatalf("failed view must not be audited")
	}
}

func TestDownloadRecordsURLAndExpiry(t *testing.T) {
	store := newFakeObjectStore()
	store.add("reports/q1.csv", "text/csv", "a,b")
	recorder := &fakeRecorder{}
	service := NewService(store, recorder, defaultPolicy)
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	link, err := service.Download(context.Background(), uuid.New(), activity.RequestContext{}, "reports/q1.csv", 0)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}

	if link.ExpiresIn != 3600 || !link.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %+v", link)
	}
	if store.lastExpiry != time.Hour {
		t.Fatalf("expected one hour signature, got %s", store.lastExpiry)
	}
	if len(recorder.records) != 1 || recorder.records[0].kind != activity.KindFileDownload {
		t.Fatalf("expected one file_download record, got %+v", recorder.records)
	}
	meta := recorder.records[0].metadata
	if meta["downloadUrl"] != link.DownloadURL || meta["expiresIn"] != 3600 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestDownloadClampsExpiry(t *testing.T) {
	store := newFakeObjectStore()
	store.add("a.txt", "text/plain", "a")
	service := NewService(store, &fakeRecorder{}, defaultPolicy)
	ctx := context.Background()

	cases := map[int]int{10: 300, 1_000_000: 86400, 7200: 7200, -5: 300}
	for requested, want := range cases {
		link, err := service.Download(ctx, uuid.New(), activity.RequestContext{}, "a.txt", requested)
		if err != nil {
			t.Fatalf("Download(%d) returned error: %v", requested, err)
		}
		if link.ExpiresIn != want {
			t.Errorf("Download(%d) expiresIn = %d, want %d", requested, link.ExpiresIn, want)
		}
	}
}

func TestDownloadMissingFile(t *testing.T) {
	store := newFakeObjectStore()
	recorder := &fakeRecorder{}
	service := NewService(store, recorder, defaultPolicy)

	_, err := service.Download(context.Background(), uuid.New(), activity.RequestContext{}, "gone.zip", 0)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if store.presigned != 0 || len(recorder.records) != 0 {
		t.Fatalf("missing file must not be signed or audited")
	}
}

func TestSearchIsNotAudited(t *testing.T) {
	store := newFakeObjectStore()
	store.searchHits = []objectstore.File{{Name: "report.pdf", Path: "a/report.pdf"}}
	recorder := &fakeRecorder{}
	service := NewService(store, recorder, defaultPolicy)

	result, err := service.Search(context.Background(), "report", "a/")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if result.Count != 1 || result.Query != "report" || result.Path != "a/" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(recorder.records) != 0 {
		t.Fatalf("search must not be audited, got %d records", len(recorder.records))
	}
}

func TestParentPrefix(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"/":         "",
		"//":        "",
		"docs":      "",
		"docs/":     "",
		"docs/sub/": "docs/",
		"a/b/c":     "a/b/",
		"/a//b/":    "a/",
	}
	for in, want := range cases {
		if got := ParentPrefix(in); got != want {
			t.Errorf("ParentPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNavigateListsParent(t *testing.T) {
	store := newFakeObjectStore()
	service := NewService(store, &fakeRecorder{}, defaultPolicy)

	if _, err := service.Navigate(context.Background(), "docs/sub/"); err != nil {
		t.Fatalf("Navigate returned error: %v", err)
	}
	if len(store.listed) != 1 || store.listed[0] != "docs/" {
		t.Fatalf("expected parent listing of docs/, got %v", store.listed)
	}
}
