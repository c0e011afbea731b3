package objectstore

import (
	"testing"
	"time"
)

func TestBuildSplitsFoldersAndFiles(t *testing.T) {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Key: "docs/", Size: 0, LastModified: modified},
		{Key: "docs/sub/", IsPrefix: true},
		{Key: "docs/.cache/", IsPrefix: true},
		{Key: "docs/a.txt", Size: 5, LastModified: modified, ETag: "e1"},
		{Key: "docs/.hidden", Size: 1, LastModified: modified},
		{Key: "docs/Thumbs.db", Size: 9, LastModified: modified},
	}

	listing := ListingRequest{Prefix: "docs/", Delimiter: "/"}.Build(entries)

	if len(listing.Folders) != 1 || listing.Folders[0].Name != "sub" || listing.Folders[0].Path != "docs/sub/" {
		t.Fatalf("unexpected folders: %+v", listing.Folders)
	}
	if listing.Folders[0].Type != "folder" {
		t.Fatalf("expected folder type, got %q", listing.Folders[0].Type)
	}
	if len(listing.Files) != 1 {
		t.Fatalf("expected one visible file, got %+v", listing.Files)
	}
	f := listing.Files[0]
	if f.Name != "a.txt" || f.Path != "docs/a.txt" || f.Size != 5 || f.ETag != "e1" || !f.LastModified.Equal(modified) {
		t.Fatalf("unexpected file: %+v", f)
	}
	if listing.CurrentPath != "docs/" {
		t.Fatalf("unexpected current path %q", listing.CurrentPath)
	}
	if listing.ParentPath != "docs" {
		t.Fatalf("unexpected parent path %q", listing.ParentPath)
	}
}

func TestBuildEmptyPrefixReturnsNonNilSlices(t *testing.T) {
	listing := ListingRequest{}.Build(nil)

	if listing.Folders == nil || listing.Files == nil {
		t.Fatalf("expected empty, non-nil slices")
	}
	if listing.ParentPath != "" || listing.CurrentPath != "" {
		t.Fatalf("unexpected paths: %+v", listing)
	}
}

func TestBuildSortsByName(t *testing.T) {
	entries := []Entry{
		{Key: "zeta.md"},
		{Key: "Alpha.txt"},
		{Key: "beta.txt"},
		{Key: "reports/", IsPrefix: true},
		{Key: "Archive/", IsPrefix: true},
	}

	listing := ListingRequest{}.Build(entries)

	gotFiles := []string{listing.Files[0].Name, listing.Files[1].Name, listing.Files[2].Name}
	wantFiles := []string{"Alpha.txt", "beta.txt", "zeta.md"}
	for i := range wantFiles {
		if gotFiles[i] != wantFiles[i] {
			t.Fatalf("files out of order: %v", gotFiles)
		}
	}
	if listing.Folders[0].Name != "Archive" || listing.Folders[1].Name != "reports" {
		t.Fatalf("folders out of order: %+v", listing.Folders)
	}
}

func TestParentPath(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"docs":      "",
		"docs/":     "docs",
		"docs/sub/": "docs/sub",
		"docs/a":    "docs",
	}
	for prefix, want := range cases {
		if got := parentPath(prefix, "/"); got != want {
			t.Errorf("parentPath(%q) = %q, want %q", prefix, got, want)
		}
	}
}

func TestHidden(t *testing.T) {
	for _, name := range []string{"", ".env", "Thumbs.db", "desktop.ini"} {
		if !Hidden(name) {
			t.Errorf("expected %q to be hidden", name)
		}
	}
	for _, name := range []string{"notes.txt", "thumbs.db.bak", "a.b"} {
		if Hidden(name) {
			t.Errorf("expected %q to be visible", name)
		}
	}
}
