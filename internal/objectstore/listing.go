package objectstore

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultDelimiter separates path segments in object keys.
const DefaultDelimiter = "/"

var junkNames = map[string]struct{}{
	"Thumbs.db":   {},
	"desktop.ini": {},
}

// ListingRequest identifies one level of the virtual hierarchy.
type ListingRequest struct {
	Prefix    string
	Delimiter string
}

func (r ListingRequest) delimiter() string {
	if r.Delimiter == "" {
		return DefaultDelimiter
	}
	return r.Delimiter
}

// Build turns a flat delimiter listing into folders and files.
// Folders and Files are never nil.
func (r ListingRequest) Build(entries []Entry) Listing {
	delim := r.delimiter()
	listing := Listing{
		Folders:     []Folder{},
		Files:       []File{},
		CurrentPath: r.Prefix,
		ParentPath:  parentPath(r.Prefix, delim),
	}

	for _, e := range entries {
		if e.Key == r.Prefix {
			continue
		}
		if e.IsPrefix {
			name := lastSegment(strings.TrimSuffix(e.Key, delim), delim)
			if Hidden(name) {
				continue
			}
			listing.Folders = append(listing.Folders, Folder{Name: name, Path: e.Key, Type: typeFolder})
			continue
		}

		name := lastSegment(e.Key, delim)
		if Hidden(name) {
			continue
		}
		listing.Files = append(listing.Files, fileFromEntry(e, name))
	}

	sortFolders(listing.Folders)
	sortFiles(listing.Files)
	return listing
}

// Hidden reports whether a base name is excluded from every view:
// empty names, dot-files and platform junk files.
func Hidden(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return true
	}
	_, junk := junkNames[name]
	return junk
}

// BaseName returns the final segment of a key.
func BaseName(key string) string {
	return lastSegment(key, DefaultDelimiter)
}

func fileFromEntry(e Entry, name string) File {
	return File{
		Name:         name,
		Path:         e.Key,
		Type:         typeFile,
		Size:         e.Size,
		LastModified: e.LastModified,
		ETag:         e.ETag,
	}
}

func lastSegment(key, delim string) string {
	if i := strings.LastIndex(key, delim); i >= 0 {
		return key[i+len(delim):]
	}
	return key
}

// parentPath drops the final delimiter-separated element: "docs/sub/" -> "docs/sub",
// "docs/a" -> "docs", "docs" -> "".
func parentPath(prefix, delim string) string {
	if i := strings.LastIndex(prefix, delim); i >= 0 {
		return prefix[:i]
	}
	return ""
}

// A collate.Collator is not safe for concurrent use, so each sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}

func sortFolders(folders []Folder) {
	c := newCollator()
	sort.SliceStable(folders, func(i, j int) bool {
		return c.CompareString(folders[i].Name, folders[j].Name) < 0
	})
}

func sortFiles(files []File) {
	c := newCollator()
	sort.SliceStable(files, func(i, j int) bool {
		return c.CompareString(files[i].Name, files[j].Name) < 0
	})
}
