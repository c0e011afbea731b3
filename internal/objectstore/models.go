package objectstore

import "time"

// Entry is one raw row from a backend listing call.
type Entry struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
	// IsPrefix marks a common prefix synthesized by a delimiter listing.
	IsPrefix bool
}

// ObjectInfo is metadata returned by a metadata-only stat.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// Folder is a virtual directory derived from a common prefix.
type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// File is a listed object.
type File struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Type         string    `json:"type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag"`
}

// Listing is the hierarchical view of one prefix.
type Listing struct {
	Folders     []Folder `json:"folders"`
	Files       []File   `json:"files"`
	CurrentPath string   `json:"currentPath"`
	ParentPath  string   `json:"parentPath"`
}

// FileDetails describes a single object without its body.
type FileDetails struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Type         string    `json:"type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType"`
	ETag         string    `json:"etag"`
}

// FileContents is an object body prepared for inline viewing.
type FileContents struct {
	Content      string    `json:"content"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	IsBinary     bool      `json:"isBinary"`
}

// BucketInfo reports whether the configured bucket is reachable.
type BucketInfo struct {
	Name       string `json:"name"`
	Region     string `json:"region"`
	Accessible bool   `json:"accessible"`
	Error      string `json:"error,omitempty"`
}

const (
	typeFolder = "folder"
	typeFile   = "file"
)
