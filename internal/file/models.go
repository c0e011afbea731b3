package file

import (
	"time"

	"github.com/infinityfire/api/internal/objectstore"
)

// ViewResult is a file prepared for inline display. Content is nil for binary files.
type ViewResult struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Content      *string   `json:"content"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	IsBinary     bool      `json:"isBinary"`
	// TooLarge marks a text file whose content was withheld; download it instead.
	TooLarge bool `json:"tooLarge,omitempty"`
}

// DownloadLink is a pre-signed URL and its lifetime.
type DownloadLink struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresIn   int       `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SearchResult wraps matches with the query that produced them.
type SearchResult struct {
	Results []objectstore.File `json:"results"`
	Query   string             `json:"query"`
	Path    string             `json:"path"`
	Count   int                `json:"count"`
}

// ExpiryPolicy bounds download URL lifetimes, in seconds.
type ExpiryPolicy struct {
	Default int
	Min     int
	Max     int
}

// Clamp resolves a requested lifetime. Zero means the default.
func (p ExpiryPolicy) Clamp(seconds int) int {
	if seconds == 0 {
		seconds = p.Default
	}
	if seconds < p.Min {
		return p.Min
	}
	if seconds > p.Max {
		return p.Max
	}
	return seconds
}
