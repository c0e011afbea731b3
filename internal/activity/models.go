package activity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one immutable audit entry.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	ActorID     uuid.UUID       `json:"userId"`
	Kind        Kind            `json:"activityType"`
	Description string          `json:"description"`
	IPAddress   string          `json:"ipAddress"`
	UserAgent   string          `json:"userAgent"`
	Metadata    json.RawMessage `json:"metadata"`
	CreatedAt   time.Time       `json:"createdAt"`
	Actor       *Actor          `json:"user,omitempty"`
}

// Actor is the user summary attached to listed records.
type Actor struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
}

// ActorProfile is the user header of a per-user activity report.
type ActorProfile struct {
	Actor
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
}

// RequestContext carries the request attributes stored with each record.
type RequestContext struct {
	IP        string
	UserAgent string
	Endpoint  string
	Method    string
}

// NewRecord is the insert payload.
type NewRecord struct {
	ActorID     uuid.UUID
	Kind        Kind
	Description string
	IPAddress   string
	UserAgent   string
	Metadata    []byte
}

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 200

	userActivityLimit = 100
)

// Filter narrows the admin activity listing. Nil fields are not applied.
type Filter struct {
	ActorID *uuid.UUID
	Kind    *Kind
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
}

func (f Filter) normalize() Filter {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is a slice of records plus its pagination.
type Page struct {
	Records    []Record
	Pagination Pagination
}

// KindCount is one row of the per-kind histogram.
type KindCount struct {
	Kind  Kind `json:"activityType"`
	Count int  `json:"count"`
}

// Stats aggregates activity for the admin dashboard.
type Stats struct {
	ActivityCounts   []KindCount `json:"activityCounts"`
	RecentActivities int         `json:"recentActivities"`
	UniqueUsers      int         `json:"uniqueUsers"`
	TotalActivities  int         `json:"totalActivities"`
}

// UserActivity is the per-user report.
type UserActivity struct {
	User            ActorProfile `json:"user"`
	Activities      []Record     `json:"activities"`
	TotalActivities int          `json:"totalActivities"`
}
