package domain

import "time"

// Document is a stored file (statement, lease, insurance PDF) attached to a
// property, lease or account. The bytes live in blob storage; this is the
// metadata row.
type Document struct {
	ID          string
	Filename    string
	GCSURI      string
	ContentType string
	SizeBytes   int64

	EntityType string // "property", "lease" or "account"
	EntityID   string

	UploadedAt time.Time
}
