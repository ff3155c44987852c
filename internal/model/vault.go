package model

import "time"

// VaultKind discriminates the two payload variants of a vault entry.
type VaultKind string

const (
	KindText VaultKind = "text"
	KindFile VaultKind = "file"
)

// Operation is the kind of access being attempted on a vault entry.
type Operation string

const (
	OperationView     Operation = "view"
	OperationDownload Operation = "download"
)

// VaultEntry represents one shareable unit of text or file content plus its
// access policy. This is a pure domain model with no database-specific
// dependencies or tags; exactly one of Content (text kind) or FilePath (file
// kind) is populated.
type VaultEntry struct {
	ID            string     `json:"id"`
	Kind          VaultKind  `json:"kind"`
	Content       string     `json:"content,omitempty"`
	FilePath      string     `json:"-"`
	FileName      string     `json:"file_name,omitempty"`
	FileSize      int64      `json:"file_size,omitempty"`
	MimeType      string     `json:"mime_type,omitempty"`
	PasswordHash  string     `json:"-"`
	OneTime       bool       `json:"one_time"`
	ConsumedAt    *time.Time `json:"consumed_at,omitempty"`
	MaxViews      *int       `json:"max_views,omitempty"`
	MaxDownloads  *int       `json:"max_downloads,omitempty"`
	ViewCount     int        `json:"view_count"`
	DownloadCount int        `json:"download_count"`
	OwnerID       string     `json:"owner_id,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RequiresPassword reports whether access to the entry demands a password.
func (v *VaultEntry) RequiresPassword() bool {
	return v.PasswordHash != ""
}

// VaultSummary is the owner-facing projection of a vault entry. It carries
// policy fields and counters but never content or the password hash.
type VaultSummary struct {
	ID            string     `json:"id"`
	Kind          VaultKind  `json:"kind"`
	OneTime       bool       `json:"one_time"`
	MaxViews      *int       `json:"max_views,omitempty"`
	MaxDownloads  *int       `json:"max_downloads,omitempty"`
	ViewCount     int        `json:"view_count"`
	DownloadCount int        `json:"download_count"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
}
