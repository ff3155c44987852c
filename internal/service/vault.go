package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"linkvault/internal/config"
	"linkvault/internal/model"
	"linkvault/internal/policy"
	"linkvault/internal/repository"
	"linkvault/internal/storage"
)

// CreateVaultInput carries the payload and policy for a new vault entry.
// Exactly one of Text or File must be set.
type CreateVaultInput struct {
	Text string

	File     io.Reader
	FileName string
	FileSize int64
	MimeType string

	Password      string
	OneTime       bool
	MaxViews      *int
	MaxDownloads  *int
	ExpiryMinutes *int
	ExpiresAt     *time.Time

	OwnerID string
}

// EntryView is the caller-facing projection of an accessed entry. Content is
// set for text entries; the file fields and download URL for file entries.
type EntryView struct {
	Kind             model.VaultKind `json:"type"`
	Content          string          `json:"content,omitempty"`
	FileName         string          `json:"file_name,omitempty"`
	FileSize         int64           `json:"file_size,omitempty"`
	MimeType         string          `json:"mime_type,omitempty"`
	DownloadURL      string          `json:"download_url,omitempty"`
	ExpiresAt        time.Time       `json:"expires_at"`
	RequiresPassword bool            `json:"requires_password"`
	OneTime          bool            `json:"one_time"`
	MaxViews         *int            `json:"max_views,omitempty"`
	ViewCount        int             `json:"view_count"`
	MaxDownloads     *int            `json:"max_downloads,omitempty"`
	DownloadCount    int             `json:"download_count"`
	OwnerID          string          `json:"owner_id,omitempty"`
}

// DownloadResult wraps the blob stream for a permitted download. The caller
// owns Body and must close it.
type DownloadResult struct {
	Body     io.ReadCloser
	FileName string
	FileSize int64
	MimeType string
}

// VaultService is the vault lifecycle engine: it creates entries, enforces
// access policy through the repository's atomic conditional update, and owns
// the purge of exhausted or expired content.
type VaultService interface {
	// Create validates the payload and policy, stores the blob (file kind)
	// before the record, and returns the persisted entry. Nothing is
	// partially persisted on failure.
	Create(ctx context.Context, in CreateVaultInput) (*model.VaultEntry, error)

	// View serves a text entry's content or a file entry's metadata. An
	// expired entry is purged synchronously as a side effect and reported as
	// ErrExpired.
	View(ctx context.Context, id, password string) (*EntryView, error)

	// Download serves a file entry's blob stream. Shares View's policy and
	// expiry side effect; a text entry yields a ValidationError.
	Download(ctx context.Context, id, password string) (*DownloadResult, error)

	// Delete removes an owned entry. Ownerless entries have no deletion path
	// besides expiry; any mismatch is ErrOwnerAuthRequired.
	Delete(ctx context.Context, id string, requester *model.Identity) error

	// DeleteOwned removes an entry scoped to the given owner. A non-match is
	// indistinguishable from an unknown id.
	DeleteOwned(ctx context.Context, id, ownerID string) error

	// ListOwned returns the owner's entries as summaries, never content or
	// password hashes.
	ListOwned(ctx context.Context, ownerID string) ([]model.VaultSummary, error)

	// ExpiredBefore lists entries whose expiry has passed, for the reaper.
	ExpiredBefore(ctx context.Context, now time.Time) ([]model.VaultEntry, error)

	// Purge permanently removes an entry's blob (best-effort) and record.
	// Idempotent: purging an already-removed entry is a no-op.
	Purge(ctx context.Context, entry *model.VaultEntry) error
}

type vaultService struct {
	store  storage.Storage
	repo   repository.VaultRepository
	upload config.UploadConfig
}

// NewVaultService constructs the vault lifecycle engine.
func NewVaultService(store storage.Storage, repo repository.VaultRepository, upload config.UploadConfig) VaultService {
	return &vaultService{store: store, repo: repo, upload: upload}
}

const defaultExpiryMinutes = 10

func (s *vaultService) Create(ctx context.Context, in CreateVaultInput) (*model.VaultEntry, error) {
	text := strings.TrimSpace(in.Text)
	password := strings.TrimSpace(in.Password)
	hasText := text != ""
	hasFile := in.File != nil

	if hasText == hasFile {
		return nil, validationErr("Provide either text or file (not both).")
	}
	if password != "" && len(password) < 4 {
		return nil, validationErr("Password must be at least 4 characters.")
	}
	if in.MaxViews != nil && *in.MaxViews <= 0 {
		return nil, validationErr("Invalid max views.")
	}
	if in.MaxDownloads != nil && *in.MaxDownloads <= 0 {
		return nil, validationErr("Invalid max downloads.")
	}

	now := time.Now().UTC()
	expiresAt, err := resolveExpiry(in, now)
	if err != nil {
		return nil, err
	}

	if hasFile {
		if !s.mimeAllowed(in.MimeType) {
			return nil, validationErr("Unsupported file type.")
		}
		if max := int64(s.upload.MaxFileSizeMB) * 1024 * 1024; max > 0 && in.FileSize > max {
			return nil, validationErr("File exceeds size limit.")
		}
	}

	id, err := newLinkID()
	if err != nil {
		return nil, fmt.Errorf("generate link id: %w", err)
	}

	var passwordHash string
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = string(hashed)
	}

	entry := &model.VaultEntry{
		ID:           id,
		PasswordHash: passwordHash,
		OneTime:      in.OneTime,
		MaxViews:     in.MaxViews,
		MaxDownloads: in.MaxDownloads,
		OwnerID:      in.OwnerID,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
	}

	var blobKey string
	if hasText {
		entry.Kind = model.KindText
		entry.Content = text
	} else {
		// Blob key derives from a fresh UUID, never from the public id.
		ext := filepath.Ext(in.FileName)
		blobKey = filepath.ToSlash(filepath.Join("vaults", uuid.New().String()+ext))

		// The record is persisted only after the blob save fully succeeds, so
		// an abandoned upload never leaves a record pointing at a missing blob.
		objInfo, err := s.store.Put(ctx, blobKey, in.File, storage.PutObjectOptions{
			Size:        in.FileSize,
			ContentType: in.MimeType,
			Metadata: map[string]string{
				"original-filename": in.FileName,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("upload to storage: %w", err)
		}

		entry.Kind = model.KindFile
		entry.FilePath = objInfo.Key
		entry.FileName = in.FileName
		entry.FileSize = objInfo.Size
		entry.MimeType = in.MimeType
	}

	stored, err := s.repo.Create(ctx, entry)
	if err != nil {
		if blobKey != "" {
			// Rollback: delete the object from storage
			if delErr := s.store.Delete(ctx, blobKey); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func resolveExpiry(in CreateVaultInput, now time.Time) (time.Time, error) {
	if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(now) {
			return time.Time{}, validationErr("Expiry must be in the future.")
		}
		return *in.ExpiresAt, nil
	}
	if in.ExpiryMinutes != nil {
		if *in.ExpiryMinutes <= 0 {
			return time.Time{}, validationErr("Invalid expiry minutes.")
		}
		return now.Add(time.Duration(*in.ExpiryMinutes) * time.Minute), nil
	}
	return now.Add(defaultExpiryMinutes * time.Minute), nil
}

func (s *vaultService) mimeAllowed(mimeType string) bool {
	for _, allowed := range s.upload.AllowedMimeTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// authorize loads the entry, evaluates the access policy, and on admission
// commits the counter advance through the repository's guarded update. A
// guard rejection means a concurrent access won the race between this read
// and the write; the entry is re-read and the attempt re-classified instead
// of served.
func (s *vaultService) authorize(ctx context.Context, id, password string, op model.Operation) (*model.VaultEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidLink
		}
		return nil, fmt.Errorf("load vault entry: %w", err)
	}

	now := time.Now().UTC()
	decision := policy.Evaluate(entry, now, password, op, passwordMatches)

	switch decision.Code {
	case policy.Expired:
		// Expiry cleanup on the read path is synchronous and caller-visible:
		// a client polling an expired link observes deterministic removal.
		_ = s.Purge(ctx, entry)
		return nil, ErrExpired
	case policy.AlreadyConsumed:
		return nil, ErrAlreadyConsumed
	case policy.LimitReached:
		return nil, ErrLimitReached
	case policy.PasswordRequired:
		return nil, ErrPasswordRequired
	case policy.PasswordInvalid:
		return nil, ErrPasswordInvalid
	}

	if op == model.OperationDownload && entry.Kind != model.KindFile {
		return nil, validationErr("No file available.")
	}

	updated, err := s.repo.RegisterAccess(ctx, id, repository.AccessUpdate{
		Operation:    op,
		MarkConsumed: decision.Effects.MarkConsumed,
		Now:          now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, s.classifyRejection(ctx, id, password, op, now)
		}
		return nil, fmt.Errorf("register access: %w", err)
	}
	return updated, nil
}

// classifyRejection turns a lost conditional-update race into the denial the
// caller would have seen had it arrived a moment later.
func (s *vaultService) classifyRejection(ctx context.Context, id, password string, op model.Operation, now time.Time) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidLink
		}
		return fmt.Errorf("reload vault entry: %w", err)
	}

	decision := policy.Evaluate(entry, now, password, op, passwordMatches)
	switch decision.Code {
	case policy.Expired:
		_ = s.Purge(ctx, entry)
		return ErrExpired
	case policy.AlreadyConsumed:
		return ErrAlreadyConsumed
	case policy.PasswordRequired:
		return ErrPasswordRequired
	case policy.PasswordInvalid:
		return ErrPasswordInvalid
	default:
		return ErrLimitReached
	}
}

func (s *vaultService) View(ctx context.Context, id, password string) (*EntryView, error) {
	entry, err := s.authorize(ctx, id, password, model.OperationView)
	if err != nil {
		return nil, err
	}

	view := &EntryView{
		Kind:             entry.Kind,
		ExpiresAt:        entry.ExpiresAt,
		RequiresPassword: entry.RequiresPassword(),
		OneTime:          entry.OneTime,
		MaxViews:         entry.MaxViews,
		ViewCount:        entry.ViewCount,
		OwnerID:          entry.OwnerID,
	}
	if entry.Kind == model.KindText {
		view.Content = entry.Content
		return view, nil
	}

	view.FileName = entry.FileName
	view.FileSize = entry.FileSize
	view.MimeType = entry.MimeType
	view.DownloadURL = "/v/" + entry.ID + "/download"
	view.MaxDownloads = entry.MaxDownloads
	view.DownloadCount = entry.DownloadCount
	return view, nil
}

func (s *vaultService) Download(ctx context.Context, id, password string) (*DownloadResult, error) {
	entry, err := s.authorize(ctx, id, password, model.OperationDownload)
	if err != nil {
		return nil, err
	}

	body, info, err := s.store.Get(ctx, entry.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	name := entry.FileName
	if name == "" {
		name = filepath.Base(entry.FilePath)
	}
	return &DownloadResult{
		Body:     body,
		FileName: name,
		FileSize: info.Size,
		MimeType: entry.MimeType,
	}, nil
}

func (s *vaultService) Delete(ctx context.Context, id string, requester *model.Identity) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidLink
		}
		return fmt.Errorf("load vault entry: %w", err)
	}

	// Anonymous entries cannot be deleted here; only expiry removes them.
	if entry.OwnerID == "" {
		return ErrOwnerAuthRequired
	}
	if requester == nil || requester.ID != entry.OwnerID {
		return ErrOwnerAuthRequired
	}

	return s.Purge(ctx, entry)
}

func (s *vaultService) DeleteOwned(ctx context.Context, id, ownerID string) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidLink
		}
		return fmt.Errorf("load vault entry: %w", err)
	}
	if entry.OwnerID != ownerID {
		return ErrInvalidLink
	}
	return s.Purge(ctx, entry)
}

func (s *vaultService) ListOwned(ctx context.Context, ownerID string) ([]model.VaultSummary, error) {
	entries, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned vaults: %w", err)
	}

	summaries := make([]model.VaultSummary, 0, len(entries))
	for _, e := range entries {
		summaries = append(summaries, model.VaultSummary{
			ID:            e.ID,
			Kind:          e.Kind,
			OneTime:       e.OneTime,
			MaxViews:      e.MaxViews,
			MaxDownloads:  e.MaxDownloads,
			ViewCount:     e.ViewCount,
			DownloadCount: e.DownloadCount,
			ExpiresAt:     e.ExpiresAt,
			CreatedAt:     e.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *vaultService) ExpiredBefore(ctx context.Context, now time.Time) ([]model.VaultEntry, error) {
	return s.repo.FindExpiredBefore(ctx, now)
}

// Purge deletes the blob first (best-effort: an already-absent object is
// success and other blob failures must not block record removal), then the
// record. Record deletion ignores missing rows, so a second purge of the same
// id no-ops.
func (s *vaultService) Purge(ctx context.Context, entry *model.VaultEntry) error {
	if entry.FilePath != "" {
		_ = s.store.Delete(ctx, entry.FilePath)
	}
	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		return fmt.Errorf("delete vault record: %w", err)
	}
	return nil
}
