package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"linkvault/internal/model"
	"linkvault/internal/repository"
)

// VaultPostgres is a PostgreSQL implementation of repository.VaultRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type VaultPostgres struct {
	db *sql.DB
}

// NewVaultPostgres creates a new VaultPostgres repository.
func NewVaultPostgres(db *sql.DB) *VaultPostgres {
	return &VaultPostgres{db: db}
}

var _ repository.VaultRepository = (*VaultPostgres)(nil)

const vaultColumns = `id, kind, content, file_path, file_name, file_size, mime_type,
		password_hash, one_time, consumed_at, max_views, max_downloads,
		view_count, download_count, owner_id, expires_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVault(row rowScanner) (*model.VaultEntry, error) {
	var (
		e            model.VaultEntry
		content      sql.NullString
		filePath     sql.NullString
		fileName     sql.NullString
		fileSize     sql.NullInt64
		mimeType     sql.NullString
		passwordHash sql.NullString
		consumedAt   sql.NullTime
		maxViews     sql.NullInt64
		maxDownloads sql.NullInt64
		ownerID      sql.NullString
	)
	if err := row.Scan(
		&e.ID,
		&e.Kind,
		&content,
		&filePath,
		&fileName,
		&fileSize,
		&mimeType,
		&passwordHash,
		&e.OneTime,
		&consumedAt,
		&maxViews,
		&maxDownloads,
		&e.ViewCount,
		&e.DownloadCount,
		&ownerID,
		&e.ExpiresAt,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Content = content.String
	e.FilePath = filePath.String
	e.FileName = fileName.String
	e.FileSize = fileSize.Int64
	e.MimeType = mimeType.String
	e.PasswordHash = passwordHash.String
	e.OwnerID = ownerID.String
	if consumedAt.Valid {
		t := consumedAt.Time
		e.ConsumedAt = &t
	}
	if maxViews.Valid {
		n := int(maxViews.Int64)
		e.MaxViews = &n
	}
	if maxDownloads.Valid {
		n := int(maxDownloads.Int64)
		e.MaxDownloads = &n
	}
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullSize(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n > 0}
}

// Create inserts a new vault entry row and returns the stored record.
func (r *VaultPostgres) Create(ctx context.Context, entry *model.VaultEntry) (*model.VaultEntry, error) {
	const q = `
		INSERT INTO vaults (id, kind, content, file_path, file_name, file_size, mime_type,
			password_hash, one_time, consumed_at, max_views, max_downloads,
			view_count, download_count, owner_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + vaultColumns
	row := r.db.QueryRowContext(ctx, q,
		entry.ID,
		entry.Kind,
		nullString(entry.Content),
		nullString(entry.FilePath),
		nullString(entry.FileName),
		nullSize(entry.FileSize),
		nullString(entry.MimeType),
		nullString(entry.PasswordHash),
		entry.OneTime,
		nullTime(entry.ConsumedAt),
		nullInt(entry.MaxViews),
		nullInt(entry.MaxDownloads),
		entry.ViewCount,
		entry.DownloadCount,
		nullString(entry.OwnerID),
		entry.ExpiresAt,
		entry.CreatedAt,
	)
	return scanVault(row)
}

// FindByID fetches a single vault entry by its public id.
func (r *VaultPostgres) FindByID(ctx context.Context, id string) (*model.VaultEntry, error) {
	const q = `
		SELECT ` + vaultColumns + `
		FROM vaults
		WHERE id = $1
	`
	return scanVault(r.db.QueryRowContext(ctx, q, id))
}

// RegisterAccess applies the counter increment and optional consumption mark
// as a single guarded UPDATE. The WHERE clause re-checks expiry, one-time
// consumption and the relevant cap so the check and the mutation are one
// indivisible step; a rejected guard surfaces as ErrConditionFailed.
func (r *VaultPostgres) RegisterAccess(ctx context.Context, id string, upd repository.AccessUpdate) (*model.VaultEntry, error) {
	const viewQ = `
		UPDATE vaults
		SET view_count = view_count + 1,
			consumed_at = CASE WHEN $2 THEN $3 ELSE consumed_at END
		WHERE id = $1
			AND expires_at > $3
			AND (NOT one_time OR consumed_at IS NULL)
			AND (max_views IS NULL OR view_count < max_views)
		RETURNING ` + vaultColumns
	const downloadQ = `
		UPDATE vaults
		SET download_count = download_count + 1,
			consumed_at = CASE WHEN $2 THEN $3 ELSE consumed_at END
		WHERE id = $1
			AND expires_at > $3
			AND (NOT one_time OR consumed_at IS NULL)
			AND (max_downloads IS NULL OR download_count < max_downloads)
		RETURNING ` + vaultColumns

	q := viewQ
	if upd.Operation == model.OperationDownload {
		q = downloadQ
	}

	entry, err := scanVault(r.db.QueryRowContext(ctx, q, id, upd.MarkConsumed, upd.Now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrConditionFailed
		}
		return nil, err
	}
	return entry, nil
}

// Delete removes a vault entry by id. It does not return an error if the row does not exist.
func (r *VaultPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM vaults WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// A missing row is fine: purge is idempotent.
	_, _ = res.RowsAffected()
	return nil
}

// FindExpiredBefore returns all vault entries whose expiry precedes now.
// The reaper uses this as its scan; idx_vaults_expires_at backs the range.
func (r *VaultPostgres) FindExpiredBefore(ctx context.Context, now time.Time) ([]model.VaultEntry, error) {
	const q = `
		SELECT ` + vaultColumns + `
		FROM vaults
		WHERE expires_at < $1
	`
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.VaultEntry, 0)
	for rows.Next() {
		e, err := scanVault(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByOwner returns the owner's vault entries, newest first.
func (r *VaultPostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.VaultEntry, error) {
	const q = `
		SELECT ` + vaultColumns + `
		FROM vaults
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.VaultEntry, 0)
	for rows.Next() {
		e, err := scanVault(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
