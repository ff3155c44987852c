package policy

import (
	"testing"
	"time"

	"linkvault/internal/model"

	"github.com/stretchr/testify/assert"
)

var alwaysMatch = func(hash, password string) bool { return hash == password }

func intPtr(n int) *int { return &n }

func baseEntry() *model.VaultEntry {
	return &model.VaultEntry{
		ID:        "abc123",
		Kind:      model.KindText,
		Content:   "secret",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestEvaluate_CheckOrder(t *testing.T) {
	now := time.Now()
	consumed := now.Add(-time.Minute)

	tests := []struct {
		name  string
		entry func() *model.VaultEntry
		op    model.Operation
		pass  string
		want  Code
	}{
		{
			name: "expired wins over everything",
			entry: func() *model.VaultEntry {
				e := baseEntry()
				e.ExpiresAt = now.Add(-time.Second)
				e.OneTime = true
				e.ConsumedAt = &consumed
				e.PasswordHash = "hash"
				return e
			},
			op:   model.OperationView,
			want: Expired,
		},
		{
			name: "consumed one-time before limit and password",
			entry: func() *model.VaultEntry {
				e := baseEntry()
				e.OneTime = true
				e.ConsumedAt = &consumed
				e.PasswordHash = "hash"
				e.MaxViews = intPtr(1)
				e.ViewCount = 1
				return e
			},
			op:   model.OperationView,
			want: AlreadyConsumed,
		},
		{
			name: "view limit before password challenge",
			entry: func() *model.VaultEntry {
				e := baseEntry()
				e.PasswordHash = "hash"
				e.MaxViews = intPtr(2)
				e.ViewCount = 2
				return e
			},
			op:   model.OperationView,
			want: LimitReached,
		},
		{
			name: "download limit only applies to downloads",
			entry: func() *model.VaultEntry {
				e := baseEntry()
				e.Kind = model.KindFile
				e.FilePath = "vaults/x.bin"
				e.MaxDownloads = intPtr(1)
				e.DownloadCount = 1
				return e
			},
			op:   model.OperationView,
			want: Allowed,
		},
		{
			name: "password required when none presented",
			entry: func() *model.VaultEntry {
				e := baseEntry()
				e.PasswordHash = "hash"
				return e
			},
			op:   model.OperationView,
			want: PasswordRequired,
		},
		{
			name: "password invalid when mismatch",
			entry: func() *model.VaultEntry {
				e := baseEntry()
				e.PasswordHash = "hash"
				return e
			},
			op:   model.OperationView,
			pass: "wrong",
			want: PasswordInvalid,
		},
		{
			name: "password match allows",
			entry: func() *model.VaultEntry {
				e := baseEntry()
				e.PasswordHash = "hash"
				return e
			},
			op:   model.OperationView,
			pass: "hash",
			want: Allowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.entry(), now, tt.pass, tt.op, alwaysMatch)
			assert.Equal(t, tt.want, d.Code)
		})
	}
}

func TestEvaluate_Effects(t *testing.T) {
	now := time.Now()

	t.Run("one-time text view consumes", func(t *testing.T) {
		e := baseEntry()
		e.OneTime = true

		d := Evaluate(e, now, "", model.OperationView, alwaysMatch)

		assert.Equal(t, Allowed, d.Code)
		assert.Equal(t, model.OperationView, d.Effects.Operation)
		assert.True(t, d.Effects.MarkConsumed)
	})

	t.Run("one-time file view does not consume", func(t *testing.T) {
		e := baseEntry()
		e.Kind = model.KindFile
		e.Content = ""
		e.FilePath = "vaults/x.bin"
		e.OneTime = true

		d := Evaluate(e, now, "", model.OperationView, alwaysMatch)

		assert.Equal(t, Allowed, d.Code)
		assert.False(t, d.Effects.MarkConsumed)
	})

	t.Run("one-time file download consumes", func(t *testing.T) {
		e := baseEntry()
		e.Kind = model.KindFile
		e.Content = ""
		e.FilePath = "vaults/x.bin"
		e.OneTime = true

		d := Evaluate(e, now, "", model.OperationDownload, alwaysMatch)

		assert.Equal(t, Allowed, d.Code)
		assert.True(t, d.Effects.MarkConsumed)
	})

	t.Run("non one-time never consumes", func(t *testing.T) {
		e := baseEntry()

		d := Evaluate(e, now, "", model.OperationView, alwaysMatch)

		assert.Equal(t, Allowed, d.Code)
		assert.False(t, d.Effects.MarkConsumed)
	})
}
