package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY,
  name          TEXT        NOT NULL,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_vaults",
		SQL: `CREATE TABLE IF NOT EXISTS vaults (
  id             TEXT        PRIMARY KEY,
  kind           TEXT        NOT NULL CHECK (kind IN ('text', 'file')),
  content        TEXT,
  file_path      TEXT,
  file_name      TEXT,
  file_size      BIGINT      CHECK (file_size IS NULL OR file_size >= 0),
  mime_type      TEXT,
  password_hash  TEXT,
  one_time       BOOLEAN     NOT NULL DEFAULT FALSE,
  consumed_at    TIMESTAMPTZ,
  max_views      INTEGER     CHECK (max_views IS NULL OR max_views > 0),
  max_downloads  INTEGER     CHECK (max_downloads IS NULL OR max_downloads > 0),
  view_count     INTEGER     NOT NULL DEFAULT 0 CHECK (view_count >= 0),
  download_count INTEGER     NOT NULL DEFAULT 0 CHECK (download_count >= 0),
  owner_id       UUID        REFERENCES users (id) ON DELETE SET NULL,
  expires_at     TIMESTAMPTZ NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK ((kind = 'text' AND content IS NOT NULL AND file_path IS NULL)
      OR (kind = 'file' AND file_path IS NOT NULL AND content IS NULL))
);`,
	},
	{
		// The reaper's range scan over expired entries depends on this index.
		Name: "create_index_vaults_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_vaults_expires_at ON vaults (expires_at);`,
	},
	{
		Name: "create_index_vaults_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_vaults_owner_id ON vaults (owner_id);`,
	},
}

// EnsureMigrated checks if the 'vaults' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.vaults') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
