package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const bootstrapStatusActive = "active"

// activateSystemBootstrapState records which schema build the database now
// matches. bootstrap.SchemaGate refuses to serve until this row agrees with
// the running binary.
func activateSystemBootstrapState(ctx context.Context, db *sql.DB, schemaVersion string, checksum string) error {
	if db == nil {
		return errors.New("bootstrap state requires database handle")
	}

	version := strings.TrimSpace(schemaVersion)
	if version == "" {
		return errors.New("schema version is required for bootstrap state activation")
	}

	var checksumValue any
	if trimmed := strings.TrimSpace(checksum); trimmed != "" {
		checksumValue = trimmed
	}

	now := time.Now().UTC()
	if _, err := db.ExecContext(ctx, `
		INSERT INTO system_bootstrap_state (id, status, schema_version, checksum, activated_at, created_at)
		VALUES (TRUE, $1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    schema_version = EXCLUDED.schema_version,
		    checksum = EXCLUDED.checksum,
		    activated_at = EXCLUDED.activated_at
	`, bootstrapStatusActive, version, checksumValue, now); err != nil {
		return fmt.Errorf("activate system bootstrap state: %w", err)
	}
	return nil
}
