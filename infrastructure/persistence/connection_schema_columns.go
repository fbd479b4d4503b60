package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

// connectionColumn is a column added to social_connections after the table
// first shipped. Older deployments get it through an ALTER on startup.
type connectionColumn struct {
	column   string
	pgDDL    string
	mssqlDDL string
}

var addedConnectionColumns = []connectionColumn{
	{"username", "ALTER TABLE social_connections ADD COLUMN username TEXT NULL", "ALTER TABLE dbo.[social_connections] ADD username NVARCHAR(255) NULL"},
	{"app_id", "ALTER TABLE social_connections ADD COLUMN app_id TEXT NOT NULL DEFAULT ''", "ALTER TABLE dbo.[social_connections] ADD app_id NVARCHAR(128) NOT NULL DEFAULT ''"},
}

func ensureConnectionColumns(ctx context.Context, db *sql.DB) error {
	for _, c := range addedConnectionColumns {
		exists, err := columnExists(ctx, db, "social_connections", c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.pgDDL); err != nil {
				return fmt.Errorf("adding column social_connections.%s failed: %w", c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func ensureConnectionColumnsMSSQL(ctx context.Context, db *sql.DB) error {
	for _, c := range addedConnectionColumns {
		q := fmt.Sprintf(`IF COL_LENGTH('dbo.social_connections', '%s') IS NULL BEGIN %s END`, c.column, c.mssqlDDL)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure column social_connections.%s: %w", c.column, err)
		}
	}
	return nil
}
