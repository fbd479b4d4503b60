package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"social-connect/domain/model"
)

// ConnectionRepository stores connection records in Postgres. One row per
// (user_id, platform) keeps at most one active connection per platform.
type ConnectionRepository struct{ db *sql.DB }

func NewConnectionRepository(db *sql.DB) *ConnectionRepository { return &ConnectionRepository{db: db} }

// EnsureConnectionSchema creates the social_connections table if it does not
// exist and adds columns missing from older tables.
func EnsureConnectionSchema(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS social_connections (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		account_id TEXT NOT NULL,
		account_name TEXT NOT NULL DEFAULT '',
		username TEXT NULL,
		access_token TEXT NOT NULL,
		long_lived_token TEXT NOT NULL,
		expires_in TEXT NOT NULL,
		connected_at TIMESTAMPTZ NOT NULL,
		app_id TEXT NOT NULL,
		status SMALLINT NOT NULL DEFAULT 1,
		UNIQUE (user_id, platform)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create social_connections: %w", err)
	}
	return ensureConnectionColumns(ctx, db)
}

func (r *ConnectionRepository) Upsert(ctx context.Context, rec model.ConnectionRecord) error {
	q := `INSERT INTO social_connections (user_id, platform, account_id, account_name, username, access_token, long_lived_token, expires_in, connected_at, app_id, status)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			account_id=EXCLUDED.account_id,
			account_name=EXCLUDED.account_name,
			username=EXCLUDED.username,
			access_token=EXCLUDED.access_token,
			long_lived_token=EXCLUDED.long_lived_token,
			expires_in=EXCLUDED.expires_in,
			connected_at=EXCLUDED.connected_at,
			app_id=EXCLUDED.app_id,
			status=EXCLUDED.status`
	_, err := r.db.ExecContext(ctx, q, rec.UserID, string(rec.Platform), rec.AccountID, rec.AccountName, nullString(rec.Username),
		rec.AccessToken, rec.LongLivedToken, rec.ExpiresIn, rec.ConnectedAt, rec.AppID, model.ConnectionStatusActive)
	return err
}

func (r *ConnectionRepository) Deactivate(ctx context.Context, userID string, platform model.Platform, accountID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_connections SET status=$1 WHERE user_id=$2 AND platform=$3 AND account_id=$4`,
		model.ConnectionStatusDisconnected, userID, string(platform), accountID)
	return err
}

func (r *ConnectionRepository) List(ctx context.Context, userID string) ([]model.ConnectionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, platform, account_id, account_name, username, access_token, long_lived_token, expires_in, connected_at, app_id, status FROM social_connections WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanConnections(rows *sql.Rows) ([]model.ConnectionRecord, error) {
	var out []model.ConnectionRecord
	for rows.Next() {
		var rec model.ConnectionRecord
		var platform string
		var username sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &platform, &rec.AccountID, &rec.AccountName, &username,
			&rec.AccessToken, &rec.LongLivedToken, &rec.ExpiresIn, &rec.ConnectedAt, &rec.AppID, &rec.Status); err != nil {
			return nil, err
		}
		rec.Platform = model.Platform(platform)
		if username.Valid {
			v := username.String
			rec.Username = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
