package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"social-connect/domain/model"
)

type ConnectionRepositoryMSSQL struct{ db *sql.DB }

func NewConnectionRepositoryMSSQL(db *sql.DB) *ConnectionRepositoryMSSQL {
	return &ConnectionRepositoryMSSQL{db: db}
}

// EnsureConnectionSchemaMSSQL creates dbo.social_connections if it does not exist.
func EnsureConnectionSchemaMSSQL(ctx context.Context, db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.social_connections') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[social_connections] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(32) NOT NULL,
        account_id NVARCHAR(128) NOT NULL,
        account_name NVARCHAR(255) NOT NULL,
        username NVARCHAR(255) NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        long_lived_token NVARCHAR(MAX) NOT NULL,
        expires_in NVARCHAR(32) NOT NULL,
        connected_at DATETIME2 NOT NULL,
        app_id NVARCHAR(128) NOT NULL,
        status TINYINT NOT NULL DEFAULT 1
    );
    CREATE UNIQUE INDEX UX_social_connections_user_platform ON dbo.[social_connections](user_id, platform);
END`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create social_connections (mssql): %w", err)
	}
	return ensureConnectionColumnsMSSQL(ctx, db)
}

// Upsert merges by (user_id, platform).
func (r *ConnectionRepositoryMSSQL) Upsert(ctx context.Context, rec model.ConnectionRecord) error {
	q := `MERGE dbo.[social_connections] AS target
USING (VALUES (@p1, @p2)) AS src(user_id, platform)
ON target.user_id = src.user_id AND target.platform = src.platform
WHEN MATCHED THEN UPDATE SET
    account_id=@p3,
    account_name=@p4,
    username=@p5,
    access_token=@p6,
    long_lived_token=@p7,
    expires_in=@p8,
    connected_at=@p9,
    app_id=@p10,
    status=@p11
WHEN NOT MATCHED THEN
    INSERT (user_id, platform, account_id, account_name, username, access_token, long_lived_token, expires_in, connected_at, app_id, status)
    VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9,@p10,@p11);`
	_, err := r.db.ExecContext(ctx, q,
		rec.UserID, string(rec.Platform),
		rec.AccountID,
		rec.AccountName,
		nullString(rec.Username),
		rec.AccessToken,
		rec.LongLivedToken,
		rec.ExpiresIn,
		rec.ConnectedAt,
		rec.AppID,
		model.ConnectionStatusActive,
	)
	return err
}

func (r *ConnectionRepositoryMSSQL) Deactivate(ctx context.Context, userID string, platform model.Platform, accountID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[social_connections] SET status=@p1 WHERE user_id=@p2 AND platform=@p3 AND account_id=@p4`,
		model.ConnectionStatusDisconnected, userID, string(platform), accountID)
	return err
}

func (r *ConnectionRepositoryMSSQL) List(ctx context.Context, userID string) ([]model.ConnectionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, platform, account_id, account_name, username, access_token, long_lived_token, expires_in, connected_at, app_id, status FROM dbo.[social_connections] WHERE user_id=@p1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}
