package persistence

import (
	"context"
	"time"

	"social-connect/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type connectionRow struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	UserID         string    `gorm:"size:128;not null;uniqueIndex:ux_user_platform"`
	Platform       string    `gorm:"size:32;not null;uniqueIndex:ux_user_platform"`
	AccountID      string    `gorm:"size:128;not null"`
	AccountName    string    `gorm:"size:255;not null"`
	Username       *string   `gorm:"size:255"`
	AccessToken    string    `gorm:"type:text;not null"`
	LongLivedToken string    `gorm:"type:text;not null"`
	ExpiresIn      string    `gorm:"size:32;not null"`
	ConnectedAt    time.Time `gorm:"not null"`
	AppID          string    `gorm:"size:128;not null"`
	Status         int       `gorm:"not null;default:1"`
}

func (connectionRow) TableName() string { return "social_connections" }

// ConnectionRepositoryGorm stores connection records in MySQL through gorm.
type ConnectionRepositoryGorm struct{ db *gorm.DB }

func NewConnectionRepositoryGorm(db *gorm.DB) *ConnectionRepositoryGorm {
	return &ConnectionRepositoryGorm{db: db}
}

// AutoMigrate creates or updates the social_connections table.
func (r *ConnectionRepositoryGorm) AutoMigrate() error {
	return r.db.AutoMigrate(&connectionRow{})
}

func (r *ConnectionRepositoryGorm) Upsert(ctx context.Context, rec model.ConnectionRecord) error {
	row := connectionRow{
		UserID:         rec.UserID,
		Platform:       string(rec.Platform),
		AccountID:      rec.AccountID,
		AccountName:    rec.AccountName,
		Username:       rec.Username,
		AccessToken:    rec.AccessToken,
		LongLivedToken: rec.LongLivedToken,
		ExpiresIn:      rec.ExpiresIn,
		ConnectedAt:    rec.ConnectedAt,
		AppID:          rec.AppID,
		Status:         model.ConnectionStatusActive,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"account_id", "account_name", "username", "access_token", "long_lived_token",
			"expires_in", "connected_at", "app_id", "status",
		}),
	}).Create(&row).Error
}

func (r *ConnectionRepositoryGorm) Deactivate(ctx context.Context, userID string, platform model.Platform, accountID string) error {
	return r.db.WithContext(ctx).Model(&connectionRow{}).
		Where("user_id = ? AND platform = ? AND account_id = ?", userID, string(platform), accountID).
		Update("status", model.ConnectionStatusDisconnected).Error
}

func (r *ConnectionRepositoryGorm) List(ctx context.Context, userID string) ([]model.ConnectionRecord, error) {
	var rows []connectionRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.ConnectionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ConnectionRecord{
			ID:             row.ID,
			UserID:         row.UserID,
			Platform:       model.Platform(row.Platform),
			AccountID:      row.AccountID,
			AccountName:    row.AccountName,
			Username:       row.Username,
			AccessToken:    row.AccessToken,
			LongLivedToken: row.LongLivedToken,
			ExpiresIn:      row.ExpiresIn,
			ConnectedAt:    row.ConnectedAt,
			AppID:          row.AppID,
			Status:         row.Status,
		})
	}
	return out, nil
}
