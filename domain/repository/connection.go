package repository

import (
	"context"

	"social-connect/domain/model"
)

// IConnectionStore persists connection records. At most one active record exists
// per (user, platform); the store is responsible for that.
type IConnectionStore interface {
	Upsert(ctx context.Context, rec model.ConnectionRecord) error
	Deactivate(ctx context.Context, userID string, platform model.Platform, accountID string) error
	List(ctx context.Context, userID string) ([]model.ConnectionRecord, error)
}

// IAttemptAudit keeps a log of finished connection attempts.
type IAttemptAudit interface {
	Record(ctx context.Context, attempt *model.Attempt) error
}

// IAttemptHistory reads back audited attempts. Audit backends may implement it.
type IAttemptHistory interface {
	Recent(ctx context.Context, userID string, limit int64) ([]model.Attempt, error)
}

// IConnectionEvents notifies downstream workflows about connection changes.
type IConnectionEvents interface {
	Publish(ctx context.Context, evt model.ConnectionEvent) error
}

// ISellerPackage resolves the subscription package of a seller.
type ISellerPackage interface {
	GetSellerPackage(ctx context.Context, userID int64) (*model.SellerPackage, error)
}
