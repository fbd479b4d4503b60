package repository

import (
	"context"

	"social-connect/domain/model"
)

// ISocialPosts reads and edits the generated posts of a seller.
type ISocialPosts interface {
	ListPosts(ctx context.Context, userID int64) ([]model.SocialPost, error)
	UpdatePost(ctx context.Context, post model.SocialPost) error
}

// IBrandProfiles stores one brand profile per seller. Find returns nil when none is saved.
type IBrandProfiles interface {
	FindBrandProfile(ctx context.Context, userID int64) (*model.BrandProfile, error)
	InsertBrandProfile(ctx context.Context, profile model.BrandProfile) error
	UpdateBrandProfile(ctx context.Context, profile model.BrandProfile) error
}

// IPostingPreferences stores one posting preference per seller. Find returns nil when none is saved.
type IPostingPreferences interface {
	FindPostingPreference(ctx context.Context, userID int64) (*model.PostingPreference, error)
	InsertPostingPreference(ctx context.Context, pref model.PostingPreference) error
	UpdatePostingPreference(ctx context.Context, pref model.PostingPreference) error
}
