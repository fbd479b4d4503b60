package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"social-connect/domain/model"
	"social-connect/domain/repository"
	"social-connect/infrastructure/logger"
)

// IContentUsecase covers the dashboard content a connected seller manages:
// the post calendar, the brand profile and the posting preferences.
type IContentUsecase interface {
	// ListPosts returns the seller's posts ordered by date. month ("2006-01") narrows them to one calendar month.
	ListPosts(ctx context.Context, userID string, month string) ([]model.SocialPost, error)
	UpdatePost(ctx context.Context, userID string, edit model.PostEdit) (model.SocialPost, error)
	GetBrandProfile(ctx context.Context, userID string) (model.BrandProfile, bool, error)
	// SaveBrandProfile inserts or updates and reports whether the profile is new.
	SaveBrandProfile(ctx context.Context, userID string, profile model.BrandProfile) (bool, error)
	GetPostingPreference(ctx context.Context, userID string) (model.PostingPreference, bool, model.PlanPermissions, error)
	SavePostingPreference(ctx context.Context, userID string, pref model.PostingPreference) (bool, error)
}

type contentUsecase struct {
	posts  repository.ISocialPosts
	brands repository.IBrandProfiles
	prefs  repository.IPostingPreferences
	plans  ISellerPackageUsecase
}

func NewContentUsecase(posts repository.ISocialPosts, brands repository.IBrandProfiles, prefs repository.IPostingPreferences, plans ISellerPackageUsecase) IContentUsecase {
	return &contentUsecase{posts: posts, brands: brands, prefs: prefs, plans: plans}
}

// seller resolves the numeric seller id and refuses plans without dashboard access.
func (u *contentUsecase) seller(ctx context.Context, userID string) (int64, model.PlanPermissions, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, model.PlanPermissions{}, fmt.Errorf("%w: user id %q is not numeric", model.ErrMissingCredentials, userID)
	}
	_, perms, err := u.plans.GetPermissions(ctx, userID)
	if err != nil {
		return 0, model.PlanPermissions{}, err
	}
	if !perms.HasAccess {
		return 0, perms, fmt.Errorf("%w: %s", model.ErrPlanRestricted, perms.PlanName)
	}
	return id, perms, nil
}

func backendFailure(op string, userID int64, err error) error {
	logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Error("Failed to " + op)
	return fmt.Errorf("%w: %v", model.ErrPersistenceFailed, err)
}

func (u *contentUsecase) ListPosts(ctx context.Context, userID string, month string) ([]model.SocialPost, error) {
	var from time.Time
	if month != "" {
		m, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, fmt.Errorf("%w: month %q", model.ErrInvalidContent, month)
		}
		from = m
	}
	id, _, err := u.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := u.posts.ListPosts(ctx, id)
	if err != nil {
		return nil, backendFailure("list social posts", id, err)
	}

	out := make([]model.SocialPost, 0, len(posts))
	for _, p := range posts {
		if !from.IsZero() {
			day, err := p.ScheduledOn()
			if err != nil || day.Year() != from.Year() || day.Month() != from.Month() {
				continue
			}
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (u *contentUsecase) UpdatePost(ctx context.Context, userID string, edit model.PostEdit) (model.SocialPost, error) {
	edit.Caption = strings.TrimSpace(edit.Caption)
	if err := edit.Validate(); err != nil {
		return model.SocialPost{}, err
	}
	id, _, err := u.seller(ctx, userID)
	if err != nil {
		return model.SocialPost{}, err
	}
	posts, err := u.posts.ListPosts(ctx, id)
	if err != nil {
		return model.SocialPost{}, backendFailure("list social posts", id, err)
	}
	// the update endpoint is not scoped by seller, so ownership is checked here
	var post *model.SocialPost
	for _, p := range posts {
		if p.ID == edit.ID {
			post = &p
			break
		}
	}
	if post == nil {
		return model.SocialPost{}, fmt.Errorf("%w: %d", model.ErrPostNotFound, edit.ID)
	}

	post.Caption = edit.Caption
	post.Status = edit.Status
	if err := u.posts.UpdatePost(ctx, *post); err != nil {
		return model.SocialPost{}, backendFailure("update social post", id, err)
	}
	logger.GetLogger().WithField("user_id", id).WithField("post_id", post.ID).WithField("status", post.Status).Info("Social post updated")
	return *post, nil
}

func (u *contentUsecase) GetBrandProfile(ctx context.Context, userID string) (model.BrandProfile, bool, error) {
	id, _, err := u.seller(ctx, userID)
	if err != nil {
		return model.BrandProfile{}, false, err
	}
	profile, err := u.brands.FindBrandProfile(ctx, id)
	if err != nil {
		return model.BrandProfile{}, false, backendFailure("search brand profile", id, err)
	}
	if profile == nil {
		return model.BrandProfile{UserID: id}, false, nil
	}
	return *profile, true, nil
}

func (u *contentUsecase) SaveBrandProfile(ctx context.Context, userID string, profile model.BrandProfile) (bool, error) {
	id, _, err := u.seller(ctx, userID)
	if err != nil {
		return false, err
	}
	profile.UserID = id
	profile.Description = strings.TrimSpace(profile.Description)
	if err := profile.Validate(); err != nil {
		return false, err
	}
	existing, err := u.brands.FindBrandProfile(ctx, id)
	if err != nil {
		return false, backendFailure("search brand profile", id, err)
	}
	if existing != nil {
		if err := u.brands.UpdateBrandProfile(ctx, profile); err != nil {
			return false, backendFailure("update brand profile", id, err)
		}
		return false, nil
	}
	if err := u.brands.InsertBrandProfile(ctx, profile); err != nil {
		return false, backendFailure("insert brand profile", id, err)
	}
	return true, nil
}

func (u *contentUsecase) GetPostingPreference(ctx context.Context, userID string) (model.PostingPreference, bool, model.PlanPermissions, error) {
	id, perms, err := u.seller(ctx, userID)
	if err != nil {
		return model.PostingPreference{}, false, perms, err
	}
	pref, err := u.prefs.FindPostingPreference(ctx, id)
	if err != nil {
		return model.PostingPreference{}, false, perms, backendFailure("search posting preference", id, err)
	}
	if pref == nil {
		return model.DefaultPostingPreference(id), false, perms, nil
	}
	return *pref, true, perms, nil
}

func (u *contentUsecase) SavePostingPreference(ctx context.Context, userID string, pref model.PostingPreference) (bool, error) {
	id, perms, err := u.seller(ctx, userID)
	if err != nil {
		return false, err
	}
	pref.UserID = id
	pref.PostingDays = strings.Join(pref.Days(), ",")
	if pref.PostingTime == "" {
		pref.PostingTime = model.DefaultPostingTime
	}
	if pref.ManualReview != 1 {
		pref.ManualReview = 0
		pref.NotificationDays = ""
	}
	if err := pref.Validate(perms.MaxPostingDays); err != nil {
		return false, err
	}
	existing, err := u.prefs.FindPostingPreference(ctx, id)
	if err != nil {
		return false, backendFailure("search posting preference", id, err)
	}
	if existing != nil {
		if err := u.prefs.UpdatePostingPreference(ctx, pref); err != nil {
			return false, backendFailure("update posting preference", id, err)
		}
		return false, nil
	}
	if err := u.prefs.InsertPostingPreference(ctx, pref); err != nil {
		return false, backendFailure("insert posting preference", id, err)
	}
	return true, nil
}
