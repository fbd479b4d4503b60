package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"social-connect/domain/dto"
	"social-connect/domain/model"
)

func (c *Client) ListPosts(ctx context.Context, userID int64) ([]model.SocialPost, error) {
	var raw json.RawMessage
	if err := c.post(ctx, c.paths.Posts, dto.WebhookUserQuery{UserID: userID}, &raw); err != nil {
		return nil, err
	}
	posts, err := decodeList[model.SocialPost](raw)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.SocialPost{}
	}
	return posts, nil
}

// UpdatePost sends the caption and status; the image is echoed back unchanged.
func (c *Client) UpdatePost(ctx context.Context, post model.SocialPost) error {
	return c.post(ctx, c.paths.PostUpdate, dto.WebhookPostUpdate{
		ID:      post.ID,
		Caption: post.Caption,
		Image:   post.Image,
		Status:  post.Status,
	}, nil)
}

func (c *Client) FindBrandProfile(ctx context.Context, userID int64) (*model.BrandProfile, error) {
	var raw json.RawMessage
	if err := c.post(ctx, c.paths.BrandSearch, dto.WebhookUserQuery{UserID: userID}, &raw); err != nil {
		return nil, err
	}
	profiles, err := decodeList[model.BrandProfile](raw)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 || (profiles[0].Tone == "" && profiles[0].Voice == "" && profiles[0].Description == "") {
		return nil, nil
	}
	return &profiles[0], nil
}

func (c *Client) InsertBrandProfile(ctx context.Context, profile model.BrandProfile) error {
	return c.post(ctx, c.paths.BrandInsert, profile, nil)
}

func (c *Client) UpdateBrandProfile(ctx context.Context, profile model.BrandProfile) error {
	return c.post(ctx, c.paths.BrandUpdate, profile, nil)
}

func (c *Client) FindPostingPreference(ctx context.Context, userID int64) (*model.PostingPreference, error) {
	var raw json.RawMessage
	if err := c.post(ctx, c.paths.PreferenceSearch, dto.WebhookUserQuery{UserID: userID}, &raw); err != nil {
		return nil, err
	}
	prefs, err := decodeList[model.PostingPreference](raw)
	if err != nil {
		return nil, err
	}
	// the backend answers [{}] when nothing is saved
	if len(prefs) == 0 || prefs[0].Empty() {
		return nil, nil
	}
	pref := prefs[0]
	if pref.PostingTime == "" {
		pref.PostingTime = model.DefaultPostingTime
	}
	return &pref, nil
}

func (c *Client) InsertPostingPreference(ctx context.Context, pref model.PostingPreference) error {
	return c.post(ctx, c.paths.PreferenceInsert, pref, nil)
}

func (c *Client) UpdatePostingPreference(ctx context.Context, pref model.PostingPreference) error {
	return c.post(ctx, c.paths.PreferenceUpdate, pref, nil)
}

// decodeList accepts a JSON array, a single object, or nothing.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		return []T{one}, nil
	}
	var rows []T
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}
