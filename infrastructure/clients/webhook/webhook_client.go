package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"social-connect/domain/dto"
	"social-connect/domain/model"
	"social-connect/domain/repository"
	"social-connect/infrastructure/logger"
)

// Paths are the endpoint paths of the workflow backend, relative to its base URL.
type Paths struct {
	Upsert        string
	Status        string
	Search        string
	SellerPackage string

	Posts      string
	PostUpdate string

	BrandSearch string
	BrandInsert string
	BrandUpdate string

	PreferenceSearch string
	PreferenceInsert string
	PreferenceUpdate string
}

// Client calls the no-code workflow backend that owns connection records.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authKey    string
	paths      Paths
}

var (
	_ repository.IConnectionStore    = (*Client)(nil)
	_ repository.ISellerPackage      = (*Client)(nil)
	_ repository.ISocialPosts        = (*Client)(nil)
	_ repository.IBrandProfiles      = (*Client)(nil)
	_ repository.IPostingPreferences = (*Client)(nil)
)

func NewClient(baseURL, authKey string, paths Paths, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), authKey: authKey, paths: paths}
}

func (c *Client) Upsert(ctx context.Context, rec model.ConnectionRecord) error {
	payload := dto.WebhookConnection{
		UserID:         userIDValue(rec.UserID),
		Platform:       rec.Platform.String(),
		AccountID:      rec.AccountID,
		AccountName:    rec.AccountName,
		Username:       rec.Username,
		AccessToken:    rec.AccessToken,
		LongLivedToken: rec.LongLivedToken,
		ExpiresIn:      rec.ExpiresIn,
		ConnectedAt:    rec.ConnectedAt.UTC().Format(time.RFC3339),
		AppID:          rec.AppID,
		Status:         rec.Status,
	}
	return c.post(ctx, c.paths.Upsert, payload, nil)
}

func (c *Client) Deactivate(ctx context.Context, userID string, platform model.Platform, accountID string) error {
	payload := dto.WebhookStatusUpdate{
		UserID:    userIDValue(userID),
		Platform:  platform.String(),
		AccountID: accountID,
		Status:    model.ConnectionStatusDisconnected,
	}
	return c.post(ctx, c.paths.Status, payload, nil)
}

func (c *Client) List(ctx context.Context, userID string) ([]model.ConnectionRecord, error) {
	var raw json.RawMessage
	if err := c.post(ctx, c.paths.Search, dto.WebhookUserQuery{UserID: userIDValue(userID)}, &raw); err != nil {
		return nil, err
	}
	rows, err := decodeList[dto.WebhookConnectionRow](raw)
	if err != nil {
		return nil, err
	}
	records := make([]model.ConnectionRecord, 0, len(rows))
	for _, row := range rows {
		p, err := model.ParsePlatform(row.Platform)
		if err != nil {
			logger.GetLogger().WithField("platform", row.Platform).Debug("Skipping connection with unknown platform")
			continue
		}
		connectedAt, _ := time.Parse(time.RFC3339, row.ConnectedAt)
		records = append(records, model.ConnectionRecord{
			ID:             row.ID,
			UserID:         userID,
			Platform:       p,
			AccountID:      row.AccountID,
			AccountName:    row.AccountName,
			Username:       row.Username,
			AccessToken:    row.AccessToken,
			LongLivedToken: row.LongLivedToken,
			ExpiresIn:      row.ExpiresIn,
			ConnectedAt:    connectedAt,
			AppID:          row.AppID,
			Status:         row.Status,
		})
	}
	return records, nil
}

// GetSellerPackage returns nil when the backend knows no package for the user.
func (c *Client) GetSellerPackage(ctx context.Context, userID int64) (*model.SellerPackage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, c.paths.SellerPackage, dto.WebhookUserQuery{UserID: userID}, &raw); err != nil {
		return nil, err
	}
	var packages []model.SellerPackage
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &packages) != nil {
		return nil, nil
	}
	for i := range packages {
		if packages[i].UserID == userID {
			return &packages[i], nil
		}
	}
	return nil, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authKey != "" {
		req.Header.Set("Auth", c.authKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", path, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s failed: %d", path, resp.StatusCode)
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("webhook %s decode: %w", path, err)
		}
	}
	return nil
}

// userIDValue sends numeric seller ids as JSON numbers.
func userIDValue(userID string) interface{} {
	if n, err := strconv.ParseInt(userID, 10, 64); err == nil {
		return n
	}
	return userID
}
