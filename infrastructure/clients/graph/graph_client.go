package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"social-connect/domain/model"
	"social-connect/domain/repository"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

const maxPageFollows = 10

// APIError is a non-2xx answer from the graph API.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("graph api %d: %s (%s/%d)", e.StatusCode, e.Message, e.Type, e.Code)
	}
	return fmt.Sprintf("graph api %d", e.StatusCode)
}

// Client talks to the Facebook Graph API, which also serves Instagram business accounts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

var _ repository.IGraphAPI = (*Client)(nil)

func NewClient(graphHost, apiVersion string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	base := strings.TrimRight(graphHost, "/")
	if apiVersion != "" {
		base += "/" + strings.Trim(apiVersion, "/")
	}
	return &Client{httpClient: httpClient, baseURL: base, now: time.Now}
}

type codeExchangeParams struct {
	ClientID     string `url:"client_id"`
	RedirectURI  string `url:"redirect_uri"`
	ClientSecret string `url:"client_secret"`
	Code         string `url:"code"`
}

type longLivedParams struct {
	GrantType       string `url:"grant_type"`
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	FBExchangeToken string `url:"fb_exchange_token"`
}

type tokenParams struct {
	AccessToken string `url:"access_token"`
}

type fieldsParams struct {
	Fields      string `url:"fields"`
	AccessToken string `url:"access_token"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) ExchangeCode(ctx context.Context, creds model.AppCredentials, redirectURI, code string) (*oauth2.Token, error) {
	params := codeExchangeParams{
		ClientID:     creds.AppID,
		RedirectURI:  redirectURI,
		ClientSecret: creds.AppSecret,
		Code:         code,
	}
	return c.token(ctx, params)
}

func (c *Client) ExchangeLongLived(ctx context.Context, creds model.AppCredentials, token string) (*oauth2.Token, error) {
	params := longLivedParams{
		GrantType:       "fb_exchange_token",
		ClientID:        creds.AppID,
		ClientSecret:    creds.AppSecret,
		FBExchangeToken: token,
	}
	return c.token(ctx, params)
}

func (c *Client) token(ctx context.Context, params interface{}) (*oauth2.Token, error) {
	var resp tokenResponse
	if err := c.get(ctx, c.baseURL+"/oauth/access_token", params, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("graph api: empty access_token")
	}
	tok := &oauth2.Token{AccessToken: resp.AccessToken, TokenType: resp.TokenType}
	if resp.ExpiresIn > 0 {
		tok.Expiry = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok, nil
}

type pagesResponse struct {
	Data   []model.Page `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// ListPages returns every page the token's user administers, following paging links.
func (c *Client) ListPages(ctx context.Context, userToken string) ([]model.Page, error) {
	var pages []model.Page
	var resp pagesResponse
	if err := c.get(ctx, c.baseURL+"/me/accounts", tokenParams{AccessToken: userToken}, &resp); err != nil {
		return nil, err
	}
	pages = append(pages, resp.Data...)
	for i := 0; resp.Paging.Next != "" && i < maxPageFollows; i++ {
		next := resp.Paging.Next
		resp = pagesResponse{}
		if err := c.get(ctx, next, nil, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Data...)
	}
	return pages, nil
}

func (c *Client) LinkedInstagramAccountID(ctx context.Context, pageID, pageToken string) (string, error) {
	var resp struct {
		InstagramBusinessAccount *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	params := fieldsParams{Fields: "instagram_business_account", AccessToken: pageToken}
	if err := c.get(ctx, c.baseURL+"/"+url.PathEscape(pageID), params, &resp); err != nil {
		return "", err
	}
	if resp.InstagramBusinessAccount == nil {
		return "", nil
	}
	return resp.InstagramBusinessAccount.ID, nil
}

func (c *Client) GetInstagramAccount(ctx context.Context, accountID, token string) (*repository.InstagramAccount, error) {
	var resp repository.InstagramAccount
	params := fieldsParams{Fields: "name,username", AccessToken: token}
	if err := c.get(ctx, c.baseURL+"/"+url.PathEscape(accountID), params, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		resp.ID = accountID
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params interface{}, out interface{}) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return err
		}
		u.RawQuery = v.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("graph api read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Message = envelope.Error.Message
			apiErr.Type = envelope.Error.Type
			apiErr.Code = envelope.Error.Code
		}
		return apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("graph api decode: %w", err)
	}
	return nil
}
