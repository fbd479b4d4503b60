package repository

import (
	"context"

	"social-connect/domain/model"

	"golang.org/x/oauth2"
)

// InstagramAccount is the profile of a linked Instagram business account.
type InstagramAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// IGraphAPI covers the platform graph endpoints used by the connection flow.
type IGraphAPI interface {
	// ExchangeCode trades an authorization code for a short-lived user token.
	ExchangeCode(ctx context.Context, creds model.AppCredentials, redirectURI, code string) (*oauth2.Token, error)
	// ExchangeLongLived upgrades any short-lived token with the fb_exchange_token grant.
	ExchangeLongLived(ctx context.Context, creds model.AppCredentials, token string) (*oauth2.Token, error)
	ListPages(ctx context.Context, userToken string) ([]model.Page, error)
	// LinkedInstagramAccountID returns "" when the page has no linked business account.
	LinkedInstagramAccountID(ctx context.Context, pageID, pageToken string) (string, error)
	GetInstagramAccount(ctx context.Context, accountID, token string) (*InstagramAccount, error)
}
