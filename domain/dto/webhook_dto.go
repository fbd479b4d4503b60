package dto

// WebhookConnection is the insert-update payload of the workflow backend.
// UserID is numeric whenever the seller id parses as an integer.
type WebhookConnection struct {
	UserID         interface{} `json:"user_id"`
	Platform       string      `json:"platform"`
	AccountID      string      `json:"account_id"`
	AccountName    string      `json:"account_name"`
	Username       *string     `json:"username,omitempty"`
	AccessToken    string      `json:"access_token"`
	LongLivedToken string      `json:"long_lived_token"`
	ExpiresIn      string      `json:"expires_in"`
	ConnectedAt    string      `json:"connected_at"`
	AppID          string      `json:"app_id"`
	Status         int         `json:"status"`
}

// WebhookStatusUpdate deactivates a connection.
type WebhookStatusUpdate struct {
	UserID    interface{} `json:"user_id"`
	Platform  string      `json:"platform"`
	AccountID string      `json:"account_id"`
	Status    int         `json:"status"`
}

// WebhookUserQuery is the body of the per-user search endpoints.
type WebhookUserQuery struct {
	UserID interface{} `json:"user_id"`
}

// WebhookConnectionRow is one row returned by the search endpoint.
type WebhookConnectionRow struct {
	ID             int64       `json:"id"`
	UserID         interface{} `json:"user_id"`
	Platform       string      `json:"platform"`
	AccountID      string      `json:"account_id"`
	AccountName    string      `json:"account_name"`
	Username       *string     `json:"username"`
	AccessToken    string      `json:"access_token"`
	LongLivedToken string      `json:"long_lived_token"`
	ExpiresIn      string      `json:"expires_in"`
	ConnectedAt    string      `json:"connected_at"`
	AppID          string      `json:"app_id"`
	Status         int         `json:"status"`
}

// WebhookPostUpdate is the update-social-post payload.
type WebhookPostUpdate struct {
	ID      int64  `json:"id"`
	Caption string `json:"caption"`
	Image   string `json:"image"`
	Status  string `json:"status"`
}
