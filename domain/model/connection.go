package model

import "time"

// LongLivedTokenLifetime is what the dashboard reports for upgraded tokens.
const LongLivedTokenLifetime = "60 days"

const (
	ConnectionStatusDisconnected = 0
	ConnectionStatusActive       = 1
)

// AppCredentials are the platform application credentials a seller registers.
type AppCredentials struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

// Page is a Facebook page returned by /me/accounts.
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// ConnectableTarget is a page or linked Instagram business account discovered for a user.
type ConnectableTarget struct {
	ExternalID      string `json:"external_id"`
	DisplayName     string `json:"display_name"`
	Username        string `json:"username,omitempty"`
	ShortLivedToken string `json:"short_lived_token"`
	LongLivedToken  string `json:"long_lived_token,omitempty"`
}

// EffectiveLongLivedToken falls back to the short-lived token when no upgrade happened.
func (t ConnectableTarget) EffectiveLongLivedToken() string {
	if t.LongLivedToken != "" {
		return t.LongLivedToken
	}
	return t.ShortLivedToken
}

// ConnectionRecord is the durable connection owned by the connection store.
type ConnectionRecord struct {
	ID             int64     `json:"id,omitempty"`
	UserID         string    `json:"user_id"`
	Platform       Platform  `json:"platform"`
	AccountID      string    `json:"account_id"`
	AccountName    string    `json:"account_name"`
	Username       *string   `json:"username,omitempty"`
	AccessToken    string    `json:"access_token"`
	LongLivedToken string    `json:"long_lived_token"`
	ExpiresIn      string    `json:"expires_in"`
	ConnectedAt    time.Time `json:"connected_at"`
	AppID          string    `json:"app_id"`
	Status         int       `json:"status"`
}

// Active reports whether the record is the live connection for its platform.
func (r ConnectionRecord) Active() bool { return r.Status == ConnectionStatusActive }

// NewConnectionRecord builds the record persisted for a selected target.
func NewConnectionRecord(userID string, platform Platform, appID string, t ConnectableTarget, connectedAt time.Time) ConnectionRecord {
	rec := ConnectionRecord{
		UserID:         userID,
		Platform:       platform,
		AccountID:      t.ExternalID,
		AccountName:    t.DisplayName,
		AccessToken:    t.ShortLivedToken,
		LongLivedToken: t.EffectiveLongLivedToken(),
		ExpiresIn:      LongLivedTokenLifetime,
		ConnectedAt:    connectedAt.UTC(),
		AppID:          appID,
		Status:         ConnectionStatusActive,
	}
	if platform == PlatformInstagram {
		u := t.Username
		rec.Username = &u
	}
	return rec
}

// ConnectedPlatforms reports, per platform, whether any active record exists.
func ConnectedPlatforms(records []ConnectionRecord) map[Platform]bool {
	connected := map[Platform]bool{PlatformFacebook: false, PlatformInstagram: false}
	for _, r := range records {
		if r.Active() {
			connected[r.Platform] = true
		}
	}
	return connected
}

const (
	EventConnected    = "connection.connected"
	EventDisconnected = "connection.disconnected"
)

// ConnectionEvent is published when a connection becomes active or is removed.
type ConnectionEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Platform   Platform  `json:"platform"`
	AccountID  string    `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
