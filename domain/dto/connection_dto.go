package dto

import (
	"time"

	"social-connect/domain/model"
)

// Res is the generic error envelope used by middleware.
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// CallbackQuery is the query string the authorization server redirects back with.
type CallbackQuery struct {
	Code             string `form:"code"`
	State            string `form:"state"`
	Error            string `form:"error"`
	ErrorDescription string `form:"error_description"`
	Frontend         string `form:"frontend"`
}

type SaveCredentialsRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
	UserID    string `json:"user_id"`
}

type SelectTargetRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

type DisconnectRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// TargetResponse is a discovered target without its tokens.
type TargetResponse struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Username    string `json:"username,omitempty"`
	Selected    bool   `json:"selected"`
}

// AttemptResponse is returned by the callback and selection endpoints.
type AttemptResponse struct {
	AttemptID string             `json:"attempt_id"`
	Platform  model.Platform     `json:"platform"`
	State     model.AttemptState `json:"state"`
	Connected bool               `json:"connected"`
	Persisted bool               `json:"persisted"`
	Degraded  bool               `json:"degraded"`
	Targets   []TargetResponse   `json:"targets"`
	Warnings  []model.Warning    `json:"warnings"`
}

// NewAttemptResponse strips tokens from a connection result.
func NewAttemptResponse(res model.ConnectResult) AttemptResponse {
	a := res.Attempt
	out := AttemptResponse{
		AttemptID: a.ID,
		Platform:  a.Platform,
		State:     a.State,
		Connected: a.State == model.StateConnected,
		Persisted: res.Persisted,
		Degraded:  res.Degraded(),
		Targets:   make([]TargetResponse, 0, len(a.Targets)),
		Warnings:  a.Warnings,
	}
	if out.Warnings == nil {
		out.Warnings = []model.Warning{}
	}
	for _, t := range a.Targets {
		out.Targets = append(out.Targets, TargetResponse{
			AccountID:   t.ExternalID,
			AccountName: t.DisplayName,
			Username:    t.Username,
			Selected:    t.ExternalID == a.SelectedID,
		})
	}
	return out
}

// AttemptHistoryEntry is one audited attempt.
type AttemptHistoryEntry struct {
	AttemptID  string             `json:"attempt_id"`
	Platform   model.Platform     `json:"platform"`
	State      model.AttemptState `json:"state"`
	Reason     string             `json:"reason,omitempty"`
	SelectedID string             `json:"selected_id,omitempty"`
	Degraded   bool               `json:"degraded"`
	Warnings   []model.Warning    `json:"warnings"`
	StartedAt  time.Time          `json:"started_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func NewAttemptHistoryEntry(a model.Attempt) AttemptHistoryEntry {
	out := AttemptHistoryEntry{
		AttemptID:  a.ID,
		Platform:   a.Platform,
		State:      a.State,
		Reason:     a.Reason,
		SelectedID: a.SelectedID,
		Warnings:   a.Warnings,
		StartedAt:  a.StartedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if out.Warnings == nil {
		out.Warnings = []model.Warning{}
	}
	for _, w := range a.Warnings {
		if w.Code == model.WarningPersistenceDegraded {
			out.Degraded = true
		}
	}
	return out
}

// ConnectionResponse is a connection record without its tokens.
type ConnectionResponse struct {
	Platform    model.Platform `json:"platform"`
	AccountID   string         `json:"account_id"`
	AccountName string         `json:"account_name"`
	Username    *string        `json:"username,omitempty"`
	Status      int            `json:"status"`
	ConnectedAt time.Time      `json:"connected_at"`
}

func NewConnectionResponse(r model.ConnectionRecord) ConnectionResponse {
	return ConnectionResponse{
		Platform:    r.Platform,
		AccountID:   r.AccountID,
		AccountName: r.AccountName,
		Username:    r.Username,
		Status:      r.Status,
		ConnectedAt: r.ConnectedAt,
	}
}
