package model

import (
	"fmt"
	"time"
)

// AttemptState is a step of one connection attempt.
type AttemptState string

const (
	StateIdle             AttemptState = "idle"
	StateAwaitingRedirect AttemptState = "awaiting_redirect"
	StateVerifying        AttemptState = "verifying"
	StateExchanging       AttemptState = "exchanging"
	StateUpgrading        AttemptState = "upgrading"
	StateDiscovering      AttemptState = "discovering"
	StateSelecting        AttemptState = "selecting"
	StatePersisting       AttemptState = "persisting"
	StateConnected        AttemptState = "connected"
	StateFailed           AttemptState = "failed"
)

// Connected re-enters Selecting when the seller picks another discovered target.
var transitions = map[AttemptState][]AttemptState{
	StateIdle:             {StateAwaitingRedirect, StateVerifying},
	StateAwaitingRedirect: {StateVerifying},
	StateVerifying:        {StateExchanging},
	StateExchanging:       {StateUpgrading},
	StateUpgrading:        {StateDiscovering},
	StateDiscovering:      {StateSelecting},
	StateSelecting:        {StatePersisting},
	StatePersisting:       {StateConnected, StateSelecting},
	StateConnected:        {StateSelecting},
}

// Terminal reports whether the attempt has finished.
func (s AttemptState) Terminal() bool { return s == StateConnected || s == StateFailed }

// Warning is a recovered failure attached to an otherwise successful outcome.
type Warning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	TargetID string `json:"target_id,omitempty"`
}

const (
	WarningLongLivedUpgradeFailed = "long_lived_upgrade_failed"
	WarningPageInspectionFailed   = "page_inspection_failed"
	WarningPersistenceDegraded    = "persistence_degraded"
)

// Attempt tracks one connection attempt from initiation to a terminal state.
type Attempt struct {
	ID         string              `json:"id"`
	Platform   Platform            `json:"platform"`
	UserID     string              `json:"user_id"`
	State      AttemptState        `json:"state"`
	Reason     string              `json:"reason,omitempty"`
	Trail      []AttemptState      `json:"trail"`
	Targets    []ConnectableTarget `json:"targets,omitempty"`
	SelectedID string              `json:"selected_id,omitempty"`
	Warnings   []Warning           `json:"warnings,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// NewAttempt starts a fresh attempt in Idle.
func NewAttempt(id string, platform Platform, now time.Time) *Attempt {
	return &Attempt{
		ID:        id,
		Platform:  platform,
		State:     StateIdle,
		Trail:     []AttemptState{StateIdle},
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves the attempt to the next state, rejecting illegal transitions.
func (a *Attempt) Advance(to AttemptState, now time.Time) error {
	for _, allowed := range transitions[a.State] {
		if allowed == to {
			a.State = to
			a.Trail = append(a.Trail, to)
			a.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("illegal attempt transition %s -> %s", a.State, to)
}

// Fail records the terminal failure. Connected attempts cannot fail.
func (a *Attempt) Fail(err error, now time.Time) {
	if a.State.Terminal() {
		return
	}
	a.State = StateFailed
	a.Reason = Reason(err)
	a.Trail = append(a.Trail, StateFailed)
	a.UpdatedAt = now
}

// Warn appends a recovered failure.
func (a *Attempt) Warn(w Warning) { a.Warnings = append(a.Warnings, w) }

// Target looks up a discovered target by its external id.
func (a *Attempt) Target(externalID string) (ConnectableTarget, bool) {
	for _, t := range a.Targets {
		if t.ExternalID == externalID {
			return t, true
		}
	}
	return ConnectableTarget{}, false
}

// Selected returns the currently selected target, if any.
func (a *Attempt) Selected() (ConnectableTarget, bool) {
	if a.SelectedID == "" {
		return ConnectableTarget{}, false
	}
	return a.Target(a.SelectedID)
}

// ConnectResult is the outcome handed back to callers of the connection manager.
type ConnectResult struct {
	Attempt   *Attempt
	Record    *ConnectionRecord
	Persisted bool
}

// Degraded reports whether the connection stands but the durable record did not land.
func (r ConnectResult) Degraded() bool {
	return r.Attempt != nil && r.Attempt.State == StateConnected && !r.Persisted
}

// CallbackParams are the values the authorization server echoes back.
type CallbackParams struct {
	Code  string
	State string
	Error string
}

// AttemptEvent is streamed to the dashboard whenever an attempt settles.
type AttemptEvent struct {
	Type      string       `json:"type"`
	AttemptID string       `json:"attempt_id"`
	UserID    string       `json:"-"`
	Platform  Platform     `json:"platform"`
	State     AttemptState `json:"state"`
	Reason    string       `json:"reason,omitempty"`
	Degraded  bool         `json:"degraded"`
	Warnings  []Warning    `json:"warnings,omitempty"`
}
