package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"social-connect/domain/model"
	"social-connect/domain/repository"
	"social-connect/infrastructure/logger"

	"github.com/google/uuid"
)

const (
	keyAppID     = "app_id"
	keyAppSecret = "app_secret"
	keyUserID    = "user_id"
)

func sessionKey(sessionID, name string) string { return sessionID + ":" + name }

func stateKey(p model.Platform) string    { return string(p) + "_oauth_state" }
func attemptKey(p model.Platform) string  { return string(p) + "_attempt" }
func selectedKey(p model.Platform) string { return string(p) + "_selected" }

type IConnectionUsecase interface {
	SaveCredentials(ctx context.Context, sessionID string, creds model.AppCredentials, userID string) error
	// SessionUserID returns the seller id saved with the session credentials.
	SessionUserID(ctx context.Context, sessionID string) (string, error)
	InitiateConnection(ctx context.Context, sessionID string, platform model.Platform) (string, error)
	CompleteConnection(ctx context.Context, sessionID string, platform model.Platform, params model.CallbackParams) (model.ConnectResult, error)
	SelectTarget(ctx context.Context, sessionID string, platform model.Platform, accountID string) (model.ConnectResult, error)
	CurrentAttempt(ctx context.Context, sessionID string, platform model.Platform) (*model.Attempt, error)
	// Disconnect deactivates the record and drops the target from the browser session.
	Disconnect(ctx context.Context, sessionID, userID string, platform model.Platform, accountID string) error
	ListConnections(ctx context.Context, userID string) ([]model.ConnectionRecord, error)
	// RecentAttempts lists finished attempts of a user, newest first.
	RecentAttempts(ctx context.Context, userID string, limit int) ([]model.Attempt, error)
}

// ConnectionSettings carries the deployment-specific parts of the flow.
type ConnectionSettings struct {
	// DialogURL is the authorization dialog, e.g. https://www.facebook.com/v21.0/dialog/oauth.
	DialogURL string
	// CallbackURL returns the redirect URI registered for a platform.
	CallbackURL func(platform string) string
	// DiscoveryConcurrency bounds concurrent page inspections. Zero means unbounded.
	DiscoveryConcurrency int
}

type ConnectionUsecase struct {
	sessions repository.ISessionStore
	graph    repository.IGraphAPI
	store    repository.IConnectionStore
	settings ConnectionSettings

	audit     repository.IAttemptAudit
	events    repository.IConnectionEvents
	broadcast func(evt model.AttemptEvent)

	now      func() time.Time
	newID    func() string
	newState func() (string, error)
}

func NewConnectionUsecase(sessions repository.ISessionStore, graph repository.IGraphAPI, store repository.IConnectionStore, settings ConnectionSettings) *ConnectionUsecase {
	return &ConnectionUsecase{
		sessions: sessions,
		graph:    graph,
		store:    store,
		settings: settings,
		now:      time.Now,
		newID:    uuid.NewString,
		newState: randomState,
	}
}

// WithAudit records every finished attempt.
func (u *ConnectionUsecase) WithAudit(a repository.IAttemptAudit) *ConnectionUsecase {
	u.audit = a
	return u
}

// WithEvents publishes connection changes to downstream workflows.
func (u *ConnectionUsecase) WithEvents(e repository.IConnectionEvents) *ConnectionUsecase {
	u.events = e
	return u
}

// WithBroadcaster streams settled attempts to connected dashboards.
func (u *ConnectionUsecase) WithBroadcaster(fn func(evt model.AttemptEvent)) *ConnectionUsecase {
	u.broadcast = fn
	return u
}

// WithClock replaces the wall clock, used for connected_at and attempt timestamps.
func (u *ConnectionUsecase) WithClock(now func() time.Time) *ConnectionUsecase {
	u.now = now
	return u
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (u *ConnectionUsecase) SaveCredentials(ctx context.Context, sessionID string, creds model.AppCredentials, userID string) error {
	creds.AppID = strings.TrimSpace(creds.AppID)
	creds.AppSecret = strings.TrimSpace(creds.AppSecret)
	userID = strings.TrimSpace(userID)
	if creds.AppID == "" || creds.AppSecret == "" || userID == "" {
		return model.ErrMissingCredentials
	}
	values := map[string]string{
		keyAppID:     creds.AppID,
		keyAppSecret: creds.AppSecret,
		keyUserID:    userID,
	}
	for name, v := range values {
		if err := u.sessions.Set(ctx, sessionKey(sessionID, name), v); err != nil {
			return fmt.Errorf("saving %s: %w", name, err)
		}
	}
	return nil
}

func (u *ConnectionUsecase) SessionUserID(ctx context.Context, sessionID string) (string, error) {
	v, err := u.sessions.Get(ctx, sessionKey(sessionID, keyUserID))
	if err != nil || v == "" {
		return "", model.ErrMissingCredentials
	}
	return v, nil
}

// loadCredentials reads the app credentials and seller id; all three must be present.
func (u *ConnectionUsecase) loadCredentials(ctx context.Context, sessionID string) (model.AppCredentials, string, error) {
	var vals [3]string
	for i, name := range []string{keyAppID, keyAppSecret, keyUserID} {
		v, err := u.sessions.Get(ctx, sessionKey(sessionID, name))
		if err != nil && !errors.Is(err, model.ErrSessionKeyAbsent) {
			return model.AppCredentials{}, "", fmt.Errorf("%w: reading %s: %v", model.ErrMissingCredentials, name, err)
		}
		if v == "" {
			return model.AppCredentials{}, "", fmt.Errorf("%w: %s not set", model.ErrMissingCredentials, name)
		}
		vals[i] = v
	}
	return model.AppCredentials{AppID: vals[0], AppSecret: vals[1]}, vals[2], nil
}

func (u *ConnectionUsecase) InitiateConnection(ctx context.Context, sessionID string, platform model.Platform) (string, error) {
	d, err := Descriptor(platform)
	if err != nil {
		return "", err
	}
	appID, err := u.sessions.Get(ctx, sessionKey(sessionID, keyAppID))
	if err != nil || appID == "" {
		return "", fmt.Errorf("%w: app_id not set", model.ErrMissingCredentials)
	}
	userID, err := u.SessionUserID(ctx, sessionID)
	if err != nil {
		return "", err
	}

	state, err := u.newState()
	if err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	if err := u.sessions.Set(ctx, sessionKey(sessionID, stateKey(platform)), state); err != nil {
		return "", fmt.Errorf("saving state: %w", err)
	}

	attempt := model.NewAttempt(u.newID(), platform, u.now())
	attempt.UserID = userID
	if err := attempt.Advance(model.StateAwaitingRedirect, u.now()); err != nil {
		return "", err
	}
	u.saveAttempt(ctx, sessionID, attempt)

	logger.GetLogger().WithField("platform", platform).WithField("attempt_id", attempt.ID).Info("Connection initiated")
	return d.AuthCodeURL(u.settings.DialogURL, appID, u.settings.CallbackURL(platform.String()), state), nil
}

// CompleteConnection handles the authorization redirect. Failures return the
// failed attempt together with an error carrying its reason.
func (u *ConnectionUsecase) CompleteConnection(ctx context.Context, sessionID string, platform model.Platform, params model.CallbackParams) (model.ConnectResult, error) {
	d, err := Descriptor(platform)
	if err != nil {
		return model.ConnectResult{}, err
	}
	lg := logger.GetLogger().WithField("platform", platform)

	attempt, _ := u.loadAttempt(ctx, sessionID, platform)
	if attempt == nil || attempt.State != model.StateAwaitingRedirect {
		attempt = model.NewAttempt(u.newID(), platform, u.now())
		if uid, err := u.sessions.Get(ctx, sessionKey(sessionID, keyUserID)); err == nil {
			attempt.UserID = uid
		}
	}
	lg = lg.WithField("attempt_id", attempt.ID)
	fail := func(err error) (model.ConnectResult, error) {
		lg.WithField("reason", model.Reason(err)).WithField("error", err.Error()).Error("Connection attempt failed")
		attempt.Fail(err, u.now())
		u.finish(ctx, sessionID, attempt, false)
		return model.ConnectResult{Attempt: attempt}, err
	}
	if err := attempt.Advance(model.StateVerifying, u.now()); err != nil {
		return fail(err)
	}

	if params.Error != "" {
		return fail(fmt.Errorf("%w: %s", model.ErrOAuthDenied, params.Error))
	}
	if params.Code == "" {
		return fail(model.ErrMissingAuthorizationCode)
	}

	// the stored state is consumed whether or not it matches
	stored, err := u.sessions.Take(ctx, sessionKey(sessionID, stateKey(platform)))
	if err != nil || stored == "" || stored != params.State {
		return fail(model.ErrStateMismatch)
	}

	creds, userID, err := u.loadCredentials(ctx, sessionID)
	if err != nil {
		return fail(err)
	}
	attempt.UserID = userID

	if err := attempt.Advance(model.StateExchanging, u.now()); err != nil {
		return fail(err)
	}
	short, err := u.graph.ExchangeCode(ctx, creds, u.settings.CallbackURL(platform.String()), params.Code)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", model.ErrTokenExchangeFailed, err))
	}

	if err := attempt.Advance(model.StateUpgrading, u.now()); err != nil {
		return fail(err)
	}
	env := discoveryEnv{graph: u.graph, creds: creds}
	userToken, w := env.upgrade(ctx, short.AccessToken, "")
	if w != nil {
		attempt.Warn(*w)
	}

	if err := attempt.Advance(model.StateDiscovering, u.now()); err != nil {
		return fail(err)
	}
	targets, warnings, err := d.Discover(ctx, env, userToken, u.settings.DiscoveryConcurrency)
	for _, w := range warnings {
		attempt.Warn(w)
	}
	if err != nil {
		return fail(err)
	}

	if err := attempt.Advance(model.StateSelecting, u.now()); err != nil {
		return fail(err)
	}
	attempt.Targets = targets
	attempt.SelectedID = targets[0].ExternalID
	lg.WithField("targets", len(targets)).Info("Connectable targets discovered")

	if len(targets) > 1 {
		u.saveAttempt(ctx, sessionID, attempt)
		u.notify(attempt, false)
		return model.ConnectResult{Attempt: attempt}, nil
	}
	return u.persistSelection(ctx, sessionID, attempt, creds.AppID)
}

// SelectTarget picks one of the targets discovered by the current attempt and
// persists it. It may be called again after a connection to switch targets.
func (u *ConnectionUsecase) SelectTarget(ctx context.Context, sessionID string, platform model.Platform, accountID string) (model.ConnectResult, error) {
	if _, err := Descriptor(platform); err != nil {
		return model.ConnectResult{}, err
	}
	attempt, err := u.loadAttempt(ctx, sessionID, platform)
	if err != nil {
		return model.ConnectResult{}, err
	}
	if attempt.State != model.StateSelecting && attempt.State != model.StateConnected {
		return model.ConnectResult{Attempt: attempt}, fmt.Errorf("%w: attempt is %s", model.ErrNoActiveAttempt, attempt.State)
	}
	if _, ok := attempt.Target(accountID); !ok {
		return model.ConnectResult{Attempt: attempt}, fmt.Errorf("%w: %s", model.ErrUnknownTarget, accountID)
	}
	appID, err := u.sessions.Get(ctx, sessionKey(sessionID, keyAppID))
	if err != nil || appID == "" {
		return model.ConnectResult{Attempt: attempt}, fmt.Errorf("%w: app_id not set", model.ErrMissingCredentials)
	}

	if attempt.State == model.StateConnected {
		if err := attempt.Advance(model.StateSelecting, u.now()); err != nil {
			return model.ConnectResult{Attempt: attempt}, err
		}
	}
	attempt.SelectedID = accountID
	kept := attempt.Warnings[:0]
	for _, w := range attempt.Warnings {
		if w.Code != model.WarningPersistenceDegraded {
			kept = append(kept, w)
		}
	}
	attempt.Warnings = kept
	return u.persistSelection(ctx, sessionID, attempt, appID)
}

func (u *ConnectionUsecase) persistSelection(ctx context.Context, sessionID string, attempt *model.Attempt, appID string) (model.ConnectResult, error) {
	lg := logger.GetLogger().WithField("platform", attempt.Platform).WithField("attempt_id", attempt.ID)
	target, ok := attempt.Selected()
	if !ok {
		return model.ConnectResult{Attempt: attempt}, model.ErrUnknownTarget
	}
	if err := attempt.Advance(model.StatePersisting, u.now()); err != nil {
		return model.ConnectResult{Attempt: attempt}, err
	}

	rec := model.NewConnectionRecord(attempt.UserID, attempt.Platform, appID, target, u.now())
	if b, err := json.Marshal(target); err == nil {
		if err := u.sessions.Set(ctx, sessionKey(sessionID, selectedKey(attempt.Platform)), string(b)); err != nil {
			lg.WithField("error", err.Error()).Warn("Failed to save selected target in session")
		}
	}

	persisted := true
	if err := u.store.Upsert(ctx, rec); err != nil {
		persisted = false
		err = fmt.Errorf("%w: %v", model.ErrPersistenceFailed, err)
		lg.WithField("account_id", rec.AccountID).WithField("error", err.Error()).Error("Connection record not persisted")
		attempt.Warn(model.Warning{
			Code:     model.WarningPersistenceDegraded,
			Message:  err.Error(),
			TargetID: rec.AccountID,
		})
	}

	if err := attempt.Advance(model.StateConnected, u.now()); err != nil {
		return model.ConnectResult{Attempt: attempt}, err
	}
	lg.WithField("account_id", rec.AccountID).WithField("persisted", persisted).Info("Connection established")

	if persisted && u.events != nil {
		evt := model.ConnectionEvent{
			Type:       model.EventConnected,
			UserID:     rec.UserID,
			Platform:   rec.Platform,
			AccountID:  rec.AccountID,
			OccurredAt: rec.ConnectedAt,
		}
		if err := u.events.Publish(ctx, evt); err != nil {
			lg.WithField("error", err.Error()).Warn("Failed to publish connection event")
		}
	}
	u.finish(ctx, sessionID, attempt, !persisted)
	return model.ConnectResult{Attempt: attempt, Record: &rec, Persisted: persisted}, nil
}

func (u *ConnectionUsecase) CurrentAttempt(ctx context.Context, sessionID string, platform model.Platform) (*model.Attempt, error) {
	if _, err := Descriptor(platform); err != nil {
		return nil, err
	}
	return u.loadAttempt(ctx, sessionID, platform)
}

func (u *ConnectionUsecase) Disconnect(ctx context.Context, sessionID, userID string, platform model.Platform, accountID string) error {
	if _, err := Descriptor(platform); err != nil {
		return err
	}
	if userID == "" {
		return model.ErrMissingCredentials
	}
	if err := u.store.Deactivate(ctx, userID, platform, accountID); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistenceFailed, err)
	}
	logger.GetLogger().WithField("platform", platform).WithField("account_id", accountID).Info("Connection deactivated")
	if sessionID != "" {
		u.forgetTarget(ctx, sessionID, platform, accountID)
	}
	if u.events != nil {
		evt := model.ConnectionEvent{
			Type:       model.EventDisconnected,
			UserID:     userID,
			Platform:   platform,
			AccountID:  accountID,
			OccurredAt: u.now().UTC(),
		}
		if err := u.events.Publish(ctx, evt); err != nil {
			logger.GetLogger().WithField("error", err.Error()).Warn("Failed to publish disconnect event")
		}
	}
	return nil
}

// forgetTarget removes a disconnected target and its tokens from the session.
// A connected attempt falls back to Selecting so another target can be picked.
func (u *ConnectionUsecase) forgetTarget(ctx context.Context, sessionID string, platform model.Platform, accountID string) {
	lg := logger.GetLogger().WithField("platform", platform).WithField("account_id", accountID)
	sk := sessionKey(sessionID, selectedKey(platform))
	if raw, err := u.sessions.Get(ctx, sk); err == nil {
		var selected model.ConnectableTarget
		if json.Unmarshal([]byte(raw), &selected) != nil || selected.ExternalID == accountID {
			if err := u.sessions.Delete(ctx, sk); err != nil {
				lg.WithField("error", err.Error()).Warn("Failed to clear selected target")
			}
		}
	}

	attempt, err := u.loadAttempt(ctx, sessionID, platform)
	if err != nil {
		return
	}
	if _, ok := attempt.Target(accountID); !ok {
		return
	}
	kept := make([]model.ConnectableTarget, 0, len(attempt.Targets))
	for _, t := range attempt.Targets {
		if t.ExternalID != accountID {
			kept = append(kept, t)
		}
	}
	attempt.Targets = kept
	if attempt.SelectedID == accountID {
		attempt.SelectedID = ""
		if attempt.State == model.StateConnected {
			if err := attempt.Advance(model.StateSelecting, u.now()); err != nil {
				lg.WithField("error", err.Error()).Warn("Cannot reopen attempt after disconnect")
			}
		}
	}
	u.saveAttempt(ctx, sessionID, attempt)
}

func (u *ConnectionUsecase) ListConnections(ctx context.Context, userID string) ([]model.ConnectionRecord, error) {
	if userID == "" {
		return nil, model.ErrMissingCredentials
	}
	return u.store.List(ctx, userID)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func (u *ConnectionUsecase) RecentAttempts(ctx context.Context, userID string, limit int) ([]model.Attempt, error) {
	if userID == "" {
		return nil, model.ErrMissingCredentials
	}
	history, ok := u.audit.(repository.IAttemptHistory)
	if !ok {
		return []model.Attempt{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	attempts, err := history.Recent(ctx, userID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPersistenceFailed, err)
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, nil
}

func (u *ConnectionUsecase) loadAttempt(ctx context.Context, sessionID string, platform model.Platform) (*model.Attempt, error) {
	raw, err := u.sessions.Get(ctx, sessionKey(sessionID, attemptKey(platform)))
	if err != nil || raw == "" {
		return nil, model.ErrNoActiveAttempt
	}
	var a model.Attempt
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNoActiveAttempt, err)
	}
	return &a, nil
}

func (u *ConnectionUsecase) saveAttempt(ctx context.Context, sessionID string, attempt *model.Attempt) {
	b, err := json.Marshal(attempt)
	if err != nil {
		return
	}
	if err := u.sessions.Set(ctx, sessionKey(sessionID, attemptKey(attempt.Platform)), string(b)); err != nil {
		logger.GetLogger().WithField("attempt_id", attempt.ID).WithField("error", err.Error()).Warn("Failed to save attempt in session")
	}
}

// finish stores a settled attempt and fans it out. Audit and broadcast are best effort.
func (u *ConnectionUsecase) finish(ctx context.Context, sessionID string, attempt *model.Attempt, degraded bool) {
	u.saveAttempt(ctx, sessionID, attempt)
	if u.audit != nil && attempt.State.Terminal() {
		if err := u.audit.Record(ctx, attempt); err != nil {
			logger.GetLogger().WithField("attempt_id", attempt.ID).WithField("error", err.Error()).Warn("Failed to audit attempt")
		}
	}
	u.notify(attempt, degraded)
}

func (u *ConnectionUsecase) notify(attempt *model.Attempt, degraded bool) {
	if u.broadcast == nil || attempt.UserID == "" {
		return
	}
	u.broadcast(model.AttemptEvent{
		Type:      "attempt." + string(attempt.State),
		AttemptID: attempt.ID,
		UserID:    attempt.UserID,
		Platform:  attempt.Platform,
		State:     attempt.State,
		Reason:    attempt.Reason,
		Degraded:  degraded,
		Warnings:  attempt.Warnings,
	})
}
