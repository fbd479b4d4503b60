package usecase

import (
	"context"
	"fmt"
	"strings"

	"social-connect/domain/model"
	"social-connect/domain/repository"
	"social-connect/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// discoverFunc inspects one page and returns the target it yields, if any.
// Recovered failures are returned as warnings.
type discoverFunc func(ctx context.Context, env discoveryEnv, page model.Page) (*model.ConnectableTarget, []model.Warning)

// PlatformDescriptor is everything that differs between the connectable platforms.
type PlatformDescriptor struct {
	Platform model.Platform
	Scope    string
	discover discoverFunc
}

var descriptors = map[model.Platform]PlatformDescriptor{
	model.PlatformFacebook: {
		Platform: model.PlatformFacebook,
		Scope:    "pages_show_list,pages_manage_posts,pages_read_engagement",
		discover: discoverFacebookPage,
	},
	model.PlatformInstagram: {
		Platform: model.PlatformInstagram,
		Scope:    "instagram_basic,pages_show_list",
		discover: discoverInstagramAccount,
	},
}

// Descriptor returns the descriptor of a known platform.
func Descriptor(p model.Platform) (PlatformDescriptor, error) {
	d, ok := descriptors[p]
	if !ok {
		return PlatformDescriptor{}, model.ErrInvalidPlatform
	}
	return d, nil
}

// AuthCodeURL builds the authorization dialog URL for this platform.
func (d PlatformDescriptor) AuthCodeURL(dialogURL, appID, redirectURI, state string) string {
	conf := oauth2.Config{
		ClientID:    appID,
		RedirectURL: redirectURI,
		// Facebook expects one comma-separated scope parameter.
		Scopes:   []string{d.Scope},
		Endpoint: oauth2.Endpoint{AuthURL: dialogURL},
	}
	return conf.AuthCodeURL(state)
}

type discoveryEnv struct {
	graph repository.IGraphAPI
	creds model.AppCredentials
}

// upgrade swaps a token for a long-lived one. On failure the original token is
// kept and a warning describes the degradation.
func (e discoveryEnv) upgrade(ctx context.Context, token, targetID string) (string, *model.Warning) {
	tok, err := e.graph.ExchangeLongLived(ctx, e.creds, token)
	if err != nil {
		logger.GetLogger().WithField("target_id", targetID).WithField("error", err.Error()).Warn("Long-lived token upgrade failed, keeping short-lived token")
		return token, &model.Warning{
			Code:     model.WarningLongLivedUpgradeFailed,
			Message:  err.Error(),
			TargetID: targetID,
		}
	}
	return tok.AccessToken, nil
}

func discoverFacebookPage(ctx context.Context, env discoveryEnv, page model.Page) (*model.ConnectableTarget, []model.Warning) {
	var warnings []model.Warning
	long, w := env.upgrade(ctx, page.AccessToken, page.ID)
	if w != nil {
		warnings = append(warnings, *w)
	}
	return &model.ConnectableTarget{
		ExternalID:      page.ID,
		DisplayName:     page.Name,
		ShortLivedToken: page.AccessToken,
		LongLivedToken:  long,
	}, warnings
}

func discoverInstagramAccount(ctx context.Context, env discoveryEnv, page model.Page) (*model.ConnectableTarget, []model.Warning) {
	var warnings []model.Warning
	long, w := env.upgrade(ctx, page.AccessToken, page.ID)
	if w != nil {
		warnings = append(warnings, *w)
	}
	skip := func(err error) (*model.ConnectableTarget, []model.Warning) {
		logger.GetLogger().WithField("page_id", page.ID).WithField("error", err.Error()).Info("Skipping page during Instagram discovery")
		return nil, append(warnings, model.Warning{
			Code:     model.WarningPageInspectionFailed,
			Message:  err.Error(),
			TargetID: page.ID,
		})
	}

	igID, err := env.graph.LinkedInstagramAccountID(ctx, page.ID, long)
	if err != nil {
		return skip(err)
	}
	if igID == "" {
		return nil, warnings
	}
	acc, err := env.graph.GetInstagramAccount(ctx, igID, long)
	if err != nil {
		return skip(err)
	}
	name := acc.Name
	if strings.TrimSpace(name) == "" {
		name = page.Name
	}
	username := acc.Username
	if strings.TrimSpace(username) == "" {
		username = "Unknown"
	}
	return &model.ConnectableTarget{
		ExternalID:      igID,
		DisplayName:     name,
		Username:        username,
		ShortLivedToken: page.AccessToken,
		LongLivedToken:  long,
	}, warnings
}

// Discover lists the user's pages and inspects them concurrently. Results keep
// the order of the page list; every goroutine writes only its own slot.
func (d PlatformDescriptor) Discover(ctx context.Context, env discoveryEnv, userToken string, limit int) ([]model.ConnectableTarget, []model.Warning, error) {
	pages, err := env.graph.ListPages(ctx, userToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: listing pages: %v", model.ErrNoConnectableTargets, err)
	}
	if len(pages) == 0 {
		return nil, nil, fmt.Errorf("%w: no %s pages available", model.ErrNoConnectableTargets, d.Platform)
	}

	found := make([]*model.ConnectableTarget, len(pages))
	warned := make([][]model.Warning, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, page := range pages {
		g.Go(func() error {
			found[i], warned[i] = d.discover(gctx, env, page)
			return nil
		})
	}
	_ = g.Wait()

	var targets []model.ConnectableTarget
	var warnings []model.Warning
	for i := range pages {
		warnings = append(warnings, warned[i]...)
		if found[i] != nil {
			targets = append(targets, *found[i])
		}
	}
	if len(targets) == 0 {
		return nil, warnings, fmt.Errorf("%w: no %s accounts linked to %d pages", model.ErrNoConnectableTargets, d.Platform, len(pages))
	}
	return targets, warnings, nil
}
