package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-connect/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paths = Paths{
	Upsert:           "/webhook/insert-update",
	Status:           "/webhook/update-status",
	Search:           "/webhook/search",
	SellerPackage:    "/webhook/seller-package",
	Posts:            "/webhook/get-social-posts",
	PostUpdate:       "/webhook/update-social-post",
	BrandSearch:      "/webhook/search-brand-profile",
	BrandInsert:      "/webhook/insert-brand-profile",
	BrandUpdate:      "/webhook/update-brand-profile",
	PreferenceSearch: "/webhook/search-post-preference",
	PreferenceInsert: "/webhook/insert-post-preference",
	PreferenceUpdate: "/webhook/update-post-preference",
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret-key", paths, srv.Client())
}

func readJSON(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestUpsert(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/webhook/insert-update", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("Auth"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body := readJSON(t, r)
		assert.Equal(t, float64(42), body["user_id"])
		assert.Equal(t, "instagram", body["platform"])
		assert.Equal(t, "ig-2", body["account_id"])
		assert.Equal(t, "shop_ig", body["username"])
		assert.Equal(t, "60 days", body["expires_in"])
		assert.Equal(t, "2026-01-01T10:00:00Z", body["connected_at"])
		assert.Equal(t, float64(1), body["status"])
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rec := model.NewConnectionRecord("42", model.PlatformInstagram, "app-1",
		model.ConnectableTarget{ExternalID: "ig-2", DisplayName: "Shop", Username: "shop_ig", ShortLivedToken: "pt", LongLivedToken: "lt"},
		time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, c.Upsert(context.Background(), rec))
}

func TestUpsert_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := c.Upsert(context.Background(), model.ConnectionRecord{UserID: "42", Platform: model.PlatformFacebook})
	require.Error(t, err)
}

func TestDeactivate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/update-status", r.URL.Path)
		body := readJSON(t, r)
		assert.Equal(t, "user-abc", body["user_id"])
		assert.Equal(t, "facebook", body["platform"])
		assert.Equal(t, "p1", body["account_id"])
		assert.Equal(t, float64(0), body["status"])
	})
	require.NoError(t, c.Deactivate(context.Background(), "user-abc", model.PlatformFacebook, "p1"))
}

func TestList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/search", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":1,"user_id":42,"platform":"facebook","account_id":"p1","account_name":"Page 1","status":1,"connected_at":"2026-01-01T10:00:00Z"},
			{"id":2,"user_id":42,"platform":"instagram","account_id":"ig-2","account_name":"Shop","username":"shop_ig","status":0},
			{"id":3,"user_id":42,"platform":"tiktok","account_id":"t1","status":1}
		]`))
	})

	records, err := c.List(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.PlatformFacebook, records[0].Platform)
	assert.True(t, records[0].Active())
	assert.Equal(t, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), records[0].ConnectedAt)
	assert.False(t, records[1].Active())
	assert.Equal(t, map[model.Platform]bool{model.PlatformFacebook: true, model.PlatformInstagram: false}, model.ConnectedPlatforms(records))
}

func TestList_SingleObjectAndEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"platform":"facebook","account_id":"p1","status":1}`))
	})
	records, err := c.List(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, records, 1)

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	records, err = empty.List(context.Background(), "42")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetSellerPackage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/seller-package", r.URL.Path)
		_, _ = w.Write([]byte(`[{"user_id":7,"seller_package_id":4},{"user_id":42,"seller_package_id":8}]`))
	})

	pkg, err := c.GetSellerPackage(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, 8, pkg.SellerPackageID)

	pkg, err = c.GetSellerPackage(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, pkg)
}

func TestUserIDValue(t *testing.T) {
	assert.Equal(t, int64(42), userIDValue("42"))
	assert.Equal(t, "seller-a", userIDValue("seller-a"))
}
