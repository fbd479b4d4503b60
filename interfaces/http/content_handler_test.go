package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"social-connect/domain/model"
	handler "social-connect/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockContentUsecase struct {
	mock.Mock
}

func (m *MockContentUsecase) ListPosts(ctx context.Context, userID string, month string) ([]model.SocialPost, error) {
	args := m.Called(ctx, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SocialPost), args.Error(1)
}

func (m *MockContentUsecase) UpdatePost(ctx context.Context, userID string, edit model.PostEdit) (model.SocialPost, error) {
	args := m.Called(ctx, userID, edit)
	return args.Get(0).(model.SocialPost), args.Error(1)
}

func (m *MockContentUsecase) GetBrandProfile(ctx context.Context, userID string) (model.BrandProfile, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.BrandProfile), args.Bool(1), args.Error(2)
}

func (m *MockContentUsecase) SaveBrandProfile(ctx context.Context, userID string, profile model.BrandProfile) (bool, error) {
	args := m.Called(ctx, userID, profile)
	return args.Bool(0), args.Error(1)
}

func (m *MockContentUsecase) GetPostingPreference(ctx context.Context, userID string) (model.PostingPreference, bool, model.PlanPermissions, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.PostingPreference), args.Bool(1), args.Get(2).(model.PlanPermissions), args.Error(3)
}

func (m *MockContentUsecase) SavePostingPreference(ctx context.Context, userID string, pref model.PostingPreference) (bool, error) {
	args := m.Called(ctx, userID, pref)
	return args.Bool(0), args.Error(1)
}

func contentRouter(uc *MockContentUsecase, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
	})
	h := handler.NewContentHandler(uc)
	r.GET("/api/posts", h.ListPosts)
	r.PUT("/api/posts/:id", h.UpdatePost)
	r.GET("/api/brand-profile", h.GetBrandProfile)
	r.PUT("/api/brand-profile", h.SaveBrandProfile)
	r.GET("/api/posting-preferences", h.GetPostingPreference)
	r.PUT("/api/posting-preferences", h.SavePostingPreference)
	return r
}

func send(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestContentHandler_ListPosts(t *testing.T) {
	uc := new(MockContentUsecase)
	uc.On("ListPosts", mock.Anything, "42", "2026-02").Return([]model.SocialPost{{ID: 1, Caption: "Hello", Date: "2026-02-02"}}, nil)
	uc.On("ListPosts", mock.Anything, "42", "feb").Return(nil, fmt.Errorf("%w: month", model.ErrInvalidContent))
	uc.On("ListPosts", mock.Anything, "4", "").Return(nil, fmt.Errorf("%w: Restricted Plan", model.ErrPlanRestricted))

	w := send(contentRouter(uc, "42"), http.MethodGet, "/api/posts?month=2026-02", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"caption":"Hello"`)

	w = send(contentRouter(uc, "42"), http.MethodGet, "/api/posts?month=feb", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_content")

	w = send(contentRouter(uc, "4"), http.MethodGet, "/api/posts", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "plan_restricted")

	w = send(contentRouter(uc, ""), http.MethodGet, "/api/posts", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	uc.AssertNumberOfCalls(t, "ListPosts", 3)
}

func TestContentHandler_UpdatePost(t *testing.T) {
	uc := new(MockContentUsecase)
	uc.On("UpdatePost", mock.Anything, "42", model.PostEdit{ID: 5, Caption: "New", Status: "approved"}).
		Return(model.SocialPost{ID: 5, Caption: "New", Status: "approved"}, nil)
	uc.On("UpdatePost", mock.Anything, "42", model.PostEdit{ID: 6, Caption: "New", Status: "approved"}).
		Return(model.SocialPost{}, fmt.Errorf("%w: 6", model.ErrPostNotFound))
	r := contentRouter(uc, "42")

	w := send(r, http.MethodPut, "/api/posts/5", `{"caption":"New","status":"approved"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"approved"`)

	w = send(r, http.MethodPut, "/api/posts/6", `{"caption":"New","status":"approved"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "post_not_found")

	w = send(r, http.MethodPut, "/api/posts/abc", `{"caption":"New","status":"approved"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPut, "/api/posts/5", `{"status":"approved"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNumberOfCalls(t, "UpdatePost", 2)
}

func TestContentHandler_BrandProfile(t *testing.T) {
	uc := new(MockContentUsecase)
	uc.On("GetBrandProfile", mock.Anything, "42").Return(model.BrandProfile{UserID: 42}, false, nil)
	uc.On("SaveBrandProfile", mock.Anything, "42", model.BrandProfile{Tone: "Bold", Voice: "Warm", Description: "Shoes"}).Return(true, nil)
	r := contentRouter(uc, "42")

	w := send(r, http.MethodGet, "/api/brand-profile", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":false`)
	assert.Contains(t, w.Body.String(), `"Luxurious"`)

	w = send(r, http.MethodPut, "/api/brand-profile", `{"tone":"Bold","voice":"Warm","description":"Shoes"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"saved":true,"created":true}`, w.Body.String())

	w = send(r, http.MethodPut, "/api/brand-profile", `{"tone":"Bold"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNumberOfCalls(t, "SaveBrandProfile", 1)
}

func TestContentHandler_PostingPreference(t *testing.T) {
	uc := new(MockContentUsecase)
	uc.On("GetPostingPreference", mock.Anything, "42").
		Return(model.PostingPreference{UserID: 42, PostingDays: "Monday,Friday", PostingTime: "09:30:00", Consent: 1}, true, model.PermissionsFor(7), nil)
	uc.On("SavePostingPreference", mock.Anything, "42", model.PostingPreference{
		PostingDays: "Monday,Friday", PostingTime: "09:30:00", ManualReview: 1, NotificationDays: "Sunday", Consent: 1,
	}).Return(false, nil)
	uc.On("SavePostingPreference", mock.Anything, "42", mock.Anything).Return(false, fmt.Errorf("%w: plan allows 3 posting days", model.ErrInvalidContent))
	r := contentRouter(uc, "42")

	w := send(r, http.MethodGet, "/api/posting-preferences", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"posting_days":["Monday","Friday"]`)
	assert.Contains(t, w.Body.String(), `"max_posting_days":3`)

	w = send(r, http.MethodPut, "/api/posting-preferences",
		`{"posting_days":["Monday","Friday"],"posting_time":"09:30:00","manual_review":true,"notification_days":"Sunday","consent":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"saved":true,"created":false}`, w.Body.String())

	w = send(r, http.MethodPut, "/api/posting-preferences",
		`{"posting_days":["Monday","Tuesday","Wednesday","Thursday"],"consent":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "plan allows 3 posting days")

	w = send(r, http.MethodPut, "/api/posting-preferences", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
