package http

import (
	"net/http"
	"strconv"
	"strings"

	"social-connect/domain/dto"
	"social-connect/domain/model"
	"social-connect/usecase"

	"github.com/gin-gonic/gin"
)

type IContentHandler interface {
	ListPosts(c *gin.Context)
	UpdatePost(c *gin.Context)
	GetBrandProfile(c *gin.Context)
	SaveBrandProfile(c *gin.Context)
	GetPostingPreference(c *gin.Context)
	SavePostingPreference(c *gin.Context)
}

type contentHandler struct {
	uc usecase.IContentUsecase
}

func NewContentHandler(uc usecase.IContentUsecase) IContentHandler {
	return &contentHandler{uc: uc}
}

func sellerID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": model.Reason(model.ErrMissingCredentials)})
		return "", false
	}
	return userID, true
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": model.Reason(err), "message": err.Error()})
}

// ListPosts serves the post calendar. ?month=2006-01 narrows it to one month.
func (h *contentHandler) ListPosts(c *gin.Context) {
	userID, ok := sellerID(c)
	if !ok {
		return
	}
	posts, err := h.uc.ListPosts(c.Request.Context(), userID, c.Query("month"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *contentHandler) UpdatePost(c *gin.Context) {
	userID, ok := sellerID(c)
	if !ok {
		return
	}
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": model.Reason(model.ErrInvalidContent)})
		return
	}
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": model.Reason(model.ErrInvalidContent), "message": "caption and status are required"})
		return
	}
	post, err := h.uc.UpdatePost(c.Request.Context(), userID, model.PostEdit{ID: postID, Caption: req.Caption, Status: req.Status})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *contentHandler) GetBrandProfile(c *gin.Context) {
	userID, ok := sellerID(c)
	if !ok {
		return
	}
	profile, exists, err := h.uc.GetBrandProfile(c.Request.Context(), userID)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"exists":  exists,
		"tones":   model.BrandTones,
		"voices":  model.BrandVoices,
	})
}

func (h *contentHandler) SaveBrandProfile(c *gin.Context) {
	userID, ok := sellerID(c)
	if !ok {
		return
	}
	var req dto.BrandProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": model.Reason(model.ErrInvalidContent), "message": "tone, voice and description are required"})
		return
	}
	created, err := h.uc.SaveBrandProfile(c.Request.Context(), userID, model.BrandProfile{
		Tone:        req.Tone,
		Voice:       req.Voice,
		Description: req.Description,
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "created": created})
}

func (h *contentHandler) GetPostingPreference(c *gin.Context) {
	userID, ok := sellerID(c)
	if !ok {
		return
	}
	pref, exists, perms, err := h.uc.GetPostingPreference(c.Request.Context(), userID)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preference":       pref,
		"posting_days":     pref.Days(),
		"exists":           exists,
		"max_posting_days": perms.MaxPostingDays,
	})
}

func (h *contentHandler) SavePostingPreference(c *gin.Context) {
	userID, ok := sellerID(c)
	if !ok {
		return
	}
	var req dto.PostingPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": model.Reason(model.ErrInvalidContent)})
		return
	}
	pref := model.PostingPreference{
		PostingDays:      strings.Join(req.PostingDays, ","),
		PostingTime:      req.PostingTime,
		NotificationDays: req.NotificationDays,
	}
	if req.ManualReview {
		pref.ManualReview = 1
	}
	if req.Consent {
		pref.Consent = 1
	}
	created, err := h.uc.SavePostingPreference(c.Request.Context(), userID, pref)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "created": created})
}
