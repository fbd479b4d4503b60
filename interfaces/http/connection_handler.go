package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"social-connect/domain/dto"
	"social-connect/domain/model"
	"social-connect/infrastructure/logger"
	"social-connect/interfaces/middleware"
	"social-connect/usecase"

	"github.com/gin-gonic/gin"
)

type IConnectionHandler interface {
	SaveCredentials(c *gin.Context)
	Connect(c *gin.Context)
	Callback(c *gin.Context)
	Attempt(c *gin.Context)
	Select(c *gin.Context)
	Disconnect(c *gin.Context)
	List(c *gin.Context)
	History(c *gin.Context)
}

type connectionHandler struct {
	uc           usecase.IConnectionUsecase
	dashboardURL string
}

func NewConnectionHandler(uc usecase.IConnectionUsecase, dashboardURL string) IConnectionHandler {
	return &connectionHandler{uc: uc, dashboardURL: dashboardURL}
}

// statusFor maps failure reasons to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidPlatform),
		errors.Is(err, model.ErrOAuthDenied),
		errors.Is(err, model.ErrMissingAuthorizationCode),
		errors.Is(err, model.ErrStateMismatch),
		errors.Is(err, model.ErrMissingCredentials),
		errors.Is(err, model.ErrUnknownTarget),
		errors.Is(err, model.ErrInvalidContent):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrPlanRestricted):
		return http.StatusForbidden
	case errors.Is(err, model.ErrPostNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNoActiveAttempt):
		return http.StatusConflict
	case errors.Is(err, model.ErrNoConnectableTargets):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrTokenExchangeFailed),
		errors.Is(err, model.ErrPersistenceFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func platformParam(c *gin.Context) (model.Platform, bool) {
	p, err := model.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": model.Reason(err)})
		return "", false
	}
	return p, true
}

func (h *connectionHandler) SaveCredentials(c *gin.Context) {
	var req dto.SaveCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	// an authenticated seller cannot save credentials for someone else
	userID := req.UserID
	if uid := c.GetString("user_id"); uid != "" {
		if userID != "" && userID != uid {
			c.JSON(http.StatusForbidden, gin.H{"error": "user_id does not match token"})
			return
		}
		userID = uid
	}
	err := h.uc.SaveCredentials(c.Request.Context(), middleware.SessionID(c),
		model.AppCredentials{AppID: req.AppID, AppSecret: req.AppSecret}, userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": model.Reason(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// Connect starts an attempt and sends the browser to the authorization dialog.
// With ?mode=json the URL is returned instead.
func (h *connectionHandler) Connect(c *gin.Context) {
	p, ok := platformParam(c)
	if !ok {
		return
	}
	authURL, err := h.uc.InitiateConnection(c.Request.Context(), middleware.SessionID(c), p)
	if err != nil {
		logger.GetLogger().WithField("platform", p).WithField("error", err.Error()).Warn("Cannot initiate connection")
		c.JSON(statusFor(err), gin.H{"error": model.Reason(err)})
		return
	}
	if c.Query("mode") == "json" {
		c.JSON(http.StatusOK, gin.H{"auth_url": authURL})
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

func (h *connectionHandler) Callback(c *gin.Context) {
	p, ok := platformParam(c)
	if !ok {
		return
	}
	var q dto.CallbackQuery
	_ = c.ShouldBindQuery(&q)

	res, err := h.uc.CompleteConnection(c.Request.Context(), middleware.SessionID(c), p, model.CallbackParams{
		Code:  q.Code,
		State: q.State,
		Error: q.Error,
	})
	if h.toDashboard(c, q) {
		c.Redirect(http.StatusFound, h.dashboardRedirect(p, res, err))
		return
	}
	if err != nil {
		body := gin.H{"error": model.Reason(err)}
		if q.ErrorDescription != "" {
			body["error_description"] = q.ErrorDescription
		}
		if res.Attempt != nil {
			body["attempt"] = dto.NewAttemptResponse(res)
		}
		c.JSON(statusFor(err), body)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptResponse(res))
}

// toDashboard sends browser navigations back to the dashboard when one is
// configured. API clients asking for JSON get the attempt body.
func (h *connectionHandler) toDashboard(c *gin.Context, q dto.CallbackQuery) bool {
	if h.dashboardURL == "" {
		return false
	}
	return q.Frontend == "1" || c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

func (h *connectionHandler) dashboardRedirect(p model.Platform, res model.ConnectResult, err error) string {
	q := url.Values{}
	q.Set("platform", p.String())
	switch {
	case err != nil:
		q.Set("status", "failed")
		q.Set("reason", model.Reason(err))
	case res.Attempt.State == model.StateSelecting:
		q.Set("status", "selecting")
	default:
		q.Set("status", "connected")
		if res.Degraded() {
			q.Set("degraded", "1")
		}
	}
	sep := "?"
	if strings.Contains(h.dashboardURL, "?") {
		sep = "&"
	}
	return h.dashboardURL + sep + q.Encode()
}

func (h *connectionHandler) Attempt(c *gin.Context) {
	p, ok := platformParam(c)
	if !ok {
		return
	}
	a, err := h.uc.CurrentAttempt(c.Request.Context(), middleware.SessionID(c), p)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": model.Reason(err)})
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptResponse(model.ConnectResult{Attempt: a}))
}

func (h *connectionHandler) Select(c *gin.Context) {
	p, ok := platformParam(c)
	if !ok {
		return
	}
	var req dto.SelectTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}
	res, err := h.uc.SelectTarget(c.Request.Context(), middleware.SessionID(c), p, req.AccountID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": model.Reason(err)})
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptResponse(res))
}

func (h *connectionHandler) Disconnect(c *gin.Context) {
	p, ok := platformParam(c)
	if !ok {
		return
	}
	var req dto.DisconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": model.Reason(model.ErrMissingCredentials)})
		return
	}
	if err := h.uc.Disconnect(c.Request.Context(), middleware.SessionID(c), userID, p, req.AccountID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": model.Reason(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disconnected": true})
}

func (h *connectionHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": model.Reason(model.ErrMissingCredentials)})
		return
	}
	records, err := h.uc.ListConnections(c.Request.Context(), userID)
	if err != nil {
		logger.GetLogger().WithField("error", err.Error()).Error("Failed to list connections")
		c.JSON(http.StatusBadGateway, gin.H{"error": "connection store unavailable"})
		return
	}
	out := make([]dto.ConnectionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.NewConnectionResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"connections": out,
		"connected":   model.ConnectedPlatforms(records),
	})
}

// History lists the audited attempts of the seller. Empty when no audit log is configured.
func (h *connectionHandler) History(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": model.Reason(model.ErrMissingCredentials)})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	attempts, err := h.uc.RecentAttempts(c.Request.Context(), userID, limit)
	if err != nil {
		logger.GetLogger().WithField("error", err.Error()).Error("Failed to read attempt history")
		c.JSON(statusFor(err), gin.H{"error": model.Reason(err)})
		return
	}
	out := make([]dto.AttemptHistoryEntry, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, dto.NewAttemptHistoryEntry(a))
	}
	c.JSON(http.StatusOK, gin.H{"attempts": out})
}
