package server

import (
	"context"
	"time"

	"social-connect/infrastructure/configuration"
	"social-connect/infrastructure/realtime"
	httpHandler "social-connect/interfaces/http"
	"social-connect/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	connectionHandler httpHandler.IConnectionHandler,
	sellerPackageHandler httpHandler.ISellerPackageHandler,
	contentHandler httpHandler.IContentHandler,
	healthHandler httpHandler.IHealthHandler,
	hub *realtime.Hub,
	sessionUser func(ctx context.Context, sessionID string) (string, error),
) *gin.Engine {
	app := configuration.C.App
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     configuration.C.Cors.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Healthz)

	session := middleware.Session(configuration.C.SessionTTL(), configuration.C.OAuth.CookieSecure)
	auth := middleware.OptionalAuth(app.SecretKey)

	// browser redirects, no bearer token on these
	router.GET("/connect/:platform", session, connectionHandler.Connect)
	router.GET("/oauth-callback/:platform", session, connectionHandler.Callback)

	api := router.Group("api")
	api.Use(session, auth, middleware.SessionUser(sessionUser))

	// scoped to the browser session's own attempt
	api.POST("/credentials", connectionHandler.SaveCredentials)
	api.GET("/connections/:platform/attempt", connectionHandler.Attempt)
	api.POST("/connections/:platform/select", connectionHandler.Select)

	// account-wide data needs a token user once a secret key is configured
	account := api.Group("")
	account.Use(middleware.RequireToken(app.SecretKey))
	account.GET("/connections", connectionHandler.List)
	account.GET("/connections/stream", hub.Serve)
	account.GET("/connections/attempts", connectionHandler.History)
	account.POST("/connections/:platform/disconnect", connectionHandler.Disconnect)
	if sellerPackageHandler != nil {
		account.GET("/seller-package", sellerPackageHandler.Get)
	}
	if contentHandler != nil {
		account.GET("/posts", contentHandler.ListPosts)
		account.PUT("/posts/:id", contentHandler.UpdatePost)
		account.GET("/brand-profile", contentHandler.GetBrandProfile)
		account.PUT("/brand-profile", contentHandler.SaveBrandProfile)
		account.GET("/posting-preferences", contentHandler.GetPostingPreference)
		account.PUT("/posting-preferences", contentHandler.SavePostingPreference)
	}

	return router
}
