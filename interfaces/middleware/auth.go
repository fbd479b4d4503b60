package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"social-connect/domain/dto"
	"social-connect/infrastructure/logger"
	"social-connect/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth requires a bearer token and sets "user_id" from its claims.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized("Unauthorized"))
			return
		}
		if !authenticate(ctx, authorization, secretKey) {
			return
		}
		ctx.Next()
	}
}

// OptionalAuth validates a bearer token when one is sent and lets anonymous
// requests through. The dashboard may rely on session credentials instead.
func OptionalAuth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" || secretKey == "" {
			ctx.Next()
			return
		}
		if !authenticate(ctx, authorization, secretKey) {
			return
		}
		ctx.Next()
	}
}

const tokenUserKey = "token_user"

// RequireToken rejects requests whose user was not proven by a bearer token.
// Without a secret key there is nothing to verify against and session users pass.
// It runs after Auth or OptionalAuth.
func RequireToken(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if secretKey != "" && !ctx.GetBool(tokenUserKey) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized("Unauthorized"))
			return
		}
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, authorization, secretKey string) bool {
	auth := strings.Split(authorization, "Bearer ")
	if len(auth) != 2 || auth[1] == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized("Unauthorized"))
		return false
	}
	userID, err := utils.ParseUserID(auth[1], secretKey)
	if err != nil {
		logger.GetLogger().WithField("error", err.Error()).Info("Rejected bearer token")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized(reason(err)))
		return false
	}
	ctx.Set("user_id", userID)
	ctx.Set(tokenUserKey, true)
	return true
}

func unauthorized(msg string) dto.Res {
	return dto.Res{ResponseCode: "401", ResponseMessage: msg}
}

func reason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
	return "Unauthorized"
}

// SessionUser fills "user_id" from the session credentials when no token did.
func SessionUser(resolve func(ctx context.Context, sessionID string) (string, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetString("user_id") == "" {
			if sid := SessionID(ctx); sid != "" {
				if uid, err := resolve(ctx.Request.Context(), sid); err == nil {
					ctx.Set("user_id", uid)
				}
			}
		}
		ctx.Next()
	}
}
