package middleware

import (
	"context"
	"net/http"
	"strings"

	internal_errors "github.com/accmint-dev/accmint/internal/errors"
	"github.com/accmint-dev/accmint/internal/jwt"
	"github.com/accmint-dev/accmint/internal/utils"
)

// Key to store the authenticated client id in the request context
type key int

const userIDKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt.JwtService
}

func NewAuth(jwtService jwt.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that requires a valid bearer token and puts
// the token subject into the request context.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Missing access token", StatusCode: http.StatusUnauthorized})
				return
			}

			userID, err := a.jwtService.DecodeToken(token)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated client id set by NeedAuth.
func GetUserID(r *http.Request) string {
	if id, ok := r.Context().Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
