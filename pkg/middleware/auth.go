package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sociowork/surveypay/internal/identity"
	"github.com/sociowork/surveypay/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// PrincipalKey is the context key for the authenticated principal
const PrincipalKey ContextKey = "principal"

// Claims are the token claims issued by the identity collaborator
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and stores an identity.Principal in the
// request context. Token issuance belongs to the identity service; this
// side only consumes.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := parseToken(parts[1], secret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			role, err := identity.ParseRole(claims.Role)
			if err != nil {
				response.Unauthorized(w, "Token carries an unknown role")
				return
			}

			principal := identity.Principal{UserID: claims.UserID, Role: role}
			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseToken validates an HS256 token and extracts its claims
func parseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// GetPrincipal extracts the authenticated principal from the request context
func GetPrincipal(ctx context.Context) (identity.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(identity.Principal)
	return p, ok
}
