package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/uncacademycode/bookingdesk/libs/auth"
)

type ctxKey int

const ctxKeyClaims ctxKey = iota

func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return claims
}

// RequireOperator guards console routes. Tokens with a kid header are
// verified against the auth service's JWKS; everything else falls back to the
// shared HS256 secret.
func RequireOperator(next http.Handler, secret string, jwks *auth.JWKSClient) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := verifyToken(token, secret, jwks)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func verifyToken(token, secret string, jwks *auth.JWKSClient) (*auth.Claims, error) {
	header, err := auth.ParseHeader(token)
	if err != nil {
		return nil, err
	}
	if header.Kid != "" && jwks != nil {
		key, err := jwks.Get(header.Kid)
		if err != nil {
			return nil, err
		}
		return auth.VerifyRS256(token, key)
	}
	return auth.ParseAndVerifyHS256(token, secret)
}

// Me echoes the signed-in operator for the dashboard header.
func Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims := claimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"operator_id": claims.Sub,
		"email":       claims.Email,
		"role":        claims.Role,
	})
}
