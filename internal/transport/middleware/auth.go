package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hendrayp/komunitas-backend/internal/config"
	"github.com/hendrayp/komunitas-backend/pkg/ctxutil"
)

// memberClaims is the token payload issued by the community identity
// provider. MemberID is the ledger member, Admin grants moderator access.
type memberClaims struct {
	MemberID int64 `json:"member_id"`
	Admin    bool  `json:"admin"`
	jwt.RegisteredClaims
}

// Auth returns middleware that validates a Bearer token and stores the
// member identity in the context. Requests without a token pass through
// anonymous; handlers decide whether authentication is required.
func Auth(cfg config.AuthConfig) Middleware {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return []byte(cfg.JWTSecret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}

			claims := &memberClaims{}
			_, err := jwt.ParseWithClaims(token, claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithIssuer(cfg.JWTIssuer),
				jwt.WithExpirationRequired(),
			)
			if err != nil || claims.MemberID <= 0 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := ctxutil.WithMemberID(r.Context(), claims.MemberID)
			if claims.Admin {
				ctx = ctxutil.WithAdmin(ctx, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
