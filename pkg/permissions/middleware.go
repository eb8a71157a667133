package permissions

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	authUserKey contextKey = "authUser"
	branchIDKey contextKey = "branchID"
)

// SessionClaims are the JWT claims carried by a session token. BranchID is
// the active branch chosen from the user's memberships.
type SessionClaims struct {
	UserID   int64 `json:"uid"`
	BranchID int64 `json:"bid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with an HMAC secret and token TTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue signs a session token for a user and active branch.
func (t *TokenIssuer) Issue(userID, branchID int64) (string, error) {
	claims := SessionClaims{
		UserID:   userID,
		BranchID: branchID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns its claims.
func (t *TokenIssuer) Parse(tokenStr string) (*SessionClaims, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	return &claims, nil
}

// Middleware authenticates requests with a bearer session token, loads the
// user's permission bag, and rejects inactive accounts. The user row is
// consulted on every request so a status flip to Inactive takes effect on the
// very next request.
func Middleware(store *Store, issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			user, err := store.GetUser(claims.UserID)
			if err != nil {
				http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
				return
			}
			if user == nil || user.Status != StatusActive {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			authUser, err := store.LoadAuthUser(claims.UserID)
			if err != nil {
				http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
				return
			}
			if !authUser.MemberOf(claims.BranchID) {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey, authUser)
			ctx = context.WithValue(ctx, branchIDKey, claims.BranchID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *AuthUser {
	u, _ := ctx.Value(authUserKey).(*AuthUser)
	return u
}

// BranchFromContext returns the active branch id, or 0.
func BranchFromContext(ctx context.Context) int64 {
	b, _ := ctx.Value(branchIDKey).(int64)
	return b
}

// WithUser injects an authenticated user and branch into a context.
// Used by the CLI drivers and tests, which bypass HTTP auth.
func WithUser(ctx context.Context, user *AuthUser, branchID int64) context.Context {
	ctx = context.WithValue(ctx, authUserKey, user)
	return context.WithValue(ctx, branchIDKey, branchID)
}
