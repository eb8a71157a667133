package screens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/strideworks/erp-core/pkg/permissions"
)

// csrfTTL bounds how long an issued anti-forgery token stays valid.
const csrfTTL = 4 * time.Hour

// CSRF issues and checks per-user anti-forgery tokens for form posts. The
// token is an HMAC over the user id and an expiry timestamp, so it needs no
// server-side state.
type CSRF struct {
	secret []byte
}

// NewCSRF creates a token provider.
func NewCSRF(secret []byte) *CSRF {
	return &CSRF{secret: secret}
}

// Token issues a token for the user.
func (c *CSRF) Token(userID int64) string {
	expires := time.Now().Add(csrfTTL).Unix()
	return fmt.Sprintf("%d.%s", expires, c.sign(userID, expires))
}

// Verify checks a submitted token for the user.
func (c *CSRF) Verify(userID int64, token string) bool {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return false
	}
	expires, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || time.Now().Unix() > expires {
		return false
	}
	expected := c.sign(userID, expires)
	return hmac.Equal([]byte(expected), []byte(parts[1]))
}

func (c *CSRF) sign(userID, expires int64) string {
	mac := hmac.New(sha256.New, c.secret)
	fmt.Fprintf(mac, "%d:%d", userID, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// Require rejects mutating requests that lack a valid _csrf field. The token
// may arrive as a form field or the X-CSRF-Token header.
func (c *CSRF) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := permissions.UserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			if err := r.ParseForm(); err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", "Malformed form body")
				return
			}
			token = r.PostFormValue("_csrf")
		}
		if token == "" {
			writeError(w, http.StatusBadRequest, "csrf_missing", "Missing anti-forgery token")
			return
		}
		if !c.Verify(user.ID, token) {
			writeError(w, http.StatusForbidden, "csrf_invalid", "Invalid anti-forgery token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenHandler returns a fresh token for the authenticated user.
func (c *CSRF) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := permissions.UserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": c.Token(user.ID)})
	}
}
