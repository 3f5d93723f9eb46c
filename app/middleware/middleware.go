package appMiddleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

type contextKey string

const (
	SessionIDKey  contextKey = "sessionID"
	SessionNewKey contextKey = "sessionNew"
)

const SessionCookieName = "bw_session"

// SessionManager issues and verifies the session cookie. The cookie holds an
// HS256 token whose ID is the session uuid, so ids cannot be made up by the
// client.
type SessionManager struct {
	key    []byte
	maxAge time.Duration
	secure bool
}

func NewSessionManager(secret string, maxAge time.Duration, secure bool) (*SessionManager, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("jens-bike-weather/session"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return &SessionManager{key: key, maxAge: maxAge, secure: secure}, nil
}

func (m *SessionManager) sign(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       id,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

func (m *SessionManager) verify(token string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", false
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Session puts the session id in the request context. Requests without a
// valid cookie get a fresh id and a Set-Cookie, and are marked as new so
// handlers can treat their state as belonging to this request only.
func (m *SessionManager) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, isNew := "", false
		if c, err := r.Cookie(SessionCookieName); err == nil {
			id, _ = m.verify(c.Value)
		}
		if id == "" {
			id, isNew = uuid.NewString(), true
			token, err := m.sign(id)
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(m.maxAge.Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, id)
		ctx = context.WithValue(ctx, SessionNewKey, isNew)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok && id != ""
}

// IsNewSession reports whether the session id was issued on this request
// rather than presented by the client.
func IsNewSession(ctx context.Context) bool {
	isNew, _ := ctx.Value(SessionNewKey).(bool)
	return isNew
}
