package preferences

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	SavedLocationKey = "jens-bike-weather-location"
	// BackgroundImageKey names the uploaded image in the browser's localStorage.
	// Images are far larger than a cookie can hold, so the page script owns them.
	BackgroundImageKey = "userBackgroundImage"
)

// ErrQuotaExceeded is returned by Store.Set when the medium cannot hold the
// value. Previously stored values under the key are left untouched.
var ErrQuotaExceeded = errors.New("preferences: storage quota exceeded")

// Store is a client-local key-value medium.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string)
}

type preferenceClaims struct {
	Value string `json:"val"`
	jwt.RegisteredClaims
}

// CookieCodec signs preference values into cookies. Each key is its own
// cookie holding an HS256 token whose subject is the key.
type CookieCodec struct {
	key      []byte
	maxBytes int
	maxAge   time.Duration
	secure   bool
}

func NewCookieCodec(secret string, maxBytes int, maxAge time.Duration, secure bool) (*CookieCodec, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("jens-bike-weather/preferences"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive cookie key: %w", err)
	}
	return &CookieCodec{key: key, maxBytes: maxBytes, maxAge: maxAge, secure: secure}, nil
}

func (c *CookieCodec) encode(key, value string) (string, error) {
	claims := preferenceClaims{
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  key,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

func (c *CookieCodec) decode(key, token string) (string, bool) {
	claims := &preferenceClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject != key {
		return "", false
	}
	return claims.Value, true
}

// Store binds the codec to one request/response pair.
func (c *CookieCodec) Store(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{codec: c, w: w, r: r, pending: map[string]*string{}}
}

var _ Store = (*CookieStore)(nil)

// CookieStore reads preferences from the request cookies and writes them as
// Set-Cookie headers. Writes made during the request are visible to later
// reads of the same store.
type CookieStore struct {
	codec   *CookieCodec
	w       http.ResponseWriter
	r       *http.Request
	pending map[string]*string
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	cookie, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	return s.codec.decode(key, cookie.Value)
}

func (s *CookieStore) Set(key, value string) error {
	token, err := s.codec.encode(key, value)
	if err != nil {
		return fmt.Errorf("failed to sign preference %q: %w", key, err)
	}
	cookie := s.cookie(key, token, int(s.codec.maxAge.Seconds()))
	if len(cookie.String()) > s.codec.maxBytes {
		return fmt.Errorf("%w: %q needs %d bytes", ErrQuotaExceeded, key, len(cookie.String()))
	}
	http.SetCookie(s.w, cookie)
	s.pending[key] = &value
	return nil
}

func (s *CookieStore) Remove(key string) {
	http.SetCookie(s.w, s.cookie(key, "", -1))
	s.pending[key] = nil
}

func (s *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.codec.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
