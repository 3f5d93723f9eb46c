package ui

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

type View string

const (
	ViewWeather View = "weather"
	ViewTrails  View = "trails"
)

var ErrUnknownView = errors.New("ui: unknown view")

func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewWeather, ViewTrails:
		return View(s), nil
	}
	return "", ErrUnknownView
}

// Session is the page state of one browser. The two flows are independent and
// may be in flight at the same time.
type Session struct {
	ID      string
	Weather Flow[*types.WeatherData]
	Trails  Flow[[]types.BikeTrail]

	mu              sync.Mutex
	view            View
	trailInput      string
	clearBackground bool
}

func NewSession(id string) *Session {
	return &Session{ID: id, view: ViewWeather}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) SetView(v View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

func (s *Session) TrailInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trailInput
}

func (s *Session) SetTrailInput(v string) {
	s.mu.Lock()
	s.trailInput = v
	s.mu.Unlock()
}

// RequestBackgroundClear asks the next rendered page to drop the image kept
// in the browser.
func (s *Session) RequestBackgroundClear() {
	s.mu.Lock()
	s.clearBackground = true
	s.mu.Unlock()
}

// TakeBackgroundClear reports and resets a pending clear request.
func (s *Session) TakeBackgroundClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.clearBackground
	s.clearBackground = false
	return pending
}

// Sessions is the in-memory session registry. Idle sessions expire after the
// configured TTL.
type Sessions struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessions(ttl, cleanup time.Duration) *Sessions {
	return &Sessions{cache: cache.New(ttl, cleanup)}
}

// Get returns the session for id, creating it on first use. Each lookup
// extends its lifetime.
func (s *Sessions) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		sess = NewSession(id)
	}
	s.cache.Set(id, sess, cache.DefaultExpiration)
	return sess
}

func (s *Sessions) lookup(id string) (*Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}

func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}
