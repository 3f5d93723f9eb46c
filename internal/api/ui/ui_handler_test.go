package ui

import (
	"bytes"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/FACorreiaa/jens-bike-weather/app/middleware"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/preferences"
	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

type browser struct {
	t        *testing.T
	handler  http.Handler
	sessions *Sessions
	cookies  map[string]*http.Cookie
}

func (b *browser) do(r *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, r)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := b.do(r)
	require.Equal(b.t, http.StatusSeeOther, w.Code)
	return w
}

func (b *browser) page() string {
	w := b.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(b.t, http.StatusOK, w.Code)
	return w.Body.String()
}

// newBrowser returns a browser that has already loaded the page once, so it
// holds a session cookie like any returning visitor.
func newBrowser(t *testing.T, fs *MockForecastService, ts *MockTrailsService) *browser {
	t.Helper()
	return newBrowserWithReplayGate(t, fs, ts, nil)
}

func newBrowserWithReplayGate(t *testing.T, fs *MockForecastService, ts *MockTrailsService, allowReplay func(*http.Request) bool) *browser {
	t.Helper()
	codec, err := preferences.NewCookieCodec("secret", 4096, time.Hour, false)
	require.NoError(t, err)
	sessionManager, err := appMiddleware.NewSessionManager("ui-test-session-secret", time.Hour, false)
	require.NoError(t, err)

	ctrl := NewController(fs, ts, preferences.NewPreferencesService(slog.Default()), preferences.DataURIReader{MaxBytes: 1 << 20}, slog.Default())
	sessions := NewSessions(time.Minute, time.Minute)
	h := NewHandlerImpl(ctrl, sessions, codec, 1<<20, allowReplay, slog.Default())

	r := chi.NewRouter()
	r.Use(sessionManager.Session)
	r.Get("/", h.Index)
	r.Post("/weather/search", h.SearchWeather)
	r.Post("/weather/clear", h.ClearSavedLocation)
	r.Post("/weather/dismiss", h.DismissWeatherError)
	r.Post("/trails/search", h.SearchTrails)
	r.Post("/view/{view}", h.SwitchView)
	r.Post("/background", h.UploadBackground)
	r.Post("/background/unsaved", h.BackgroundNotSaved)
	r.Post("/background/reset", h.ResetBackground)

	b := &browser{t: t, handler: r, sessions: sessions, cookies: map[string]*http.Cookie{}}
	b.page()
	require.Contains(t, b.cookies, appMiddleware.SessionCookieName)
	return b
}

func (b *browser) upload(contentType string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="bg.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(b.t, err)
	_, err = part.Write(data)
	require.NoError(b.t, err)
	require.NoError(b.t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/background", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(r)
}

func TestPageFlow(t *testing.T) {
	fs := new(MockForecastService)
	ts := new(MockTrailsService)
	b := newBrowser(t, fs, ts)

	assert.Contains(t, b.page(), "OR SEARCH WEATHER")

	fs.On("FetchWeatherForecast", mock.Anything, types.NewLocationInput("Ghent")).Return(&types.WeatherData{
		Location: types.ForecastLocation{City: "Ghent", Country: "Belgium"},
		DailyForecasts: []types.DailyForecast{{
			Date:         "2025-06-02",
			BikeAdvisory: "Perfect riding weather.",
			HourlyData:   []types.HourlyData{{Time: "09:00", Temperature: 61, WindSpeed: 7, WindDirection: "SW", UVIndex: 3, RainProbability: 10}},
		}},
	}, nil).Once()

	b.post("/weather/search", url.Values{"location": {"Ghent"}})
	require.Contains(t, b.cookies, preferences.SavedLocationKey)

	body := b.page()
	assert.Contains(t, body, "Belgium - 5 Day Forecast")
	assert.Contains(t, body, "Monday")
	assert.Contains(t, body, "Perfect riding weather.")
	assert.Contains(t, body, "Saved Location")

	b.post("/view/trails", nil)
	body = b.page()
	assert.Contains(t, body, "Find Bike Trails")
	assert.Contains(t, body, `value="Ghent"`)

	ts.On("FetchBikeTrails", mock.Anything, "Ghent", (*types.Coordinates)(nil)).
		Return([]types.BikeTrail{{Name: "Coupure", Description: "Canal path", MapsURI: "https://maps.google.com/?cid=1"}}, nil).Once()
	b.post("/trails/search", url.Values{"location": {"Ghent"}})
	body = b.page()
	assert.Contains(t, body, `Showing trails near "Ghent"`)
	assert.Contains(t, body, "View on Map")

	b.post("/view/weather", nil)
	b.post("/weather/clear", nil)
	assert.NotContains(t, b.cookies, preferences.SavedLocationKey)
	assert.Contains(t, b.page(), "OR SEARCH WEATHER")

	fs.AssertExpectations(t)
	ts.AssertExpectations(t)
}

func TestPageValidationAndDismiss(t *testing.T) {
	b := newBrowser(t, new(MockForecastService), new(MockTrailsService))

	b.post("/weather/search", url.Values{"location": {""}})
	assert.Contains(t, b.page(), MsgEmptyWeatherSearch)

	b.post("/weather/dismiss", nil)
	assert.NotContains(t, b.page(), MsgEmptyWeatherSearch)
}

func TestUnknownView(t *testing.T) {
	b := newBrowser(t, new(MockForecastService), new(MockTrailsService))
	w := b.do(httptest.NewRequest(http.MethodPost, "/view/settings", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadBackgroundRendersImageForBrowserStorage(t *testing.T) {
	b := newBrowser(t, new(MockForecastService), new(MockTrailsService))

	img := append(append([]byte{}, pngBytes...), make([]byte, 256<<10)...)
	w := b.upload("image/png", img)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `data-background-sync="store"`)
	assert.Contains(t, body, "data:image/png;base64,")
	assert.Contains(t, body, `data-background-key="`+preferences.BackgroundImageKey+`"`)
	assert.Contains(t, body, preferences.BackgroundNotPersistedWarning)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, preferences.BackgroundImageKey, c.Name)
	}

	next := b.page()
	assert.NotContains(t, next, "data:image/png;base64,")
	assert.Contains(t, next, `data-background-sync=""`)
}

func TestUploadBackgroundRejectsNonImage(t *testing.T) {
	b := newBrowser(t, new(MockForecastService), new(MockTrailsService))

	w := b.upload("text/plain", []byte("hello"))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, b.page(), "Please select a valid image file.")
}

func TestResetBackgroundClearsBrowserStorageOnce(t *testing.T) {
	b := newBrowser(t, new(MockForecastService), new(MockTrailsService))

	b.post("/background/reset", nil)
	assert.Contains(t, b.page(), `data-background-sync="clear"`)
	assert.Contains(t, b.page(), `data-background-sync=""`)
}

func TestBackgroundNotSavedReport(t *testing.T) {
	b := newBrowser(t, new(MockForecastService), new(MockTrailsService))

	r := httptest.NewRequest(http.MethodPost, "/background/unsaved", strings.NewReader(url.Values{"reason": {"QuotaExceededError"}}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusNoContent, b.do(r).Code)
}

func TestCookielessRequestsDoNotRegisterSessions(t *testing.T) {
	b := newBrowser(t, new(MockForecastService), new(MockTrailsService))
	// The first page load of a visitor is itself cookieless.
	assert.Zero(t, b.sessions.Count())

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/weather/search", strings.NewReader(url.Values{"location": {""}}.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		b.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusSeeOther, w.Code)
	}
	assert.Zero(t, b.sessions.Count())

	b.post("/weather/search", url.Values{"location": {""}})
	assert.Equal(t, 1, b.sessions.Count())
	assert.Contains(t, b.page(), MsgEmptyWeatherSearch)
	assert.Equal(t, 1, b.sessions.Count())
}

func TestReplayRespectsGate(t *testing.T) {
	fs := new(MockForecastService)
	allowed := false
	b := newBrowserWithReplayGate(t, fs, new(MockTrailsService), func(*http.Request) bool { return allowed })

	codec, err := preferences.NewCookieCodec("secret", 4096, time.Hour, false)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	require.NoError(t, codec.Store(w, httptest.NewRequest(http.MethodGet, "/", nil)).Set(preferences.SavedLocationKey, "Ghent"))
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}

	assert.NotContains(t, b.page(), "Great day.")
	fs.AssertNotCalled(t, "FetchWeatherForecast", mock.Anything, mock.Anything)

	allowed = true
	fs.On("FetchWeatherForecast", mock.Anything, types.NewLocationInput("Ghent")).Return(ghent(), nil).Once()
	assert.Contains(t, b.page(), "Great day.")
	fs.AssertExpectations(t)
}
