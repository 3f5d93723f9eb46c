package preferences

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with a per-value quota.
type memStore struct {
	values map[string]string
	limit  int
}

func newMemStore(limit int) *memStore {
	return &memStore{values: map[string]string{}, limit: limit}
}

func (m *memStore) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *memStore) Set(key, value string) error {
	if m.limit > 0 && len(value) > m.limit {
		return ErrQuotaExceeded
	}
	m.values[key] = value
	return nil
}

func (m *memStore) Remove(key string) { delete(m.values, key) }

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newCodec(t *testing.T) *CookieCodec {
	t.Helper()
	codec, err := NewCookieCodec("test-secret", 4096, time.Hour, false)
	require.NoError(t, err)
	return codec
}

func replay(t *testing.T, from *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range from.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestCookieStore(t *testing.T) {
	codec := newCodec(t)

	t.Run("round trip across requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		store := codec.Store(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, store.Set(SavedLocationKey, "Ghent, Belgium"))

		v, ok := store.Get(SavedLocationKey)
		assert.True(t, ok)
		assert.Equal(t, "Ghent, Belgium", v)

		next := codec.Store(httptest.NewRecorder(), replay(t, w))
		v, ok = next.Get(SavedLocationKey)
		assert.True(t, ok)
		assert.Equal(t, "Ghent, Belgium", v)
	})

	t.Run("tampered cookie reads as absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SavedLocationKey, Value: "not-a-token"})
		_, ok := codec.Store(httptest.NewRecorder(), r).Get(SavedLocationKey)
		assert.False(t, ok)
	})

	t.Run("token bound to its key", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, codec.Store(w, httptest.NewRequest(http.MethodGet, "/", nil)).Set(SavedLocationKey, "Ghent"))
		token := w.Result().Cookies()[0].Value

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: BackgroundImageKey, Value: token})
		_, ok := codec.Store(httptest.NewRecorder(), r).Get(BackgroundImageKey)
		assert.False(t, ok)
	})

	t.Run("other secret rejects", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, codec.Store(w, httptest.NewRequest(http.MethodGet, "/", nil)).Set(SavedLocationKey, "Ghent"))

		other, err := NewCookieCodec("another-secret", 4096, time.Hour, false)
		require.NoError(t, err)
		_, ok := other.Store(httptest.NewRecorder(), replay(t, w)).Get(SavedLocationKey)
		assert.False(t, ok)
	})

	t.Run("quota exceeded writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		store := codec.Store(w, httptest.NewRequest(http.MethodGet, "/", nil))
		err := store.Set(BackgroundImageKey, strings.Repeat("x", 5000))
		require.ErrorIs(t, err, ErrQuotaExceeded)
		assert.Empty(t, w.Result().Cookies())
		_, ok := store.Get(BackgroundImageKey)
		assert.False(t, ok)
	})

	t.Run("remove expires the cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SavedLocationKey, Value: "whatever"})
		store := codec.Store(w, r)
		store.Remove(SavedLocationKey)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SavedLocationKey, cookies[0].Name)
		assert.Less(t, cookies[0].MaxAge, 0)
		_, ok := store.Get(SavedLocationKey)
		assert.False(t, ok)
	})
}

func TestDataURIReader(t *testing.T) {
	reader := DataURIReader{MaxBytes: 64}

	t.Run("declared image", func(t *testing.T) {
		uri, err := reader.ReadDataURI(bytes.NewReader(pngHeader), "image/png")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	})

	t.Run("sniffed image", func(t *testing.T) {
		uri, err := reader.ReadDataURI(bytes.NewReader(pngHeader), "application/octet-stream")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := reader.ReadDataURI(strings.NewReader("hello"), "text/plain")
		require.ErrorIs(t, err, ErrNotImage)
		assert.Equal(t, "Please select a valid image file.", ImageMessage(err))
	})

	t.Run("too large", func(t *testing.T) {
		_, err := reader.ReadDataURI(bytes.NewReader(make([]byte, 65)), "image/png")
		require.ErrorIs(t, err, ErrImageTooLarge)
	})
}

func TestServiceBackgroundNotSaved(t *testing.T) {
	svc := NewPreferencesService(slog.Default())
	assert.Equal(t, BackgroundNotPersistedWarning, svc.BackgroundNotSaved(context.Background(), "QuotaExceededError"))
	assert.Equal(t, BackgroundNotPersistedWarning, svc.BackgroundNotSaved(context.Background(), strings.Repeat("x", 500)))
}

func TestServiceLocation(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferencesService(slog.Default())
	store := newMemStore(0)

	_, ok := svc.SavedLocation(store)
	assert.False(t, ok)

	require.NoError(t, svc.SaveLocation(ctx, store, "  Ghent  "))
	loc, ok := svc.SavedLocation(store)
	assert.True(t, ok)
	assert.Equal(t, "Ghent", loc)

	require.NoError(t, svc.SaveLocation(ctx, store, "   "))
	loc, _ = svc.SavedLocation(store)
	assert.Equal(t, "Ghent", loc)

	svc.ClearSavedLocation(ctx, store)
	_, ok = svc.SavedLocation(store)
	assert.False(t, ok)
}

func multipartImage(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="bg.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPut, "/preferences/background", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestHandlers(t *testing.T) {
	codec := newCodec(t)
	h := NewHandlerImpl(NewPreferencesService(slog.Default()), codec, DataURIReader{MaxBytes: 1 << 20}, 1<<20, slog.Default())

	t.Run("location lifecycle", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetSavedLocation(w, httptest.NewRequest(http.MethodGet, "/preferences/location", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.NewRecorder()
		h.SaveLocation(w, httptest.NewRequest(http.MethodPut, "/preferences/location", strings.NewReader(`{"location":"Ghent"}`)))
		require.Equal(t, http.StatusNoContent, w.Code)

		got := httptest.NewRecorder()
		h.GetSavedLocation(got, replay(t, w))
		require.Equal(t, http.StatusOK, got.Code)
		var pref LocationPreference
		require.NoError(t, json.Unmarshal(got.Body.Bytes(), &pref))
		assert.Equal(t, "Ghent", pref.Location)
	})

	t.Run("blank location rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.SaveLocation(w, httptest.NewRequest(http.MethodPut, "/preferences/location", strings.NewReader(`{"location":"  "}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("background far larger than a cookie is returned whole", func(t *testing.T) {
		big := append(append([]byte{}, pngHeader...), make([]byte, 512<<10)...)
		w := httptest.NewRecorder()
		h.UploadBackground(w, multipartImage(t, "image/png", big))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())

		var res BackgroundResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, BackgroundImageKey, res.StorageKey)
		require.True(t, strings.HasPrefix(res.DataURI, "data:image/png;base64,"))
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.DataURI, "data:image/png;base64,"))
		require.NoError(t, err)
		assert.Len(t, decoded, len(big))
	})

	t.Run("background over the upload limit rejected", func(t *testing.T) {
		big := append(append([]byte{}, pngHeader...), make([]byte, 1<<20+512<<10)...)
		w := httptest.NewRecorder()
		h.UploadBackground(w, multipartImage(t, "image/png", big))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "too large")
	})

	t.Run("non image rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.UploadBackground(w, multipartImage(t, "text/plain", []byte("hello")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
