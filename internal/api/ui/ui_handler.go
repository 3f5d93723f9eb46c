package ui

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appMiddleware "github.com/FACorreiaa/jens-bike-weather/app/middleware"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/geolocation"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/preferences"
	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

// DefaultBackgroundURL is shown until the user picks an image.
const DefaultBackgroundURL = "https://images.unsplash.com/photo-1511994293814-3a0a1f05561a?q=80&w=2940&auto=format&fit=crop"

//go:embed templates/index.html
var templateFS embed.FS

type errorPanel struct {
	Message string
	Action  string
}

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"whole": func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) },
	"num":   func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"panel": func(msg, action string) errorPanel { return errorPanel{Message: msg, Action: action} },
}).ParseFS(templateFS, "templates/index.html"))

type dayView struct {
	Summary  types.DaySummary
	Advisory string
	Hours    []types.HourlyData
}

type pageData struct {
	View              View
	Weather           FlowState[*types.WeatherData]
	Days              []dayView
	Trails            FlowState[[]types.BikeTrail]
	TrailInput        string
	SavedLocation     string
	ShowSavedShortcut bool
	Background        template.URL
	CustomBackground  bool
	BackgroundSync    string
	BackgroundKey     string
	BackgroundWarning string
}

type HandlerImpl struct {
	controller    *Controller
	sessions      *Sessions
	codec         *preferences.CookieCodec
	maxImageBytes int64
	allowReplay   func(*http.Request) bool
	logger        *slog.Logger
}

// NewHandlerImpl builds the page handlers. allowReplay gates the forecast
// request made when a page load replays the saved location; nil allows all.
func NewHandlerImpl(
	controller *Controller,
	sessions *Sessions,
	codec *preferences.CookieCodec,
	maxImageBytes int64,
	allowReplay func(*http.Request) bool,
	logger *slog.Logger,
) *HandlerImpl {
	if allowReplay == nil {
		allowReplay = func(*http.Request) bool { return true }
	}
	return &HandlerImpl{
		controller:    controller,
		sessions:      sessions,
		codec:         codec,
		maxImageBytes: maxImageBytes,
		allowReplay:   allowReplay,
		logger:        logger,
	}
}

// session returns the registered session of a returning browser. Requests
// that did not present a session cookie get state for this request only.
func (h *HandlerImpl) session(r *http.Request) *Session {
	id, ok := appMiddleware.GetSessionIDFromContext(r.Context())
	if !ok || appMiddleware.IsNewSession(r.Context()) {
		return NewSession(uuid.NewString())
	}
	return h.sessions.Get(id)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index renders the page, replaying the saved location first when the
// weather view is idle.
func (h *HandlerImpl) Index(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	store := h.codec.Store(w, r)

	if h.controller.ReplayDue(sess, store) && h.allowReplay(r) {
		h.controller.ReplaySavedLocation(r.Context(), sess, store)
	}

	data := h.buildPage(sess, store)
	if sess.TakeBackgroundClear() {
		data.BackgroundSync = "clear"
	}
	h.render(w, r, data)
}

func (h *HandlerImpl) buildPage(sess *Session, store preferences.Store) pageData {
	data := pageData{
		View:              sess.View(),
		Weather:           sess.Weather.Snapshot(),
		Trails:            sess.Trails.Snapshot(),
		TrailInput:        sess.TrailInput(),
		Background:        template.URL(DefaultBackgroundURL),
		BackgroundKey:     preferences.BackgroundImageKey,
		BackgroundWarning: preferences.BackgroundNotPersistedWarning,
	}
	if saved, ok := h.controller.SavedLocation(store); ok {
		data.SavedLocation = saved
		data.ShowSavedShortcut = !strings.EqualFold(data.TrailInput, saved)
	}
	if data.Weather.HasResult && data.Weather.Result != nil {
		for _, d := range data.Weather.Result.DailyForecasts {
			data.Days = append(data.Days, dayView{Summary: d.Summarize(), Advisory: d.BikeAdvisory, Hours: d.HourlyData})
		}
	}
	return data
}

func (h *HandlerImpl) render(w http.ResponseWriter, r *http.Request, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render page", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (h *HandlerImpl) SearchWeather(w http.ResponseWriter, r *http.Request) {
	h.controller.SearchWeather(r.Context(), h.session(r), h.codec.Store(w, r), r.FormValue("location"))
	redirectHome(w, r)
}

func (h *HandlerImpl) LocateWeather(w http.ResponseWriter, r *http.Request) {
	h.controller.LocateWeather(r.Context(), h.session(r), h.codec.Store(w, r), geolocation.FromRequest(r))
	redirectHome(w, r)
}

func (h *HandlerImpl) ClearSavedLocation(w http.ResponseWriter, r *http.Request) {
	h.controller.ClearSavedLocation(r.Context(), h.session(r), h.codec.Store(w, r))
	redirectHome(w, r)
}

func (h *HandlerImpl) DismissWeatherError(w http.ResponseWriter, r *http.Request) {
	h.controller.DismissWeatherError(h.session(r))
	redirectHome(w, r)
}

func (h *HandlerImpl) SearchTrails(w http.ResponseWriter, r *http.Request) {
	h.controller.SearchTrails(r.Context(), h.session(r), geolocation.FromRequest(r), r.FormValue("location"))
	redirectHome(w, r)
}

func (h *HandlerImpl) DismissTrailsError(w http.ResponseWriter, r *http.Request) {
	h.controller.DismissTrailsError(h.session(r))
	redirectHome(w, r)
}

func (h *HandlerImpl) SwitchView(w http.ResponseWriter, r *http.Request) {
	view, err := ParseView(chi.URLParam(r, "view"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.controller.SwitchView(h.session(r), h.codec.Store(w, r), view)
	redirectHome(w, r)
}

// UploadBackground answers with the page itself, carrying the image once so
// the page script can apply it and keep it in the browser's storage. The
// server does not hold on to the image.
func (h *HandlerImpl) UploadBackground(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+1<<20)

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		dataURI, ok := h.controller.UploadBackground(r.Context(), sess, file, header.Header.Get("Content-Type"))
		if !ok {
			break
		}
		data := h.buildPage(sess, h.codec.Store(w, r))
		data.Background = template.URL(dataURI)
		data.CustomBackground = true
		data.BackgroundSync = "store"
		h.render(w, r, data)
		return
	case errors.Is(err, http.ErrMissingFile):
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = preferences.ErrImageTooLarge
		}
		h.logger.InfoContext(r.Context(), "Unreadable background upload", slog.Any("error", err))
		sess.Weather.SetError(preferences.ImageMessage(err))
	}
	redirectHome(w, r)
}

// BackgroundNotSaved receives the page's report that the browser could not
// store the uploaded image.
func (h *HandlerImpl) BackgroundNotSaved(w http.ResponseWriter, r *http.Request) {
	h.controller.BackgroundNotSaved(r.Context(), h.session(r), r.FormValue("reason"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *HandlerImpl) ResetBackground(w http.ResponseWriter, r *http.Request) {
	h.controller.ResetBackground(h.session(r))
	redirectHome(w, r)
}
