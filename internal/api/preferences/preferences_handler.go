package preferences

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/FACorreiaa/jens-bike-weather/internal/api"
)

type LocationPreference struct {
	Location string `json:"location"`
}

type BackgroundResult struct {
	DataURI    string `json:"dataUri"`
	StorageKey string `json:"storageKey"`
}

type HandlerImpl struct {
	preferencesService Service
	codec              *CookieCodec
	images             ImageReader
	maxImageBytes      int64
	logger             *slog.Logger
}

func NewHandlerImpl(preferencesService Service, codec *CookieCodec, images ImageReader, maxImageBytes int64, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		preferencesService: preferencesService,
		codec:              codec,
		images:             images,
		maxImageBytes:      maxImageBytes,
		logger:             logger,
	}
}

// GetSavedLocation godoc
// @Summary      Get the saved location
// @Tags         Preferences
// @Produce      json
// @Success      200 {object} preferences.LocationPreference
// @Failure      404 {object} api.Response "Nothing saved"
// @Router       /preferences/location [get]
func (h *HandlerImpl) GetSavedLocation(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.preferencesService.SavedLocation(h.codec.Store(w, r))
	if !ok {
		api.ErrorResponse(w, r, http.StatusNotFound, "no saved location")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, LocationPreference{Location: loc})
}

// SaveLocation godoc
// @Summary      Save a location
// @Tags         Preferences
// @Accept       json
// @Param        body body preferences.LocationPreference true "Location to remember"
// @Success      204
// @Failure      400 {object} api.Response
// @Failure      507 {object} api.Response "Does not fit in the preference cookie"
// @Router       /preferences/location [put]
func (h *HandlerImpl) SaveLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationPreference
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location is required")
		return
	}
	if err := h.preferencesService.SaveLocation(r.Context(), h.codec.Store(w, r), req.Location); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrQuotaExceeded) {
			status = http.StatusInsufficientStorage
		}
		api.ErrorResponse(w, r, status, "could not save location")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSavedLocation godoc
// @Summary      Forget the saved location
// @Tags         Preferences
// @Success      204
// @Router       /preferences/location [delete]
func (h *HandlerImpl) ClearSavedLocation(w http.ResponseWriter, r *http.Request) {
	h.preferencesService.ClearSavedLocation(r.Context(), h.codec.Store(w, r))
	w.WriteHeader(http.StatusNoContent)
}

// UploadBackground godoc
// @Summary      Convert a background image
// @Description  Reads the image as a data URI. The client keeps it in its own local storage under storageKey.
// @Tags         Preferences
// @Accept       mpfd
// @Produce      json
// @Param        image formData file true "Image file"
// @Success      200 {object} preferences.BackgroundResult
// @Failure      400 {object} api.Response
// @Router       /preferences/background [put]
func (h *HandlerImpl) UploadBackground(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "UploadBackground"))
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+1<<20)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.ErrorResponse(w, r, http.StatusBadRequest, ImageMessage(ErrImageTooLarge))
			return
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	dataURI, err := h.images.ReadDataURI(file, header.Header.Get("Content-Type"))
	if err != nil {
		l.InfoContext(r.Context(), "Rejected background upload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, ImageMessage(err))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, BackgroundResult{DataURI: dataURI, StorageKey: BackgroundImageKey})
}
