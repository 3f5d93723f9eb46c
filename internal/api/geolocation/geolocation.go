package geolocation

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/FACorreiaa/jens-bike-weather/internal/api"
	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

// ErrorCode mirrors the browser's GeolocationPositionError codes.
type ErrorCode int

const (
	Unknown             ErrorCode = 0
	PermissionDenied    ErrorCode = 1
	PositionUnavailable ErrorCode = 2
	Timeout             ErrorCode = 3
)

func (c ErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// PositionError is a failed one-shot position request.
type PositionError struct {
	Code ErrorCode
}

func (e *PositionError) Error() string {
	return "geolocation: " + e.Code.String()
}

var (
	ErrUnsupported = errors.New("geolocation: not supported by the client")
	ErrNoPosition  = errors.New("geolocation: no position reported")
)

// Resolver answers a single current-position request.
type Resolver interface {
	CurrentPosition(ctx context.Context) (types.Coordinates, error)
}

// FormResolver carries the outcome of the position request the page made in
// the browser before posting the form.
type FormResolver struct {
	coords *types.Coordinates
	err    error
}

// FromRequest reads lat/lon, geo_error (browser code) or geo_unsupported.
func FromRequest(r *http.Request) *FormResolver {
	if r.FormValue("geo_unsupported") != "" {
		return &FormResolver{err: ErrUnsupported}
	}
	if raw := strings.TrimSpace(r.FormValue("geo_error")); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil || code < int(PermissionDenied) || code > int(Timeout) {
			code = int(Unknown)
		}
		return &FormResolver{err: &PositionError{Code: ErrorCode(code)}}
	}
	coords, err := api.ParseCoordinates(r)
	if err != nil {
		return &FormResolver{err: &PositionError{Code: PositionUnavailable}}
	}
	if coords == nil {
		return &FormResolver{err: ErrNoPosition}
	}
	return &FormResolver{coords: coords}
}

// Fixed returns a resolver that always reports coords.
func Fixed(coords types.Coordinates) *FormResolver {
	return &FormResolver{coords: &coords}
}

// Failing returns a resolver that always fails with err.
func Failing(err error) *FormResolver {
	return &FormResolver{err: err}
}

func (f *FormResolver) CurrentPosition(ctx context.Context) (types.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return types.Coordinates{}, err
	}
	if f.err != nil {
		return types.Coordinates{}, f.err
	}
	return *f.coords, nil
}

// WeatherMessage describes a position failure in the weather flow.
func WeatherMessage(err error) string {
	if errors.Is(err, ErrUnsupported) {
		return "Geolocation is not supported by your browser. Please use the search bar instead."
	}
	var pe *PositionError
	if errors.As(err, &pe) {
		switch pe.Code {
		case PermissionDenied:
			return "Location access was denied. Please enable it in your browser settings."
		case PositionUnavailable:
			return "Your location is currently unavailable. Please use the search bar instead."
		case Timeout:
			return "Timed out while trying to get your location. Please try again."
		}
	}
	return "An unknown error occurred while trying to get your location."
}

// TrailsMessage describes a position failure in the trail search flow.
func TrailsMessage(err error) string {
	if errors.Is(err, ErrUnsupported) {
		return "Geolocation is not supported by your browser."
	}
	var pe *PositionError
	if errors.As(err, &pe) {
		switch pe.Code {
		case PermissionDenied:
			return "Location access was denied. Please enable it in your browser settings to search for trails near you."
		case PositionUnavailable:
			return "Your location is currently unavailable. Please enter a city instead."
		case Timeout:
			return "Timed out while trying to get your location. Please try again."
		}
	}
	return "Could not get your location. Please allow location access."
}
