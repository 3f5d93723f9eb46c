package preferences

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

var (
	ErrNotImage      = errors.New("preferences: file is not an image")
	ErrImageTooLarge = errors.New("preferences: image exceeds upload limit")
)

// ImageReader turns an uploaded file into a data URI.
type ImageReader interface {
	ReadDataURI(file io.Reader, contentType string) (string, error)
}

var _ ImageReader = DataURIReader{}

// DataURIReader accepts image/* files up to MaxBytes. When the declared
// content type is missing or generic the bytes are sniffed.
type DataURIReader struct {
	MaxBytes int64
}

func (d DataURIReader) ReadDataURI(file io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, d.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > d.MaxBytes {
		return "", ErrImageTooLarge
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mediaType, "image/") || len(bytes.TrimSpace(data)) == 0 {
		return "", ErrNotImage
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ImageMessage describes an upload failure to the user.
func ImageMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotImage):
		return "Please select a valid image file."
	case errors.Is(err, ErrImageTooLarge):
		return "That image is too large to upload."
	default:
		return "Could not read the selected image."
	}
}
